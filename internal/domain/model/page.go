package model

import (
	"encoding/json"
	"net/url"

	"github.com/target/jobz/internal/domain/jobtype"
)

// Fixed paging constants of a job page.
const (
	PageCache      = true
	PageLimit      = 5
	PageSize       = 50
	DefaultOrderBy = "start_line"
)

// PageQuery configures the fetch of a job's event sub-collection.
type PageQuery struct {
	PageSize  int
	OrderBy   string
	PageCache bool
	PageLimit int
	// Filters are the query parameters sent with the fetch. They always contain
	// page_size and order_by unless a search expression overrides them.
	Filters url.Values
}

// PageConfig is the paging configuration handed to the view.
type PageConfig struct {
	Cache     bool `json:"cache"`
	Size      int  `json:"size"`
	PageLimit int  `json:"pageLimit"`
}

// WSConfig carries the websocket namespace of the page.
type WSConfig struct {
	Namespace string `json:"namespace"`
}

// PageBundle is everything a job detail page needs to render.
type PageBundle struct {
	ID      string          `json:"id"`
	Type    jobtype.Type    `json:"type"`
	Stats   json.RawMessage `json:"stats"`
	Model   *Resource       `json:"model"`
	Related string          `json:"related"`
	WS      WSConfig        `json:"ws"`
	Page    PageConfig      `json:"page"`
}

// Resolution is the outcome of resolving a job page. Exactly one of Bundle or
// Redirect is set on success.
type Resolution struct {
	Bundle   *PageBundle
	Redirect bool
}
