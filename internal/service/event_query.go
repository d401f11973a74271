package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/target/jobz/internal/domain/model"
	"github.com/target/jobz/internal/querystring"
)

// Query parameter names understood by AWX list endpoints.
const (
	paramPageSize = "page_size"
	paramOrderBy  = "order_by"
)

// BaseEventFilters returns the fixed filters every event fetch starts from.
func BaseEventFilters() url.Values {
	return url.Values{
		paramPageSize: {strconv.Itoa(model.PageSize)},
		paramOrderBy:  {model.DefaultOrderBy},
	}
}

// BuildEventQuery builds the paging query for a job's event sub-collection.
// A non-empty rawSearch is decoded as a queryset expression and overlaid onto
// the base filters; search keys win on collision.
func BuildEventQuery(rawSearch string) (model.PageQuery, error) {
	q := model.PageQuery{
		PageSize:  model.PageSize,
		OrderBy:   model.DefaultOrderBy,
		PageCache: model.PageCache,
		PageLimit: model.PageLimit,
		Filters:   BaseEventFilters(),
	}
	if strings.TrimSpace(rawSearch) == "" {
		return q, nil
	}

	overlay, err := querystring.DecodeParams(rawSearch)
	if err != nil {
		return model.PageQuery{}, fmt.Errorf("job_event_search: %w", err)
	}
	q.Filters = querystring.Merge(q.Filters, overlay)

	// Keep the typed fields in step with an overridden filter.
	if n, err := strconv.Atoi(q.Filters.Get(paramPageSize)); err == nil && n > 0 {
		q.PageSize = n
	}
	if v := q.Filters.Get(paramOrderBy); v != "" {
		q.OrderBy = v
	}
	return q, nil
}
