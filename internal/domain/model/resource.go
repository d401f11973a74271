package model

import (
	"encoding/json"
	"net/url"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/jobz/internal/domain/jobtype"
)

// Resource is a fetched AWX job-like object: its GET document, its OPTIONS
// document, and the related collections attached to it.
type Resource struct {
	Family  jobtype.Family          `json:"family"`
	ID      string                  `json:"id"`
	Data    map[string]any          `json:"data"`
	Options map[string]any          `json:"options,omitempty"`
	Related map[string]*RelatedPage `json:"related,omitempty"`
}

// Lookup evaluates a JMESPath expression against the GET document.
func (r *Resource) Lookup(path string) (any, error) {
	if r == nil || r.Data == nil {
		return nil, nil
	}
	return jmespath.Search(path, r.Data)
}

// Has reports whether path resolves to a non-empty value, e.g.
// Has("related.labels").
func (r *Resource) Has(path string) bool {
	v, err := r.Lookup(path)
	if err != nil || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}

// RelatedURL returns the URL of a named relation from related.<name>.
func (r *Resource) RelatedURL(name string) (string, bool) {
	v, err := r.Lookup("related." + name)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Attach records a fetched related collection under name.
// Not safe for concurrent use.
func (r *Resource) Attach(name string, page *RelatedPage) {
	if page == nil {
		return
	}
	if r.Related == nil {
		r.Related = make(map[string]*RelatedPage)
	}
	r.Related[name] = page
}

// Relation returns an attached related collection.
func (r *Resource) Relation(name string) (*RelatedPage, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.Related[name]
	return p, ok
}

// RelatedPage is one page of an AWX list endpoint.
type RelatedPage struct {
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []json.RawMessage `json:"results"`
	// Params are the query parameters the page was fetched with.
	Params url.Values  `json:"params,omitempty"`
	Page   *PageConfig `json:"page,omitempty"`
}
