// Package awx implements core.ResourceClient against the AWX REST API (v2).
package awx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/target/jobz/internal/core"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

const (
	apiPrefix      = "api/v2"
	defaultTimeout = 30 * time.Second
	// maxErrorBody caps how much of a failed response is kept as the error payload.
	maxErrorBody = 64 << 10
	statsEvent   = "playbook_on_stats"
)

var endpoints = map[jobtype.Family]string{
	jobtype.FamilyJob:           "jobs",
	jobtype.FamilyProjectUpdate: "project_updates",
	jobtype.FamilyAdHocCommand:  "ad_hoc_commands",
	jobtype.FamilySystemJob:     "system_jobs",
	jobtype.FamilyWorkflowJob:   "workflow_jobs",
}

// statsRelations names the event relation searched for playbook stats. Families
// that never run a playbook are absent.
var statsRelations = map[jobtype.Family]string{
	jobtype.FamilyJob:           jobtype.RelatedJobEvents,
	jobtype.FamilyProjectUpdate: jobtype.RelatedEvents,
}

// Config captures the connection settings of the AWX API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// ClientOptions groups dependencies for NewClient.
type ClientOptions struct {
	Config     Config
	Options    *core.OptionsCacheService // Optional: OPTIONS document cache
	HTTPClient *http.Client              // Optional: overrides the client built from Config
	Jar        http.CookieJar            // Optional: session cookies shared with the realtime socket
	Logger     *slog.Logger              // Optional
}

// Client talks to the AWX REST API.
type Client struct {
	base    *url.URL
	http    *http.Client
	options *core.OptionsCacheService
	logger  *slog.Logger
}

var _ core.ResourceClient = (*Client)(nil)

// NewClient builds an AWX API client.
func NewClient(opts ClientOptions) (*Client, error) {
	raw := strings.TrimSpace(opts.Config.BaseURL)
	if raw == "" {
		return nil, errors.New("awx base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse awx base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("awx base url %q must be absolute", raw)
	}

	hc := opts.HTTPClient
	if hc == nil {
		if hc, err = newHTTPClient(opts.Config, opts.Jar); err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:    base,
		http:    hc,
		options: opts.Options,
		logger:  logger.With("component", "awx_client"),
	}, nil
}

// NewCookieJar returns the cookie jar AWX session cookies (including
// csrftoken) are kept in.
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// newHTTPClient keeps session cookies across calls and, when a token is
// configured, authenticates every request with it.
func newHTTPClient(cfg Config, jar http.CookieJar) (*http.Client, error) {
	if jar == nil {
		var err error
		if jar, err = NewCookieJar(); err != nil {
			return nil, err
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var transport http.RoundTripper = http.DefaultTransport
	if tok := strings.TrimSpace(cfg.Token); tok != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}),
			Base:   http.DefaultTransport,
		}
	}

	return &http.Client{Timeout: timeout, Jar: jar, Transport: transport}, nil
}

// Get returns the resource document of family/id.
func (c *Client) Get(ctx context.Context, family jobtype.Family, id string) (map[string]any, error) {
	u, err := c.resourceURL(family, id)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := c.do(ctx, http.MethodGet, u, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Options returns the OPTIONS document of family/id, served from the cache
// when possible. Cache failures fall back to a live request.
func (c *Client) Options(ctx context.Context, family jobtype.Family, id string) (map[string]any, error) {
	cached, err := c.options.Get(ctx, family, id)
	if err != nil {
		c.logger.WarnContext(ctx, "options cache read failed", "family", string(family), "id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	u, err := c.resourceURL(family, id)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := c.do(ctx, http.MethodOptions, u, &doc); err != nil {
		return nil, err
	}

	if err := c.options.Set(ctx, family, id, doc); err != nil {
		c.logger.WarnContext(ctx, "options cache write failed", "family", string(family), "id", id, "error", err)
	}
	return doc, nil
}

// Stats returns the playbook_on_stats event of res, or JSON null when the
// family has no playbook events or the run has not produced stats yet.
func (c *Client) Stats(ctx context.Context, res *model.Resource) (json.RawMessage, error) {
	relation, ok := statsRelations[res.Family]
	if !ok {
		return json.RawMessage("null"), nil
	}
	page, err := c.fetchRelated(ctx, res, relation, url.Values{"event": {statsEvent}})
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return json.RawMessage("null"), nil
	}
	return page.Results[0], nil
}

// Extend fetches one page of the relation of res. A nil query uses the API's
// default paging.
func (c *Client) Extend(
	ctx context.Context,
	res *model.Resource,
	relation string,
	query *model.PageQuery,
) (*model.RelatedPage, error) {
	var params url.Values
	if query != nil {
		params = query.Filters
	}
	page, err := c.fetchRelated(ctx, res, relation, params)
	if err != nil {
		return nil, err
	}
	if query != nil {
		page.Page = &model.PageConfig{Cache: query.PageCache, Size: query.PageSize, PageLimit: query.PageLimit}
	}
	return page, nil
}

func (c *Client) fetchRelated(
	ctx context.Context,
	res *model.Resource,
	relation string,
	params url.Values,
) (*model.RelatedPage, error) {
	ref, ok := res.RelatedURL(relation)
	if !ok {
		return nil, fmt.Errorf("%s %s has no related %q", res.Family, res.ID, relation)
	}
	rel, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse related %q url: %w", relation, err)
	}
	u := c.base.ResolveReference(rel)
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = append([]string(nil), vs...)
		}
		u.RawQuery = q.Encode()
	}

	var page model.RelatedPage
	if err := c.do(ctx, http.MethodGet, u, &page); err != nil {
		return nil, err
	}
	page.Params = params
	return &page, nil
}

func (c *Client) resourceURL(family jobtype.Family, id string) (*url.URL, error) {
	endpoint, ok := endpoints[family]
	if !ok {
		return nil, fmt.Errorf("%w: no endpoint for %q", jobtype.ErrUnsupportedType, family)
	}
	// AWX routes end in a slash and redirect otherwise.
	return c.base.JoinPath(apiPrefix, endpoint, url.PathEscape(id), "/"), nil
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "create awx request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "awx %s %s", method, u.Path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close awx response body", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(method+" "+u.Path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "decode awx %s %s", method, u.Path)
	}
	return nil
}

// newAPIError keeps a JSON error body as-is and wraps anything else in an
// AWX-style detail object.
func newAPIError(op string, resp *http.Response) *model.APIError {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	trimmed := bytes.TrimSpace(body)

	var payload json.RawMessage
	switch {
	case err == nil && len(trimmed) > 0 && json.Valid(trimmed):
		payload = append(json.RawMessage(nil), trimmed...)
	case len(trimmed) > 0:
		payload = model.DetailPayload(string(trimmed))
	default:
		payload = model.DetailPayload(http.StatusText(resp.StatusCode))
	}
	return &model.APIError{Op: op, Status: resp.StatusCode, Payload: payload}
}
