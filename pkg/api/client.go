// Package api talks to the aid-tracking REST API. Every list endpoint returns
// the paginated envelope {count, next, previous, results}; ListAll follows the
// next links until the list is exhausted.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/vanderheijden86/aidscope/pkg/metrics"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

// List endpoints, relative to the base URL.
const (
	EndpointPrograms         = "programs/"
	EndpointPartners         = "partners/"
	EndpointSectors          = "sectors/"
	EndpointSubSectors       = "sub-sectors/"
	EndpointMarkers          = "markers/"
	EndpointSubMarkers       = "sub-markers/"
	EndpointRegionIndicators = "region-indicators/"
)

// Endpoints lists every list endpoint.
var Endpoints = []string{
	EndpointPrograms, EndpointPartners, EndpointSectors, EndpointSubSectors,
	EndpointMarkers, EndpointSubMarkers, EndpointRegionIndicators,
}

// maxPages bounds pagination against servers whose next links loop.
const maxPages = 10000

// Getter fetches the body of a GET request. Implementations return errors
// wrapping ErrNetwork or *HTTPError.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(ctx context.Context, rawURL string) ([]byte, error)

// Get calls f.
func (f GetterFunc) Get(ctx context.Context, rawURL string) ([]byte, error) { return f(ctx, rawURL) }

// Client resolves endpoints against BaseURL and decodes pages.
type Client struct {
	BaseURL  string
	Getter   Getter
	Schemas  *SchemaRegistry
	Logger   *zap.Logger
	PageSize int
}

// NewClient returns a client with a no-op logger.
func NewClient(baseURL string, g Getter) *Client {
	return &Client{BaseURL: baseURL, Getter: g, Logger: zap.NewNop()}
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ContextQuery encodes a region/date context as query parameters.
func ContextQuery(ctx model.Context) url.Values {
	q := url.Values{}
	if ctx.Region != "" {
		q.Set("region", ctx.Region)
	}
	if ctx.Level != "" {
		q.Set("level", ctx.Level)
	}
	if ctx.From != "" {
		q.Set("start_date", ctx.From)
	}
	if ctx.To != "" {
		q.Set("end_date", ctx.To)
	}
	return q
}

// URL resolves endpoint against the base URL and attaches query.
func (c *Client) URL(endpoint string, query url.Values) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", c.BaseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing endpoint %q: %w", endpoint, err)
	}
	u := base.ResolveReference(ref)
	q := u.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if c.PageSize > 0 && q.Get("page_size") == "" {
		q.Set("page_size", strconv.Itoa(c.PageSize))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPage fetches and decodes one page.
func FetchPage[T any](ctx context.Context, c *Client, rawURL string) (model.Page[T], []byte, error) {
	var page model.Page[T]
	body, err := c.Getter.Get(ctx, rawURL)
	if err != nil {
		return page, nil, err
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return page, body, fmt.Errorf("%w: %s: %v", ErrDecode, rawURL, err)
	}
	return page, body, nil
}

// ListAll fetches every page of endpoint and returns the concatenated results.
// Schema mismatches are logged and never fail the call.
func ListAll[T any](ctx context.Context, c *Client, endpoint string, query url.Values) ([]T, error) {
	defer metrics.Timer(metrics.Fetch)()

	next, err := c.URL(endpoint, query)
	if err != nil {
		return nil, err
	}
	log := c.logger().With(zap.String("endpoint", endpoint))

	var all []T
	seen := make(map[string]bool)
	for pages := 0; next != ""; pages++ {
		if pages == maxPages || seen[next] {
			return nil, fmt.Errorf("%w: %s: pagination does not terminate at %s", ErrDecode, endpoint, next)
		}
		seen[next] = true
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, body, err := FetchPage[T](ctx, c, next)
		if err != nil {
			return nil, err
		}
		c.validate(log, endpoint, body)
		if all == nil {
			all = make([]T, 0, capacityHint(page.Count, len(page.Results)))
		}
		all = append(all, page.Results...)

		next = ""
		if page.Next != nil && *page.Next != "" {
			next, err = resolveNext(c.BaseURL, *page.Next)
			if err != nil {
				return nil, err
			}
		}
	}
	log.Debug("listed", zap.Int("results", len(all)))
	return all, nil
}

// capacityHint sizes the result slice from the first page. The server's
// count is only trusted up to what maxPages pages of this size could hold.
func capacityHint(count, perPage int) int {
	if count > perPage && count <= perPage*maxPages {
		return count
	}
	return perPage
}

// resolveNext accepts absolute next links and ones relative to the base URL.
func resolveNext(baseURL, next string) (string, error) {
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: next link %q: %v", ErrDecode, next, err)
	}
	if u.IsAbs() {
		return next, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}
	return base.ResolveReference(u).String(), nil
}

func (c *Client) validate(log *zap.Logger, endpoint string, body []byte) {
	if c.Schemas == nil {
		return
	}
	var raw struct {
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return
	}
	if err := c.Schemas.Validate(SchemaName(endpoint), raw.Results); err != nil {
		metrics.SchemaRejects.Inc()
		log.Error("schema mismatch", zap.Error(err))
	}
}

// Programs lists programs in ctx.
func (c *Client) Programs(ctx context.Context, scope model.Context) ([]model.Program, error) {
	return ListAll[model.Program](ctx, c, EndpointPrograms, ContextQuery(scope))
}

// Partners lists partners in ctx.
func (c *Client) Partners(ctx context.Context, scope model.Context) ([]model.Partner, error) {
	return ListAll[model.Partner](ctx, c, EndpointPartners, ContextQuery(scope))
}

// Sectors lists sectors in ctx.
func (c *Client) Sectors(ctx context.Context, scope model.Context) ([]model.Sector, error) {
	return ListAll[model.Sector](ctx, c, EndpointSectors, ContextQuery(scope))
}

// SubSectors lists sub-sectors in ctx.
func (c *Client) SubSectors(ctx context.Context, scope model.Context) ([]model.SubSector, error) {
	return ListAll[model.SubSector](ctx, c, EndpointSubSectors, ContextQuery(scope))
}

// Markers lists markers in ctx.
func (c *Client) Markers(ctx context.Context, scope model.Context) ([]model.Marker, error) {
	return ListAll[model.Marker](ctx, c, EndpointMarkers, ContextQuery(scope))
}

// SubMarkers lists sub-markers in ctx.
func (c *Client) SubMarkers(ctx context.Context, scope model.Context) ([]model.SubMarker, error) {
	return ListAll[model.SubMarker](ctx, c, EndpointSubMarkers, ContextQuery(scope))
}

// RegionIndicators lists indicator values for indicator in ctx. An empty
// indicator lists all of them.
func (c *Client) RegionIndicators(ctx context.Context, scope model.Context, indicator string) ([]model.RegionIndicator, error) {
	q := ContextQuery(scope)
	if indicator != "" {
		q.Set("indicator", indicator)
	}
	return ListAll[model.RegionIndicator](ctx, c, EndpointRegionIndicators, q)
}
