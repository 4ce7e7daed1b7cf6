// Package loader fetches the option lists a dashboard needs in parallel.
// Individual list failures are recorded per list and never abort the load:
// a failed list is left nil, which the filter composer treats as undefined.
package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/aidscope/pkg/api"
	"github.com/vanderheijden86/aidscope/pkg/debug"
	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/metrics"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// ListResult records the outcome of one list.
type ListResult struct {
	Endpoint string
	Count    int
	Err      error
	Took     time.Duration
}

// Catalog is the loaded option lists plus per-list outcomes.
type Catalog struct {
	filter.Catalog
	Context model.Context
	Results []ListResult
}

// Failed returns the lists that could not be loaded.
func (c *Catalog) Failed() []ListResult {
	var out []ListResult
	for _, r := range c.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Summary is a one-line description for status bars and logs.
func (c *Catalog) Summary() string {
	parts := make([]string, 0, len(c.Results))
	for _, r := range c.Results {
		name := strings.TrimSuffix(r.Endpoint, "/")
		if r.Err != nil {
			parts = append(parts, name+"=error")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", name, r.Count))
	}
	return strings.Join(parts, " ")
}

// Options tunes LoadCatalog.
type Options struct {
	Concurrency int
}

type job struct {
	endpoint string
	run      func(ctx context.Context) (int, error)
}

// LoadCatalog fetches programs, partners, sectors, sub-sectors, markers and
// sub-markers for scope. The returned error is only ever the context's.
func LoadCatalog(ctx context.Context, c *api.Client, scope model.Context, opts Options) (*Catalog, error) {
	defer metrics.TimerWithCallback(metrics.CatalogLoad, func(d time.Duration) {
		debug.LogTiming("catalog "+scope.String(), d)
	})()
	defer debug.Trace("LoadCatalog")()

	cat := &Catalog{Context: scope}
	jobs := []job{
		{api.EndpointPrograms, func(ctx context.Context) (int, error) {
			v, err := c.Programs(ctx, scope)
			cat.Programs = v
			return len(v), err
		}},
		{api.EndpointPartners, func(ctx context.Context) (int, error) {
			v, err := c.Partners(ctx, scope)
			cat.Partners = v
			return len(v), err
		}},
		{api.EndpointSectors, func(ctx context.Context) (int, error) {
			v, err := c.Sectors(ctx, scope)
			cat.Sectors = v
			return len(v), err
		}},
		{api.EndpointSubSectors, func(ctx context.Context) (int, error) {
			v, err := c.SubSectors(ctx, scope)
			cat.SubSectors = v
			return len(v), err
		}},
		{api.EndpointMarkers, func(ctx context.Context) (int, error) {
			v, err := c.Markers(ctx, scope)
			cat.Markers = v
			return len(v), err
		}},
		{api.EndpointSubMarkers, func(ctx context.Context) (int, error) {
			v, err := c.SubMarkers(ctx, scope)
			cat.SubMarkers = v
			return len(v), err
		}},
	}
	cat.Results = make([]ListResult, len(jobs))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, j := range jobs {
		g.Go(func() error {
			start := time.Now()
			if err := gctx.Err(); err != nil {
				cat.Results[i] = ListResult{Endpoint: j.endpoint, Err: err}
				return nil
			}
			n, err := j.run(gctx)
			cat.Results[i] = ListResult{Endpoint: j.endpoint, Count: n, Err: err, Took: time.Since(start)}
			return nil // list errors are recorded, not propagated
		})
	}
	_ = g.Wait()

	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	for _, r := range cat.Results {
		if r.Err != nil {
			log.Warn("list failed", zap.String("endpoint", r.Endpoint), zap.Error(r.Err))
		}
	}
	if err := ctx.Err(); err != nil {
		return cat, err
	}
	return cat, nil
}

// LoadIndicators fetches indicator values for scope.
func LoadIndicators(ctx context.Context, c *api.Client, scope model.Context, indicator string) ([]model.RegionIndicator, error) {
	v, err := c.RegionIndicators(ctx, scope, indicator)
	if err != nil {
		return nil, fmt.Errorf("loading indicators: %w", err)
	}
	return v, nil
}
