// Package testutil generates deterministic aid catalogs and writes them as
// paginated fixture directories that the fixture transport can serve.
package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/aidscope/pkg/filter"
	"github.com/vanderheijden86/aidscope/pkg/model"
)

// GeneratorConfig controls catalog generation.
type GeneratorConfig struct {
	Seed       int64 // 0 = use current time
	Programs   int
	Partners   int
	Sectors    int
	SubSectors int // per sector
	Markers    int
	SubMarkers int // per marker
	Regions    []string
	BaseTime   time.Time
}

// DefaultConfig returns a config suitable for most tests and demos.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:       42,
		Programs:   24,
		Partners:   8,
		Sectors:    5,
		SubSectors: 3,
		Markers:    3,
		SubMarkers: 2,
		Regions:    []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"},
		BaseTime:   time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Generator creates catalogs.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = DefaultConfig().BaseTime
	}
	if len(cfg.Regions) == 0 {
		cfg.Regions = DefaultConfig().Regions
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

var (
	sectorNames  = []string{"Health", "Water", "Education", "Agriculture", "Energy", "Governance", "Transport"}
	markerNames  = []string{"Gender", "Climate", "Disability", "Nutrition"}
	partnerTypes = []string{"ngo", "multilateral", "government", "private"}
)

// pick returns k distinct ids from 1..n.
func (g *Generator) pick(n, k int) []int {
	if n == 0 || k == 0 {
		return nil
	}
	k = min(k, n)
	perm := g.rng.Perm(n)[:k]
	out := make([]int, k)
	for i, p := range perm {
		out[i] = p + 1
	}
	return out
}

// Catalog generates a consistent catalog: every program's sub-sectors belong
// to its sectors and every component's sectors are among its program's.
func (g *Generator) Catalog() filter.Catalog {
	cfg := g.cfg
	var cat filter.Catalog

	for i := 1; i <= cfg.Partners; i++ {
		cat.Partners = append(cat.Partners, model.Partner{
			ID: i, Code: fmt.Sprintf("ORG%02d", i), Name: fmt.Sprintf("Partner %d", i),
			Type: partnerTypes[(i-1)%len(partnerTypes)],
		})
	}
	subOf := make(map[int][]int)
	for i := 1; i <= cfg.Sectors; i++ {
		name := sectorNames[(i-1)%len(sectorNames)]
		cat.Sectors = append(cat.Sectors, model.Sector{ID: i, Code: fmt.Sprintf("S%d", i), Name: name})
		for j := 1; j <= cfg.SubSectors; j++ {
			id := i*100 + j
			subOf[i] = append(subOf[i], id)
			cat.SubSectors = append(cat.SubSectors, model.SubSector{
				ID: id, Code: fmt.Sprintf("S%d.%d", i, j), Name: fmt.Sprintf("%s %d", name, j), SectorID: i,
			})
		}
	}
	subMarkersOf := make(map[int][]int)
	for i := 1; i <= cfg.Markers; i++ {
		cat.Markers = append(cat.Markers, model.Marker{ID: i, Name: markerNames[(i-1)%len(markerNames)]})
		for j := 1; j <= cfg.SubMarkers; j++ {
			id := i*100 + j
			subMarkersOf[i] = append(subMarkersOf[i], id)
			cat.SubMarkers = append(cat.SubMarkers, model.SubMarker{
				ID: id, Name: fmt.Sprintf("%s level %d", markerNames[(i-1)%len(markerNames)], j), MarkerID: i,
			})
		}
	}

	cat.Programs = make([]model.Program, 0, cfg.Programs)
	for i := 1; i <= cfg.Programs; i++ {
		p := model.Program{
			ID:         i,
			Code:       fmt.Sprintf("PRG-%03d", i),
			Name:       fmt.Sprintf("Program %d", i),
			Budget:     float64(50_000 + g.rng.Intn(5_000_000)),
			PartnerIDs: g.pick(cfg.Partners, 1+g.rng.Intn(3)),
			SectorIDs:  g.pick(cfg.Sectors, 1+g.rng.Intn(2)),
			MarkerIDs:  g.pick(cfg.Markers, g.rng.Intn(3)),
		}
		start := cfg.BaseTime.AddDate(0, g.rng.Intn(48), 0)
		p.StartDate = model.Date{Time: start}
		p.EndDate = model.Date{Time: start.AddDate(1+g.rng.Intn(4), 0, 0)}
		for _, s := range p.SectorIDs {
			if subs := subOf[s]; len(subs) > 0 {
				p.SubSectorIDs = append(p.SubSectorIDs, subs[g.rng.Intn(len(subs))])
			}
		}
		for _, m := range p.MarkerIDs {
			if subs := subMarkersOf[m]; len(subs) > 0 {
				p.SubMarkerIDs = append(p.SubMarkerIDs, subs[g.rng.Intn(len(subs))])
			}
		}
		for j := 1; j <= g.rng.Intn(3); j++ {
			c := model.Component{
				ID: i*10 + j, ProgramID: i, Name: fmt.Sprintf("Component %d.%d", i, j),
			}
			if len(p.SectorIDs) > 0 {
				c.SectorIDs = []int{p.SectorIDs[g.rng.Intn(len(p.SectorIDs))]}
			}
			if len(p.SubSectorIDs) > 0 {
				c.SubSectorIDs = []int{p.SubSectorIDs[g.rng.Intn(len(p.SubSectorIDs))]}
			}
			p.Components = append(p.Components, c)
		}
		p.Regions = g.allocate(p.Budget)
		cat.Programs = append(cat.Programs, p)
	}
	return cat
}

// allocate spreads budget over one to three regions.
func (g *Generator) allocate(budget float64) []model.RegionAllocation {
	n := 1 + g.rng.Intn(min(3, len(g.cfg.Regions)))
	idx := g.rng.Perm(len(g.cfg.Regions))[:n]
	out := make([]model.RegionAllocation, n)
	share := budget / float64(n)
	for i, r := range idx {
		code := g.cfg.Regions[r]
		out[i] = model.RegionAllocation{Code: code, Name: "Region " + code, Budget: share}
	}
	return out
}

// Indicators generates one value per region for each named indicator.
func (g *Generator) Indicators(names ...string) []model.RegionIndicator {
	var out []model.RegionIndicator
	for _, name := range names {
		for _, code := range g.cfg.Regions {
			out = append(out, model.RegionIndicator{
				Code: code, Name: "Region " + code, Level: "province",
				Indicator: name, Value: float64(g.rng.Intn(1000)) / 10,
			})
		}
	}
	return out
}

// WriteFixtures writes cat and indicators to dir in the layout the fixture
// transport serves, splitting every list into pages of pageSize (all in one
// page when pageSize <= 0). baseURL is used for next links.
func WriteFixtures(dir, baseURL string, pageSize int, cat filter.Catalog, indicators []model.RegionIndicator) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating fixture dir: %w", err)
	}
	lists := []struct {
		endpoint string
		items    []any
	}{
		{"programs", toAny(cat.Programs)},
		{"partners", toAny(cat.Partners)},
		{"sectors", toAny(cat.Sectors)},
		{"sub-sectors", toAny(cat.SubSectors)},
		{"markers", toAny(cat.Markers)},
		{"sub-markers", toAny(cat.SubMarkers)},
		{"region-indicators", toAny(indicators)},
	}
	for _, l := range lists {
		if err := writePages(dir, baseURL, l.endpoint, pageSize, l.items); err != nil {
			return err
		}
	}
	return nil
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

func writePages(dir, baseURL, endpoint string, pageSize int, items []any) error {
	if pageSize <= 0 {
		pageSize = max(len(items), 1)
	}
	pages := max(1, (len(items)+pageSize-1)/pageSize)
	link := func(n int) *string {
		if n < 1 || n > pages {
			return nil
		}
		s := fmt.Sprintf("%s/%s/?page=%d", strings.TrimSuffix(baseURL, "/"), endpoint, n)
		return &s
	}
	for n := 1; n <= pages; n++ {
		lo := (n - 1) * pageSize
		hi := min(lo+pageSize, len(items))
		page := model.Page[any]{
			Count:    len(items),
			Next:     link(n + 1),
			Previous: link(n - 1),
			Results:  items[lo:hi],
		}
		data, err := json.MarshalIndent(page, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding %s page %d: %w", endpoint, n, err)
		}
		name := endpoint + ".json"
		if n > 1 {
			name = fmt.Sprintf("%s.%d.json", endpoint, n)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}
