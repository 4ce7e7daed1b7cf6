// Package model holds the domain types served by the aid-tracking API and the
// option projections used by the hierarchical selectors.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Dimension is one independent facet of filtering.
type Dimension string

const (
	DimPrograms Dimension = "programs"
	DimPartners Dimension = "partners"
	DimSectors  Dimension = "sectors"
	DimMarkers  Dimension = "markers"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{DimPrograms, DimPartners, DimSectors, DimMarkers}

// ParseDimension accepts a dimension name case-insensitively.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q (want programs, partners, sectors or markers)", s)
}

// Title returns a display label for the dimension.
func (d Dimension) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// Date is a calendar date that decodes from "2006-01-02".
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// UnmarshalJSON accepts a quoted ISO date, an RFC3339 timestamp or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parsing date %q: %w", s, err)
		}
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the date as "2006-01-02" or null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Program is a funded development program.
type Program struct {
	ID           int                `json:"id"`
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	Budget       float64            `json:"total_budget"`
	StartDate    Date               `json:"start_date"`
	EndDate      Date               `json:"end_date"`
	PartnerIDs   []int              `json:"partner_ids"`
	SectorIDs    []int              `json:"sector_ids"`
	SubSectorIDs []int              `json:"sub_sector_ids"`
	MarkerIDs    []int              `json:"marker_ids"`
	SubMarkerIDs []int              `json:"sub_marker_ids"`
	Components   []Component        `json:"components"`
	Regions      []RegionAllocation `json:"regions"`
}

// Key returns the program's composite key.
func (p Program) Key() Key { return NewKey(KindProgram, p.ID) }

// DurationDays returns the program length in days, or 0 when dates are missing.
func (p Program) DurationDays() float64 {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return 0
	}
	d := p.EndDate.Sub(p.StartDate.Time).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// Component is a sub-program with its own sector attribution.
type Component struct {
	ID           int    `json:"id"`
	ProgramID    int    `json:"program_id"`
	Name         string `json:"name"`
	SectorIDs    []int  `json:"sector_ids"`
	SubSectorIDs []int  `json:"sub_sector_ids"`
}

// Key returns the component's composite key.
func (c Component) Key() Key { return NewKey(KindComponent, c.ID) }

// Partner is an implementing or funding organisation.
type Partner struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Sector is a top-level sector.
type Sector struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// SubSector belongs to a sector.
type SubSector struct {
	ID       int    `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	SectorID int    `json:"sector_id"`
}

// Marker is a top-level policy marker category.
type Marker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SubMarker is a value within a marker category.
type SubMarker struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	MarkerID int    `json:"marker_id"`
}

// RegionAllocation is the share of a program's budget spent in a region.
type RegionAllocation struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Budget float64 `json:"budget"`
}

// RegionIndicator is an indicator value for an administrative region.
type RegionIndicator struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Level     string  `json:"level"`
	Indicator string  `json:"indicator"`
	Value     float64 `json:"value"`
}

// Page is the paginated envelope returned by every list endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Context is the region/date scope all fetches are made in. Changing it
// invalidates every option list and selection.
type Context struct {
	Region string `yaml:"region,omitempty" json:"region,omitempty"`
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	From   string `yaml:"from,omitempty" json:"from,omitempty"`
	To     string `yaml:"to,omitempty" json:"to,omitempty"`
}

func (c Context) String() string {
	parts := []string{}
	if c.Region != "" {
		parts = append(parts, "region="+c.Region)
	}
	if c.Level != "" {
		parts = append(parts, "level="+c.Level)
	}
	if c.From != "" || c.To != "" {
		parts = append(parts, "dates="+c.From+".."+c.To)
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " ")
}
