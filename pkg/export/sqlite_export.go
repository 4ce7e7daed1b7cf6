package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/aidscope/pkg/model"
	"github.com/vanderheijden86/aidscope/pkg/selection"

	_ "modernc.org/sqlite"
)

// SQLiteExporter writes the applied programs and the filter that produced
// them to a standalone SQLite file.
type SQLiteExporter struct {
	Programs []model.Program
	Partners []model.Partner
	Sectors  []model.Sector
	Context  model.Context
	Criteria selection.Criteria
	Title    string
	Version  string

	now func() time.Time
}

// NewSQLiteExporter creates an exporter for programs.
func NewSQLiteExporter(programs []model.Program, partners []model.Partner, sectors []model.Sector) *SQLiteExporter {
	return &SQLiteExporter{Programs: programs, Partners: partners, Sectors: sectors, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertTaxonomies(db); err != nil {
		return fmt.Errorf("insert taxonomies: %w", err)
	}
	if err := e.insertPrograms(db); err != nil {
		return fmt.Errorf("insert programs: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(db); err != nil {
		return fmt.Errorf("optimize database: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true
	return nil
}

func (e *SQLiteExporter) insertTaxonomies(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range e.Partners {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO partners (id, code, name, type) VALUES (?, ?, ?, ?)`,
			p.ID, p.Code, p.Name, p.Type); err != nil {
			return fmt.Errorf("insert partner %d: %w", p.ID, err)
		}
	}
	for _, s := range e.Sectors {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO sectors (id, code, name) VALUES (?, ?, ?)`,
			s.ID, s.Code, s.Name); err != nil {
			return fmt.Errorf("insert sector %d: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

func nullDate(d model.Date) *string {
	if d.IsZero() {
		return nil
	}
	s := d.String()
	return &s
}

func (e *SQLiteExporter) insertPrograms(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO programs (id, code, name, budget, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	link := func(table, col string, programID int, ids []int) error {
		q := fmt.Sprintf(`INSERT OR IGNORE INTO %s (program_id, %s) VALUES (?, ?)`, table, col)
		for _, id := range ids {
			if _, err := tx.Exec(q, programID, id); err != nil {
				return fmt.Errorf("insert %s %d->%d: %w", table, programID, id, err)
			}
		}
		return nil
	}

	for _, p := range e.Programs {
		if _, err := stmt.Exec(p.ID, p.Code, p.Name, p.Budget, nullDate(p.StartDate), nullDate(p.EndDate)); err != nil {
			return fmt.Errorf("insert program %d: %w", p.ID, err)
		}
		if err := link("program_partners", "partner_id", p.ID, p.PartnerIDs); err != nil {
			return err
		}
		if err := link("program_sectors", "sector_id", p.ID, p.SectorIDs); err != nil {
			return err
		}
		if err := link("program_markers", "marker_id", p.ID, p.MarkerIDs); err != nil {
			return err
		}
		for _, c := range p.Components {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO components (id, program_id, name) VALUES (?, ?, ?)`,
				c.ID, p.ID, c.Name); err != nil {
				return fmt.Errorf("insert component %d: %w", c.ID, err)
			}
		}
		for _, r := range p.Regions {
			if _, err := tx.Exec(`INSERT OR REPLACE INTO program_regions (program_id, region_code, region_name, budget) VALUES (?, ?, ?, ?)`,
				p.ID, r.Code, r.Name, r.Budget); err != nil {
				return fmt.Errorf("insert region %s for program %d: %w", r.Code, p.ID, err)
			}
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	var total float64
	for _, p := range e.Programs {
		total += p.Budget
	}
	criteria := map[string][]model.Key{}
	for _, dim := range model.Dimensions {
		if keys := e.Criteria.Get(dim).Keys(); len(keys) > 0 {
			criteria[string(dim)] = keys
		}
	}
	criteriaJSON, err := json.Marshal(criteria)
	if err != nil {
		return err
	}

	meta := map[string]string{
		"generated_at":   now().UTC().Format(time.RFC3339),
		"program_count":  strconv.Itoa(len(e.Programs)),
		"total_budget":   strconv.FormatFloat(total, 'f', -1, 64),
		"schema_version": strconv.Itoa(SchemaVersion),
		"context":        e.Context.String(),
		"criteria":       string(criteriaJSON),
	}
	if e.Version != "" {
		meta["version"] = e.Version
	}
	if t := strings.TrimSpace(e.Title); t != "" {
		meta["title"] = t
	}
	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}
