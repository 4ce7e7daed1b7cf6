package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in export_meta.
const SchemaVersion = 1

// CreateSchema creates every snapshot table and index.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"programs", `
			CREATE TABLE IF NOT EXISTS programs (
				id INTEGER PRIMARY KEY,
				code TEXT NOT NULL,
				name TEXT NOT NULL,
				budget REAL NOT NULL,
				start_date TEXT,
				end_date TEXT
			)`},
		{"partners", `
			CREATE TABLE IF NOT EXISTS partners (
				id INTEGER PRIMARY KEY,
				code TEXT,
				name TEXT NOT NULL,
				type TEXT
			)`},
		{"sectors", `
			CREATE TABLE IF NOT EXISTS sectors (
				id INTEGER PRIMARY KEY,
				code TEXT,
				name TEXT NOT NULL
			)`},
		{"program_partners", `
			CREATE TABLE IF NOT EXISTS program_partners (
				program_id INTEGER NOT NULL REFERENCES programs(id),
				partner_id INTEGER NOT NULL,
				PRIMARY KEY (program_id, partner_id)
			)`},
		{"program_sectors", `
			CREATE TABLE IF NOT EXISTS program_sectors (
				program_id INTEGER NOT NULL REFERENCES programs(id),
				sector_id INTEGER NOT NULL,
				PRIMARY KEY (program_id, sector_id)
			)`},
		{"program_markers", `
			CREATE TABLE IF NOT EXISTS program_markers (
				program_id INTEGER NOT NULL REFERENCES programs(id),
				marker_id INTEGER NOT NULL,
				PRIMARY KEY (program_id, marker_id)
			)`},
		{"components", `
			CREATE TABLE IF NOT EXISTS components (
				id INTEGER PRIMARY KEY,
				program_id INTEGER NOT NULL REFERENCES programs(id),
				name TEXT NOT NULL
			)`},
		{"program_regions", `
			CREATE TABLE IF NOT EXISTS program_regions (
				program_id INTEGER NOT NULL REFERENCES programs(id),
				region_code TEXT NOT NULL,
				region_name TEXT,
				budget REAL NOT NULL,
				PRIMARY KEY (program_id, region_code)
			)`},
		{"export_meta", `
			CREATE TABLE IF NOT EXISTS export_meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)`},
		{"region index", `CREATE INDEX IF NOT EXISTS idx_program_regions_code ON program_regions(region_code)`},
		{"sector index", `CREATE INDEX IF NOT EXISTS idx_program_sectors_sector ON program_sectors(sector_id)`},
		{"partner index", `CREATE INDEX IF NOT EXISTS idx_program_partners_partner ON program_partners(partner_id)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// OptimizeDatabase compacts the file. Call it as the final step before
// closing the database.
func OptimizeDatabase(db *sql.DB) error {
	for _, pragma := range []string{`PRAGMA journal_mode=DELETE`, `ANALYZE`, `PRAGMA optimize`} {
		// Some pragmas may fail depending on state; VACUUM is what matters.
		_, _ = db.Exec(pragma)
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}
