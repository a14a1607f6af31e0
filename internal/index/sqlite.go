package index

import (
	"database/sql"
	"fmt"
	"os"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"romcat/pkg/models"
)

const schema = `
CREATE TABLE games (
	platform     TEXT NOT NULL,
	name         TEXT NOT NULL,
	description  TEXT,
	year         TEXT,
	manufacturer TEXT,
	PRIMARY KEY (platform, name)
);

CREATE TABLE parts (
	platform TEXT NOT NULL,
	game     TEXT NOT NULL,
	type     TEXT NOT NULL,
	name     TEXT NOT NULL,
	size     INTEGER,
	crc      TEXT,
	sha1     TEXT,
	PRIMARY KEY (platform, game, type, name)
);

CREATE INDEX parts_crc ON parts (crc);
CREATE INDEX parts_sha1 ON parts (sha1);
`

// Export writes catalogs into a fresh sqlite database at path, replacing
// any existing file.
func Export(path string, catalogs map[string]*models.Catalog) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old index: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	platforms := make([]string, 0, len(catalogs))
	for platform := range catalogs {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		if err := insertCatalog(db, catalogs[platform]); err != nil {
			return err
		}
	}
	return nil
}

func insertCatalog(db *sql.DB, cat *models.Catalog) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	gameStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO games (platform, name, description, year, manufacturer)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer gameStmt.Close()

	partStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO parts (platform, game, type, name, size, crc, sha1)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer partStmt.Close()

	for name, game := range cat.Games {
		_, err := gameStmt.Exec(cat.Platform, name,
			nullable(game.Fields["description"]), nullable(game.Fields["year"]), nullable(game.Fields["manufacturer"]))
		if err != nil {
			return fmt.Errorf("failed to insert game %s: %w", name, err)
		}

		for _, parts := range game.Parts {
			for partName, part := range parts {
				_, err := partStmt.Exec(cat.Platform, name, part["type"], partName,
					nullable(part["size"]), nullable(part["crc"]), nullable(part["sha1"]))
				if err != nil {
					return fmt.Errorf("failed to insert %s %s of %s: %w", part["type"], partName, name, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
