// Package db persists evaluation runs to SQLite.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY,
    created_at TEXT,
    standardizer TEXT,
    tokenizer TEXT,
    normalizer TEXT,
    examples INTEGER,
    wer REAL,
    cer REAL,
    kwer REAL
);

CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY,
    run_id INTEGER,
    example_id TEXT,
    word_errors INTEGER,
    word_total INTEGER,
    char_errors INTEGER,
    char_total INTEGER,
    keyword_errors INTEGER,
    keyword_total INTEGER
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
