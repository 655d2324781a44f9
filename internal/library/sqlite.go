package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stepviz/internal/spec"
)

// SQLiteStore persists imported specification documents. Documents
// are stored whole as JSON; the listing columns exist for cheap
// catalog queries.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS specifications (
			id TEXT PRIMARY KEY,
			title TEXT,
			layout TEXT,
			node_count INTEGER,
			edge_count INTEGER,
			document JSON,
			updated_at TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_specifications_layout ON specifications(layout);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveSpecification upserts one specification document.
func (s *SQLiteStore) SaveSpecification(ctx context.Context, sp *spec.Specification) error {
	document, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("encode specification %s: %w", sp.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO specifications (id, title, layout, node_count, edge_count, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			layout=excluded.layout,
			node_count=excluded.node_count,
			edge_count=excluded.edge_count,
			document=excluded.document,
			updated_at=excluded.updated_at
	`, sp.ID, sp.Title, string(sp.Layout.Kind), len(sp.Nodes), len(sp.Edges), document, time.Now().UTC())

	return err
}

// SaveAll upserts a batch of specifications in one transaction.
func (s *SQLiteStore) SaveAll(ctx context.Context, specs []*spec.Specification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO specifications (id, title, layout, node_count, edge_count, document, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			layout=excluded.layout,
			node_count=excluded.node_count,
			edge_count=excluded.edge_count,
			document=excluded.document,
			updated_at=excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, sp := range specs {
		document, err := json.Marshal(sp)
		if err != nil {
			return fmt.Errorf("encode specification %s: %w", sp.ID, err)
		}
		if _, err := stmt.Exec(sp.ID, sp.Title, string(sp.Layout.Kind), len(sp.Nodes), len(sp.Edges), document, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetSpecification loads one document by id.
func (s *SQLiteStore) GetSpecification(ctx context.Context, id string) (*spec.Specification, error) {
	row := s.db.QueryRowContext(ctx, "SELECT document FROM specifications WHERE id = ?", id)

	var document []byte
	if err := row.Scan(&document); err != nil {
		return nil, err
	}
	return spec.ParseJSON(document)
}

// LoadAll loads every stored document, ordered by id.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]*spec.Specification, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT document FROM specifications ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query specifications: %w", err)
	}
	defer rows.Close()

	var out []*spec.Specification
	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan specification: %w", err)
		}
		sp, err := spec.ParseJSON(document)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// DeleteSpecification removes one document.
func (s *SQLiteStore) DeleteSpecification(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM specifications WHERE id = ?", id)
	return err
}
