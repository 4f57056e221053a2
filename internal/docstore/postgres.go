package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Postgres implements Store on top of a single documents table,
// keyed by (collection, key) with the fields serialized as JSON.
type Postgres struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgres creates a Postgres store using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the
// documents schema applied.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

// PutKeyed upserts the document at key, replacing existing fields
// entirely on conflict.
func (p *Postgres) PutKeyed(ctx context.Context, collection, key string, fields Fields) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = p.DB.ExecContext(ctx, `
		INSERT INTO documents (collection, key, fields)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, key) DO UPDATE SET fields = EXCLUDED.fields
	`, collection, key, payload)
	if err != nil {
		return fmt.Errorf("PutKeyed: %w", err)
	}
	return nil
}

// GetKeyed returns the document at key, or ErrNotFound.
func (p *Postgres) GetKeyed(ctx context.Context, collection, key string) (Fields, error) {
	var payload []byte
	err := p.DB.QueryRowContext(ctx, `
		SELECT fields FROM documents WHERE collection = $1 AND key = $2
	`, collection, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetKeyed: %w", err)
	}
	var fields Fields
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}

// ListAll fetches every document in the collection.
func (p *Postgres) ListAll(ctx context.Context, collection string) ([]Keyed, error) {
	rows, err := p.DB.QueryContext(ctx, `
		SELECT key, fields FROM documents WHERE collection = $1 ORDER BY key
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer rows.Close()

	var docs []Keyed
	for rows.Next() {
		var (
			key     string
			payload []byte
		)
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var fields Fields
		if err := json.Unmarshal(payload, &fields); err != nil {
			return nil, fmt.Errorf("unmarshal fields: %w", err)
		}
		docs = append(docs, Keyed{Key: key, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAll rows: %w", err)
	}
	return docs, nil
}

// DeleteKeyed removes the document at key. Absent keys are ignored.
func (p *Postgres) DeleteKeyed(ctx context.Context, collection, key string) error {
	_, err := p.DB.ExecContext(ctx, `
		DELETE FROM documents WHERE collection = $1 AND key = $2
	`, collection, key)
	if err != nil {
		return fmt.Errorf("DeleteKeyed: %w", err)
	}
	return nil
}
