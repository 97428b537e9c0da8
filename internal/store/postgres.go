package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createRecordsTable = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	id         TEXT    NOT NULL,
	body       JSONB   NOT NULL,
	PRIMARY KEY (collection, position)
)`

// PostgresStore keeps collections in a PostgreSQL table using pgx directly.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates the records table if it does not exist.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := db.Exec(ctx, createRecordsTable); err != nil {
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context, collection string) ([]codec.Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT body FROM records WHERE collection = $1 ORDER BY position ASC`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	defer rows.Close()

	records := []codec.Record{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		rec, err := decodeBody(body, collection)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save replaces the collection inside one transaction, so a failed save
// leaves the previous snapshot in place.
func (s *PostgresStore) Save(ctx context.Context, collection string, records []codec.Record) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM records WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	for i, rec := range records {
		var body []byte
		body, err = json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s record %d: %w", collection, i, err)
		}
		if _, err = tx.Exec(ctx,
			`INSERT INTO records (collection, position, id, body) VALUES ($1, $2, $3, $4)`,
			collection, i, rec.ID(), body,
		); err != nil {
			return fmt.Errorf("insert %s record %d: %w", collection, i, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpdateOne locks the matching row with SELECT ... FOR UPDATE, so the
// read-modify-write of its body cannot interleave with another writer.
func (s *PostgresStore) UpdateOne(ctx context.Context, collection, id string, mutate func(codec.Record)) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		position int
		body     []byte
	)
	err = tx.QueryRow(ctx,
		`SELECT position, body
		 FROM records
		 WHERE collection = $1 AND id = $2
		 ORDER BY position ASC
		 LIMIT 1
		 FOR UPDATE`,
		collection, id,
	).Scan(&position, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return tx.Commit(ctx)
	}
	if err != nil {
		return fmt.Errorf("lock %s %s: %w", collection, id, err)
	}

	var rec codec.Record
	if rec, err = decodeBody(body, collection); err != nil {
		return err
	}
	mutate(rec)
	if body, err = json.Marshal(rec); err != nil {
		return fmt.Errorf("encode %s %s: %w", collection, id, err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE records SET body = $1 WHERE collection = $2 AND position = $3`,
		body, collection, position,
	); err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
