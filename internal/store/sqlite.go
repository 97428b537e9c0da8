package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
	"github.com/uptrace/bun"
)

// recordRow is one record of one collection. Position keeps snapshot order.
type recordRow struct {
	bun.BaseModel `bun:"table:records,alias:r"`

	Collection string `bun:"collection,pk"`
	Position   int    `bun:"position,pk"`
	ID         string `bun:"id,notnull"`
	Body       string `bun:"body,notnull"`
}

// SQLiteStore keeps collections in a single SQLite table via bun.
type SQLiteStore struct {
	db *bun.DB
}

// NewSQLiteStore creates the records table if it does not exist.
func NewSQLiteStore(ctx context.Context, db *bun.DB) (*SQLiteStore, error) {
	if _, err := db.NewCreateTable().Model((*recordRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, collection string) ([]codec.Record, error) {
	var rows []recordRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("collection = ?", collection).
		Order("position ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}

	records := make([]codec.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeBody([]byte(row.Body), collection)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *SQLiteStore) Save(ctx context.Context, collection string, records []codec.Record) error {
	rows, err := toRows(collection, records)
	if err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*recordRow)(nil)).
			Where("collection = ?", collection).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear %s: %w", collection, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert %s: %w", collection, err)
		}
		return nil
	})
}

func (s *SQLiteStore) UpdateOne(ctx context.Context, collection, id string, mutate func(codec.Record)) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row recordRow
		err := tx.NewSelect().
			Model(&row).
			Where("collection = ? AND id = ?", collection, id).
			Order("position ASC").
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find %s %s: %w", collection, id, err)
		}

		rec, err := decodeBody([]byte(row.Body), collection)
		if err != nil {
			return err
		}
		mutate(rec)
		body, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", collection, id, err)
		}
		row.Body = string(body)

		if _, err := tx.NewUpdate().Model(&row).Column("body").WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update %s %s: %w", collection, id, err)
		}
		return nil
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toRows(collection string, records []codec.Record) ([]recordRow, error) {
	rows := make([]recordRow, 0, len(records))
	for i, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode %s record %d: %w", collection, i, err)
		}
		rows = append(rows, recordRow{
			Collection: collection,
			Position:   i,
			ID:         rec.ID(),
			Body:       string(body),
		})
	}
	return rows, nil
}
