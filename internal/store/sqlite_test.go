package store

import (
	"context"
	"testing"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
	"github.com/Shivanand-hulikatti/eventspark/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	s, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	runContract(t, func(t *testing.T) Store { return newTestSQLiteStore(t) })
}

func TestSQLiteStore_CorruptBody(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	row := recordRow{Collection: UsersCollection, Position: 0, ID: "u1", Body: "{not json"}
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	require.NoError(t, err)

	_, err = s.Load(ctx, UsersCollection)
	assert.ErrorIs(t, err, ErrCorrupt)

	err = s.UpdateOne(ctx, UsersCollection, "u1", func(codec.Record) {})
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSQLiteStore_ReopenKeepsTable(t *testing.T) {
	path := t.TempDir() + "/eventspark.db"
	ctx := context.Background()

	db, err := database.OpenSQLite(path)
	require.NoError(t, err)
	s, err := NewSQLiteStore(ctx, db)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, EventsCollection, []codec.Record{{"id": "e1", "name": "kept"}}))
	require.NoError(t, s.Close())

	db, err = database.OpenSQLite(path)
	require.NoError(t, err)
	s, err = NewSQLiteStore(ctx, db)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, EventsCollection)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0]["name"])
}
