package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteKeyValue(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	_, err = db.GetValue(ctx, "predict.history.v1")
	assert.ErrorIs(t, err, ErrNoValue)

	require.NoError(t, db.PutValue(ctx, "predict.history.v1", "[]"))
	require.NoError(t, db.PutValue(ctx, "predict.history.v1", `[{"at":1}]`))

	value, err := db.GetValue(ctx, "predict.history.v1")
	require.NoError(t, err)
	assert.Equal(t, `[{"at":1}]`, value)

	require.NoError(t, db.DeleteValue(ctx, "predict.history.v1"))
	require.NoError(t, db.DeleteValue(ctx, "predict.history.v1"))
	_, err = db.GetValue(ctx, "predict.history.v1")
	assert.ErrorIs(t, err, ErrNoValue)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.PutValue(ctx, "k", "v"))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	value, err := db.GetValue(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}
