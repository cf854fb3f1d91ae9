package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE sync_ledger (id INTEGER PRIMARY KEY, primary_event_id TEXT, signature TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "sync_ledger")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["primary_event_id"])

	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE sync_ledger (id INTEGER PRIMARY KEY, Signature TEXT)").Error)

	missing, err := MissingColumns(db, "sync_ledger", []string{"id", "signature", "last_checked"})
	require.NoError(t, err)
	assert.Equal(t, []string{"last_checked"}, missing)
}
