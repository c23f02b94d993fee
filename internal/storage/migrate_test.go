package storage

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_indexes.sql":        {Data: []byte("SELECT 1")},
		"001_recent_uploads.sql": {Data: []byte("SELECT 1")},
		"README.md":              {Data: []byte("notes")},
		"archive/000_old.sql":    {Data: []byte("SELECT 1")},
	}

	pending, err := pendingMigrations(fsys, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_recent_uploads.sql", "002_indexes.sql"}, pending)

	pending, err = pendingMigrations(fsys, map[string]bool{"001_recent_uploads.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_indexes.sql"}, pending)
}

func TestEmbeddedMigrations(t *testing.T) {
	pending, err := pendingMigrations(Migrations(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "001_recent_uploads.sql", pending[0])
}

func TestPostgresRepositorySatisfiesRepository(t *testing.T) {
	var _ Repository = (*PostgresRepository)(nil)
	assert.Equal(t, DefaultRecentLimit, NewPostgresRepositoryFromPool(nil, 0).limit)
	assert.Equal(t, 20, NewPostgresRepositoryFromPool(nil, 20).limit)
}
