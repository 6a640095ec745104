package persistence

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/desk?sslmode=disable", migrationURL("postgres://u:p@db:5432/desk?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/desk", migrationURL("postgresql://u@db/desk"))
	assert.Equal(t, "pgx5://already", migrationURL("pgx5://already"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["0001_init.up.sql"])
	assert.True(t, names["0001_init.down.sql"])
}
