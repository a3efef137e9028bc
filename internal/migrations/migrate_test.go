package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_plinko_tables.up.sql",
		"000001_create_plinko_tables.down.sql",
		"000012_add_index.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "000099_dir"), 0o700))

	assert.Equal(t, int64(12), findLatestMigrationVersion(dir))
	assert.Equal(t, int64(0), findLatestMigrationVersion(filepath.Join(dir, "missing")))
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	assert.Error(t, RunMigrations("", DefaultDir))
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	assert.Equal(t, int64(1), findLatestMigrationVersion(filepath.Join("..", "..", DefaultDir)))
}
