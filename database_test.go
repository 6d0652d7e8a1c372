package lekodex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lekodex/lekodex/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.CatalogRepository())
		assert.NotNil(t, db.FactRepository())
		assert.NotNil(t, db.VectorRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingest driver", func(t *testing.T) {
		client, err := registry.NewClient(registry.DefaultConfig())
		require.NoError(t, err)

		driver, err := db.NewIngestDriver(client)
		require.NoError(t, err)
		require.NotNil(t, driver)
	})

	t.Run("can create enrich pipeline", func(t *testing.T) {
		pipeline, err := db.NewEnrichPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
	})

	t.Run("can create indexer", func(t *testing.T) {
		indexer, err := db.NewIndexer()
		require.NoError(t, err)
		require.NotNil(t, indexer)
	})

	t.Run("can create search gateway", func(t *testing.T) {
		gateway, err := db.NewGateway()
		require.NoError(t, err)
		require.NotNil(t, gateway)
	})
}
