package db

import (
	"path/filepath"
	"testing"

	"study-assistant/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector_UnknownDriver(t *testing.T) {
	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestDialector_Names(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres"} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, Host: "localhost", Port: 1})
		require.NoError(t, err)
		assert.Equal(t, driver, d.Name())
	}
}

func TestInitDB_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "study.db")

	db, err := InitDB(config.DatabaseConfig{Driver: "sqlite", Database: path})
	require.NoError(t, err)
	assert.Same(t, db, GetDB())
	assert.NoError(t, HealthCheck())
	assert.FileExists(t, path)

	require.NoError(t, CloseDB())
	DB = nil
	assert.Error(t, HealthCheck())
}
