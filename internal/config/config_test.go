package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: myhost
  port: 5433
  username: loader
  database: imdb
  sslmode: require
  auth_method: aws
  aws_region: eu-west-1
  connect_retries: 3

source:
  path: data/imdb_master.csv
  encoding: windows-1252

benchmark:
  table: reviews_copy
  strategy: bulk
  pagination: keyset
  insert_method: copy
  page_size: 500
  batch_sentinel: walked
  bulk_sentinel: swept

timeout: 10m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "myhost", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "imdb", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "eu-west-1", cfg.Connection.AWSRegion)
	assert.Equal(t, 3, cfg.Connection.ConnectRetries)
	assert.Equal(t, "data/imdb_master.csv", cfg.Source.Path)
	assert.Equal(t, "windows-1252", cfg.Source.Encoding)
	assert.Equal(t, "reviews_copy", cfg.Benchmark.Table)
	assert.Equal(t, "bulk", cfg.Benchmark.Strategy)
	assert.Equal(t, "keyset", cfg.Benchmark.Pagination)
	assert.Equal(t, "copy", cfg.Benchmark.InsertMethod)
	assert.Equal(t, 500, cfg.Benchmark.PageSize)
	assert.Equal(t, "walked", cfg.Benchmark.BatchSentinel)
	assert.Equal(t, "swept", cfg.Benchmark.BulkSentinel)
	assert.Equal(t, "10m", cfg.Timeout)
}

func TestLoad_MinimalYAML(t *testing.T) {
	dir := t.TempDir()
	content := `benchmark:
  page_size: 250
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.Connection.Host)
	assert.Equal(t, 0, cfg.Connection.Port)
	assert.Equal(t, 250, cfg.Benchmark.PageSize)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  path: other.csv\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "other.csv", cfg.Source.Path)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, ProjectConfig{}, *cfg)
}
