package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile_ZeroValueConfig(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Rules)
	assert.Empty(t, cfg.HistoryDB)
	assert.False(t, cfg.TreatWarningsAsErrors)
}

func TestLoad_ReadsRefitYml(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`rules:
  - trailingspace
  - finalnewline
includeExts:
  - .go
excludeDirs:
  - vendor
historyDB: .refit/history
treatWarningsAsErrors: true
verbose: true
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refit.yml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"trailingspace", "finalnewline"}, cfg.Rules)
	assert.Equal(t, []string{".go"}, cfg.IncludeExts)
	assert.Equal(t, []string{"vendor"}, cfg.ExcludeDirs)
	assert.Equal(t, ".refit/history", cfg.HistoryDB)
	assert.True(t, cfg.TreatWarningsAsErrors)
	assert.True(t, cfg.Verbose)
}

func TestLoad_FallsBackToYamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refit.yaml"), []byte("verbose: true\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
}

func TestLoad_MalformedYAML_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refit.yml"), []byte(":\n  - ["), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}
