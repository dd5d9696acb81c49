package odbc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSourcesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  primary: "Driver=FreeTDS;SERVER=db1;PORT=1433;DATABASE=app"
  reporting: "Driver=FreeTDS;SERVER=db2;PORT=1433;DATABASE=bi"
`)

	sources, err := LoadSources(path)
	require.NoError(t, err)
	assert.Len(t, sources, 2)

	connStr, err := sources.Resolve("primary")
	require.NoError(t, err)
	assert.Equal(t, "Driver=FreeTDS;SERVER=db1;PORT=1433;DATABASE=app", connStr)
}

func TestLoadSources_MissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadSources_MalformedYAML(t *testing.T) {
	path := writeSourcesFile(t, "sources: [not, a, map")
	_, err := LoadSources(path)
	require.Error(t, err)
}

func TestLoadSources_EmptyRegistry(t *testing.T) {
	path := writeSourcesFile(t, "sources: {}\n")
	_, err := LoadSources(path)
	require.Error(t, err)
}

func TestLoadSources_EmptyConnectionString(t *testing.T) {
	path := writeSourcesFile(t, `
sources:
  primary: ""
`)
	_, err := LoadSources(path)
	require.Error(t, err)
}

func TestSources_ResolveUnknownAlias(t *testing.T) {
	sources := Sources{"primary": "DSN=a"}
	_, err := sources.Resolve("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}
