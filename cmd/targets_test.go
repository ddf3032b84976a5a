package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTargets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTargets(t *testing.T) {
	path := writeTargets(t, `
domain: dataforseo.com
competitors:
  - ahrefs.com
  - semrush.com
`)

	tg, err := loadTargets(path)
	require.NoError(t, err)
	assert.Equal(t, "dataforseo.com", tg.Domain)
	assert.Equal(t, []string{"ahrefs.com", "semrush.com"}, tg.Competitors)
}

func TestLoadTargets_Missing(t *testing.T) {
	_, err := loadTargets(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read targets file")
}

func TestLoadTargets_Invalid(t *testing.T) {
	path := writeTargets(t, "domain: [unclosed")
	_, err := loadTargets(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse targets file")
}

func TestResolveTargets_FlagsOverrideFile(t *testing.T) {
	path := writeTargets(t, "domain: file.com\ncompetitors: [a.com, b.com]\n")

	tg, err := resolveTargets(path, "flag.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "flag.com", tg.Domain)
	assert.Equal(t, []string{"a.com", "b.com"}, tg.Competitors)

	tg, err = resolveTargets(path, "", []string{"c.com"})
	require.NoError(t, err)
	assert.Equal(t, "file.com", tg.Domain)
	assert.Equal(t, []string{"c.com"}, tg.Competitors)
}

func TestResolveTargets_FlagsOnly(t *testing.T) {
	tg, err := resolveTargets("", " dataforseo.com ", []string{"ahrefs.com"})
	require.NoError(t, err)
	assert.Equal(t, "dataforseo.com", tg.Domain)
	assert.Equal(t, []string{"ahrefs.com"}, tg.Competitors)
}

func TestResolveTargets_RequiresDomain(t *testing.T) {
	_, err := resolveTargets("", "  ", []string{"ahrefs.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain is required")
}
