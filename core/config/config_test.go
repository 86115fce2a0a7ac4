package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.False(t, cfg.Scan.ShowHidden)
	assert.Empty(t, cfg.Scan.ExcludePatterns)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Equal(t, 16, cfg.Drawer.ExpansionMemorySize)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "drawer.yaml")
	data := `
scan:
  show_hidden: true
  exclude_patterns:
    - "*.log"
watch:
  debounce: 250ms
drawer:
  expansion_memory_size: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Scan.ShowHidden)
	assert.Equal(t, []string{"*.log"}, cfg.Scan.ExcludePatterns)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Equal(t, 4, cfg.Drawer.ExpansionMemorySize)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "drawer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  show_hidden: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Scan.ShowHidden)
	assert.Equal(t, 100*time.Millisecond, cfg.Watch.DebounceDuration())
	assert.Equal(t, 16, cfg.Drawer.ExpansionMemorySize)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "drawer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDebounceDuration_Fallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100*time.Millisecond, WatchConfig{}.DebounceDuration())
	assert.Equal(t, 100*time.Millisecond, WatchConfig{Debounce: "junk"}.DebounceDuration())
	assert.Equal(t, 100*time.Millisecond, WatchConfig{Debounce: "-5ms"}.DebounceDuration())
	assert.Equal(t, time.Second, WatchConfig{Debounce: "1s"}.DebounceDuration())
}
