package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "Main", c.Window.Title)
	assert.Equal(t, uint32(1200), c.Window.Width)
	assert.Equal(t, uint32(900), c.Window.Height)
	assert.True(t, c.Window.VSync)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "app.log", c.Log.File)
	assert.Equal(t, "dark", c.Theme)
	assert.Equal(t, 1<<16, c.Profiler.Capacity)

	assert.Equal(t, "app.log", c.Logging().File)
}

func TestLoadFlagsOverride(t *testing.T) {
	c, err := Load([]string{"--title", "Sandbox", "--width", "640", "--vsync=false", "--theme", "light", "--dev"})
	require.NoError(t, err)

	assert.Equal(t, "Sandbox", c.Window.Title)
	assert.Equal(t, uint32(640), c.Window.Width)
	assert.Equal(t, uint32(900), c.Window.Height)
	assert.False(t, c.Window.VSync)
	assert.Equal(t, "light", c.Theme)
	assert.True(t, c.Log.Development)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framelab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  title: From File
  height: 480
log:
  level: debug
`), 0o644))
	t.Setenv("FRAMELAB_CONFIG", path)
	t.Setenv("FRAMELAB_WINDOW_HEIGHT", "720")

	c, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "From File", c.Window.Title)
	assert.Equal(t, uint32(720), c.Window.Height)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load([]string{"--theme", "neon"})
	assert.ErrorContains(t, err, "unknown theme")

	_, err = Load([]string{"--log-level", "chatty"})
	assert.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	_, err := Load([]string{"--help"})
	assert.ErrorIs(t, err, ErrHelp)
}

func TestValidateZeroSize(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	c.Window.Width = 0
	assert.ErrorContains(t, c.Validate(), "must be non-zero")
}
