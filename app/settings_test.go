package app

import (
	"os"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FLEMISH_LOG_LEVEL", "DEBUG", "FLEMISH_JSON_LOGS", "FLEMISH_THEME"} {
		t.Setenv(key, "")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearEnv(t)
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, Dimensions{Width: 400, Height: 300}, s.Size)
	assert.True(t, s.Resizable)
	assert.Equal(t, ThemeDark, s.Theme)
}

func TestLoadSettingsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "flemish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
position: {x: 10, y: 20}
size: {width: 640, height: 480}
resizable: false
theme: light
font_size: 16
worker_threads: 3
`), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, &Point{X: 10, Y: 20}, s.Pos)
	assert.Equal(t, Dimensions{Width: 640, Height: 480}, s.Size)
	assert.False(t, s.Resizable)
	assert.Equal(t, ThemeLight, s.Theme)
	assert.Equal(t, float32(16), s.FontSize)
	assert.Equal(t, 3, s.WorkerThreads)
	assert.Equal(t, "info", s.LogLevel)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEBUG", "1")
	t.Setenv("FLEMISH_JSON_LOGS", "true")
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.JSONLogs)

	t.Setenv("FLEMISH_LOG_LEVEL", "warn")
	s, err = LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoadSettingsRejectsBadInput(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("size: [1, 2"), 0o644))
	_, err := LoadSettings(broken)
	assert.ErrorContains(t, err, "parse settings")

	badTheme := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(badTheme, []byte("theme: neon\n"), 0o644))
	_, err = LoadSettings(badTheme)
	assert.ErrorContains(t, err, "unknown theme")
}

func TestSettingsTheme(t *testing.T) {
	s := DefaultSettings()
	s.Theme = ThemeLight
	s.FontSize = 18
	th := newSettingsTheme(s)

	base := theme.DefaultTheme()
	assert.Equal(t, base.Color(theme.ColorNameBackground, theme.VariantLight), th.Color(theme.ColorNameBackground, theme.VariantDark))
	assert.Equal(t, float32(18), th.Size(theme.SizeNameText))
	assert.Equal(t, base.Size(theme.SizeNamePadding), th.Size(theme.SizeNamePadding))
}
