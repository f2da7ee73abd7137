package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"
)

func setupConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestEnsureConfig(t *testing.T) {
	t.Run("creates settings file on first run", func(t *testing.T) {
		setupConfigEnv(t)
		cfg, err := ensureConfig()
		require.NoError(t, err)
		require.FileExists(t, cfg.SettingsPath)
		require.Equal(t, "gpt-4o-mini", cfg.Model)
		require.Equal(t, "openai", cfg.API)
		require.Equal(t, "auto", cfg.Theme)
		require.NotEmpty(t, cfg.SystemPrompt)
		require.NotEmpty(t, cfg.DBPath)
		require.NotEmpty(t, cfg.ScreenshotsDir)
		require.NotEmpty(t, cfg.CachePath)
	})

	t.Run("resolves model aliases", func(t *testing.T) {
		setupConfigEnv(t)
		cfg, err := ensureConfig()
		require.NoError(t, err)
		mod, ok := cfg.Models["mini"]
		require.True(t, ok)
		require.Equal(t, "gpt-4o-mini", mod.Name)
		require.Equal(t, "openai", mod.API)
		require.Equal(t, "gpt-4o", mod.Fallback)
	})

	t.Run("keeps an existing settings file", func(t *testing.T) {
		setupConfigEnv(t)
		first, err := ensureConfig()
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(
			first.SettingsPath,
			[]byte("default-model: my-model\ntheme: dark\n"),
			0o600,
		))
		cfg, err := ensureConfig()
		require.NoError(t, err)
		require.Equal(t, "my-model", cfg.Model)
		require.Equal(t, "dark", cfg.Theme)
	})

	t.Run("environment overrides the settings file", func(t *testing.T) {
		setupConfigEnv(t)
		dbPath := filepath.Join(t.TempDir(), "custom.db")
		t.Setenv("OPENAI_MODEL", "gpt-x")
		t.Setenv("SYSTEM_PROMPT", "be nice")
		t.Setenv("TEMPERATURE", "1.5")
		t.Setenv("MAX_TOKENS", "256")
		t.Setenv("DEBUG_HOTKEYS", "true")
		t.Setenv("DB_PATH", dbPath)
		t.Setenv("APP_HOTKEY", "ctrl+shift+space")

		cfg, err := ensureConfig()
		require.NoError(t, err)
		require.Equal(t, "gpt-x", cfg.Model)
		require.Equal(t, "be nice", cfg.SystemPrompt)
		require.InDelta(t, 1.5, cfg.Temperature, 0.0001)
		require.Equal(t, int64(256), cfg.MaxTokens)
		require.True(t, cfg.DebugHotkeys)
		require.Equal(t, dbPath, cfg.DBPath)
		require.Equal(t, "ctrl+shift+space", cfg.AppHotkey)
	})

	t.Run("invalid theme", func(t *testing.T) {
		setupConfigEnv(t)
		t.Setenv("THEME", "solarized")
		_, err := ensureConfig()
		require.Error(t, err)
	})

	t.Run("invalid hotkey", func(t *testing.T) {
		setupConfigEnv(t)
		t.Setenv("SCREENSHOT_HOTKEY", "bogus+x")
		_, err := ensureConfig()
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	for name, tt := range map[string]struct {
		cfg Config
		ok  bool
	}{
		"zero value":        {Config{}, true},
		"valid":             {Config{Temperature: 0.7, TopP: 1, Theme: "dark", AppHotkey: "ctrl+r"}, true},
		"temp too low":      {Config{Temperature: -0.1}, false},
		"temp too high":     {Config{Temperature: 2.1}, false},
		"topp too high":     {Config{TopP: 1.1}, false},
		"bad theme":         {Config{Theme: "sepia"}, false},
		"bad app hotkey":    {Config{AppHotkey: "bogus+x"}, false},
		"bad shot hotkey":   {Config{ScreenshotHotkey: "+"}, false},
		"hotkeys optional":  {Config{AppHotkey: "", ScreenshotHotkey: ""}, true},
		"modifier-less key": {Config{AppHotkey: "f12"}, true},
	} {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
