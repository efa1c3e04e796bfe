package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "pricebot", cfg.Bot.Name)
	require.True(t, cfg.Bot.ShowURLs)
	require.Equal(t, []string{"steam", "gog", "humble"}, cfg.Bot.Priority)
	require.True(t, cfg.Sources.Steam.Enabled)
	require.NotEmpty(t, cfg.Sources.Steam.AppListURL)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  addr: ":9000"
bot:
  name: dealbot
  show_urls: false
  source_timeout_ms: 2500
  priority: [gog, steam]
sources:
  humble:
    enabled: false
templates:
  not_found: "nope: {{.Query}}"
`))
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, "dealbot", cfg.Bot.Name)
	require.False(t, cfg.Bot.ShowURLs)
	require.Equal(t, []string{"gog", "steam"}, cfg.Bot.Priority)
	require.False(t, cfg.Sources.Humble.Enabled)
	require.Equal(t, "nope: {{.Query}}", cfg.Templates.NotFound)
	require.Equal(t, 2500, cfg.Bot.SourceTimeoutMS)
}

func TestLoad_RejectsAllSourcesDisabled(t *testing.T) {
	_, err := Load(writeConfig(t, `
sources:
  steam:
    enabled: false
  gog:
    enabled: false
  humble:
    enabled: false
`))
	require.Error(t, err)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	_, err := Load(writeConfig(t, `
bot:
  source_timeout_ms: 0
`))
	require.Error(t, err)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Config{}
	cfg.Bot.SourceTimeoutMS = 1500
	cfg.Server.RequestTimeoutMS = 2000
	require.Equal(t, int64(1500), cfg.Bot.SourceTimeout().Milliseconds())
	require.Equal(t, int64(2000), cfg.Server.RequestTimeout().Milliseconds())
}
