package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "http:\n  address: \":9090\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Asia/Kolkata", cfg.Display.Timezone)
	assert.Equal(t, FixturesEmbedded, cfg.Fixtures.Source)
	assert.Equal(t, 3000, cfg.Search.MinFallbackPrice)
	assert.Equal(t, 6000, cfg.Search.MaxFallbackPrice)
	assert.Equal(t, 30, cfg.Search.ResultsTTLMinutes)
	assert.True(t, cfg.Search.MaskErrors())
	assert.Equal(t, "Asia/Kolkata", cfg.Display.Location().String())
}

func TestLoadConfig_MaskingDisabled(t *testing.T) {
	path := writeConfig(t, "search:\n  mask_upstream_errors: false\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.Search.MaskErrors())
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"log level":      "log:\n  level: loud\n",
		"log format":     "log:\n  format: xml\n",
		"timezone":       "display:\n  timezone: Mars/Olympus\n",
		"fixture source": "fixtures:\n  source: s3\n",
		"price range":    "search:\n  min_fallback_price: 6000\n  max_fallback_price: 3000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "flights", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=flights sslmode=disable", d.DSN())
}
