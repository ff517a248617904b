package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresOpenWeatherKey(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "http:\n  address: \":9090\"\n"))
	t.Setenv("OPENWEATHER_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "openWeather.apiKey")
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9090"
  rateLimit:
    enabled: false
llm:
  model: "llama3-70b-8192"
openWeather:
  apiKey: "from-file"
  timeout: 3s
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OPENWEATHER_API_KEY", "from-env")
	t.Setenv("LLM_TEMPERATURE", "0.7")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.False(t, cfg.HTTP.RateLimit.Enabled)
	require.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
	require.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	require.Equal(t, "from-env", cfg.OpenWeather.APIKey)
	require.Equal(t, 3*time.Second, cfg.OpenWeather.Timeout)
	require.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	require.Equal(t, 1, cfg.OpenWeather.GeocodeLimit)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
}

func TestValidateOptionalBackends(t *testing.T) {
	cfg := defaultConfig()
	cfg.OpenWeather.APIKey = "key"
	require.NoError(t, cfg.Validate())

	cfg.Trending.Enabled = true
	require.Error(t, cfg.Validate())
	cfg.Trending.Addr = "localhost:6379"
	require.NoError(t, cfg.Validate())

	cfg.Archive.Enabled = true
	cfg.Archive.Endpoint = ""
	require.Error(t, cfg.Validate())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
