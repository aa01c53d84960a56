package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestFromEnvDefaults(t *testing.T) {
	unsetEnv(t, "JAJAERO_API_URL", "JAJAERO_TIMEOUT_MS", "JAJAERO_CATALOG_FILE", "JAJAERO_LOG_LEVEL", "JAJAERO_CONFIG_PATH", "JAJAERO_FONT_FILE")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultTimeoutMs, cfg.TimeoutMs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.CatalogFile)
	assert.Empty(t, cfg.FontFile)
}

func TestFromEnvEmptyURL(t *testing.T) {
	t.Setenv("JAJAERO_API_URL", "")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JAJAERO_API_URL", "https://predict.example.com/api/")
	t.Setenv("JAJAERO_TIMEOUT_MS", "5000")
	t.Setenv("JAJAERO_CATALOG_FILE", " /data/catalog.csv ")
	t.Setenv("JAJAERO_LOG_LEVEL", "debug")
	t.Setenv("JAJAERO_FONT_FILE", " /usr/share/fonts/NanumGothic.ttf\n")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://predict.example.com/api", cfg.APIBaseURL, "trailing slash should be trimmed")
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "/data/catalog.csv", cfg.CatalogFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/usr/share/fonts/NanumGothic.ttf", cfg.FontFile)
}

func TestFromEnvBadTimeoutFallsBack(t *testing.T) {
	t.Setenv("JAJAERO_API_URL", "http://localhost:5000/api")
	t.Setenv("JAJAERO_TIMEOUT_MS", "soon")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeoutMs, cfg.TimeoutMs)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:5000/api", false},
		{"https://example.com", false},
		{"ftp://example.com", true},
		{"localhost:5000", true},
		{"http://", true},
	}
	for _, tc := range cases {
		err := Config{APIBaseURL: tc.url}.Validate()
		if tc.wantErr {
			assert.Error(t, err, tc.url)
		} else {
			assert.NoError(t, err, tc.url)
		}
	}
}

func TestTimeoutNonPositive(t *testing.T) {
	assert.Equal(t, time.Duration(DefaultTimeoutMs)*time.Millisecond, Config{TimeoutMs: 0}.Timeout())
}
