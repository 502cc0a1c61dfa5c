package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"base_url": "http://127.0.0.1:5000",
		"flow": "minimal",
		"timeout_seconds": 15,
		"accept": "application/pdf,.docx",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://127.0.0.1:5000", cfg.BaseURL)
	assert.Equal(t, "minimal", cfg.Flow)
	assert.Equal(t, 15, cfg.TimeoutSeconds)
	assert.Equal(t, "application/pdf,.docx", cfg.Accept)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty is valid", Config{}, ""},
		{"defaults are valid", Defaults(), ""},
		{"bad url", Config{BaseURL: "localhost"}, "'base_url' must be an http(s) URL"},
		{"non-http url", Config{BaseURL: "ftp://example.com"}, "'base_url' must be an http(s) URL"},
		{"unknown flow", Config{Flow: "fancy"}, "'flow' must be one of [rich minimal]"},
		{"negative timeout", Config{TimeoutSeconds: -1}, "'timeout_seconds' must be non-negative"},
		{"huge timeout", Config{TimeoutSeconds: 3600}, "'timeout_seconds' must be at most 600"},
		{"bad port", Config{Port: 70000}, "'port' must be at most 65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config error")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Config{Flow: "fancy", Port: -1}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'flow'")
	assert.Contains(t, err.Error(), "'port'")
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, " http://parser.internal:5000 ")
	t.Setenv(EnvFlow, "minimal")
	t.Setenv(EnvTimeoutSeconds, "30")
	t.Setenv(EnvAccept, ".pdf")
	t.Setenv(EnvPort, "9090")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://parser.internal:5000", cfg.BaseURL)
	assert.Equal(t, "minimal", cfg.Flow)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, ".pdf", cfg.Accept)
	assert.Equal(t, 9090, cfg.Port)
}

func TestFromEnv_Unset(t *testing.T) {
	for _, key := range []string{EnvBaseURL, EnvFlow, EnvTimeoutSeconds, EnvAccept, EnvPort} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}

func TestFromEnv_InvalidNumbers(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvTimeoutSeconds, "soon")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTimeoutSeconds)

	t.Setenv(EnvTimeoutSeconds, "")
	t.Setenv(EnvPort, "eighty")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPort)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Defaults()

	partial := Config{
		BaseURL: "http://127.0.0.1:5000",
		Flow:    "minimal",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "http://127.0.0.1:5000", merged.BaseURL)
	assert.Equal(t, "minimal", merged.Flow)

	// Default values should fill in empty fields
	assert.Equal(t, 60, merged.TimeoutSeconds)
	assert.Equal(t, "application/pdf", merged.Accept)
	assert.Equal(t, 8080, merged.Port)
	assert.False(t, merged.Verbose)
}

func TestMergeWithDefaults_Layers(t *testing.T) {
	env := Config{BaseURL: "http://env:5000"}
	file := Config{BaseURL: "http://file:5000", TimeoutSeconds: 5, Verbose: true}

	merged := env.MergeWithDefaults(file)
	merged = merged.MergeWithDefaults(Defaults())

	assert.Equal(t, "http://env:5000", merged.BaseURL)
	assert.Equal(t, 5, merged.TimeoutSeconds)
	assert.Equal(t, "rich", merged.Flow)
	assert.True(t, merged.Verbose)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:5000"}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "http://localhost:5000", merged.BaseURL)
	assert.Empty(t, merged.Flow)
}

func TestTimeout(t *testing.T) {
	cfg := Config{TimeoutSeconds: 90}
	assert.Equal(t, 90*time.Second, cfg.Timeout())
}
