package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"GITHUB_TOKEN",
	"LOG_LEVEL",
	"APP_ENV",
	"DB_PATH",
	"GITHUB_WAIT_ON_RATE_LIMIT",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

const (
	classicToken     = "ghp_" + "abcdefghijklmnopqrstuvwxyz0123456789"
	fineGrainedToken = "github_pat_" + "11ABCDEFG0123456789_abcdefghijklmnop"
)

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GITHUB_TOKEN", classicToken)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("GITHUB_WAIT_ON_RATE_LIMIT", "true")

	cfg, err := LoadFile("")

	require.NoError(t, err)
	assert.Equal(t, classicToken, cfg.GitHubToken)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, EnvProduction, cfg.AppEnv)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.True(t, cfg.GitHubWaitOnRateLimit)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := LoadFile("")

	require.NoError(t, err)
	assert.Equal(t, "", cfg.GitHubToken)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, "reviewdigest.db", cfg.DBPath)
	assert.False(t, cfg.GitHubWaitOnRateLimit)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "log level", key: "LOG_LEVEL", value: "verbose", wantErr: "LOG_LEVEL"},
		{name: "app env", key: "APP_ENV", value: "staging", wantErr: "APP_ENV"},
		{name: "rate limit flag", key: "GITHUB_WAIT_ON_RATE_LIMIT", value: "sometimes", wantErr: "parse environment"},
		{name: "empty db path", key: "DB_PATH", value: "  ", wantErr: "DB_PATH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadFile("")

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateConfigEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"GITHUB_TOKEN=" + classicToken,
		"LOG_LEVEL=warn",
		"DB_PATH=from-file.db",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Values already in the environment win over the file.
	t.Setenv("DB_PATH", "from-env.db")

	cfg, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, classicToken, cfg.GitHubToken)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-env.db", cfg.DBPath)
}

func TestLoad_MissingDotEnvFileIsIgnored(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.env"))

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidateGitHubToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "classic personal", token: classicToken},
		{name: "oauth", token: "gho_" + strings.Repeat("A", 36)},
		{name: "server to server", token: "ghs_" + strings.Repeat("9", 36)},
		{name: "fine grained", token: fineGrainedToken},
		{name: "missing", token: "", wantErr: true},
		{name: "classic too short", token: "ghp_abc", wantErr: true},
		{name: "unknown prefix", token: "ghx_" + strings.Repeat("a", 36), wantErr: true},
		{name: "fine grained too short", token: "github_pat_short", wantErr: true},
		{name: "bearer prefix", token: "Bearer " + classicToken, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{GitHubToken: tt.token}
			err := cfg.ValidateGitHubToken()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateGitHubToken_MissingIsSentinel(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.ValidateGitHubToken(), ErrMissingGitHubToken)
}
