package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/inkwell-test"},
		Server: ServerConfig{Port: "8080"},
		Auth: AuthConfig{
			AccessTokenDuration: 30 * time.Minute,
			RateRPS:             1,
			RateBurst:           5,
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	for _, env := range []string{"development", "staging", "production"} {
		cfg := validTestConfig()
		cfg.App.Environment = env
		assert.NoError(t, cfg.Validate(), "environment %s", env)
	}

	cfg := validTestConfig()
	cfg.App.Environment = "testing"
	assert.Error(t, cfg.Validate())
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validTestConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %s", level)
	}

	cfg := validTestConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_TokenDuration(t *testing.T) {
	cfg := validTestConfig()
	cfg.Auth.AccessTokenDuration = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RateLimits(t *testing.T) {
	cfg := validTestConfig()
	cfg.Auth.RateRPS = 0
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.Auth.RateBurst = -1
	assert.Error(t, cfg.Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := validTestConfig()

	assert.Equal(t, filepath.Join("/tmp/inkwell-test", "uploads"), cfg.UploadsPath())
	assert.Equal(t, filepath.Join("/tmp/inkwell-test", "db"), cfg.DatabasePath())
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Inkwell", "data"), cfg.Data.BasePath)
}

func TestExpandDataPath_Tilde(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "~/books"}}
	require.NoError(t, cfg.expandDataPath())

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), cfg.Data.BasePath)
}

func TestExpandDataPath_Absolute(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "/var/lib/inkwell"}}
	require.NoError(t, cfg.expandDataPath())
	assert.Equal(t, "/var/lib/inkwell", cfg.Data.BasePath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("INKWELL_TEST_KEY", "from-env")

	// Flag beats env beats default.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "INKWELL_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "INKWELL_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "INKWELL_TEST_MISSING", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	t.Setenv("INKWELL_TEST_INT", "42")

	assert.Equal(t, 42, getIntConfigValue("", "INKWELL_TEST_INT", 7))
	assert.Equal(t, 7, getIntConfigValue("", "INKWELL_TEST_INT_MISSING", 7))

	t.Setenv("INKWELL_TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, getIntConfigValue("", "INKWELL_TEST_INT_BAD", 7))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	content := strings.Join([]string{
		"# comment",
		"",
		`INKWELL_ENVFILE_A=hello`,
		`INKWELL_ENVFILE_B="quoted value"`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("INKWELL_ENVFILE_A")
		os.Unsetenv("INKWELL_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("INKWELL_ENVFILE_A"))
	assert.Equal(t, "quoted value", os.Getenv("INKWELL_ENVFILE_B"))
}

func TestLoadEnvFile_EnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("INKWELL_ENVFILE_C=from-file\n"), 0o600))

	t.Setenv("INKWELL_ENVFILE_C", "from-env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("INKWELL_ENVFILE_C"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("no equals sign here\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}
