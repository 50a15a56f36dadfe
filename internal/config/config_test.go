package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(env string) *Config {
	return &Config{
		Env:             env,
		DBSSLMode:       "require",
		JWTSecret:       "secure-secret-at-least-32-chars-long",
		DBPassword:      "secure-password",
		Port:            "8080",
		MaxUploadSizeMB: 10,
		RedisURL:        "redis://localhost:6379",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with empty SSL mode", "prod", "", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig(tt.env)
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig("production")
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig("production")
	c.DBPassword = "password"
	assert.Error(t, c.Validate())

	c = validConfig("production")
	c.DevBootstrapRoot = true
	assert.Error(t, c.Validate())

	c = validConfig("development")
	c.MaxUploadSizeMB = 0
	assert.Error(t, c.Validate())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 8, c.DispatchWorkers)
	assert.Equal(t, 20, c.MaxUploadSizeMB)
}

func TestConfig_Schema(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		env         string
		destructive bool
		wantSQL     bool
		wantAuto    bool
		wantErr     bool
	}{
		{"hybrid dev", "", "development", false, true, true, false},
		{"hybrid prod", "hybrid", "production", false, true, false, false},
		{"hybrid staging", "HYBRID", "staging", false, true, false, false},
		{"sql only", "sql", "development", false, true, false, false},
		{"auto dev", "auto", "development", false, false, true, false},
		{"auto prod refused", "auto", "production", false, false, false, true},
		{"auto prod allowed", "auto", "production", true, false, true, false},
		{"unknown mode", "magic", "development", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{DBSchemaMode: tt.mode, Env: tt.env, DBAutoMigrateAllowDestructive: tt.destructive}
			policy, err := cfg.Schema()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, policy.RunSQL)
			assert.Equal(t, tt.wantAuto, policy.RunAuto)
		})
	}
}

func TestConfig_ValidateRejectsSchemaMode(t *testing.T) {
	cfg := validConfig("production")
	cfg.DBSchemaMode = "auto"
	assert.ErrorContains(t, cfg.Validate(), "DB_SCHEMA_MODE")

	cfg.DBSchemaMode = "sql"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsProdLike())
}
