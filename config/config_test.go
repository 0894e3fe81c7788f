package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "cropadvisor")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := load(viper.New(), false)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, 5432, cfg.DatabasePort)
	assert.Equal(t, AuthProviderSupabase, cfg.AuthProvider)
	assert.Equal(t, AIProviderGateway, cfg.AIProvider)
	assert.Equal(t, "https://ai.gateway.lovable.dev/v1", cfg.AIBaseURL)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.AIModel)
	assert.Equal(t, 60, cfg.AITimeoutSeconds)
	assert.Equal(t, 1, cfg.AIMaxAttempts)
	assert.Equal(t, "*", cfg.AllowOrigins())
	assert.False(t, cfg.SchedulerEnabled)
}

func TestLoadGatewayKeyAlias(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOVABLE_API_KEY", "lovable-key")

	cfg, err := load(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, "lovable-key", cfg.AIAPIKey)

	t.Setenv("AI_API_KEY", "primary-key")
	cfg, err = load(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, "primary-key", cfg.AIAPIKey)
}

func TestLoadGeminiDefaultModel(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AI_PROVIDER", AIProviderGemini)

	cfg, err := load(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.AIModel)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown database driver",
			env:  map[string]string{"DB_DRIVER": "mongo"},
		},
		{
			name: "postgres without host",
			env:  map[string]string{"DB_HOST": "", "DATABASE_URL": ""},
		},
		{
			name: "relative supabase url",
			env:  map[string]string{"SUPABASE_URL": "project.supabase.co"},
		},
		{
			name: "oidc without client id",
			env: map[string]string{
				"AUTH_PROVIDER":   AuthProviderOIDC,
				"OIDC_ISSUER_URL": "https://issuer.example.com",
			},
		},
		{
			name: "unknown ai provider",
			env:  map[string]string{"AI_PROVIDER": "local"},
		},
		{
			name: "zero timeout",
			env:  map[string]string{"AI_TIMEOUT_SECONDS": "0"},
		},
		{
			name: "zero attempts",
			env:  map[string]string{"AI_MAX_ATTEMPTS": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := load(viper.New(), false)
			assert.Error(t, err)
		})
	}
}

func TestLoadSQLiteDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_PATH", "file::memory:")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")

	cfg, err := load(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, "file::memory:", cfg.DatabasePath)
}
