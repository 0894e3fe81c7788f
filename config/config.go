package config

import (
	"net/url"
	"strings"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	AuthProviderSupabase = "supabase"
	AuthProviderOIDC     = "oidc"

	AIProviderGateway = "gateway"
	AIProviderGemini  = "gemini"
)

type Config struct {
	GeneralVersion         string `mapstructure:"GENERAL_VERSION"`
	Environment            string `mapstructure:"ENVIRONMENT"`
	ServerPort             int    `mapstructure:"SERVER_PORT"`
	DatabaseDriver         string `mapstructure:"DB_DRIVER"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	DatabaseHost           string `mapstructure:"DB_HOST"`
	DatabasePort           int    `mapstructure:"DB_PORT"`
	DatabaseName           string `mapstructure:"DB_NAME"`
	DatabaseUser           string `mapstructure:"DB_USER"`
	DatabasePassword       string `mapstructure:"DB_PASSWORD"`
	DatabaseSSLMode        string `mapstructure:"DB_SSL_MODE"`
	DatabasePath           string `mapstructure:"DB_PATH"`
	DatabaseCacheAddress   string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort      int    `mapstructure:"DB_CACHE_PORT"`
	CorsAllowOrigins       string `mapstructure:"CORS_ALLOW_ORIGINS"`
	AuthProvider           string `mapstructure:"AUTH_PROVIDER"`
	SupabaseURL            string `mapstructure:"SUPABASE_URL"`
	SupabasePublishableKey string `mapstructure:"SUPABASE_PUBLISHABLE_KEY"`
	OIDCIssuerURL          string `mapstructure:"OIDC_ISSUER_URL"`
	OIDCClientID           string `mapstructure:"OIDC_CLIENT_ID"`
	AIProvider             string `mapstructure:"AI_PROVIDER"`
	AIAPIKey               string `mapstructure:"AI_API_KEY"`
	AIBaseURL              string `mapstructure:"AI_BASE_URL"`
	AIModel                string `mapstructure:"AI_MODEL"`
	AITimeoutSeconds       int    `mapstructure:"AI_TIMEOUT_SECONDS"`
	AIMaxAttempts          int    `mapstructure:"AI_MAX_ATTEMPTS"`
	SchedulerEnabled       bool   `mapstructure:"SCHEDULER_ENABLED"`
}

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_DRIVER", "DATABASE_URL", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSL_MODE", "DB_PATH",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT",
	"CORS_ALLOW_ORIGINS",
	"AUTH_PROVIDER", "SUPABASE_URL", "SUPABASE_PUBLISHABLE_KEY", "OIDC_ISSUER_URL", "OIDC_CLIENT_ID",
	"AI_PROVIDER", "AI_API_KEY", "AI_BASE_URL", "AI_MODEL", "AI_TIMEOUT_SECONDS", "AI_MAX_ATTEMPTS",
	"SCHEDULER_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_PATH", "cropadvisor.db")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("AUTH_PROVIDER", AuthProviderSupabase)
	v.SetDefault("AI_PROVIDER", AIProviderGateway)
	v.SetDefault("AI_BASE_URL", "https://ai.gateway.lovable.dev/v1")
	v.SetDefault("AI_TIMEOUT_SECONDS", 60)
	v.SetDefault("AI_MAX_ATTEMPTS", 1)
	v.SetDefault("SCHEDULER_ENABLED", false)
}

func New() (Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, readFiles bool) (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	v.AutomaticEnv()
	setDefaults(v)

	for _, env := range envVars {
		if err := v.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}
	// The hosted deployment names the completion key after its gateway.
	if err := v.BindEnv("AI_API_KEY", "AI_API_KEY", "LOVABLE_API_KEY"); err != nil {
		log.Warn("Failed to bind environment variable", "env", "AI_API_KEY", "error", err)
	}

	if readFiles && !v.IsSet("DB_HOST") && !v.IsSet("DATABASE_URL") {
		log.Info("Environment variables not found, attempting to load from files")

		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		v.SetConfigFile(".env.local")
		if err := v.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if config.AIModel == "" {
		config.AIModel = defaultModel(config.AIProvider)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"dbDriver", config.DatabaseDriver,
		"authProvider", config.AuthProvider,
		"aiProvider", config.AIProvider,
		"aiModel", config.AIModel,
	)
	return config, nil
}

func defaultModel(provider string) string {
	if provider == AIProviderGemini {
		return "gemini-2.5-flash"
	}
	return "google/gemini-2.5-flash"
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error("Fatal error: invalid server port", "port", config.ServerPort)
	}

	switch config.DatabaseDriver {
	case DriverPostgres:
		if config.DatabaseURL == "" && (config.DatabaseHost == "" || config.DatabaseName == "") {
			return log.ErrMsg("Fatal error: DATABASE_URL or DB_HOST and DB_NAME are required for postgres")
		}
	case DriverSQLite:
		if config.DatabasePath == "" {
			return log.ErrMsg("Fatal error: DB_PATH is required for sqlite")
		}
	default:
		return log.Error("Fatal error: unsupported DB_DRIVER", "driver", config.DatabaseDriver)
	}

	switch config.AuthProvider {
	case AuthProviderSupabase:
		if !isHTTPURL(config.SupabaseURL) {
			return log.ErrMsg("Fatal error: SUPABASE_URL must be an absolute http(s) URL")
		}
	case AuthProviderOIDC:
		if !isHTTPURL(config.OIDCIssuerURL) {
			return log.ErrMsg("Fatal error: OIDC_ISSUER_URL must be an absolute http(s) URL")
		}
		if config.OIDCClientID == "" {
			return log.ErrMsg("Fatal error: OIDC_CLIENT_ID required when AUTH_PROVIDER is oidc")
		}
	default:
		return log.Error("Fatal error: unsupported AUTH_PROVIDER", "provider", config.AuthProvider)
	}

	switch config.AIProvider {
	case AIProviderGateway:
		if !isHTTPURL(config.AIBaseURL) {
			return log.ErrMsg("Fatal error: AI_BASE_URL must be an absolute http(s) URL")
		}
	case AIProviderGemini:
	default:
		return log.Error("Fatal error: unsupported AI_PROVIDER", "provider", config.AIProvider)
	}

	if config.AITimeoutSeconds <= 0 {
		return log.Error("Fatal error: AI_TIMEOUT_SECONDS must be positive", "timeout", config.AITimeoutSeconds)
	}
	if config.AIMaxAttempts <= 0 {
		return log.Error("Fatal error: AI_MAX_ATTEMPTS must be positive", "attempts", config.AIMaxAttempts)
	}

	// A missing completion key is reported per request so the history
	// endpoints stay available.
	if config.AIAPIKey == "" {
		log.Warn("AI_API_KEY is not set, recommendation requests will fail")
	}

	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// AllowOrigins normalizes the comma separated origin list for the CORS middleware.
func (c Config) AllowOrigins() string {
	origins := strings.TrimSpace(c.CorsAllowOrigins)
	if origins == "" {
		return "*"
	}
	return origins
}
