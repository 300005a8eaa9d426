package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Firebase      FirebaseConfig
	Auth          AuthConfig
	Gemini        GeminiConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// FirebaseConfig locates the identity-provider credential bundle
type FirebaseConfig struct {
	CredentialsPath string
	// ProjectID overrides the bundle's project_id; empty means use the bundle
	ProjectID string
}

// AuthConfig holds the trust-policy switches
type AuthConfig struct {
	// AllowUnverified enables decoding tokens without signature checks when no
	// credential bundle is loaded. Development only.
	AllowUnverified bool
	// MockTokensEnabled accepts tokens whose header segment is the test marker
	MockTokensEnabled bool
}

// GeminiConfig holds the generative model provider configuration
type GeminiConfig struct {
	APIKey  string
	Timeout time.Duration
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

const (
	defaultCredentialsPath = "serviceAccountKey.json"
	defaultAllowedOrigins  = "http://localhost:3000,http://localhost:5173"
)

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists (backend/.env when run from project root, .env when run from backend/)
	_ = godotenv.Load("backend/.env")
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", defaultCredentialsPath),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Auth: AuthConfig{
			AllowUnverified:   getEnvAsBool("ALLOW_UNVERIFIED_AUTH", false),
			MockTokensEnabled: getEnvAsBool("AUTH_MOCK_TOKENS_ENABLED", true),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", defaultAllowedOrigins),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	// The unverified fallback grants trust without proof; never in production
	if c.IsProduction() && c.Auth.AllowUnverified {
		return fmt.Errorf("ALLOW_UNVERIFIED_AUTH must not be enabled in production")
	}
	if c.IsProduction() && c.Auth.MockTokensEnabled {
		return fmt.Errorf("AUTH_MOCK_TOKENS_ENABLED must not be enabled in production")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin is required")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	switch c.Observability.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Observability.LogFormat)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, dropping empty entries
func getEnvAsList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
