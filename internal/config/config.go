// Package config provides layered configuration for the QuickThoughts server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment represents the deployment environment
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config holds all configuration values
type Config struct {
	Environment    Environment    `yaml:"environment" validate:"oneof=development staging production"`
	Server         Server         `yaml:"server"`
	AI             AI             `yaml:"ai"`
	Supabase       Supabase       `yaml:"supabase"`
	Classification Classification `yaml:"classification"`
	Capture        Capture        `yaml:"capture"`
	Logging        Logging        `yaml:"logging"`
	Metrics        Metrics        `yaml:"metrics"`
	Tracing        Tracing        `yaml:"tracing"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker"`
	CORS           CORS           `yaml:"cors"`

	// LoadedFrom lists the sources applied, lowest priority first.
	LoadedFrom []string `yaml:"-"`
}

// Server configures the HTTP listener.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" validate:"gt=0"`
}

// Address returns host:port for the listener.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AI configures the generative model used for transcription.
type AI struct {
	Provider    string        `yaml:"provider" validate:"oneof=gemini mock"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model" validate:"required"`
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	Temperature float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
}

// Supabase configures the backend-as-a-service.
type Supabase struct {
	URL            string `yaml:"url"`
	AnonKey        string `yaml:"anon_key"`
	ServiceRoleKey string `yaml:"service_role_key"`
	JWTSecret      string `yaml:"jwt_secret"`
}

// Key returns the key the server uses for store calls.
func (s Supabase) Key() string {
	if s.ServiceRoleKey != "" {
		return s.ServiceRoleKey
	}
	return s.AnonKey
}

// Classification configures the folder constraint.
type Classification struct {
	FallbackFolder string   `yaml:"fallback_folder" validate:"required"`
	MaxThoughts    int      `yaml:"max_thoughts" validate:"min=1,max=10"`
	DefaultFolders []string `yaml:"default_folders"`
}

// Capture configures the recording client.
type Capture struct {
	MaxDuration time.Duration `yaml:"max_duration" validate:"gt=0"`
	SampleRate  int           `yaml:"sample_rate" validate:"gt=0"`
	Channels    int           `yaml:"channels" validate:"min=1,max=2"`
}

// Logging configures zap.
type Logging struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// CircuitBreaker configures the breakers around the AI provider and AI route.
type CircuitBreaker struct {
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests"`
}

// CORS configures allowed browser origins.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  75 * time.Second,
			MaxUploadBytes:  25 << 20,
		},
		AI: AI{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			BaseURL:     "https://generativelanguage.googleapis.com",
			Timeout:     60 * time.Second,
			Temperature: 0.2,
		},
		Classification: Classification{
			FallbackFolder: "Unsorted",
			MaxThoughts:    10,
			DefaultFolders: []string{"Ideas", "Todo", "School", "Memories", "Work", "Family"},
		},
		Capture: Capture{
			MaxDuration: 2 * time.Minute,
			SampleRate:  16000,
			Channels:    1,
		},
		Logging: Logging{Level: "info", Format: "console"},
		Metrics: Metrics{Enabled: true, Path: "/metrics", Namespace: "quickthoughts"},
		Tracing: Tracing{ServiceName: "quickthoughts-api"},
		CircuitBreaker: CircuitBreaker{
			MaxRequests:      3,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
		CORS: CORS{AllowedOrigins: []string{"*"}},
	}
}

// applyEnvironmentDefaults adjusts values that depend on the environment.
func (c *Config) applyEnvironmentDefaults() {
	if c.Environment == Production {
		if c.Logging.Format == "console" {
			c.Logging.Format = "json"
		}
	}
	c.Supabase.URL = strings.TrimRight(c.Supabase.URL, "/")
	c.AI.BaseURL = strings.TrimRight(c.AI.BaseURL, "/")
}

// Validate checks struct rules and the required credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var missing []string
	if c.AI.Provider == "gemini" && c.AI.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.Supabase.URL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.Supabase.Key() == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
