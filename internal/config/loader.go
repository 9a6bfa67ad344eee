package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from layered sources. Order, lowest priority first:
// defaults, base file, environment file, CONFIG_FILE, environment variables.
type Loader struct {
	basePath string
	lookup   func(string) (string, bool)
	sources  []string
}

// NewLoader creates a loader reading files from basePath ("config" when empty).
func NewLoader(basePath string) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{basePath: basePath, lookup: os.LookupEnv}
}

// Load returns the validated configuration.
func Load() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_DIR")).Load()
}

// Load loads configuration using a hierarchy of sources.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadUnvalidated applies every source but skips validation.
func (l *Loader) LoadUnvalidated() (*Config, error) {
	l.sources = l.sources[:0]
	cfg := Default()
	l.sources = append(l.sources, "defaults")

	if env, ok := l.lookup("ENVIRONMENT"); ok && env != "" {
		cfg.Environment = Environment(strings.ToLower(env))
	}

	if err := l.loadFile(filepath.Join(l.basePath, "base.yaml"), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}
	envFile := filepath.Join(l.basePath, string(cfg.Environment)+".yaml")
	if err := l.loadFile(envFile, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s config: %w", cfg.Environment, err)
	}
	if path, ok := l.lookup("CONFIG_FILE"); ok && path != "" {
		if err := l.loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	l.loadEnvironmentVariables(cfg)
	l.sources = append(l.sources, "environment")

	cfg.applyEnvironmentDefaults()
	cfg.LoadedFrom = append([]string(nil), l.sources...)
	return cfg, nil
}

// Files returns the configuration files this loader would read.
func (l *Loader) Files(env Environment) []string {
	files := []string{
		filepath.Join(l.basePath, "base.yaml"),
		filepath.Join(l.basePath, string(env)+".yaml"),
	}
	if path, ok := l.lookup("CONFIG_FILE"); ok && path != "" {
		files = append(files, path)
	}
	return files
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	l.sources = append(l.sources, path)
	return nil
}

// loadEnvironmentVariables overlays environment variables on the configuration.
func (l *Loader) loadEnvironmentVariables(cfg *Config) {
	l.str(&cfg.Server.Host, "SERVER_HOST")
	l.integer(&cfg.Server.Port, "SERVER_PORT", "PORT")
	l.duration(&cfg.Server.RequestTimeout, "REQUEST_TIMEOUT")

	l.str(&cfg.AI.Provider, "AI_PROVIDER")
	l.str(&cfg.AI.APIKey, "GEMINI_API_KEY")
	l.str(&cfg.AI.Model, "GEMINI_MODEL")
	l.str(&cfg.AI.BaseURL, "GEMINI_BASE_URL")
	l.duration(&cfg.AI.Timeout, "AI_TIMEOUT")

	l.str(&cfg.Supabase.URL, "NEXT_PUBLIC_SUPABASE_URL", "SUPABASE_URL")
	l.str(&cfg.Supabase.AnonKey, "NEXT_PUBLIC_SUPABASE_ANON_KEY", "SUPABASE_ANON_KEY")
	l.str(&cfg.Supabase.ServiceRoleKey, "SUPABASE_SERVICE_ROLE_KEY")
	l.str(&cfg.Supabase.JWTSecret, "SUPABASE_JWT_SECRET")

	l.str(&cfg.Classification.FallbackFolder, "FALLBACK_FOLDER")

	l.str(&cfg.Logging.Level, "LOG_LEVEL")
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	l.str(&cfg.Logging.Format, "LOG_FORMAT")

	l.boolean(&cfg.Metrics.Enabled, "ENABLE_METRICS")
	l.boolean(&cfg.Tracing.Enabled, "ENABLE_TRACING")
	l.str(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if val, ok := l.lookupAny("CORS_ALLOWED_ORIGINS"); ok {
		cfg.CORS.AllowedOrigins = strings.Split(val, ",")
	}
}

// lookupAny returns the value of the last non-empty key, so later keys win.
func (l *Loader) lookupAny(keys ...string) (string, bool) {
	var (
		out   string
		found bool
	)
	for _, k := range keys {
		if v, ok := l.lookup(k); ok && v != "" {
			out, found = v, true
		}
	}
	return out, found
}

func (l *Loader) str(dst *string, keys ...string) {
	if v, ok := l.lookupAny(keys...); ok {
		*dst = v
	}
}

func (l *Loader) integer(dst *int, keys ...string) {
	if v, ok := l.lookupAny(keys...); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (l *Loader) boolean(dst *bool, keys ...string) {
	if v, ok := l.lookupAny(keys...); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func (l *Loader) duration(dst *time.Duration, keys ...string) {
	if v, ok := l.lookupAny(keys...); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
