package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"GEMINI_API_KEY":    "test-key",
		"SUPABASE_URL":      "https://project.supabase.co/",
		"SUPABASE_ANON_KEY": "anon",
	}
}

func TestLoadDefaultsAndEnvironment(t *testing.T) {
	env := requiredEnv()
	env["SERVER_PORT"] = "9090"
	env["LOG_LEVEL"] = "DEBUG"

	l := NewLoader(t.TempDir())
	l.lookup = envLookup(env)

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://project.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "Unsorted", cfg.Classification.FallbackFolder)
	assert.Equal(t, 2*time.Minute, cfg.Capture.MaxDuration)
	assert.Equal(t, []string{"defaults", "environment"}, cfg.LoadedFrom)
}

func TestLoadPublicSupabaseNames(t *testing.T) {
	env := map[string]string{
		"GEMINI_API_KEY":                "k",
		"NEXT_PUBLIC_SUPABASE_URL":      "https://public.supabase.co",
		"NEXT_PUBLIC_SUPABASE_ANON_KEY": "public-anon",
	}
	l := NewLoader(t.TempDir())
	l.lookup = envLookup(env)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://public.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "public-anon", cfg.Supabase.Key())
}

func TestLoadFileLayers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
server:
  port: 7000
classification:
  fallback_folder: Inbox
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "production.yaml"), []byte(`
server:
  port: 7001
ai:
  timeout: 45s
`), 0o600))

	env := requiredEnv()
	env["ENVIRONMENT"] = "production"
	l := NewLoader(dir)
	l.lookup = envLookup(env)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "Inbox", cfg.Classification.FallbackFolder)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Len(t, cfg.LoadedFrom, 4)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte("servr:\n  port: 1\n"), 0o600))

	l := NewLoader(dir)
	l.lookup = envLookup(requiredEnv())
	_, err := l.Load()
	require.Error(t, err)
}

func TestValidateMissingCredentials(t *testing.T) {
	l := NewLoader(t.TempDir())
	l.lookup = envLookup(map[string]string{})

	_, err := l.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Contains(t, err.Error(), "SUPABASE_URL")
	assert.Contains(t, err.Error(), "SUPABASE_ANON_KEY")
}

func TestValidateMockProviderNeedsNoKey(t *testing.T) {
	env := requiredEnv()
	delete(env, "GEMINI_API_KEY")
	env["AI_PROVIDER"] = "mock"

	l := NewLoader(t.TempDir())
	l.lookup = envLookup(env)
	_, err := l.Load()
	require.NoError(t, err)
}

func TestValidateStructRules(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKey = "k"
	cfg.Supabase.URL = "https://x.supabase.co"
	cfg.Supabase.AnonKey = "anon"
	require.NoError(t, cfg.Validate())

	cfg.Classification.MaxThoughts = 11
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.AI.APIKey = "k"
	cfg.Supabase.URL = "https://x.supabase.co"
	cfg.Supabase.AnonKey = "anon"
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "development.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o600))

	l := NewLoader(dir)
	l.lookup = envLookup(requiredEnv())
	initial, err := l.Load()
	require.NoError(t, err)

	prev := reloadDebounce
	reloadDebounce = 10 * time.Millisecond
	defer func() { reloadDebounce = prev }()

	w, err := NewWatcher(l, initial, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *Config, 1)
	w.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600))

	select {
	case cfg := <-changed:
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "debug", w.Current().Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload configuration")
	}
}

func TestWatcherDisabledOutsideDevelopment(t *testing.T) {
	cfg := Default()
	cfg.Environment = Production

	w, err := NewWatcher(NewLoader(t.TempDir()), cfg, zap.NewNop())
	require.NoError(t, err)
	w.Stop()
	assert.Same(t, cfg, w.Current())
}
