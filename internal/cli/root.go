// Package cli implements the quickthoughts command line client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Tzuyuchae/QuickThoughts/internal/capture"
	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
)

// Config keys.
const (
	keyAPIURL          = "api_url"
	keySupabaseURL     = "supabase.url"
	keySupabaseAnonKey = "supabase.anon_key"
	keyAccessToken     = "session.access_token"
	keyRefreshToken    = "session.refresh_token"
	keyUserID          = "session.user_id"
	keyEmail           = "session.email"
	keyExpiresAt       = "session.expires_at"
	keyMaxDuration     = "capture.max_duration"
	keySampleRate      = "capture.sample_rate"
	keyChannels        = "capture.channels"
	keySnapshotPath    = "snapshot_path"
	keyLogLevel        = "log_level"
	keyFallbackFolder  = "fallback_folder"
	keyTimeout         = "timeout"
)

// Options customizes the root command. Tests replace the device and streams.
type Options struct {
	Opener capture.Opener
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

type root struct {
	cfgFile string
	v       *viper.Viper
	opts    Options
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Opener == nil {
		opts.Opener = capture.DefaultOpener()
	}
	r := &root{v: viper.New(), opts: opts}

	cmd := &cobra.Command{
		Use:   "quickthoughts",
		Short: "Capture voice memos and file them into folders",
		Long: `quickthoughts records a voice memo, has it transcribed and split into
separate thoughts, and files each thought into one of your folders.

Examples:
  quickthoughts login --email me@example.com
  quickthoughts onboard Ideas Work
  quickthoughts record
  quickthoughts list --folder Work`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.initConfig()
		},
	}
	if opts.In != nil {
		cmd.SetIn(opts.In)
	}
	if opts.Out != nil {
		cmd.SetOut(opts.Out)
	}
	if opts.Err != nil {
		cmd.SetErr(opts.Err)
	}

	cmd.PersistentFlags().StringVar(&r.cfgFile, "config", "", "config file (default is $HOME/.config/quickthoughts/config.yaml)")
	cmd.PersistentFlags().String("api-url", "", "QuickThoughts API base URL")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = r.v.BindPFlag(keyAPIURL, cmd.PersistentFlags().Lookup("api-url"))
	_ = r.v.BindPFlag(keyLogLevel, cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		r.loginCommand(),
		r.logoutCommand(),
		r.statusCommand(),
		r.onboardCommand(),
		r.foldersCommand(),
		r.recordCommand(),
		r.uploadCommand(),
		r.listCommand(),
		r.deleteCommand(),
		r.syncCommand(),
		r.promptCommand(),
	)
	return cmd
}

// Execute runs the command line client.
func Execute() {
	if err := NewRootCommand(Options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "quickthoughts")
}

func (r *root) initConfig() error {
	v := r.v
	if r.cfgFile != "" {
		v.SetConfigFile(r.cfgFile)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("QUICKTHOUGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyAPIURL, "http://localhost:8080")
	v.SetDefault(keyMaxDuration, capture.DefaultMaxDuration)
	v.SetDefault(keySampleRate, 16000)
	v.SetDefault(keyChannels, 1)
	v.SetDefault(keySnapshotPath, filepath.Join(configDir(), "snapshot.db"))
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyFallbackFolder, domain.DefaultFallbackFolder)
	v.SetDefault(keyTimeout, 90*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// configPath is where the session is written.
func (r *root) configPath() string {
	if r.cfgFile != "" {
		return r.cfgFile
	}
	if used := r.v.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(configDir(), "config.yaml")
}

func (r *root) writeConfig() error {
	path := r.configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := r.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Chmod(path, 0o600)
}
