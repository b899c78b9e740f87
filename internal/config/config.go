package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/interval-trainer/internal/platform"
)

const (
	AppName   = "interval-trainer"
	envPrefix = "INTERVAL_TRAINER"
)

// ErrHelp is returned by Load when --help was requested.
var ErrHelp = pflag.ErrHelp

type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type Config struct {
	// Plan is the key of the plan selected at startup; empty keeps the
	// remembered or default plan.
	Plan      string
	PlansFile string
	Locale    string

	TickInterval  time.Duration
	Sound         string
	Notifications bool
	WakeLock      bool

	DataDir    string
	ConfigFile string
	Log        LogConfig
}

// DefaultDataDir is ~/.interval-trainer, or ./.interval-trainer without a home.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, "."+AppName)
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.String("plan", "", "plan key to select at startup")
	flags.String("plans-file", "", "YAML file with extra or replacement plans")
	flags.String("locale", "", "cue and UI language (it, en); defaults to $LANG")
	flags.Duration("tick-interval", time.Second, "length of one workout second")
	flags.String("sound", platform.SoundAuto, "tone output: auto, pcm, bell or off")
	flags.Bool("notifications", true, "post desktop notifications on phase changes")
	flags.Bool("wakelock", true, "keep the display awake while running")
	flags.String("data-dir", DefaultDataDir(), "directory for logs, settings and UI state")
	flags.StringP("config", "c", "", "config file (default <data-dir>/config.yaml)")
	flags.String("log-file", "", "log file (default <data-dir>/interval-trainer.log)")
	flags.Int("log-max-size-mb", 5, "rotate the log after this many megabytes")
	flags.Int("log-max-backups", 3, "rotated log files to keep")
	flags.Int("log-max-age-days", 28, "days to keep rotated log files")
	return flags
}

// Load resolves the configuration from args, INTERVAL_TRAINER_* environment
// variables and an optional YAML config file, in that order of precedence.
func Load(args []string) (Config, error) {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	for key, flag := range map[string]string{
		"log.file":         "log-file",
		"log.max-size-mb":  "log-max-size-mb",
		"log.max-backups":  "log-max-backups",
		"log.max-age-days": "log-max-age-days",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Plan:          strings.TrimSpace(v.GetString("plan")),
		PlansFile:     v.GetString("plans-file"),
		Locale:        v.GetString("locale"),
		TickInterval:  v.GetDuration("tick-interval"),
		Sound:         strings.ToLower(strings.TrimSpace(v.GetString("sound"))),
		Notifications: v.GetBool("notifications"),
		WakeLock:      v.GetBool("wakelock"),
		DataDir:       v.GetString("data-dir"),
		ConfigFile:    v.ConfigFileUsed(),
		Log: LogConfig{
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max-size-mb"),
			MaxBackups: v.GetInt("log.max-backups"),
			MaxAgeDays: v.GetInt("log.max-age-days"),
		},
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, AppName+".log")
	}
	if cfg.Locale == "" {
		cfg.Locale = systemLocale()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readConfigFile reads --config when given, else an optional
// <data-dir>/config.yaml.
func readConfigFile(v *viper.Viper) error {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString("data-dir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func systemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick-interval must be positive, got %v", c.TickInterval)
	}
	switch c.Sound {
	case platform.SoundAuto, platform.SoundPCM, platform.SoundBell, platform.SoundOff:
	default:
		return fmt.Errorf("sound must be one of auto, pcm, bell, off; got %q", c.Sound)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max-size-mb must be positive, got %d", c.Log.MaxSizeMB)
	}
	if c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log retention cannot be negative")
	}
	return nil
}

// Usage returns the flag help text.
func Usage() string {
	return newFlagSet().FlagUsages()
}
