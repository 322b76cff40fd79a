// Package config resolves csvwatch settings once at startup from flags,
// environment variables and an optional config file, in that precedence
// order. The resolved Config is read-only for the life of the process.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix makes CSVWATCH_WATCH, CSVWATCH_OUT, etc. available as overrides.
const envPrefix = "CSVWATCH"

// Config holds every setting the daemon needs, resolved and validated once
// at startup.
type Config struct {
	// Watch is the directory observed for CSV files (absolute after Validate).
	Watch string `mapstructure:"watch"`
	// Out is where JSON artifacts are written (absolute; defaults to Watch).
	Out string `mapstructure:"out"`
	// Recursive extends watching into subdirectories.
	Recursive bool `mapstructure:"recursive"`
	// ProcessExisting converts CSV files already present at startup.
	ProcessExisting bool `mapstructure:"process_existing"`
	// JSONLines selects line-delimited output (.jsonl) over an array (.json).
	JSONLines bool `mapstructure:"jsonl"`
	// Overwrite replaces existing outputs instead of probing name_1, name_2...
	Overwrite bool `mapstructure:"overwrite"`
	// Indent is the pretty-print width for array elements; 0 keeps them compact.
	Indent int `mapstructure:"indent"`
	// Delimiter overrides dialect sniffing when non-empty.
	Delimiter string `mapstructure:"delimiter"`
	// QuoteChar overrides the sniffed quote character when non-empty.
	QuoteChar string `mapstructure:"quotechar"`
	// Encoding names the input text encoding.
	Encoding string `mapstructure:"encoding"`
	// Debounce is the per-path quiet period before conversion.
	Debounce time.Duration `mapstructure:"debounce"`
	// PollInterval is the scan period of the polling fallback source.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// ForcePoll skips native notifications and always polls.
	ForcePoll bool `mapstructure:"force_poll"`
	// LogFile routes logs to a rotating file instead of stderr.
	LogFile string `mapstructure:"log_file"`
}

// flagKeys maps config keys to the command-line flag that sets each one.
// Explicit bindings keep dash-separated flag names aligned with the
// underscore-separated keys viper and the env prefix use.
var flagKeys = map[string]string{
	"watch":            "watch",
	"out":              "out",
	"recursive":        "recursive",
	"process_existing": "process-existing",
	"jsonl":            "jsonl",
	"overwrite":        "overwrite",
	"indent":           "indent",
	"delimiter":        "delimiter",
	"quotechar":        "quotechar",
	"encoding":         "encoding",
	"debounce":         "debounce",
	"poll_interval":    "poll-interval",
	"force_poll":       "force-poll",
	"log_file":         "log-file",
}

// Load merges the given flag set with CSVWATCH_* environment variables and
// an optional config file (YAML or TOML), applies defaults, and returns the
// unvalidated Config.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("encoding", "utf-8-sig")
	v.SetDefault("debounce", 1250*time.Millisecond)
	v.SetDefault("poll_interval", 2*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate resolves paths to absolute form, checks the watch directory, and
// creates the output directory. Validation failures are fatal startup
// errors; nothing is watched until Validate succeeds.
func (c *Config) Validate() error {
	if c.Watch == "" {
		return fmt.Errorf("watch directory is required")
	}

	watch, err := filepath.Abs(c.Watch)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path: %w", err)
	}
	info, err := os.Stat(watch)
	if err != nil {
		return fmt.Errorf("watch path is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path is not a directory: %s", watch)
	}
	c.Watch = watch

	if c.Out == "" {
		c.Out = watch
	} else {
		out, err := filepath.Abs(c.Out)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		c.Out = out
	}
	if err := os.MkdirAll(c.Out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if c.Indent < 0 {
		return fmt.Errorf("indent must be non-negative (got %d)", c.Indent)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive (got %s)", c.Debounce)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive (got %s)", c.PollInterval)
	}
	return nil
}
