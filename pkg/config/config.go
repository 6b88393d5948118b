// Package config resolves runtime settings from the environment, an optional
// YAML file and command line flags, in increasing order of precedence.
package config

import (
	"flag"
)

// Log output targets besides a file path
const (
	OutputStderr  = "stderr"
	OutputDiscard = "discard"
)

// Config holds the stats tool configuration
type Config struct {
	LogLevel   string `env:"STATS_TOOL_LOG_LEVEL"  envDefault:"INFO"`
	LogOutput  string `env:"STATS_TOOL_LOG_OUTPUT" envDefault:"stderr"`
	ConfigFile string `env:"STATS_TOOL_CONFIG"`

	ShowVersion bool

	// LogLevelFlagSet pins the log level; file reloads leave it alone
	LogLevelFlagSet bool
}

// ParseConfig parses environment, config file and flags into a Config
func ParseConfig(fs *flag.FlagSet, args []string, environ map[string]string) (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg, environ); err != nil {
		return Config{}, err
	}

	flags := cfg
	fs.StringVar(&flags.LogLevel, "log-level", cfg.LogLevel, "Log level: DEBUG, INFO, WARN or ERROR")
	fs.StringVar(&flags.LogOutput, "log-output", cfg.LogOutput, "Log destination: stderr, discard or a file path")
	fs.StringVar(&flags.ConfigFile, "config", cfg.ConfigFile, "Optional YAML config file, watched for log level changes")
	fs.BoolVar(&flags.ShowVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	cfg.ShowVersion = flags.ShowVersion
	cfg.ConfigFile = flags.ConfigFile
	if cfg.ShowVersion {
		return cfg, nil
	}

	if cfg.ConfigFile != "" {
		file, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		cfg = file.ApplyTo(cfg)
	}

	if set["log-level"] {
		cfg.LogLevel = flags.LogLevel
		cfg.LogLevelFlagSet = true
	}
	if set["log-output"] {
		cfg.LogOutput = flags.LogOutput
	}

	return cfg, nil
}
