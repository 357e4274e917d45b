package biscuit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xirelogy/go-biscuit/internal/interpreter"
	"github.com/xirelogy/go-biscuit/internal/tokenizer"
)

// Config collects the tunables of a Runtime.
type Config struct {
	Tokenizer   TokenizerConfig   `yaml:"tokenizer"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Log         LogConfig         `yaml:"log"`
}

// TokenizerConfig configures tokenizers created by a Runtime.
type TokenizerConfig struct {
	TokenizeNewLine    bool `yaml:"tokenize_new_line"`
	CheckpointInterval int  `yaml:"checkpoint_interval"`
}

// InterpreterConfig configures interpreters created by a Runtime.
type InterpreterConfig struct {
	MaxCallDepth int `yaml:"max_call_depth"`
}

// LogConfig selects the logging level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// ConfigError aggregates configuration validation failures.
type ConfigError struct {
	Issues []string
}

func (e *ConfigError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	opts := tokenizer.DefaultOptions()
	return Config{
		Tokenizer: TokenizerConfig{
			TokenizeNewLine:    opts.TokenizeNewLine,
			CheckpointInterval: opts.CheckpointInterval,
		},
		Interpreter: InterpreterConfig{MaxCallDepth: 256},
		Log:         LogConfig{Level: "info"},
	}
}

// LoadConfig reads and validates a YAML configuration file. Keys absent
// from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	cfg, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML from r over DefaultConfig and validates the
// result. Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs ConfigError
	if n := c.Tokenizer.CheckpointInterval; n <= 0 || n&(n-1) != 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("tokenizer.checkpoint_interval must be a positive power of two, got %d", n))
	}
	if c.Interpreter.MaxCallDepth <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("interpreter.max_call_depth must be positive, got %d", c.Interpreter.MaxCallDepth))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", l.Level)
}

func (c Config) tokenizerOptions() tokenizer.Options {
	return tokenizer.Options{
		TokenizeNewLine:    c.Tokenizer.TokenizeNewLine,
		CheckpointInterval: c.Tokenizer.CheckpointInterval,
	}
}

func (c Config) interpreterOptions(logger *slog.Logger) interpreter.Options {
	return interpreter.Options{
		MaxCallDepth: c.Interpreter.MaxCallDepth,
		Logger:       logger,
	}
}
