// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/NivBraz/wordcheck-service/pkg/parser"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Vocabulary source kinds.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceURL      = "url"
)

// Environment variables that override file values.
const (
	EnvHost           = "WORDCHECK_HOST"
	EnvPort           = "WORDCHECK_PORT"
	EnvVocabularyPath = "WORDCHECK_VOCABULARY_PATH"
	EnvVocabularyURL  = "WORDCHECK_VOCABULARY_URL"
	EnvLogLevel       = "WORDCHECK_LOG_LEVEL"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`

	RateLimit struct {
		RequestsPerSecond int `yaml:"requestsPerSecond"`
		Burst             int `yaml:"burst"`
	} `yaml:"rateLimit"`

	HTTPClient struct {
		Timeout int `yaml:"timeout"`
		// MaxRetries is nil when unset; an explicit 0 disables retrying.
		MaxRetries *int   `yaml:"maxRetries"`
		UserAgent  string `yaml:"userAgent"`
		// MaxBodySize in bytes; 0 means 64 MiB.
		MaxBodySize int64 `yaml:"maxBodySize"`
	} `yaml:"httpClient"`

	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings. Timeouts are in seconds.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeout     int    `yaml:"readTimeout"`
	WriteTimeout    int    `yaml:"writeTimeout"`
	IdleTimeout     int    `yaml:"idleTimeout"`
	ShutdownTimeout int    `yaml:"shutdownTimeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SetAddr replaces Host and Port from a host:port string.
func (s *ServerConfig) SetAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port in address %q", addr)
	}
	s.Host = host
	s.Port = port
	return nil
}

// VocabularyConfig says where the word list comes from and how it is encoded.
type VocabularyConfig struct {
	Source       string `yaml:"source"`
	Path         string `yaml:"path"`
	URL          string `yaml:"url"`
	Format       string `yaml:"format"`
	Selector     string `yaml:"selector"`
	LoadTimeout  int    `yaml:"loadTimeout"`
	ShowProgress bool   `yaml:"showProgress"`
}

// LoggingConfig selects level, format (json or text) and output (stdout or stderr).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads and parses the configuration at path. When path is empty the
// default file is used if it exists, otherwise defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error decoding config: %w", err)
		}
	case !explicit && errors.Is(err, os.ErrNotExist):
		// No config file: defaults only
	default:
		return nil, fmt.Errorf("error opening config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	// Set default values
	setDefaults(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no file or
// environment overrides.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvVocabularyPath); v != "" {
		cfg.Vocabulary.Source = SourceFile
		cfg.Vocabulary.Path = v
	}
	if v := os.Getenv(EnvVocabularyURL); v != "" {
		cfg.Vocabulary.Source = SourceURL
		cfg.Vocabulary.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

const defaultMaxRetries = 3

// setDefaults sets default values for configuration
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Vocabulary.Source == "" {
		switch {
		case cfg.Vocabulary.URL != "":
			cfg.Vocabulary.Source = SourceURL
		case cfg.Vocabulary.Path != "":
			cfg.Vocabulary.Source = SourceFile
		default:
			cfg.Vocabulary.Source = SourceEmbedded
		}
	}
	if cfg.Vocabulary.LoadTimeout == 0 {
		cfg.Vocabulary.LoadTimeout = 30
	}
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 5
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 1
	}
	if cfg.HTTPClient.Timeout == 0 {
		cfg.HTTPClient.Timeout = 30
	}
	if cfg.HTTPClient.MaxRetries == nil {
		retries := defaultMaxRetries
		cfg.HTTPClient.MaxRetries = &retries
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	switch c.Vocabulary.Source {
	case SourceEmbedded:
	case SourceFile:
		if c.Vocabulary.Path == "" {
			return fmt.Errorf("vocabulary path is required for source %q", SourceFile)
		}
	case SourceURL:
		if c.Vocabulary.URL == "" {
			return fmt.Errorf("vocabulary url is required for source %q", SourceURL)
		}
	default:
		return fmt.Errorf("unknown vocabulary source %q", c.Vocabulary.Source)
	}
	if _, err := parser.ParseFormat(c.Vocabulary.Format); err != nil {
		return err
	}
	if c.Vocabulary.LoadTimeout <= 0 {
		return fmt.Errorf("loadTimeout must be positive")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("requestsPerSecond must be positive")
	}
	if c.HTTPClient.MaxRetries != nil && *c.HTTPClient.MaxRetries < 0 {
		return fmt.Errorf("maxRetries must not be negative")
	}
	if c.HTTPClient.MaxBodySize < 0 {
		return fmt.Errorf("maxBodySize must not be negative")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}
