package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultName     = "TV backlight"
	DefaultPort     = 8090
	DefaultPriority = 50
	DefaultPin      = "00102003"
	DefaultOrigin   = "My Fancy App"
)

// Config represents the application configuration
type Config struct {
	Platform string   `yaml:"platform"`
	Name     string   `yaml:"name"`
	URL      string   `yaml:"url"`
	Port     int      `yaml:"port"`
	Token    string   `yaml:"token"`
	Priority *int     `yaml:"priority"`
	Effects  []string `yaml:"effects"`

	Hyperion        HyperionConfig    `yaml:"hyperion"`
	HomeKit         HomeKitConfig     `yaml:"homekit"`
	Database        DatabaseConfig    `yaml:"database"`
	Log             LogConfig         `yaml:"log"`
	Healthcheck     HealthcheckConfig `yaml:"healthcheck"`
	ShutdownTimeout Duration          `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// HyperionConfig contains device transport settings
type HyperionConfig struct {
	Timeout      Duration `yaml:"timeout"`        // HTTP timeout for JSON-RPC requests
	RateLimitRPS float64  `yaml:"rate_limit_rps"` // Outgoing command pacing (default: 10)
	Origin       string   `yaml:"origin"`         // Tag sent with effect commands
}

// HomeKitConfig contains HAP server and accessory information settings
type HomeKitConfig struct {
	Pin          string `yaml:"pin"`
	Addr         string `yaml:"addr"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	Serial       string `yaml:"serial"` // Derived from the accessory identity when empty
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Colors bool   `yaml:"colors"`
	JSON   bool   `yaml:"json"`
}

// GetLevel returns the log level with default
func (c LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// HealthcheckConfig contains health check server settings
type HealthcheckConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// GetHost returns host with default
func (c HealthcheckConfig) GetHost() string {
	if c.Host == "" {
		return "0.0.0.0"
	}
	return c.Host
}

// GetPort returns port with default
func (c HealthcheckConfig) GetPort() int {
	if c.Port == 0 {
		return 9090
	}
	return c.Port
}

// GetPriority returns the configured device priority with default
func (c *Config) GetPriority() int {
	if c.Priority == nil {
		return DefaultPriority
	}
	return *c.Priority
}

// GetShutdownTimeout returns the shutdown timeout with default
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == 0 {
		return 5 * time.Second
	}
	return c.ShutdownTimeout.Duration()
}

// Endpoint returns the device base URL including scheme and port.
func (c *Config) Endpoint() string {
	base := strings.TrimRight(c.URL, "/")
	if !strings.Contains(base, "http") {
		base = "http://" + base
	}
	return fmt.Sprintf("%s:%d", base, c.Port)
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads, parses and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses configuration from raw YAML, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Effects == nil {
		cfg.Effects = []string{}
	}

	// Hyperion defaults
	if cfg.Hyperion.Timeout == 0 {
		cfg.Hyperion.Timeout = Duration(15 * time.Second)
	}
	if cfg.Hyperion.RateLimitRPS == 0 {
		cfg.Hyperion.RateLimitRPS = 10.0
	}
	if cfg.Hyperion.Origin == "" {
		cfg.Hyperion.Origin = DefaultOrigin
	}

	// HomeKit defaults
	if cfg.HomeKit.Pin == "" {
		cfg.HomeKit.Pin = DefaultPin
	}
	if cfg.HomeKit.Addr == "" {
		cfg.HomeKit.Addr = ":0"
	}
	if cfg.HomeKit.Manufacturer == "" {
		cfg.HomeKit.Manufacturer = "JUB"
	}
	if cfg.HomeKit.Model == "" {
		cfg.HomeKit.Model = "HomeBridge to hyperion"
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "./hyperiond.sqlite"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// Validate reports fatal configuration errors.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Platform) == "" {
		errs = append(errs, errors.New("platform is required"))
	}
	if strings.TrimSpace(c.URL) == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if p := c.GetPriority(); p < 0 || p > 255 {
		errs = append(errs, fmt.Errorf("priority %d out of range 0..255", p))
	}

	seen := make(map[string]bool, len(c.Effects))
	for i, name := range c.Effects {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("effects[%d] is empty", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("effect %q listed twice", name))
		}
		seen[name] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
