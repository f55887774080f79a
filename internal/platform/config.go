package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JOBBOARD_"

// Config is the on-disk configuration of the CLI.
type Config struct {
	APIURL  string `yaml:"api_url"`
	Session struct {
		CookieName  string `yaml:"cookie_name"`
		CookieValue string `yaml:"cookie_value"`
	} `yaml:"session"`
	CSRFHeader string   `yaml:"csrf_header"`
	Timeout    Duration `yaml:"timeout"`
	Snapshot   struct {
		Path    string `yaml:"path"`
		Enabled *bool  `yaml:"enabled"`
	} `yaml:"snapshot"`
	EventBuffer int  `yaml:"event_buffer"`
	ReadOnly    bool `yaml:"read_only"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// Duration accepts Go duration strings ("15s") or plain seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	s := strings.TrimSpace(node.Value)
	if s == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("timeout %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadConfig reads path, expands ${VAR} references and applies JOBBOARD_*
// overrides. An empty path skips the file. A .env file next to the config,
// or in the working directory, is loaded first; variables already set in
// the environment win.
func LoadConfig(path string) (*Config, error) {
	loadDotEnv(path)

	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(b))), cfg); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		cfg.Source = path
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.CSRFHeader == "" {
		cfg.CSRFHeader = "X-CSRFToken"
	}
	return cfg, nil
}

func loadDotEnv(configPath string) {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			_ = godotenv.Load(c)
		}
	}
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} references. Unset variables are left as is.
func expandEnvVars(content string) string {
	return envRef.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		return match
	})
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("API_URL", &c.APIURL)
	str("COOKIE_NAME", &c.Session.CookieName)
	str("SESSION", &c.Session.CookieValue)
	str("CSRF_HEADER", &c.CSRFHeader)
	str("SNAPSHOT_PATH", &c.Snapshot.Path)

	if v, ok := os.LookupEnv(EnvPrefix + "TIMEOUT"); ok && v != "" {
		var d Duration
		if err := d.UnmarshalYAML(&yaml.Node{Kind: yaml.ScalarNode, Value: v}); err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "READ_ONLY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sREAD_ONLY: %w", EnvPrefix, err)
		}
		c.ReadOnly = b
	}
	return nil
}

// Options turns the configuration into service options.
func (c *Config) Options() []Option {
	opts := []Option{
		WithSessionCookie(c.Session.CookieName, c.Session.CookieValue),
		WithCSRFHeader(c.CSRFHeader),
		WithTimeout(time.Duration(c.Timeout)),
		WithSnapshotPath(c.Snapshot.Path),
		WithEventBuffer(c.EventBuffer),
		WithReadOnly(c.ReadOnly),
	}
	if c.Snapshot.Enabled != nil {
		opts = append(opts, WithSnapshots(*c.Snapshot.Enabled))
	}
	return opts
}

// Validate reports whether the configuration can reach a server.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is required (config file or " + EnvPrefix + "API_URL)")
	}
	return nil
}

// WriteConfig stores c at path, creating parent directories. The session
// value is a credential, so the file is private.
func WriteConfig(path string, c *Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// MarshalYAML renders the duration the way it is usually written.
func (d Duration) MarshalYAML() (any, error) {
	if d == 0 {
		return "", nil
	}
	return time.Duration(d).String(), nil
}
