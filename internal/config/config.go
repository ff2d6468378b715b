package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/jimezsa/imsctl/internal/schema"
)

const (
	DirName        = "imsctl"
	ConfigFileName = "config.json"
	EnvFileName    = ".env"

	DefaultBaseURL        = "http://localhost:8080/api"
	DefaultListen         = "127.0.0.1:8090"
	DefaultTimeoutSeconds = 30
	DefaultReferencePages = 20
)

// Config holds the connection and display settings of the console.
type Config struct {
	BaseURL        string          `json:"base_url" validate:"required,url"`
	Token          string          `json:"token,omitempty"`
	Listen         string          `json:"listen" validate:"required,hostname_port"`
	TimeZone       string          `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	TimeoutSeconds int             `json:"timeout_seconds" validate:"gte=1,lte=600"`
	ReferencePages int             `json:"reference_pages" validate:"gte=1,lte=1000"`
	Catalogs       schema.Catalogs `json:"catalogs,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        envString("IMSCTL_BASE_URL", DefaultBaseURL),
		Token:          envString("IMSCTL_TOKEN", ""),
		Listen:         envString("IMSCTL_LISTEN", DefaultListen),
		TimeZone:       envString("IMSCTL_TIMEZONE", ""),
		TimeoutSeconds: envInt("IMSCTL_TIMEOUT", DefaultTimeoutSeconds),
		ReferencePages: envInt("IMSCTL_REFERENCE_PAGES", DefaultReferencePages),
	}
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = EnvFileName
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ConfigDir is IMSCTL_CONFIG_DIR when set, else imsctl under the user
// config directory.
func ConfigDir() (string, error) {
	if dir := envString("IMSCTL_CONFIG_DIR", ""); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load decodes the config file over the env-backed defaults and validates
// the result. A missing or empty file yields the defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, cfg.Validate()
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	return cfg, cfg.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that every configured catalog
// overrides a known catalog.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			parts := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(parts, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	known := schema.DefaultCatalogs()
	for name, catalog := range c.Catalogs {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("invalid config: unknown catalog %q", name)
		}
		for i, opt := range catalog {
			if strings.TrimSpace(opt.Code) == "" {
				return fmt.Errorf("invalid config: catalogs.%s[%d]: code is required", name, i)
			}
		}
	}
	return nil
}

// Location resolves TimeZone; empty means the local zone.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.TimeZone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// EffectiveCatalogs returns the built-in catalogs with the configured
// overrides applied.
func (c Config) EffectiveCatalogs() schema.Catalogs {
	return schema.DefaultCatalogs().Merge(c.Catalogs)
}

// Init writes a default config.json if it doesn't already exist.
func Init() ([]string, error) {
	var created []string

	dir, err := ConfigDir()
	if err != nil {
		return created, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "********"
	}
	return c
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
