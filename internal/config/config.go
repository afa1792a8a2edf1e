// Package config loads jobradar settings from a JSON5 file under the user
// config directory, then applies environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName          = "jobradar"
	ConfigFileName   = "config.json"
	ProxiesFileName  = "proxies.txt"
	PostingsFileName = "postings.json"
	ProfilesDirName  = "profiles"
)

type StoreConfig struct {
	// Backend is file, memory or redis.
	Backend     string `json:"backend"`
	Path        string `json:"path,omitempty"`
	RedisURL    string `json:"redis_url,omitempty"`
	RedisPrefix string `json:"redis_prefix,omitempty"`
}

type AdzunaConfig struct {
	AppID  string `json:"app_id"`
	AppKey string `json:"app_key"`
}

type APIKeyConfig struct {
	APIKey string `json:"api_key"`
}

// Config contains harvest defaults, backend selection and credentials.
type Config struct {
	DefaultCountry          string   `json:"default_country"`
	DefaultLimit            int      `json:"default_limit"`
	ConnectorTimeoutSeconds int      `json:"connector_timeout_seconds"`
	Connectors              []string `json:"connectors"`

	Store       StoreConfig `json:"store"`
	ProfilesDir string      `json:"profiles_dir,omitempty"`

	Adzuna        AdzunaConfig `json:"adzuna"`
	FranceTravail APIKeyConfig `json:"france_travail"`
	EURES         APIKeyConfig `json:"eures"`

	Schedule string `json:"schedule"`
	Listen   string `json:"listen"`
}

func DefaultConfig() Config {
	return Config{
		DefaultCountry:          "fr",
		DefaultLimit:            15,
		ConnectorTimeoutSeconds: 20,
		Connectors:              []string{},
		Store:                   StoreConfig{Backend: "file"},
		Schedule:                "@weekly",
		Listen:                  ":8080",
	}
}

// ConnectorTimeout is the per-connector fetch bound.
func (c Config) ConnectorTimeout() time.Duration {
	if c.ConnectorTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.ConnectorTimeoutSeconds) * time.Second
}

func ConfigDir() (string, error) {
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

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// Load reads config.json from ConfigDir. A missing or blank file yields the
// defaults. Environment overrides win over the file.
func Load() (Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadDir(dir)
}

// LoadDir is Load rooted at dir. Empty store and profile paths resolve
// inside dir.
func LoadDir(dir string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json5.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg)

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dir, PostingsFileName)
	}
	if cfg.ProfilesDir == "" {
		cfg.ProfilesDir = filepath.Join(dir, ProfilesDirName)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DefaultCountry = envString("JOBRADAR_DEFAULT_COUNTRY", cfg.DefaultCountry)
	cfg.DefaultLimit = envInt("JOBRADAR_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.Store.Backend = envString("JOBRADAR_STORE", cfg.Store.Backend)
	cfg.Store.RedisURL = envString("JOBRADAR_REDIS_URL", cfg.Store.RedisURL)
	cfg.Adzuna.AppID = envString("ADZUNA_APP_ID", cfg.Adzuna.AppID)
	cfg.Adzuna.AppKey = envString("ADZUNA_APP_KEY", cfg.Adzuna.AppKey)
}

// Init writes default config.json and proxies.txt if they don't already exist.
func Init() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return InitDir(dir)
}

func InitDir(dir string) ([]string, error) {
	var created []string

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

	proxiesPath := filepath.Join(dir, ProxiesFileName)
	if _, err := os.Stat(proxiesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(proxiesPath, []byte(""), 0o644); err != nil {
			return created, err
		}
		created = append(created, proxiesPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadProxies resolves proxy URLs from the flag, then JOBRADAR_PROXIES, then
// proxies.txt (one per line, # comments).
func LoadProxies(flagValue string) ([]string, error) {
	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}
	return loadProxies(flagValue, path)
}

func loadProxies(flagValue, path string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("JOBRADAR_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
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

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
