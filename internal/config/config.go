// Package config loads application configuration from environment variables,
// optionally layered over a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/prresolver/internal/domain/model"
)

const (
	defaultAPIURL     = "https://api.github.com/"
	defaultMaxPages   = 1000
	defaultListenAddr = "127.0.0.1:8080"
)

// Config holds the application configuration. It is passed explicitly to the
// components that need it; nothing reads the environment after Load.
type Config struct {
	GitHubToken  string `yaml:"github_token"`
	GitHubRepo   string `yaml:"github_repo"` // Default "owner/repo" for bare-number references.
	GitHubAPIURL string `yaml:"github_api_url"`
	MaxPages     int    `yaml:"max_pages"`
	HTTPCache    bool   `yaml:"http_cache"`
	DBPath       string `yaml:"db_path"` // Empty disables snapshot history.
	ListenAddr   string `yaml:"listen_addr"`
}

// RequireToken returns ErrConfigurationMissing when no GitHub token is set.
func (c *Config) RequireToken() error {
	if c.GitHubToken == "" {
		return fmt.Errorf("%w: set PRRESOLVER_GITHUB_TOKEN or GITHUB_TOKEN", model.ErrConfigurationMissing)
	}
	return nil
}

// HasSnapshotStore returns true when a database path is configured.
func (c *Config) HasSnapshotStore() bool {
	return c.DBPath != ""
}

// Load reads the optional YAML file named by PRRESOLVER_CONFIG, then applies
// environment variables on top of it; the environment wins.
//
// Variables: PRRESOLVER_GITHUB_TOKEN (falls back to GITHUB_TOKEN),
// PRRESOLVER_GITHUB_REPO (falls back to GITHUB_REPO), PRRESOLVER_GITHUB_API_URL
// (https://api.github.com/), PRRESOLVER_MAX_PAGES (1000), PRRESOLVER_HTTP_CACHE
// (false), PRRESOLVER_DB_PATH (unset), PRRESOLVER_LISTEN_ADDR (127.0.0.1:8080).
//
// A missing token is not an error here: commands that talk to GitHub call
// RequireToken.
func Load() (*Config, error) {
	cfg := &Config{}

	if path, ok := os.LookupEnv("PRRESOLVER_CONFIG"); ok && path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if v := firstEnv("PRRESOLVER_GITHUB_TOKEN", "GITHUB_TOKEN"); v != "" {
		cfg.GitHubToken = v
	}
	if v := firstEnv("PRRESOLVER_GITHUB_REPO", "GITHUB_REPO"); v != "" {
		cfg.GitHubRepo = v
	}
	if v, ok := os.LookupEnv("PRRESOLVER_GITHUB_API_URL"); ok && v != "" {
		cfg.GitHubAPIURL = v
	}
	if v, ok := os.LookupEnv("PRRESOLVER_MAX_PAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PRRESOLVER_MAX_PAGES has invalid value %q: %w", v, err)
		}
		cfg.MaxPages = n
	}
	if v, ok := os.LookupEnv("PRRESOLVER_HTTP_CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PRRESOLVER_HTTP_CACHE has invalid value %q: %w", v, err)
		}
		cfg.HTTPCache = b
	}
	if v, ok := os.LookupEnv("PRRESOLVER_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("PRRESOLVER_LISTEN_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	}

	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = defaultAPIURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MaxPages == 0:
		c.MaxPages = defaultMaxPages
	case c.MaxPages < 0:
		return fmt.Errorf("max pages must be positive, got %d", c.MaxPages)
	}

	if c.GitHubRepo != "" {
		if err := model.ValidateRepo(c.GitHubRepo); err != nil {
			return fmt.Errorf("default repository: %w", err)
		}
	}

	return nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Config path comes from the operator.
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
