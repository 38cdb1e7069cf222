// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the splitsync daemon.
type Config struct {
	// APIBaseURL is the remote ledger base URL.
	APIBaseURL string `envconfig:"API_BASE_URL" required:"true"`

	// APIToken is the bearer credential for the remote ledger. Issued
	// upstream; splitsync only carries it.
	APIToken string `envconfig:"API_TOKEN" required:"true"`

	// APITimeout bounds each remote request.
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`

	// ObserverID is the authenticated user the view is computed for.
	ObserverID string `envconfig:"OBSERVER_ID" required:"true"`

	// CachePath is the SQLite snapshot cache location. Empty disables the
	// warm-start cache.
	CachePath string `envconfig:"CACHE_PATH" default:"./data/snapshot.db"`

	// ListenAddr is the view API listen address.
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`

	// RefreshInterval drives the background refresh ticker. Zero disables
	// periodic refresh (manual/API-triggered only).
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"60s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("API_BASE_URL must be an absolute URL")
	}
	return &cfg, nil
}
