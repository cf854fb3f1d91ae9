package gapi

import (
	"time"

	"google.golang.org/api/option"
)

// Config holds the google section of the configuration.
type Config struct {
	// CredentialsFile is a service account key. Empty uses application default credentials.
	CredentialsFile string `mapstructure:"credentials_file" default:""`
	// RatePerSecond is the sustained request rate per API.
	RatePerSecond float64 `mapstructure:"rate_per_second" default:"5"`
	// Burst is the number of requests allowed at once.
	Burst int `mapstructure:"burst" default:"5"`
	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32 `mapstructure:"breaker_failures" default:"5"`
	// BreakerTimeoutSeconds is how long the breaker stays open.
	BreakerTimeoutSeconds int `mapstructure:"breaker_timeout_seconds" default:"60"`
}

// ClientOptions returns the options every Google client is created with.
func (c Config) ClientOptions(scopes ...string) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(scopes...)}
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	return opts
}

func (c Config) breakerTimeout() time.Duration {
	if c.BreakerTimeoutSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.BreakerTimeoutSeconds) * time.Second
}
