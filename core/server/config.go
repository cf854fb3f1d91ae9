package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// ShutdownSeconds bounds the wait for in-flight requests on shutdown.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"30"`
}

// ShutdownTimeout returns ShutdownSeconds as a duration, defaulting to 30s.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
