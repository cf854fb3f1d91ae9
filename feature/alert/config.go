package alert

import "time"

// Config holds the alert section of the configuration.
type Config struct {
	// WebhookURL receives a JSON POST per alert. Empty disables the webhook.
	WebhookURL string `mapstructure:"webhook_url" default:""`
	// TimeoutSeconds bounds one delivery.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// Timeout returns the delivery timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
