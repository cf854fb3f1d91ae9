package report

// Config holds configuration for the pass report archive.
type Config struct {
	// Enabled turns archiving on. Storage settings are ignored when false.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Prefix is the object name prefix reports are written under.
	Prefix string `mapstructure:"prefix" default:"reports"`
	// Keep is the number of reports retained by Prune. Zero keeps everything.
	Keep int `mapstructure:"keep" default:"500"`
}
