package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"calendar-sync/core/database"
	"calendar-sync/core/gapi"
	"calendar-sync/core/logger"
	"calendar-sync/core/reconcile"
	"calendar-sync/core/report"
	"calendar-sync/core/server"
	"calendar-sync/core/storage"
	"calendar-sync/feature/alert"
	"calendar-sync/feature/ledger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Calendar backends.
const (
	CalendarGoogle = "google"
	CalendarICS    = "ics"
)

// CalendarConfig selects where events are read from and written to.
type CalendarConfig struct {
	// Backend is "google" or "ics".
	Backend string `mapstructure:"backend" default:"google"`
	// ICSDir holds one <calendar id>.ics file per calendar for the ics backend.
	ICSDir string `mapstructure:"ics_dir" default:"data/calendars"`
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage report archives live in.
	Storage storage.Config `mapstructure:"storage"`
	// Report holds configuration for pass report archiving.
	Report report.Config `mapstructure:"report"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the sql ledger backend.
	Database database.Config `mapstructure:"database"`
	// Sync holds the reconciliation settings.
	Sync reconcile.Config `mapstructure:"sync"`
	// Google holds credentials and quotas for the Google APIs.
	Google gapi.Config `mapstructure:"google"`
	// Calendar selects the calendar backend.
	Calendar CalendarConfig `mapstructure:"calendar"`
	// Ledger selects the ledger backend.
	Ledger ledger.Config `mapstructure:"ledger"`
	// Alert configures pass alerts.
	Alert alert.Config `mapstructure:"alert"`
}

// LoadConfig loads configuration from environment variables, a .env file and an
// optional config.yaml in path. Environment variables win.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// Map environment variables to nested keys (e.g. SYNC_CALENDAR_A -> sync.calendar_a)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings a sync pass depends on.
func (c *Config) Validate() error {
	errs := []error{c.Sync.Validate(), c.Ledger.Validate()}

	switch c.Calendar.Backend {
	case CalendarGoogle:
	case CalendarICS:
		if c.Calendar.ICSDir == "" {
			errs = append(errs, errors.New("calendar.ics_dir is required for the ics backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown calendar backend %q", c.Calendar.Backend))
	}

	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
