package database

import (
	"fmt"
	"net/url"
	"time"
)

// Config selects the database behind the SQL ledger.
type Config struct {
	// Driver is mysql or sqlite.
	Driver   string `mapstructure:"driver" default:"mysql"`
	Host     string `mapstructure:"host" default:"localhost"`
	Port     int    `mapstructure:"port" default:"3306"`
	User     string `mapstructure:"user" default:"root"`
	Password string `mapstructure:"password" default:""`
	// Name is the schema name, or the file path (":memory:" allowed) for sqlite.
	Name           string `mapstructure:"name" default:"calendar_sync"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
}

// Timeout bounds connection setup and each MySQL read or write. Defaults to 30s.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MySQLDSN renders the go-sql-driver DSN. Times are read back in UTC so ledger
// timestamps compare equal across hosts.
func (c Config) MySQLDSN() string {
	// Special characters in the password must be URL encoded.
	userInfo := url.UserPassword(c.User, c.Password).String()
	secs := int(c.Timeout() / time.Second)
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		userInfo, c.Host, c.Port, c.Name, secs, secs, secs)
}
