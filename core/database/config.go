package database

import (
	"fmt"
	"strings"
)

const (
	// DriverSQLite stores data in a local file through modernc.org/sqlite.
	DriverSQLite = "sqlite"
	// DriverPostgres connects to a PostgreSQL server through lib/pq.
	DriverPostgres = "postgres"

	defaultSQLitePath = "postbot.db"
)

// Config holds database connection settings shared across bots.
type Config struct {
	Driver string `yaml:"driver" envconfig:"DB_DRIVER"`
	// Path is the database file used by the sqlite driver.
	Path string `yaml:"path" envconfig:"DB_PATH"`

	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Normalize fills defaults and rejects unknown drivers.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", DriverSQLite, "sqlite3":
		c.Driver = DriverSQLite
		if strings.TrimSpace(c.Path) == "" {
			c.Path = defaultSQLitePath
		}
		// a single writer keeps sqlite out of SQLITE_BUSY territory
		c.MaxConnections = 1
	case DriverPostgres, "postgresql":
		c.Driver = DriverPostgres
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 4
		}
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: sqlite, postgres", c.Driver)
	}
	return nil
}

// DSN renders the driver specific connection string.
func (c Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf(
			"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
		)
	}
	return c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)"
}
