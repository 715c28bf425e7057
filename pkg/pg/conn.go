package pg

import (
	"database/sql"
	"fmt"
)

type Config struct {
	User     string `env:"USER"`
	Host     string `env:"HOST"`
	Port     string `env:"PORT"`
	Password string `env:"PASSWORD"`
	Database string `env:"DBNAME"`
	SSLMode  string `env:"SSLMODE"`
}

// dsn pins the session time zone to UTC. Reservation datetimes are stored
// as UTC instants and converted at the edges.
func (c Config) dsn() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=10 timezone=UTC",
		c.Host, c.User, c.Password, c.Database, c.Port, sslMode)
}

// String is safe to log.
func (c Config) String() string {
	return fmt.Sprintf("postgres://%s@%s:%s/%s", c.User, c.Host, c.Port, c.Database)
}

func newSqlConnection(config Config) (*sql.DB, error) {
	return sql.Open("postgres", config.dsn())
}
