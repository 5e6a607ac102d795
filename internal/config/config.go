package config

import (
	"fmt"
	"sort"
	"strconv"
)

// Scheme identifies the relational database family.
type Scheme string

const (
	SchemeMySQL      Scheme = "mysql"
	SchemePostgreSQL Scheme = "postgresql"
)

// Config is the full application configuration, built once at startup and
// passed by value into the components that need it.
type Config struct {
	DB       DBConfig
	LLM      LLMConfig
	IndexDir string
	TopK     int
}

// DBConfig holds the database connection parameters.
type DBConfig struct {
	Scheme   Scheme
	Host     string
	Port     int // 0 means "use the scheme default"
	Name     string
	User     string
	Password string
}

// LLMConfig holds the settings for SQL generation and embedding.
type LLMConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

// dsnBuilders maps each scheme to its connection-string format. Supporting a
// new engine means adding an entry here plus a driver package under
// internal/database.
var dsnBuilders = map[Scheme]func(DBConfig) string{
	SchemeMySQL:      mysqlDSN,
	SchemePostgreSQL: postgresDSN,
}

// defaultPorts holds the port used when DB_PORT is not set.
var defaultPorts = map[Scheme]int{
	SchemeMySQL:      3306,
	SchemePostgreSQL: 5432,
}

// Supported reports whether the scheme has a registered DSN builder.
func (s Scheme) Supported() bool {
	_, ok := dsnBuilders[s]
	return ok
}

// DefaultPort returns the conventional port for the scheme, or 0 for an
// unknown scheme.
func (s Scheme) DefaultPort() int {
	return defaultPorts[s]
}

// SupportedSchemes lists the recognized scheme tags in stable order.
func SupportedSchemes() []string {
	names := make([]string, 0, len(dsnBuilders))
	for s := range dsnBuilders {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// DSN builds the driver connection string for the configured scheme.
func (c DBConfig) DSN() (string, error) {
	build, ok := dsnBuilders[c.Scheme]
	if !ok {
		return "", &UnsupportedSchemeError{Scheme: string(c.Scheme)}
	}
	return build(c), nil
}

func (c DBConfig) port() int {
	if c.Port > 0 {
		return c.Port
	}
	return c.Scheme.DefaultPort()
}

// DisplayString returns a human-readable summary of the connection.
func (c DBConfig) DisplayString() string {
	s := c.Host + ":" + strconv.Itoa(c.port()) + "/" + c.Name
	if c.User != "" {
		s = c.User + "@" + s
	}
	return s
}

func mysqlDSN(c DBConfig) string {
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.port(), c.Name)
}

func postgresDSN(c DBConfig) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.port(), c.Name)
}
