package database

import (
	"database/sql"
	"errors"
	"sync"
)

// Supported drivers
const (
	DBSQLite3    = "sqlite3"
	DBPostgreSQL = "postgres"
)

var (
	// ErrDatabaseSupportDisabled is returned when connecting with a disabled
	// config
	ErrDatabaseSupportDisabled = errors.New("database support disabled")
	// ErrNoDatabaseProvided is returned when the config names no database
	ErrNoDatabaseProvided = errors.New("no database provided")
	// ErrUnsupportedDriver is returned for drivers other than sqlite3 and
	// postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrNotConnected is returned when using an instance with no open
	// connection
	ErrNotConnected = errors.New("database not connected")

	errNilInstance = errors.New("database instance is nil")
	errNilConfig   = errors.New("database config is nil")
	errNilSQL      = errors.New("database SQL connection is nil")
)

// Config holds the connection details of the candle store
type Config struct {
	Enabled  bool   `json:"enabled"`
	Verbose  bool   `json:"verbose"`
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     uint16 `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// Instance holds a database connection along with its config
type Instance struct {
	SQL       *sql.DB
	DataPath  string
	config    *Config
	dialect   string
	connected bool
	m         sync.RWMutex
}
