package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	// import postgres driver
	_ "github.com/lib/pq"
	// import sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/tradebench/barsim/log"
)

// Connect opens the database described by cfg and creates any missing
// tables. Relative sqlite database names are resolved against dataPath.
func Connect(ctx context.Context, cfg *Config, dataPath string) (*Instance, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	if !cfg.Enabled {
		return nil, ErrDatabaseSupportDisabled
	}
	if cfg.Database == "" {
		return nil, ErrNoDatabaseProvided
	}
	i := &Instance{DataPath: dataPath}
	if err := i.SetConfig(cfg); err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Driver) {
	case DBSQLite3, "sqlite":
		location := cfg.Database
		if location != ":memory:" && !filepath.IsAbs(location) {
			location = filepath.Join(dataPath, location)
		}
		con, err := sql.Open("sqlite3", location)
		if err != nil {
			return nil, err
		}
		i.SetSQLiteConnection(con)
	case DBPostgreSQL, "postgresql", "psql":
		con, err := sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err = i.SetPostgresConnection(ctx, con); err != nil {
			if errClose := con.Close(); errClose != nil {
				log.Errorln(log.Database, errClose)
			}
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w '%v'", ErrUnsupportedDriver, cfg.Driver)
	}
	i.SetConnected(true)
	if err := i.Migrate(ctx); err != nil {
		if errClose := i.CloseConnection(); errClose != nil {
			log.Errorln(log.Database, errClose)
		}
		return nil, err
	}
	log.Debugf(log.Database, "connected to %v database %v", i.Dialect(), cfg.Database)
	return i, nil
}

// DSN returns the postgres connection string of the config
func (c *Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, c.Username, c.Password, c.Database, sslMode)
}

// SetConfig safely sets the instance's config with some basic locks and
// checks
func (i *Instance) SetConfig(cfg *Config) error {
	if i == nil {
		return errNilInstance
	}
	if cfg == nil {
		return errNilConfig
	}
	i.m.Lock()
	i.config = cfg
	i.m.Unlock()
	return nil
}

// SetSQLiteConnection safely sets the instance's connection to use SQLite
func (i *Instance) SetSQLiteConnection(con *sql.DB) {
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(1)
	i.dialect = DBSQLite3
}

// SetPostgresConnection safely sets the instance's connection to use
// Postgres
func (i *Instance) SetPostgresConnection(ctx context.Context, con *sql.DB) error {
	if err := con.PingContext(ctx); err != nil {
		return err
	}
	i.m.Lock()
	defer i.m.Unlock()
	i.SQL = con
	i.SQL.SetMaxOpenConns(2)
	i.SQL.SetMaxIdleConns(1)
	i.SQL.SetConnMaxLifetime(time.Hour)
	i.dialect = DBPostgreSQL
	return nil
}

// SetConnected safely sets the instance's connected status
func (i *Instance) SetConnected(v bool) {
	i.m.Lock()
	i.connected = v
	i.m.Unlock()
}

// CloseConnection safely disconnects the instance
func (i *Instance) CloseConnection() error {
	if i == nil {
		return errNilInstance
	}
	i.m.Lock()
	defer i.m.Unlock()
	if i.SQL == nil {
		return errNilSQL
	}
	i.connected = false
	return i.SQL.Close()
}

// IsConnected safely checks the SQL connection status
func (i *Instance) IsConnected() bool {
	if i == nil {
		return false
	}
	i.m.RLock()
	defer i.m.RUnlock()
	return i.connected
}

// GetConfig safely returns a copy of the config
func (i *Instance) GetConfig() *Config {
	i.m.RLock()
	defer i.m.RUnlock()
	if i.config == nil {
		return nil
	}
	cpy := *i.config
	return &cpy
}

// Dialect returns the driver name of the open connection
func (i *Instance) Dialect() string {
	i.m.RLock()
	defer i.m.RUnlock()
	return i.dialect
}

// Ping pings the database
func (i *Instance) Ping(ctx context.Context) error {
	if i == nil {
		return errNilInstance
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return errNilSQL
	}
	return i.SQL.PingContext(ctx)
}

// GetSQL returns the connection when connected
func (i *Instance) GetSQL() (*sql.DB, error) {
	if i == nil {
		return nil, errNilInstance
	}
	if !i.IsConnected() {
		return nil, ErrNotConnected
	}
	i.m.RLock()
	defer i.m.RUnlock()
	if i.SQL == nil {
		return nil, errNilSQL
	}
	return i.SQL, nil
}

// Migrate creates any missing tables for the connection's dialect
func (i *Instance) Migrate(ctx context.Context) error {
	db, err := i.GetSQL()
	if err != nil {
		return err
	}
	statements, ok := schema[i.Dialect()]
	if !ok {
		return fmt.Errorf("%w '%v'", ErrUnsupportedDriver, i.Dialect())
	}
	for x := range statements {
		if _, err = db.ExecContext(ctx, statements[x]); err != nil {
			return fmt.Errorf("migrate %v: %w", i.Dialect(), err)
		}
	}
	return nil
}

// Rebind converts ? placeholders to the positional form postgres expects
func (i *Instance) Rebind(query string) string {
	if i.Dialect() != DBPostgreSQL {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// LogQuery writes the query to the database sub logger when the config is
// verbose
func (i *Instance) LogQuery(query string, args ...any) {
	cfg := i.GetConfig()
	if cfg == nil || !cfg.Verbose {
		return
	}
	log.Debugf(log.Database, "%s %v", strings.Join(strings.Fields(query), " "), args)
}
