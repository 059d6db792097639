package store

import "time"

// Config selects and configures the backend
type Config struct {
	AppName string
	Driver  Driver

	PG     PGConfig
	SQLite SQLiteConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// SQLiteConfig configures the sqlite file backend
type SQLiteConfig struct {
	// Path is a file path or ":memory:"
	Path        string
	LogSQL      bool
	SlowQueryMs int
	BusyTimeout time.Duration // default 5s
}
