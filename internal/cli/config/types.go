// Package config provides configuration management for the HomeQL CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	DatabasePath string `koanf:"database"`
	HistoryFile  string `koanf:"history_file"`
	OutputFormat string `koanf:"format"`
	Verbose      bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultDatabaseFile = "homeql.db"
	DefaultHistoryFile  = ".homeql/history"
	DefaultFormat       = "table"
)
