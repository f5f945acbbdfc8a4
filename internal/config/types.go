// Package config loads CLI configuration for t2tlineage: the SQL directory
// to scan, the data-model and mapping-contract file paths, the resolver's
// max depth guard, and output rendering options.
package config

// Config holds all CLI configuration options.
type Config struct {
	SQLDir       string `koanf:"sql_dir"`
	DataModel    string `koanf:"data_model"`
	MappingFile  string `koanf:"mapping_file"`
	MaxDepth     int    `koanf:"max_depth"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultSQLDir       = "sql"
	DefaultMaxDepth     = 50
	DefaultOutputFormat = "text"
)
