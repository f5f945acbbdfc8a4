package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// configFileName is the name of the on-disk config file this CLI looks for
// in the current directory when no --config flag is given.
const configFileName = "t2tlineage.yaml"

var configFileUsed string

// findConfigFile resolves the config file to load: an explicit path wins,
// otherwise t2tlineage.yaml in the current directory if it exists.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}
	return ""
}

// Load reads configuration from defaults, an optional YAML file, LINEAGE_
// prefixed environment variables, and CLI flags, in that order of
// increasing precedence.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"sql_dir":   DefaultSQLDir,
		"max_depth": DefaultMaxDepth,
		"output":    DefaultOutputFormat,
		"verbose":   false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	if err := k.Load(env.Provider("LINEAGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LINEAGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflagProvider(flags, k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.DataModel != "" {
		cfg.DataModel = resolvePath(cfg.DataModel)
	}
	if cfg.MappingFile != "" {
		cfg.MappingFile = resolvePath(cfg.MappingFile)
	}
	if cfg.SQLDir != "" {
		cfg.SQLDir = resolvePath(cfg.SQLDir)
	}

	return &cfg, nil
}

func resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// GetConfigFileUsed returns the path of the config file that was loaded, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}
