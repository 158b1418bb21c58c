package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	HTTPAddrKey           = "http-addr"
	DBDirKey              = "db-dir"
	LogLevelKey           = "log-level"
	BlockCacheSizeKey     = "block-cache-size"
	BlockHashCacheSizeKey = "block-hash-cache-size"
	ConfigFileKey         = "config-file"
	VersionKey            = "version"
)

var Default = Config{
	HTTPAddr:           ":9750",
	DBDir:              "db",
	LogLevel:           "info",
	BlockCacheSize:     2048,
	BlockHashCacheSize: 8192,
}

type Config struct {
	HTTPAddr           string `mapstructure:"http-addr" json:"http-addr"`
	DBDir              string `mapstructure:"db-dir" json:"db-dir"`
	LogLevel           string `mapstructure:"log-level" json:"log-level"`
	BlockCacheSize     int    `mapstructure:"block-cache-size" json:"block-cache-size"`
	BlockHashCacheSize int    `mapstructure:"block-hash-cache-size" json:"block-hash-cache-size"`
}

// BuildFlagSet declares the daemon's command line flags with the defaults
// from [Default].
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("sealchain", pflag.ContinueOnError)
	fs.String(HTTPAddrKey, Default.HTTPAddr, "address the RPC server listens on")
	fs.String(DBDirKey, Default.DBDir, "directory the block database lives in")
	fs.String(LogLevelKey, Default.LogLevel, "log level of the daemon")
	fs.Int(BlockCacheSizeKey, Default.BlockCacheSize, "number of blocks kept in the read cache")
	fs.Int(BlockHashCacheSizeKey, Default.BlockHashCacheSize, "number of height-to-hash entries kept in the read cache")
	fs.String(ConfigFileKey, "", "path to an optional JSON config file")
	fs.Bool(VersionKey, false, "print the version and exit")
	return fs
}

// New resolves the daemon config: defaults, overridden by the config file
// named on the command line (if any), overridden by explicit flags.
func New(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString(ConfigFileKey); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Default
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
