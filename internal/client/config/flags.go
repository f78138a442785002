package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader binds a viper instance to a command's persistent flags.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// RegisterFlags adds one flag per key to fs, with defaults from
// LoadDefaults, and binds them so an explicitly set flag wins.
func (l *Loader) RegisterFlags(fs *pflag.FlagSet) {
	d := &Config{}
	d.LoadDefaults()

	fs.StringP("config", "c", "", "path to config file")
	fs.StringP("server", "a", d.ServerURL, "base URL of the server")
	fs.String("health-addr", d.HealthAddr, "host:port of the health endpoint")
	fs.DurationP("interval", "i", d.OnlineCheckInterval, "online check interval")
	fs.String("cache-backend", d.CacheBackend, "local cache backend (sqlite, bolt, memory)")
	fs.String("cache-path", d.CachePath, "local cache file")
	fs.String("cache-codec", d.CacheCodec, "queued write encoding (json, msgpack)")
	fs.String("log-file", d.LogFile, "log file")
	fs.String("log-level", d.LogLevel, "log level")

	for key, name := range map[string]string{
		"config":                "config",
		"server_url":            "server",
		"health_addr":           "health-addr",
		"online_check_interval": "interval",
		"cache_backend":         "cache-backend",
		"cache_path":            "cache-path",
		"cache_codec":           "cache-codec",
		"log_file":              "log-file",
		"log_level":             "log-level",
	} {
		_ = l.v.BindPFlag(key, fs.Lookup(name))
	}
}

// Load reads the optional config file and returns the merged Config.
func (l *Loader) Load() (*Config, error) {
	if path := l.v.GetString("config"); path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
