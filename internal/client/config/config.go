package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/moviekeeper/internal/client/cache"
	"github.com/dmitrijs2005/moviekeeper/internal/client/codec"
)

// EnvPrefix namespaces the environment variables the client reads.
const EnvPrefix = "MOVIEKEEPER"

// Config holds runtime settings for the MovieKeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API; the push channel lives under it.
//   - HealthAddr: host:port of the gRPC health endpoint used for probing.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - CacheBackend, CachePath: where the token and queued writes are kept.
//   - CacheCodec: encoding of queued writes ("json" or "msgpack").
//   - LogFile, LogLevel: structured log destination and threshold.
type Config struct {
	ServerURL           string        `mapstructure:"server_url"`
	HealthAddr          string        `mapstructure:"health_addr"`
	OnlineCheckInterval time.Duration `mapstructure:"online_check_interval"`
	CacheBackend        string        `mapstructure:"cache_backend"`
	CachePath           string        `mapstructure:"cache_path"`
	CacheCodec          string        `mapstructure:"cache_codec"`
	LogFile             string        `mapstructure:"log_file"`
	LogLevel            string        `mapstructure:"log_level"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheBackend = cache.BackendSQLite
	c.CachePath = "moviekeeper.db"
	c.CacheCodec = "json"
	c.LogFile = "moviekeeper.log"
	c.LogLevel = "info"
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url must not be empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	switch c.CacheBackend {
	case cache.BackendSQLite, cache.BackendBolt, cache.BackendMemory:
	default:
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if _, err := codec.ByName(c.CacheCodec); err != nil {
		return err
	}
	return nil
}
