package config

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/moviekeeper/internal/flagx"
	"github.com/spf13/viper"
)

// parseFileAndEnv overlays the optional config file and the environment on
// top of cfg. Keys are the mapstructure tags of Config ("http_addr", ...);
// the environment uses MOVIEKEEPER_<KEY>. Durations accept "30s" strings.
func parseFileAndEnv(cfg *Config, args []string) error {
	v := viper.New()

	// register every key with its current value so env lookups and
	// Unmarshal see the full key set
	v.SetDefault("http_addr", cfg.HTTPAddr)
	v.SetDefault("grpc_addr", cfg.GRPCAddr)
	v.SetDefault("storage", cfg.Storage)
	v.SetDefault("database_dsn", cfg.DatabaseDSN)
	v.SetDefault("secret_key", cfg.SecretKey)
	v.SetDefault("token_validity", cfg.TokenValidity)
	v.SetDefault("push_buffer", cfg.PushBuffer)
	v.SetDefault("s3_root_user", cfg.S3RootUser)
	v.SetDefault("s3_root_password", cfg.S3RootPassword)
	v.SetDefault("s3_bucket", cfg.S3Bucket)
	v.SetDefault("s3_region", cfg.S3Region)
	v.SetDefault("s3_base_endpoint", cfg.S3BaseEndpoint)

	if path := flagx.ConfigFileFlag(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return nil
}
