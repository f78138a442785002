package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/flagx"
)

var serverFlags = []string{
	"-a", "-grpc", "-storage", "-d", "-k", "-t", "-push-buffer",
	"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint",
}

// parseFlags overlays command-line flags on top of cfg.
//
// Supported flags:
//
//	-a string            REST/push bind address (e.g. ":3000")
//	-grpc string         gRPC health bind address
//	-storage string      memory | postgres
//	-d string            PostgreSQL DSN
//	-k string            JWT HMAC secret key
//	-t duration          token validity (e.g. "24h")
//	-push-buffer int     per-subscriber push buffer
//	-s3-user, -s3-password, -s3-bucket, -s3-region, -s3-endpoint  object storage
//
// Only the flags above are taken from args (flagx.FilterArgs), so -c/-config
// and flags owned by other components do not collide.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to serve REST and push on")
	fs.StringVar(&cfg.GRPCAddr, "grpc", cfg.GRPCAddr, "address and port to serve gRPC health on")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: memory or postgres")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "k", cfg.SecretKey, "secret key")
	fs.DurationVar(&cfg.TokenValidity, "t", cfg.TokenValidity, "token validity")
	fs.IntVar(&cfg.PushBuffer, "push-buffer", cfg.PushBuffer, "per-subscriber push buffer")
	fs.StringVar(&cfg.S3RootUser, "s3-user", cfg.S3RootUser, "S3 root user")
	fs.StringVar(&cfg.S3RootPassword, "s3-password", cfg.S3RootPassword, "S3 root password")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "S3 bucket, empty disables photo uploads")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "s3-endpoint", cfg.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	return nil
}
