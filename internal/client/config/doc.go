// Package config loads runtime configuration for the MovieKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or --config (JSON, YAML or TOML).
//  3. MOVIEKEEPER_<KEY> environment variables.
//  4. Command-line flags, which override everything else.
//
// Keys
//
//	server_url             base URL of the REST API
//	health_addr            host:port of the gRPC health endpoint
//	online_check_interval  probe interval, e.g. "3s"
//	cache_backend          sqlite | bolt | memory
//	cache_path             cache file location
//	cache_codec            json | msgpack
//	log_file               log destination
//	log_level              debug | info | warn | error
//
// Example file:
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "online_check_interval": "3s"
//	}
package config
