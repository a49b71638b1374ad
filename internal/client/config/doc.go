// Package config loads runtime configuration for the clinauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. CLINAUTH_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the remote identity endpoint
//	-f string   local SQLite database file
//	-r          prefer the remote backend
//	-m string   host profile (web|mobile)
//
// # JSON schema
//
// Durations accept strings like "5s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "remote_preferred": true,
//	  "host_profile": "mobile",
//	  "backup_medium": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "request_timeout": "5s"
//	}
package config
