// Package config loads runtime configuration for the lifedesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "token_file": "/home/alice/.config/lifedesk/tokens.json",
//	  "export_dir": "/home/alice/exports",
//	  "reveal_timeout": "30s",
//	  "request_timeout": "10s"
//	}
package config
