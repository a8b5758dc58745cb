// Package config loads runtime configuration for the proposals CLI.
//
// Sources, in order of precedence from low to high:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// Flags:
//
//	-a string   base URL of the proposal API
//	-t int      request timeout (seconds)
//
// JSON durations go through timex.Duration, so "10s" and integer
// nanoseconds both work:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "request_timeout": "10s"
//	}
package config
