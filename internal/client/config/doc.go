// Package config loads runtime configuration for the gophauth CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment: GOPHAUTH_* variables, optionally read from a dotenv file
//     selected with -e or -env. Variables already set in the process win
//     over the file.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the authentication API
//	-t int      request timeout (seconds)
//	-d string   path of the local session database
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "10s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:5000",
//	  "request_timeout": "10s",
//	  "splash_delay": "2s",
//	  "code_ttl": "10m",
//	  "db_path": "gophauth.db",
//	  "log_level": "warn",
//	  "log_format": "text"
//	}
//
// # Environment
//
//	GOPHAUTH_SERVER_URL, GOPHAUTH_REQUEST_TIMEOUT, GOPHAUTH_SPLASH_DELAY,
//	GOPHAUTH_CODE_TTL, GOPHAUTH_DB_PATH, GOPHAUTH_STORAGE_PASSPHRASE,
//	GOPHAUTH_LOG_LEVEL, GOPHAUTH_LOG_FORMAT
//
// The storage passphrase is deliberately not a flag so it does not show up
// in process listings.
package config
