// Package config loads shutter's connection and logging settings.
//
// # Sources
//
// Settings come from three places, later ones winning:
//
//  1. A TOML file, by default ~/.config/shutter/config.toml
//  2. An optional .env file in the working directory
//  3. SHUTTER_* environment variables
//
// A missing TOML file is fine when the environment provides the required
// values. An unreadable or malformed file is an error.
//
// # Fields
//
//	api_url    SHUTTER_API_URL    required, absolute http(s) URL; may carry a path such as /prod
//	api_key    SHUTTER_API_KEY    required, sent as x-api-key
//	log_file   SHUTTER_LOG_FILE   default ~/.local/state/shutter/shutter.log
//	log_level  SHUTTER_LOG_LEVEL  debug, info, warn or error; default info
//
// Paths starting with "~" are expanded against the user's home directory.
package config
