// Package config loads skytrack's TOML configuration.
//
// Load reads ~/.config/skytrack/config.toml unless another path is given. A
// missing file is not an error: Default values are returned so skytrack runs
// without any setup. Empty or absent keys keep their defaults; malformed
// durations, unknown enum values and regions that fall off the globe are
// rejected.
//
// Example:
//
//	api_base_url = "https://opensky-network.org/api"
//	poll_interval = "5s"
//	resume_policy = "next_tick"   # or "immediate"
//	suspend_on_error = false
//	pause_on_modal = true
//	refetch_on_country_change = false
//	cache_backend = "sqlite"      # sqlite, file or memory
//	listen_addr = "127.0.0.1:8787"
//
//	[region]
//	center_lat = 40.0
//	center_lon = 0.0
//	span_lat = 20.0
//	span_lon = 20.0
//
// Paths accept a leading tilde and are returned absolute.
package config
