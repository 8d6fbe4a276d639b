// Package app is the composition root for skytrack.
//
// # Overview
//
// Run loads configuration and preferences, builds the fetch pipeline and
// starts one front end:
//
//  1. Load config (~/.config/skytrack/config.toml) and prefs
//  2. Open the logger; in TUI mode logs go to a file
//  3. Build metrics, the cache backend, the OpenSky client, the flight
//     store and the refresh scheduler
//  4. Restore the saved country filter and viewport, then start watching
//  5. Run the TUI, or the HTTP API when headless, until the context is
//     cancelled or the user quits
//
// # Components
//
//   - app.go: Run and the pipeline wiring
//   - monitor.go: subscribes to the store and logs feed transitions
//
// # Data Flow
//
//	┌──────────────┐  ticks   ┌──────────────┐  GET   ┌─────────────┐
//	│  Scheduler   ├─────────►│ opensky      ├───────►│ OpenSky API │
//	└──────┬───────┘          └──────────────┘        └─────────────┘
//	       │ results (generation, sequence)
//	┌──────▼───────┐  View    ┌──────────────┐
//	│ state.Store  ├─────────►│ TUI / API    │
//	└──────┬───────┘          └──────────────┘
//	       │ last snapshot
//	┌──────▼───────┐
//	│ cache        │
//	└──────────────┘
package app
