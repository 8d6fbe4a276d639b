// Package ui provides the terminal front end for skytrack.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never fetches flight data itself: it
// reads immutable state.View copies from the store on a short tick and sends
// commands (watch a region, suspend, resume, refresh, filter by country) to
// the refresh scheduler through the Controller interface.
//
// # Package Structure
//
//   - app.go: Model, Update loop, commands and Run
//   - header.go: status badge, counts, region bar and error line
//   - table.go: scrolling flight table
//   - modal.go: country picker and error dialog
//   - logs.go: log file viewer backed by internal/logtail
//   - help.go: key binding overlay
//   - keys.go: key map
//   - theme.go, style_helpers.go: palettes and lipgloss helpers
//
// # Event Flow
//
//  1. Run subscribes to the store's error stream and starts the program
//  2. A tick pulls the latest View and scheduler state
//  3. Surfaced errors open a dialog; polling is suspended until it closes
//  4. Panning or zooming restarts watching on the new region
//  5. Theme, country and viewport are written to the prefs file on change
//
// # Key Bindings
//
//   - arrows: Pan the region by a quarter span
//   - +/-: Zoom in/out
//   - j/k, g/G: Move through the flight table
//   - c: Pick a country; x clears the filter
//   - r: Refresh now
//   - l: Show the tail of the log file
//   - T: Cycle theme
//   - h or ?: Help
//   - e or Ctrl+C: Exit
package ui
