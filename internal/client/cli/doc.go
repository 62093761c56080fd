// Package cli provides the interactive Price Optimization Tool client.
//
// It wires configuration, the local store, the API client and the page
// controllers into a REPL. Typical flow: restore or prompt for a session,
// start a background connectivity watcher, then browse and edit products.
//
// Key features:
//   - Register / Login / Verify email / Logout
//   - Products page: debounced fuzzy search, category filter, selection,
//     add / edit / delete, demand forecast for the selection
//   - Pricing optimization page with the same search and filter
//   - Offline listing from the last saved snapshot
//
// Protected commands run the session guard first; an absent or expired
// credential drops the user back to the login prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
