// Package cli provides the interactive proposals command-line client.
//
// It talks to the proposal HTTP API, keeps the session token in memory and
// runs a REPL until the user exits. A background watcher probes the
// server's health endpoint and flips the prompt between online and offline.
//
// Commands:
//   - register, login, logout
//   - create, mine: manage the caller's proposal
//   - respond <token> <yes|no>: answer someone else's proposal
//   - status <proposal id>, notifications
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
