// Package cli provides the interactive clinauth command-line client.
//
// It wires configuration, the local SQLite medium, the optional session
// backup medium, both identity backends and the auth context, then runs a
// REPL. A session saved by an earlier run is restored on start, so a user
// stays signed in across restarts.
//
// Key features:
//   - Register / Login / Logout / Delete account
//   - Password reset (request a link, then reset with the token or link)
//   - Migration of local-only accounts to the remote store
//   - Host profile policy: the mobile host accepts patient accounts only
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
