// Package cli provides the interactive AuthKeeper command-line client.
//
// It wires configuration, the HTTP API client, and an interactive REPL.
// Typical flow: register or log in, then manage the account password.
//
// Key features:
//   - Register / Login / Logout
//   - Forgot-password flow: request a reset code, verify it, set a new password
//   - Change the password of the logged-in account
//   - Show the current account
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
