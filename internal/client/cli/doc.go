// Package cli provides the interactive LLM Answer Watcher command-line client.
//
// It wires configuration, the local session database, the backend HTTP
// client and the credential flow into a REPL. The REPL stands in for the
// web UI header: 'profile' plays the account icon, and the login, register
// and API keys dialogs are driven with 'submit', 'switch' and 'close'.
// 'login', 'register' and 'keys' open the right dialog and submit it in one
// step.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and renderer for details.
package cli
