// Package cli provides the interactive lifedesk command-line client.
//
// It wires configuration, the token store, the API client and a REPL. A
// session saved by an earlier run is resumed on start.
//
// Commands:
//   - signup / login / logout / me / delete-account
//   - categories, list, add, edit <id>, delete <id>
//   - reveal <id> (asks for the account password again)
//   - export (downloads the vault snapshot to a local file)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
