// Package cli is the MovieKeeper command-line client.
//
// It wires configuration, the local cache, the transport client, the
// connectivity watcher and the sync engine, and exposes them as a cobra
// command tree. Without a subcommand it starts an interactive REPL that
// keeps a push channel open and follows connectivity changes.
//
// Commands:
//   - signup, login, logout
//   - list, show <id>, search <query>
//   - save (one flag per field; --id updates an existing record)
//   - sync
//   - repl (default)
//
// Writes made while the server is unreachable are queued locally and sent
// on the next fetch once the client is back online.
package cli
