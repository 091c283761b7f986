// Package cmd implements the command-line interface for the keydex
// secondary-index key-value store. It provides a hierarchical command
// structure with operations for running the server and interacting with it
// as a client.
//
// The package is organized into several subpackages:
//
//   - entity: Commands for keyspace entity operations (put, get, delete, etc.)
//   - serve: Commands for starting and configuring the keydex server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See keydex -help for a list of all commands.
package cmd
