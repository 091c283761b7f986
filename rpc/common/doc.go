// Package common holds the types shared between the RPC client and server:
// the wire message with its per-operation factories, and the server/client
// configuration structs.
package common
