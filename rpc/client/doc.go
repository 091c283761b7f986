// Package client provides the remote kv.Store implementation: every store
// operation is one request/response round trip over the configured
// transport and serializer. Timeouts and retries are transport concerns
// configured here; the index engine above never retries.
package client
