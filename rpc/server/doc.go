// Package server implements the RPC server side: it binds one kv.Store to a
// transport, decodes requests with the configured serializer, dispatches
// them through the store adapter and reports per-operation request counts
// and latencies.
package server
