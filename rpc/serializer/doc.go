// Package serializer provides pluggable wire codecs for RPC messages: JSON
// (debuggable), gob (Go native), msgpack (compact, the CLI default) and an
// s2 compressing decorator that can wrap any of them.
package serializer
