package kv

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// StoreFactory is a function type that creates a new Store instance.
// This is used to abstract the creation of the store from the components
// consuming it (index writer, keyspace adapter, conformance tests).
type StoreFactory func() Store

// Store is the operations port for the key-value store backing the index
// engine. Every operation is a single blocking round trip against the
// backend; there is no batching, retrying or cancellation at this level.
//
// All set operations follow set semantics: adds are idempotent, removes of
// absent members are no-ops, and reads of absent keys yield empty results
// instead of errors.
type Store interface {
	// SetAdd adds member to the set stored at key, creating the set if it
	// does not exist. Adding an existing member is a no-op.
	SetAdd(key, member string) error
	// SetRemove removes member from the set stored at key. Removing from an
	// absent set or removing an absent member is a no-op.
	SetRemove(key, member string) error
	// SetMembers returns all members of the set stored at key. An absent key
	// yields an empty slice.
	SetMembers(key string) ([]string, error)
	// SetIsMember reports whether member is contained in the set at key.
	SetIsMember(key, member string) (bool, error)
	// SetCardinality returns the number of members in the set at key,
	// 0 if the key is absent.
	SetCardinality(key string) (int64, error)
	// KeysMatching returns all keys matching the glob-style pattern
	// (only the '*' wildcard is supported). The result may be empty.
	KeysMatching(pattern string) ([]string, error)
	// Delete removes the given keys. Absent keys are ignored, and calling
	// Delete with no keys is a no-op.
	Delete(keys ...string) error
	// HashSetAll writes all fields of the hash stored at key, overwriting
	// the previous hash contents entirely.
	HashSetAll(key string, fields map[string][]byte) error
	// HashGetAll returns all fields of the hash stored at key. An absent key
	// yields a nil map.
	HashGetAll(key string) (map[string][]byte, error)
	// Close releases any resources held by the store.
	Close() error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("KVStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the underlying store.
	RetCInvalidOperation                    // 3: Invalid operation.
)
