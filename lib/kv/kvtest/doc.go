// Package kvtest provides a reusable conformance test suite for kv.Store
// implementations. Backend packages call RunStoreTests from their own tests
// to verify that set, scan, delete and hash semantics match the port
// contract.
package kvtest
