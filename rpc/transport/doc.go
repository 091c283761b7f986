// Package transport defines the interfaces of the RPC transport layer. The
// concrete mediums live in the tcp and unix subpackages, both built on the
// shared base package.
package transport
