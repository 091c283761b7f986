package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/kv/kvtest"
	"github.com/keydex/keydex/lib/kv/memkv"
	"github.com/keydex/keydex/lib/logging"
	"github.com/keydex/keydex/rpc/common"
	"github.com/keydex/keydex/rpc/serializer"
	"github.com/keydex/keydex/rpc/server"
	"github.com/keydex/keydex/rpc/transport/unix"
)

func TestMain(m *testing.M) {
	logging.Init("error", "text")
	os.Exit(m.Run())
}

// newRemoteStore starts an in-process server over a unix socket backed by a
// fresh in-memory engine and returns a connected client store.
func newRemoteStore(t *testing.T) kv.Store {
	t.Helper()

	socket := filepath.Join(t.TempDir(), "keydex.sock")

	srv := server.NewRPCServer(
		common.ServerConfig{
			Endpoint:       socket,
			Engine:         common.EngineMem,
			TimeoutSecond:  10,
			WorkersPerConn: 4,
			LogLevel:       "error",
			LogFormat:      "text",
		},
		memkv.NewStore(),
		unix.NewUnixServerTransport(4),
		serializer.NewMsgpackSerializer(),
	)
	go func() {
		if err := srv.Serve(); err != nil {
			t.Errorf("server stopped: %v", err)
		}
	}()

	// Wait until the server accepts connections
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(socket); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server socket %s never appeared", socket)
		}
		time.Sleep(5 * time.Millisecond)
	}

	store, err := NewRPCStore(
		common.ClientConfig{
			Endpoints:     []string{socket},
			TimeoutSecond: 5,
			RetryCount:    1,
		},
		unix.NewUnixClientTransport(),
		serializer.NewMsgpackSerializer(),
	)
	if err != nil {
		t.Fatalf("failed to connect client: %v", err)
	}
	return store
}

// TestRPCStoreConformance runs the store conformance suite against a remote
// store. Every subtest gets its own server so state does not leak between
// subtests.
func TestRPCStoreConformance(t *testing.T) {
	kvtest.RunStoreTests(t, "rpc/unix", func() kv.Store {
		return newRemoteStore(t)
	})
}

// TestRPCStoreServerError verifies that an error on the server side surfaces
// as an error on the client.
func TestRPCStoreServerError(t *testing.T) {
	store := newRemoteStore(t)
	defer store.Close()

	if err := store.SetAdd("colors", "red"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An unknown message type is rejected by the server adapter
	resp, err := store.(*rpcStore).invoke(&common.Message{MsgType: "BOGUS"})
	if err == nil {
		t.Fatalf("expected error for unknown message type, got %+v", resp)
	}
}
