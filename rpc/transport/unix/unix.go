package unix

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/keydex/keydex/rpc/common"
	"github.com/keydex/keydex/rpc/transport"
	"github.com/keydex/keydex/rpc/transport/base"
)

const (
	defaultBufferSize = 512 * 1024 // 512 KB
	defaultMaxWorkers = 16
)

// --------------------------------------------------------------------------
// Server Connector
// --------------------------------------------------------------------------

// serverConnector implements the base.IServerConnector interface for unix sockets
type serverConnector struct{}

func (c *serverConnector) GetName() string {
	return "unix"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	// Remove a stale socket file from a previous run
	if _, err := os.Stat(config.Endpoint); err == nil {
		if err := os.Remove(config.Endpoint); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket file %s: %v", config.Endpoint, err)
		}
	}

	listener, err := net.Listen("unix", config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %v", err)
	}
	return listener, nil
}

// UpgradeConnection applies socket buffer settings to an accepted connection.
func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}

	if config.Transport.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(config.Transport.WriteBufferSize); err != nil {
			return err
		}
	}
	if config.Transport.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(config.Transport.ReadBufferSize); err != nil {
			return err
		}
	}
	return nil
}

// NewUnixServerTransport creates a server transport listening on a unix socket
func NewUnixServerTransport(workersPerConn int) transport.IRPCServerTransport {
	if workersPerConn <= 0 {
		workersPerConn = defaultMaxWorkers
	}
	return base.NewBaseServerTransport(&serverConnector{}, defaultBufferSize, workersPerConn)
}

// --------------------------------------------------------------------------
// Client Connector
// --------------------------------------------------------------------------

// clientConnector implements the base.IClientConnector interface for unix sockets
type clientConnector struct{}

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, 10*time.Second)
}

// UpgradeConnection applies socket buffer settings where supported.
func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil
	}

	if config.Socket.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(config.Socket.WriteBufferSize); err != nil {
			return err
		}
	}
	if config.Socket.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(config.Socket.ReadBufferSize); err != nil {
			return err
		}
	}
	return nil
}

// NewUnixClientTransport creates a client transport connecting over a unix socket
func NewUnixClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
