package base

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/keydex/keydex/lib/logging"
	"github.com/keydex/keydex/rpc/common"
	"github.com/keydex/keydex/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the given endpoint
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// responseResult contains the result of a request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection represents a single net connection. Responses are
// multiplexed back to waiting callers through per-request channels.
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{}
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // Protects writes to the connection
	parent       *clientTransport
}

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64 // Atomic counter for round robin
	nextRequestID uint64 // Atomic counter for unique request IDs
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector:     connector,
		nextRequestID: 1,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	logger := logging.For("transport/" + t.connector.GetName())

	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	t.config = config
	t.closeConnections()

	connectionsPerEP := max(1, config.ConnectionsPerEndpoint)
	t.connections = make([]*clientConnection, 0, len(config.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Endpoints {
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint:     endpoint,
				stopCh:       make(chan struct{}),
				requestChans: xsync.NewMapOf[uint64, chan responseResult](),
				parent:       t,
			}

			conn, err := t.dial(endpoint)
			if err != nil {
				logger.Warn("failed to connect", "endpoint", endpoint, "err", err)
				continue
			}
			clientConn.conn = conn

			t.connectionsMu.Lock()
			t.connections = append(t.connections, clientConn)
			t.connectionsMu.Unlock()

			go clientConn.readResponses()
		}
	}

	if len(t.connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	logger.Info("connected",
		"connections", len(t.connections),
		"endpoints", len(config.Endpoints),
		"transport", t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(req []byte) ([]byte, error) {
	requestID := atomic.AddUint64(&t.nextRequestID, 1)

	send := func(connection *clientConnection) ([]byte, error) {
		if connection.conn == nil {
			return nil, fmt.Errorf("connection is closed")
		}

		respCh := make(chan responseResult, 1)
		connection.requestChans.Store(requestID, respCh)
		defer connection.requestChans.Delete(requestID)

		timeout := time.Duration(t.config.TimeoutSecond) * time.Second
		if timeout > 0 {
			_ = connection.conn.SetWriteDeadline(time.Now().Add(timeout))
		}

		connection.connMu.Lock()
		err := writeFrame(connection.conn, requestID, req)
		connection.connMu.Unlock()
		if err != nil {
			return nil, err
		}

		if timeout > 0 {
			select {
			case result := <-respCh:
				return result.data, result.err
			case <-time.After(timeout):
				return nil, fmt.Errorf("request %d timed out after %s", requestID, timeout)
			}
		}

		result := <-respCh
		return result.data, result.err
	}

	// Round robin over connections, with retries
	retries := max(1, t.config.RetryCount)
	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		connection := t.nextConnection()
		if connection == nil {
			return nil, fmt.Errorf("no connections available")
		}

		resp, err := send(connection)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", retries, lastErr)
}

func (t *clientTransport) Close() error {
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (t *clientTransport) dial(endpoint string) (net.Conn, error) {
	conn, err := t.connector.Connect(endpoint)
	if err != nil {
		return nil, err
	}
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// nextConnection picks the next connection in round-robin order.
func (t *clientTransport) nextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}
	idx := atomic.AddUint64(&t.nextConnIndex, 1)
	return t.connections[idx%uint64(len(t.connections))]
}

func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, connection := range t.connections {
		close(connection.stopCh)
		if connection.conn != nil {
			connection.conn.Close()
		}
	}
	t.connections = nil
}

// readResponses pumps frames off the connection and routes them to the
// waiting request channel. Runs until the connection closes.
func (c *clientConnection) readResponses() {
	logger := logging.For("transport/" + c.parent.connector.GetName())

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		requestID, data, err := readFrame(c.conn, nil)
		if err != nil {
			// Fail every in-flight request on this connection
			c.requestChans.Range(func(id uint64, ch chan responseResult) bool {
				ch <- responseResult{err: fmt.Errorf("connection error: %w", err)}
				return true
			})
			select {
			case <-c.stopCh:
			default:
				logger.Warn("connection read failed", "endpoint", c.endpoint, "err", err)
			}
			return
		}

		if ch, ok := c.requestChans.Load(requestID); ok {
			ch <- responseResult{data: append([]byte(nil), data...)}
		}
	}
}
