package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/logging"
	"github.com/keydex/keydex/rpc/common"
	"github.com/keydex/keydex/rpc/serializer"
	"github.com/keydex/keydex/rpc/transport"
)

// NewRPCServer creates a new RPC server binding one store to a transport.
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		store,
//		tcp.NewTCPServerTransport(config.WorkersPerConn),
//		serializer.NewMsgpackSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	store kv.Store,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	logger := logging.For("rpc/server")
	logger.Info("created RPC server")
	logger.Info(config.String())

	return &RPCServer{
		config:     config,
		store:      store,
		adapter:    NewStoreServerAdapter(),
		transport:  transport,
		serializer: serializer,
		logger:     logger,
	}
}

type RPCServer struct {
	config     common.ServerConfig
	store      kv.Store
	adapter    IRPCServerAdapter
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	logger     *slog.Logger
}

// Serve registers the transport handler and blocks serving requests.
func (s *RPCServer) Serve() error {
	s.registerTransportHandler()

	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics()
	}

	return s.transport.Listen(s.config)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Decode the request
		if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to deserialize request: %s", err),
			}
		} else {
			start := time.Now()
			respMsg = *s.adapter.Handle(&msg, s.store)
			observeRequest(msg.MsgType, respMsg.Err != "", time.Since(start))
		}

		// Encode the response
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			s.logger.Error("failed to serialize response", "err", err)
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
			val, _ = s.serializer.Serialize(respMsg)
		}
		return val
	})
}

// observeRequest updates the per-operation counters and latency summaries.
func observeRequest(msgType common.MessageType, failed bool, took time.Duration) {
	metrics.GetOrCreateCounter(
		fmt.Sprintf(`keydex_requests_total{op=%q}`, msgType),
	).Inc()
	if failed {
		metrics.GetOrCreateCounter(
			fmt.Sprintf(`keydex_request_errors_total{op=%q}`, msgType),
		).Inc()
	}
	metrics.GetOrCreateSummary(
		fmt.Sprintf(`keydex_request_duration_seconds{op=%q}`, msgType),
	).Update(took.Seconds())
}

// serveMetrics exposes the process metrics in Prometheus text format.
func (s *RPCServer) serveMetrics() {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	s.logger.Info("serving metrics", "endpoint", s.config.MetricsEndpoint)
	if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
		s.logger.Error("metrics endpoint failed", "err", err)
	}
}
