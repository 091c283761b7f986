package serve

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	cmdUtil "github.com/keydex/keydex/cmd/util"
	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/kv/boltkv"
	"github.com/keydex/keydex/lib/kv/memkv"
	"github.com/keydex/keydex/lib/logging"
	"github.com/keydex/keydex/rpc/common"
	"github.com/keydex/keydex/rpc/server"
	"github.com/keydex/keydex/rpc/transport"
	"github.com/keydex/keydex/rpc/transport/tcp"
	"github.com/keydex/keydex/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the keydex server",
		Long:    `Start the keydex server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is KEYDEX_<flag> (e.g. KEYDEX_ENGINE=bolt)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the server will listen (e.g. localhost:8080, /tmp/keydex.sock, ...)"))

	key = "engine"
	ServeCmd.PersistentFlags().String(key, "mem", cmdUtil.WrapString("Storage engine to run on. One of: mem (in-memory), bolt (persistent, single file)"))

	key = "bolt-path"
	ServeCmd.PersistentFlags().String(key, "keydex.db", cmdUtil.WrapString("Path of the database file (only for the bolt engine)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Read/write timeout per connection in seconds"))

	key = "workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("Maximum number of requests handled concurrently per connection"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional address serving Prometheus metrics (e.g. localhost:9090, empty disables)"))

	key = "transport-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 512, cmdUtil.WrapString("The size of the write buffer per connection (in KB)"))

	key = "transport-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 512, cmdUtil.WrapString("The size of the read buffer per connection (in KB)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY for accepted connections (only for tcp)"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval for accepted connections (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The linger time for accepted connections (in seconds, only for tcp)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "log-format"
	ServeCmd.PersistentFlags().String(key, "text", cmdUtil.WrapString("Log output format (text, json)"))
}

// processConfig reads the configuration from the command line flags and
// environment variables and converts it to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse engine
	switch engine := viper.GetString("engine"); engine {
	case "mem":
		serveCmdConfig.Engine = common.EngineMem
	case "bolt":
		serveCmdConfig.Engine = common.EngineBolt
	default:
		return fmt.Errorf("invalid engine: %s (expected one of: mem, bolt)", engine)
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.BoltPath = viper.GetString("bolt-path")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.WorkersPerConn = viper.GetInt("workers-per-conn")
	serveCmdConfig.Transport = common.SocketConf{
		WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
		ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
	}
	serveCmdConfig.TCP = common.TCPConf{
		TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
	}
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.LogFormat = viper.GetString("log-format")

	return nil
}

// run starts the keydex server
func run(_ *cobra.Command, _ []string) error {
	logging.Init(serveCmdConfig.LogLevel, serveCmdConfig.LogFormat)

	// parse the serializer
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	// parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "tcp":
		t = tcp.NewTCPServerTransport(serveCmdConfig.WorkersPerConn)
	case "unix":
		t = unix.NewUnixServerTransport(serveCmdConfig.WorkersPerConn)
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	// open the storage engine
	var store kv.Store
	switch serveCmdConfig.Engine {
	case common.EngineMem:
		store = memkv.NewStore()
	case common.EngineBolt:
		store, err = boltkv.Open(serveCmdConfig.BoltPath)
		if err != nil {
			return fmt.Errorf("failed to open database file: %w", err)
		}
	}
	defer func() { _ = store.Close() }()

	serv := server.NewRPCServer(
		*serveCmdConfig,
		store,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("keydex")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
