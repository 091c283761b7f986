package entity

import (
	"strings"

	"github.com/keydex/keydex/cmd/util"
	"github.com/keydex/keydex/lib/convert"
	"github.com/keydex/keydex/lib/index"
	"github.com/keydex/keydex/lib/keyspace"
	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/lib/logging"
	"github.com/keydex/keydex/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcStore kv.Store

	// EntityCommands represents the entity command group
	EntityCommands = &cobra.Command{
		Use:               "entity",
		Short:             "Store, query and delete keyspace entities",
		PersistentPreRunE: setupClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the entity command
	util.SetupRPCClientFlags(EntityCommands)

	// Indexed property paths, applied to the keyspace each command operates on
	EntityCommands.PersistentFlags().String("indexes", "", util.WrapString("Comma-separated list of property paths to maintain secondary indexes for (e.g. firstname,address.city)"))

	// Add subcommands
	EntityCommands.AddCommand(putCmd)
	EntityCommands.AddCommand(getCmd)
	EntityCommands.AddCommand(hasCmd)
	EntityCommands.AddCommand(delCmd)
	EntityCommands.AddCommand(listCmd)
	EntityCommands.AddCommand(countCmd)
	EntityCommands.AddCommand(dropCmd)
}

// setupClient initializes the remote store client
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the remote store client
	rpcStore, err = client.NewRPCStore(
		*config,
		t,
		s,
	)

	return err
}

// adapterFor builds a keyspace adapter over the remote store. The indexed
// property paths from the indexes flag are registered for the given keyspace.
func adapterFor(ks string) *keyspace.Adapter {
	registry := convert.NewRegistry()
	extractor := keyspace.NewPathExtractor()

	if paths := viper.GetString("indexes"); paths != "" {
		for _, path := range strings.Split(paths, ",") {
			if path = strings.TrimSpace(path); path != "" {
				extractor.AddIndex(ks, path)
			}
		}
	}

	return keyspace.NewAdapter(
		rpcStore,
		keyspace.NewMapCodec(registry),
		extractor,
		index.NewWriter(rpcStore, registry, logging.For("index")),
		logging.For("keyspace"),
	)
}
