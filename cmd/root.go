package cmd

import (
	"fmt"
	"os"

	"github.com/keydex/keydex/cmd/entity"
	"github.com/keydex/keydex/cmd/serve"
	"github.com/keydex/keydex/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "keydex",
		Short: "secondary-index key-value store",
		Long: fmt.Sprintf(`keydex (v%s)

A key-value store for schemaless entities that maintains
secondary indexes alongside every write, so entities can be
looked up by the values of their indexed properties.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of keydex",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("keydex v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(entity.EntityCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "msgpack", util.WrapString("serializer to use (json, gob, msgpack, optionally with +s2 suffix for compression)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
