// cvarpack CLI - compiles script and markup sources into cvar cell chains.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "cvarpack",
	Short: "Pack scripts and menus into chains of fixed-size cvars",
	Long: `cvarpack re-encodes script (.func) and menu markup (.rfm) sources into
chains of fixed-capacity cvar cells that the engine's cvar store can
load and replay in sequence.

Each output file is a plain config: one set assignment plus one
unescape directive per cell, followed by the entry-point commands to
paste into your loader.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commonlog.Configure(verbosity, nil)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
