package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notepress/notepress/internal/core"
)

var verboseInfo bool
var verboseDebug bool
var verboseTrace bool

var parallel int

var rootCmd = &cobra.Command{
	Use:   "notepress",
	Short: "NotePress publishes a vault of Markdown notes to a static website",
	Long:  `A publishing pipeline turning an Obsidian-style vault into a Hugo content tree.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() != "init" {
			// Ignore when configuration doesn't still exist
			CheckConfig()
		}

		// Enable verbose output. The most verbose level wins when multiple flags are passed.
		if verboseInfo {
			core.CurrentLogger().SetVerboseLevel(core.VerboseInfo)
		}
		if verboseDebug {
			core.CurrentLogger().SetVerboseLevel(core.VerboseDebug)
		}
		if verboseTrace {
			core.CurrentLogger().SetVerboseLevel(core.VerboseTrace)
		}

		if cmd.Name() != "init" && parallel > 0 {
			core.CurrentConfig().SetParallel(parallel)
		}
	},
}

func init() {
	// Use PersistentFlags to make flags accessible to sub-commands
	rootCmd.PersistentFlags().BoolVarP(&verboseInfo, "v", "", false, "enable verbose info output")
	rootCmd.PersistentFlags().BoolVarP(&verboseDebug, "vv", "", false, "enable verbose debug output")
	rootCmd.PersistentFlags().BoolVarP(&verboseTrace, "vvv", "", false, "enable verbose trace output")
	rootCmd.PersistentFlags().IntVarP(&parallel, "parallel", "t", 0, "Number of workers to use when publishing notes")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
