package main

import (
	"fmt"
	"os"

	"github.com/notepress/notepress/internal/core"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List publication candidates",
	Long:  `Show every source file with the action the next publish would take, without writing anything.`,
	Run: func(cmd *cobra.Command, args []string) {
		publisher, err := core.NewPublisher(core.CurrentConfig())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		publisher.DryRun = true

		summary, err := publisher.PublishAll(cmd.Context())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		for _, report := range summary.Reports {
			printReport(report)
		}
	},
}
