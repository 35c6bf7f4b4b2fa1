package main

import (
	"fmt"
	"os"

	"github.com/notepress/notepress/internal/core"
	"github.com/spf13/cobra"
)

var noteForce bool

func init() {
	notePublishCmd.Flags().BoolVarP(&noteForce, "force", "f", false, "Republish the note even when unchanged")
	noteCmd.AddCommand(notePublishCmd)
	noteCmd.AddCommand(noteDeleteCmd)
	rootCmd.AddCommand(noteCmd)
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage single notes",
	Long:  `Publish or unpublish a single note without a full run.`,
}

var notePublishCmd = &cobra.Command{
	Use:   "publish <title>",
	Short: "Publish a single note",
	Long:  `Publish the note with the given title without running the whole pipeline.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publisher, err := core.NewPublisher(core.CurrentConfig())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		publisher.Force = noteForce
		report, err := publisher.PublishOne(cmd.Context(), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		printReport(report)
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Unpublish a single note",
	Long: `Remove the published file of the note with the given title.
Images left unreferenced are swept by the next full publish.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		publisher, err := core.NewPublisher(core.CurrentConfig())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if err := publisher.DeleteOne(args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Unpublished %q\n", args[0])
	},
}
