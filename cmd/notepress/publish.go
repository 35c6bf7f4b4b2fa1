package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/notepress/notepress/internal/core"
	"github.com/spf13/cobra"
)

var dryRun bool
var force bool

func init() {
	publishCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be published without writing anything")
	publishCmd.Flags().BoolVarP(&force, "force", "f", false, "Republish every note even when unchanged")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the vault",
	Long:  `Publish every publishable note of the vault to the website content tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			fmt.Println("Too many arguments. No argument is supported.")
			os.Exit(1)
		}

		publisher, err := core.NewPublisher(core.CurrentConfig())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		publisher.DryRun = dryRun
		publisher.Force = force

		summary, err := publisher.PublishAll(cmd.Context())
		if summary != nil {
			printSummary(summary)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		if summary.Errored() {
			os.Exit(1)
		}
	},
}

func printSummary(summary *core.RunSummary) {
	for _, report := range summary.Reports {
		printReport(report)
	}
	for _, path := range summary.OrphanNotes {
		color.Red(fmt.Sprintf("%-18s %s", "removed", path))
	}
	for _, path := range summary.OrphanImages {
		color.Red(fmt.Sprintf("%-18s %s", "removed", path))
	}
	for _, warning := range summary.Warnings {
		color.Yellow("warning: " + warning)
	}

	prefix := ""
	if summary.DryRun {
		prefix = "(dry-run) "
	}
	fmt.Printf("%s%d published, %d skipped-unchanged, %d skipped-filtered, %d errors\n",
		prefix,
		summary.Count(core.StatusPublished),
		summary.Count(core.StatusSkippedUnchanged),
		summary.Count(core.StatusSkippedFiltered),
		summary.Count(core.StatusError))
}

func printReport(report *core.NoteReport) {
	line := fmt.Sprintf("%-18s %s", report.StatusLine(), report.Path)
	switch report.Status {
	case core.StatusPublished:
		color.Green(line)
	case core.StatusError:
		color.Red(line)
	default:
		fmt.Println(line)
	}
}
