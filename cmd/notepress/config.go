package main

import (
	"fmt"
	"os"

	"github.com/notepress/notepress/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func CheckConfig() {
	core.CurrentConfig()
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  `Print the configuration after merging the defaults with the vault config file.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := core.CurrentConfig()
		fmt.Printf("# vault: %s\n", config.RootDirectory)
		output, err := toml.Marshal(config.ConfigFile)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Print(string(output))
	},
}
