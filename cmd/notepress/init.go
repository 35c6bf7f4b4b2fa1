package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notepress/notepress/internal/core"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Init a vault",
	Long:  `Create the .notepress directory with a default configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		configDir := filepath.Join(cwd, ".notepress")
		configPath := filepath.Join(configDir, "config")
		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Already a notepress vault: %s\n", configPath)
			os.Exit(1)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		content := strings.TrimLeft(core.DefaultConfig, "\n")
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Initialized empty vault configuration in %s\n", configPath)
	},
}
