package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/aisleguide/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an aisleguide config file in the current directory",
	Long:  `Creates a .aisleguide/config.yaml file in the current directory with a demo store layout.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := ".aisleguide/config.yaml"

	if err := config.WriteDefaultConfig(configPath); err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	return nil
}
