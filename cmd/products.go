package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/aisleguide/internal/config"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the products in the configured store",
	Long:  `Display every product the store layout knows about, with its aisle and cell, so you know what you can ask for.`,
	RunE:  runProducts,
}

func init() {
	rootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Path(viper.GetString("config")))
	if err != nil {
		return err
	}

	m, err := cfg.BuildMap()
	if err != nil {
		return err
	}

	products := m.Products()
	fmt.Printf("%s:\n", cfg.Store.Name)
	if len(products) == 0 {
		fmt.Println("  (none)")
		return nil
	}

	// Align the aisle column on the longest name.
	maxLen := 0
	for _, p := range products {
		if len(p.Name) > maxLen {
			maxLen = len(p.Name)
		}
	}
	for _, p := range products {
		line := fmt.Sprintf("  %-*s  aisle %s  %s", maxLen, p.Name, p.Aisle, p.Cell)
		if len(p.Suggestions) > 0 {
			line += "  (goes with " + strings.Join(p.Suggestions, ", ") + ")"
		}
		fmt.Println(line)
	}
	return nil
}
