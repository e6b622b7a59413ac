package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/adbroker-backend/internal/app"
)

var seedFile string

// seedCmd creates or replaces registry entries from a JSON file.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or replace categories from a JSON file",
	Long: `Creates or replaces owned categories. The file is either a list of
{disease, company, category_cost, link} objects or a registry export keyed by
disease. Seeded diseases are removed from the unclaimed list.

Example:
  adbroker seed --file categories_ads.json`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "path to the seed JSON file")
	_ = seedCmd.MarkFlagRequired("file")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	entries, err := app.LoadSeedFile(seedFile)
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	seeded, err := a.Services.Auction.SeedCategories(ctx, entries)
	if err != nil {
		return err
	}
	for _, c := range seeded {
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s -> %s at %.2f\n", c.Disease, c.Company, c.Price)
	}
	return nil
}
