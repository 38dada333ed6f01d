package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"farmstand/internal/store"
)

// seedEntries is the starter taxonomy. Seeding goes through the same
// upsert path as the admin API, so re-running is idempotent.
var seedEntries = []struct {
	canonical string
	synonyms  []string
}{
	{canonical: "tomato"},
	{canonical: "lettuce"},
	{canonical: "cucumber"},
	{canonical: "potato"},
	{canonical: "onion"},
	{canonical: "garlic"},
	{canonical: "carrot"},
	{canonical: "pepper"},
	{canonical: "spinach"},
	{canonical: "kale"},
	{canonical: "mushroom"},
	{canonical: "strawberry"},
	{canonical: "blueberry"},
	{canonical: "apple"},
	{canonical: "orange"},
	{canonical: "banana"},
	{canonical: "jalapeño", synonyms: []string{"jalapeno", "chili pepper", "green chili"}},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the database schema and seed the starter produce taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}
		defer appInstance.Close()

		if err := appInstance.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}

		created := 0
		for _, entry := range seedEntries {
			_, wasCreated, err := appInstance.TaxonomyStore.UpsertProduceItem(ctx, store.UpsertProduceItemParams{
				Canonical: entry.canonical,
				Synonyms:  entry.synonyms,
			})
			if err != nil {
				return fmt.Errorf("failed to seed %q: %w", entry.canonical, err)
			}
			if wasCreated {
				created++
			}
		}

		color.Green("Seeded %d produce taxonomy items (%d new)", len(seedEntries), created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
