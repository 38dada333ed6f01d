package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"farmstand/internal/store"
)

var (
	taxonomyListAll       bool
	taxonomyUpsertSyns    []string
	taxonomyUpsertUnit    string
	taxonomyUpsertPrio    int
	taxonomyUpsertDisable bool
)

var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect and maintain the produce taxonomy",
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List produce taxonomy items",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		items, err := appInstance.TaxonomyStore.ListProduceItems(cmd.Context(), !taxonomyListAll)
		if err != nil {
			return fmt.Errorf("failed to list produce items: %w", err)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Canonical", "Synonyms", "Unit", "Priority", "Active"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, item := range items {
			unit := ""
			if item.DefaultUnit != nil {
				unit = *item.DefaultUnit
			}
			table.Append([]string{
				strconv.FormatInt(item.ID, 10),
				item.Canonical,
				strings.Join(item.Synonyms, ", "),
				unit,
				strconv.Itoa(item.Priority),
				strconv.FormatBool(item.Active),
			})
		}
		table.Render()
		return nil
	},
}

var taxonomyUpsertCmd = &cobra.Command{
	Use:   "upsert <canonical>",
	Short: "Create or update a taxonomy item by canonical name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		params := store.UpsertProduceItemParams{
			Canonical: args[0],
			Synonyms:  taxonomyUpsertSyns,
		}
		if cmd.Flags().Changed("unit") {
			params.DefaultUnit = &taxonomyUpsertUnit
		}
		if cmd.Flags().Changed("priority") {
			params.Priority = &taxonomyUpsertPrio
		}
		if taxonomyUpsertDisable {
			inactive := false
			params.Active = &inactive
		}

		item, created, err := appInstance.TaxonomyStore.UpsertProduceItem(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("failed to upsert produce item: %w", err)
		}

		verb := "Updated"
		if created {
			verb = "Created"
		}
		fmt.Printf("%s produce item %d: %s (synonyms: %s)\n",
			verb, item.ID, item.Canonical, strings.Join(item.Synonyms, ", "))
		return nil
	},
}

var taxonomySynonymsCmd = &cobra.Command{
	Use:   "add-synonyms <id> <synonym>...",
	Short: "Append synonyms to an existing taxonomy item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid produce item ID: %s", args[0])
		}

		item, err := appInstance.TaxonomyStore.AppendSynonyms(cmd.Context(), id, args[1:])
		if err != nil {
			return fmt.Errorf("failed to append synonyms: %w", err)
		}

		fmt.Printf("Produce item %d synonyms: %s\n", item.ID, strings.Join(item.Synonyms, ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyListCmd)
	taxonomyCmd.AddCommand(taxonomyUpsertCmd)
	taxonomyCmd.AddCommand(taxonomySynonymsCmd)

	taxonomyListCmd.Flags().BoolVar(&taxonomyListAll, "all", false, "Include inactive items")
	taxonomyUpsertCmd.Flags().StringSliceVar(&taxonomyUpsertSyns, "synonyms", nil, "Synonyms to merge in")
	taxonomyUpsertCmd.Flags().StringVar(&taxonomyUpsertUnit, "unit", "", "Default measurement unit (kg, lb, count, bunch)")
	taxonomyUpsertCmd.Flags().IntVar(&taxonomyUpsertPrio, "priority", 0, "Manual priority boost")
	taxonomyUpsertCmd.Flags().BoolVar(&taxonomyUpsertDisable, "deactivate", false, "Deactivate the item")
}
