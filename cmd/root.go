package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"farmstand/internal/app"
	"farmstand/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "farmstand",
	Short: "Farmstand produce marketplace service",
	Long: `Farmstand is the backend for a local produce marketplace. It identifies
produce from photos via an external image-tagging service, matches the tags
against a curated taxonomy, and suggests draft listing fields for human review.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check database connectivity and other diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}
		defer appInstance.Close()

		fmt.Println("Checking database connectivity...")
		if err := appInstance.Ping(ctx); err != nil {
			color.Red("Database ping failed: %v", err)
			return fmt.Errorf("database ping failed: %w", err)
		}
		color.Green("Database connection successful.")

		fmt.Printf("Vision provider: %s\n", appInstance.VisionClient.Name())
		fmt.Printf("Match threshold: %.2f (cache TTL %s)\n",
			appInstance.Config.Match.Threshold, appInstance.Config.Match.CacheTTL)
		return nil
	},
}
