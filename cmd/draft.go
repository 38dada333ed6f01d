package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"farmstand/internal/draft"
	"farmstand/internal/models"
)

var (
	draftImagePath string
	draftOwner     string
	draftDryRun    bool
)

// draftCmd runs the full pipeline against a local image file, bypassing
// the HTTP layer. Useful for smoke-testing tagging and taxonomy tuning.
var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Generate a draft suggestion from a local image file",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		data, err := os.ReadFile(draftImagePath)
		if err != nil {
			return fmt.Errorf("failed to read image file: %w", err)
		}

		ctx := cmd.Context()
		tags, err := appInstance.VisionClient.GetTags(ctx, data)
		if err != nil {
			return fmt.Errorf("tagging failed: %w", err)
		}

		result, err := appInstance.Matcher.Match(ctx, tags, appInstance.Config.Match.Threshold)
		if err != nil {
			return fmt.Errorf("matching failed: %w", err)
		}

		var fields models.SuggestedFields
		var draftID string
		if draftDryRun {
			fields = draft.BuildSuggestedFields(result)
		} else {
			asset := &models.ImageAsset{
				OwnerID:     draftOwner,
				Filename:    draftImagePath,
				ContentType: "application/octet-stream",
			}
			asset.Data = data
			if err := appInstance.ImageStore.CreateImageAsset(ctx, asset); err != nil {
				return fmt.Errorf("failed to store image: %w", err)
			}
			suggestion, err := appInstance.Synthesizer.Synthesize(ctx, draft.Params{
				ImageID:  asset.ID,
				OwnerID:  draftOwner,
				Provider: appInstance.VisionClient.Name(),
			}, result)
			if err != nil {
				return fmt.Errorf("failed to persist draft: %w", err)
			}
			fields = suggestion.SuggestedFields
			draftID = suggestion.ID.String()
		}

		out := map[string]any{
			"suggestedFields": fields,
			"confidence":      result.Score,
			"threshold":       result.Threshold,
			"candidates":      result.Candidates,
			"reasons":         result.Reasons,
		}
		if draftID != "" {
			out["draftSuggestionId"] = draftID
		}

		encoded, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(draftCmd)

	draftCmd.Flags().StringVar(&draftImagePath, "image", "", "Path to the image file (required)")
	draftCmd.Flags().StringVar(&draftOwner, "owner", uuid.Nil.String(), "Owner reference to attach to the draft")
	draftCmd.Flags().BoolVar(&draftDryRun, "dry-run", false, "Run the pipeline without persisting anything")
	draftCmd.MarkFlagRequired("image")
}
