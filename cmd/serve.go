package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"farmstand/internal/apihandlers"
)

var (
	serveAddr string // Listen address
	servePort string // Listen port
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run Farmstand as an HTTP API server",
	Long: `Starts an HTTP server exposing the draft-from-image pipeline, image
uploads, and taxonomy administration via a RESTful API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		defer appInstance.Close()

		router := gin.Default() // Includes logger and recovery middleware

		apiHandler := apihandlers.NewAPIHandler(appInstance)
		adminToken := appInstance.Config.Server.AdminToken

		v1 := router.Group("/api/v1")
		{
			// The draft pipeline and uploads act on behalf of an owner
			// established by the identity collaborator upstream.
			owned := v1.Group("", apihandlers.RequireOwner())
			{
				owned.POST("/listings/draft-from-image", apiHandler.DraftFromImageHandler)
				owned.POST("/images/upload", apiHandler.UploadImageHandler)
			}

			v1.GET("/produce-items", apiHandler.ListProduceItemsHandler)

			admin := v1.Group("/admin", apihandlers.RequireOwner(), apihandlers.RequireAdmin(adminToken))
			{
				admin.POST("/produce-items", apiHandler.UpsertProduceItemHandler)
				admin.POST("/produce-items/:id/synonyms", apiHandler.AddSynonymsHandler)
			}
		}

		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		listenAddr := fmt.Sprintf("%s:%s", serveAddr, servePort)
		log.Printf("Starting Farmstand API server on http://%s", listenAddr)

		if err := router.Run(listenAddr); err != nil {
			log.Printf("ERROR: Failed to run API server: %v", err)
			return fmt.Errorf("failed to run API server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost", "Address to listen on (e.g., '0.0.0.0' for all interfaces)")
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
}
