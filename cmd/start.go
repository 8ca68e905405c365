/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/handler"
	"github.com/tieubaoca/medguide-be/repository"
	"github.com/tieubaoca/medguide-be/service"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the chat server",
	Long:  `Starts a server that handles report uploads and AI chat connections`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ctx := context.Background()

		// Initialize services
		pdfService := newPDFService(cfg)
		aiService, err := newAIService(cfg)
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoDb := mongoClient.Database("medguide")
		memoryRepo := repository.NewMemoryRepo(mongoDb)

		reportService := service.NewReportService(
			aiService,
			pdfService,
			cfg.OutputsDir(),
			cfg.Pipeline.Workers,
			cfg.Pipeline.TaskTimeoutSeconds,
		)
		knowledgeService := service.NewKnowledgeService(weaviateDb, pdfService, cfg.PdfsDir(), cfg.OutputsDir())
		chatService := service.NewChatService(aiService, weaviateDb, memoryRepo, cfg.Retrieval, cfg.WebSearch.AllowedDomains)
		wsService := service.NewWebSocketService(chatService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		chatHandler := handler.NewChatHandler(chatService)
		reportHandler := handler.NewReportHandler(reportService, knowledgeService, filepath.Join(cfg.DataDir, "uploads"))
		searchHandler := handler.NewSearchHandler(weaviateDb, cfg.Retrieval.TopK)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		api := router.Group("/api")
		{
			api.POST("/ask", chatHandler.HandleAsk)
			api.POST("/report", reportHandler.HandleUploadReport)
			api.GET("/report/final", reportHandler.HandleGetFinalReport)
			api.POST("/search", searchHandler.HandleSearch)
		}

		router.GET("/ws", func(c *gin.Context) {
			wsService.HandleChat(c.Writer, c.Request)
		})
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
