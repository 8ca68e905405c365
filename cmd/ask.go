/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/repository"
	"github.com/tieubaoca/medguide-be/service"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question against the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		userID, _ := cmd.Flags().GetString("user")
		sessionID, _ := cmd.Flags().GetString("session")
		question := strings.Join(args, " ")

		ctx := context.Background()

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
		defer mongoClient.Disconnect(ctx)
		memoryRepo := repository.NewMemoryRepo(mongoClient.Database("medguide"))

		chatService := service.NewChatService(aiService, weaviateDb, memoryRepo, cfg.Retrieval, cfg.WebSearch.AllowedDomains)

		answer, retrieved, err := chatService.Answer(ctx, question, userID, sessionID)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}
		fmt.Printf("Retrieved docs: %d\n\n%s\n", retrieved, answer)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("user", "cli-user", "user id for the conversation memory")
	askCmd.Flags().String("session", "cli-session", "session id for the conversation memory")
}
