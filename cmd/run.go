/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/repository"
	"github.com/tieubaoca/medguide-be/service"
)

var demoQueries = []string{
	"Interpret Glycosylated Hemoglobin results in my report and suggest possible causes.",
	"Interpret ESTIMATED AVG. GLUCOSE results in my report and suggest possible causes.",
	"What was the question that I asked previous to previous, just give me the question word by word.",
	"What was the question that I asked previously, just give me the question word by word.",
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a lab report and rebuild the knowledge base",
	Long: `Runs the full pipeline on a single PDF: per-page extraction and
analysis, final report synthesis, reference PDF conversion, knowledge
base indexing, and a short scripted chat session against the result.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		pdfPath, _ := cmd.Flags().GetString("file")
		if pdfPath == "" {
			pdfPath = cfg.SampleReport
		}

		ctx := context.Background()

		pdfService := newPDFService(cfg)
		aiService, err := newAIService(cfg)
		if err != nil {
			log.Fatalf("Failed to create AI service: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		reportService := service.NewReportService(
			aiService,
			pdfService,
			cfg.OutputsDir(),
			cfg.Pipeline.Workers,
			cfg.Pipeline.TaskTimeoutSeconds,
		)

		result, err := reportService.AnalyzeReport(ctx, pdfPath)
		if err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}

		if result.FinalReport != "" {
			fmt.Println("\n================= FINAL HEALTH REPORT =================")
			fmt.Println(result.FinalReport)
		}

		// Reference PDFs become searchable text before indexing.
		converted, err := pdfService.ConvertPDFDirToText(cfg.SourcePDFDir(), cfg.PdfsDir())
		if err != nil {
			log.Printf("Warning: reference PDF conversion failed: %v", err)
		} else if converted > 0 {
			log.Printf("Converted %d reference PDFs to text", converted)
		}

		knowledgeService := service.NewKnowledgeService(weaviateDb, pdfService, cfg.PdfsDir(), cfg.OutputsDir())
		indexed, err := knowledgeService.BuildKnowledgeBase(ctx, true)
		if err != nil {
			log.Fatalf("Failed to build knowledge base: %v", err)
		}
		log.Printf("Indexed %d files into the knowledge base", indexed)

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoClient.Disconnect(ctx)
		memoryRepo := repository.NewMemoryRepo(mongoClient.Database("medguide"))

		chatService := service.NewChatService(aiService, weaviateDb, memoryRepo, cfg.Retrieval, cfg.WebSearch.AllowedDomains)

		userID := "user-123"
		sessionID := "medguide-session-1"
		if err := chatService.ResetMemory(ctx, userID, sessionID); err != nil {
			log.Printf("Warning: failed to clear session memory: %v", err)
		}

		for _, query := range demoQueries {
			answer, retrieved, err := chatService.Answer(ctx, query, userID, sessionID)
			if err != nil {
				log.Printf("Failed to answer %q: %v", query, err)
				continue
			}
			fmt.Printf("\nRetrieved docs: %d\n", retrieved)
			fmt.Printf("\nFinal Answer:\n%s\n", answer)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("file", "f", "", "lab report PDF to analyze (defaults to the configured sample report)")
}
