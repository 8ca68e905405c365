/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/database"
	"github.com/tieubaoca/medguide-be/service"
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge base from existing text artifacts",
	Long: `Reads the text files produced by previous analysis runs plus the
converted reference PDFs and indexes them into the vector store.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		recreate, _ := cmd.Flags().GetBool("recreate")

		pdfService := newPDFService(cfg)
		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		converted, err := pdfService.ConvertPDFDirToText(cfg.SourcePDFDir(), cfg.PdfsDir())
		if err != nil {
			log.Printf("Warning: reference PDF conversion failed: %v", err)
		} else if converted > 0 {
			log.Printf("Converted %d reference PDFs to text", converted)
		}

		knowledgeService := service.NewKnowledgeService(weaviateDb, pdfService, cfg.PdfsDir(), cfg.OutputsDir())
		indexed, err := knowledgeService.BuildKnowledgeBase(context.Background(), recreate)
		if err != nil {
			log.Fatalf("Failed to build knowledge base: %v", err)
		}
		log.Printf("Indexed %d files into the knowledge base", indexed)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().Bool("recreate", false, "drop and recreate the vector store class before indexing")
}
