/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/service"
	"github.com/tieubaoca/medguide-be/types"
)

const searchToolName = "search_medical_sources"
const searchToolDescription = "Search trusted medical websites for information about lab tests, markers and health conditions. Use this when the local knowledge base does not cover the question."

// newAIService builds the configured model backend and registers the web
// search tool on it when search credentials are present.
func newAIService(cfg *config.Config) (service.AIService, error) {
	var searchService *service.SearchService
	if cfg.WebSearch.APIKey != "" && cfg.WebSearch.EngineID != "" {
		searchService = service.NewSearchService(cfg.WebSearch)
	} else {
		log.Println("Web search credentials not set, search tool disabled")
	}

	switch cfg.AIBackend {
	case "openai", "":
		aiService := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		if searchService != nil {
			aiService.RegisterFunctionCall(
				searchToolName,
				searchToolDescription,
				jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"query": {
							Type:        jsonschema.String,
							Description: "The medical question or topic to look up",
						},
					},
					Required: []string{"query"},
				},
				searchService.Handler(),
			)
		}
		return aiService, nil
	case "gemini":
		aiService, err := service.NewGeminiService(cfg.GeminiAPIKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini service: %v", err)
		}
		if searchService != nil {
			aiService.RegisterFunction(
				searchToolName,
				searchToolDescription,
				map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: "The medical question or topic to look up",
					},
				},
				searchService.Handler(),
			)
		}
		return aiService, nil
	default:
		return nil, fmt.Errorf("unknown ai_backend %q", cfg.AIBackend)
	}
}

// newPDFService applies the configured chunking and page limits.
func newPDFService(cfg *config.Config) *service.PDFService {
	return service.NewPDFService(types.DocumentServiceConfig{
		MaxChunkSize: cfg.Chunking.MaxChunkSize,
		OverlapSize:  cfg.Chunking.OverlapSize,
		MaxPageChars: cfg.Pipeline.MaxPageChars,
	})
}
