package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tieubaoca/medguide-be/config"
	"github.com/tieubaoca/medguide-be/types"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// SearchResult represents a single search result from Google Custom Search API
type SearchResult struct {
	Title   string `json:"title"`   // The title of the search result
	Link    string `json:"link"`    // The URL of the search result
	Snippet string `json:"snippet"` // A brief excerpt from the search result
}

// SearchService performs the web-search fallback of the chat agent. Every
// query is restricted to the configured allow-list of medical domains.
type SearchService struct {
	apiKey     string
	engineID   string
	modifier   string
	maxResults int64
}

func NewSearchService(cfg config.WebSearchConfig) *SearchService {
	sites := make([]string, 0, len(cfg.AllowedDomains))
	for _, domain := range cfg.AllowedDomains {
		sites = append(sites, "site:"+domain)
	}
	maxResults := int64(cfg.MaxResults)
	if maxResults <= 0 {
		maxResults = 2
	}
	return &SearchService{
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
		modifier:   strings.Join(sites, " OR "),
		maxResults: maxResults,
	}
}

// Search performs a domain-restricted search and returns structured results
func (s *SearchService) Search(ctx context.Context, query string) ([]SearchResult, error) {
	opts := []option.ClientOption{}
	if s.apiKey != "" {
		opts = append(opts, option.WithAPIKey(s.apiKey))
	}
	searchService, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %v", err)
	}

	if s.modifier != "" {
		query = query + " " + s.modifier
	}

	search := searchService.Cse.List()
	search.Q(query)
	search.Cx(s.engineID)
	search.Num(s.maxResults)

	result, err := search.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %v", err)
	}

	searchResults := make([]SearchResult, 0)
	for _, item := range result.Items {
		searchResults = append(searchResults, SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return searchResults, nil
}

// SearchJSON performs a search and returns results as a JSON string
func (s *SearchService) SearchJSON(ctx context.Context, query string) (string, error) {
	results, err := s.Search(ctx, query)
	if err != nil {
		return "", err
	}

	jsonResult, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %v", err)
	}
	return string(jsonResult), nil
}

// Handler adapts the search service to the model tool-call interface.
// Arguments arrive as {"query": "..."}; the response is the JSON result
// list for the model to quote from.
func (s *SearchService) Handler() types.FunctionHandler {
	return func(ctx context.Context, args []byte) (any, error) {
		var params struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid search arguments: %v", err)
		}
		return s.SearchJSON(ctx, params.Query)
	}
}
