package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string              `mapstructure:"port"`
	AIBackend           string              `mapstructure:"ai_backend"`
	AIEndpoint          string              `mapstructure:"ai_endpoint"`
	Model               string              `mapstructure:"model"`
	OpenAIAPIKey        string              `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys       []string            `mapstructure:"gemini_api_keys"`
	MongoURI            string              `mapstructure:"MONGODB_URI"`
	DataDir             string              `mapstructure:"data_dir"`
	SampleReport        string              `mapstructure:"sample_report"`
	Pipeline            PipelineConfig      `mapstructure:"pipeline"`
	Chunking            ChunkingConfig      `mapstructure:"chunking"`
	Retrieval           RetrievalConfig     `mapstructure:"retrieval"`
	WeaviateStoreConfig WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
	WebSearch           WebSearchConfig     `mapstructure:"web_search"`
}

// PipelineConfig bounds the page fan-out so a large document cannot launch
// an unbounded number of concurrent model calls.
type PipelineConfig struct {
	Workers            int `mapstructure:"workers"`
	TaskTimeoutSeconds int `mapstructure:"task_timeout_seconds"`
	MaxPageChars       int `mapstructure:"max_page_chars"`
}

type ChunkingConfig struct {
	MaxChunkSize int `mapstructure:"max_chunk_size"`
	OverlapSize  int `mapstructure:"overlap_size"`
}

type RetrievalConfig struct {
	TopK int `mapstructure:"top_k"`
	// MinMatches gates the answer pipeline on the number of retrieved
	// chunks, not on a similarity score. Below the threshold the chat
	// agent falls back to the weak-context prompt with web search.
	MinMatches    int `mapstructure:"min_matches"`
	HistoryWindow int `mapstructure:"history_window"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"`
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type WebSearchConfig struct {
	APIKey         string   `mapstructure:"GOOGLE_SEARCH_API_KEY"`
	EngineID       string   `mapstructure:"engine_id"`
	AllowedDomains []string `mapstructure:"allowed_domains"`
	MaxResults     int      `mapstructure:"max_results"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")
	v.BindEnv("MONGODB_URI")
	v.BindEnv("GOOGLE_SEARCH_API_KEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("ai_backend", "openai")
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("data_dir", "data")
	v.SetDefault("sample_report", "data/sample_reports/labreport.pdf")
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.task_timeout_seconds", 200)
	v.SetDefault("pipeline.max_page_chars", 15000)
	v.SetDefault("chunking.max_chunk_size", 1000)
	v.SetDefault("chunking.overlap_size", 150)
	v.SetDefault("retrieval.top_k", 5)
	v.SetDefault("retrieval.min_matches", 1)
	v.SetDefault("retrieval.history_window", 3)
	v.SetDefault("web_search.allowed_domains", []string{"nih.gov", "mayoclinic.org", "medlineplus.gov"})
	v.SetDefault("web_search.max_results", 2)
}

// validate fails fast on missing credentials so a broken environment
// aborts at startup instead of halfway through a pipeline run.
func (c *Config) validate() error {
	switch c.AIBackend {
	case "openai", "":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not set")
		}
	case "gemini":
		if len(c.GeminiAPIKeys) == 0 {
			return fmt.Errorf("ai_backend is gemini but no gemini_api_keys configured")
		}
	default:
		return fmt.Errorf("unknown ai_backend %q", c.AIBackend)
	}
	return nil
}

// OutputsDir holds the generated per-page analyses and the final report.
func (c *Config) OutputsDir() string {
	return filepath.Join(c.DataDir, "knowledge_base", "outputs")
}

// PdfsDir holds reference PDFs converted to plain text.
func (c *Config) PdfsDir() string {
	return filepath.Join(c.DataDir, "knowledge_base", "pdfs")
}

// SourcePDFDir holds the reference PDFs before text conversion.
func (c *Config) SourcePDFDir() string {
	return filepath.Join(c.DataDir, "knowledge_base_pdfs")
}
