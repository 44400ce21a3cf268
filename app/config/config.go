package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	OpenAI   OpenAI   `yaml:"openai"`
	DB       DB       `yaml:"db"`
	Zoho     Zoho     `yaml:"zoho"`
	Weaviate Weaviate `yaml:"weaviate"`
	Session  Session  `yaml:"session"`
	Agent    Agent    `yaml:"agent"`
}

type OpenAI struct {
	Decision ModelConfig `yaml:"decision" validate:"required"`
	// Model used to embed questions for knowledge base search
	EmbeddingModel string `yaml:"embedding_model" example:"text-embedding-3-large"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1" validate:"required"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// OpenAI model
	Model string `yaml:"model" example:"gpt-4" validate:"required"`
	// Completion token limit per decision
	MaxTokens int `yaml:"max_tokens" example:"1000"`
}

type Server struct {
	// Listen address of the HTTP gateway
	Address string `yaml:"address" example:":8080"`
}

type DB struct {
	// Postgres username
	User string `yaml:"user" example:"postgres" validate:"required"`
	// Postgres password
	Pass string `yaml:"pass" validate:"required"`
	// Postgres host
	Host string `yaml:"host"  example:"localhost:5432" validate:"required"`
	// Postgres database name
	Database string `yaml:"database" example:"fairwaydesk" validate:"required"`
}

type Zoho struct {
	// Client ID of the Zoho application
	ClientID string `yaml:"client_id" example:"1000.ABC123DEF456" validate:"required"`
	// Client secret of the Zoho application
	ClientSecret string `yaml:"client_secret" example:"abc123def456ghi789jkl012mno345pqr678stu901" validate:"required"`
	// Long-lived refresh token of the CRM integration user
	RefreshToken string `yaml:"refresh_token" example:"1000.abc123def456.ghi789jkl012" validate:"required"`
	// OAuth accounts server
	AccountsURL string `yaml:"accounts_url" example:"https://accounts.zoho.com"`
	// CRM API server
	APIBaseURL string `yaml:"api_base_url" example:"https://www.zohoapis.com"`
}

type Weaviate struct {
	// Scheme of the Weaviate endpoint
	Scheme string `yaml:"scheme" example:"http"`
	// Host of the Weaviate endpoint
	Host string `yaml:"host" example:"localhost:8081" validate:"required"`
	// API key, leave empty for anonymous access
	APIKey string `yaml:"api_key"`
	// Class holding the pre-embedded knowledge base chunks
	Class string `yaml:"class" example:"SupportChunk"`
}

type Session struct {
	// Directory of the session database
	Dir string `yaml:"dir" example:"data/sessions"`
	// Inactivity window of an active conversation
	TTL time.Duration `yaml:"ttl" example:"1h"`
	// Inactivity window of an archived conversation
	ArchiveTTL time.Duration `yaml:"archive_ttl" example:"24h"`
}

type Agent struct {
	// Hard ceiling of decide/execute cycles per inbound user message
	MaxCycles int `yaml:"max_cycles" example:"5"`
	// Number of knowledge base chunks fed back to the model
	TopK int `yaml:"top_k" example:"3"`
	// Maximum similarity distance of a relevant chunk
	MaxDistance float64 `yaml:"max_distance" example:"0.3"`
	// Additional MCP tool servers attached to the task registry
	MCPServers []MCPServer `yaml:"mcp_servers"`
}

type MCPServer struct {
	Name    string   `yaml:"name" validate:"required"`
	Command string   `yaml:"command" validate:"required"`
	Args    []string `yaml:"args"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.ApplyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.OpenAI.Decision.MaxTokens == 0 {
		c.OpenAI.Decision.MaxTokens = 1000
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-large"
	}
	if c.Zoho.AccountsURL == "" {
		c.Zoho.AccountsURL = "https://accounts.zoho.com"
	}
	if c.Zoho.APIBaseURL == "" {
		c.Zoho.APIBaseURL = "https://www.zohoapis.com"
	}
	if c.Weaviate.Scheme == "" {
		c.Weaviate.Scheme = "http"
	}
	if c.Weaviate.Class == "" {
		c.Weaviate.Class = "SupportChunk"
	}
	if c.Session.Dir == "" {
		c.Session.Dir = "data/sessions"
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = time.Hour
	}
	if c.Session.ArchiveTTL == 0 {
		c.Session.ArchiveTTL = 24 * time.Hour
	}
	if c.Agent.MaxCycles == 0 {
		c.Agent.MaxCycles = 5
	}
	if c.Agent.TopK == 0 {
		c.Agent.TopK = 3
	}
	if c.Agent.MaxDistance == 0 {
		c.Agent.MaxDistance = 0.3
	}
}
