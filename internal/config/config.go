package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server       ServerConfig
	Postgres     PostgresConfig
	Research     ResearchConfig
	Trends       TrendsConfig
	Financial    FinancialConfig
	GenAI        GenAIConfig
	Slack        SlackConfig
	Email        EmailConfig
	Orchestrator OrchestratorConfig
	Cache        CacheConfig
	Scheduler    SchedulerConfig
}

type ServerConfig struct {
	Addr string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type ResearchConfig struct {
	SearchURL string
	APIKey    string
}

type TrendsConfig struct {
	BaseURL string
	APIKey  string
}

type FinancialConfig struct {
	BaseURL string
	APIKey  string
}

type GenAIConfig struct {
	APIKey         string
	EmbeddingModel string
	ScoringModel   string
}

type SlackConfig struct {
	BotToken string
}

type EmailConfig struct {
	SMTPHost string
	SMTPPort string
	From     string
	Password string
}

type OrchestratorConfig struct {
	TaskTimeout time.Duration
}

type CacheConfig struct {
	DefaultTTL    time.Duration
	VolatileTTL   time.Duration
	MinSimilarity float64
	RetentionDays int
}

type SchedulerConfig struct {
	TickInterval   time.Duration
	MaxConcurrent  int
	FailureCeiling int
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Addr: getenv("SERVER_ADDR", ":8080"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Research: ResearchConfig{
			SearchURL: getenv("RESEARCH_SEARCH_URL", "https://api.bizradar.dev/search"),
			APIKey:    os.Getenv("RESEARCH_API_KEY"),
		},
		Trends: TrendsConfig{
			BaseURL: getenv("TRENDS_API_URL", "https://api.bizradar.dev/trends"),
			APIKey:  os.Getenv("TRENDS_API_KEY"),
		},
		Financial: FinancialConfig{
			BaseURL: getenv("FINANCIAL_API_URL", "https://api.bizradar.dev/financials"),
			APIKey:  os.Getenv("FINANCIAL_API_KEY"),
		},
		GenAI: GenAIConfig{
			APIKey:         os.Getenv("AI_API_KEY"),
			EmbeddingModel: getenv("AI_EMBEDDING_MODEL", "text-embedding-004"),
			ScoringModel:   getenv("AI_SCORING_MODEL", "gemini-2.0-flash"),
		},
		Slack: SlackConfig{
			BotToken: os.Getenv("SLACK_BOT_TOKEN"),
		},
		Email: EmailConfig{
			SMTPHost: getenv("SMTP_HOST", "localhost"),
			SMTPPort: getenv("SMTP_PORT", "587"),
			From:     os.Getenv("SMTP_FROM"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		Orchestrator: OrchestratorConfig{
			TaskTimeout: getenvDuration("TASK_TIMEOUT", 60*time.Second),
		},
		Cache: CacheConfig{
			DefaultTTL:    getenvDuration("CACHE_DEFAULT_TTL", 24*time.Hour),
			VolatileTTL:   getenvDuration("CACHE_VOLATILE_TTL", time.Hour),
			MinSimilarity: getenvFloat("CACHE_MIN_SIMILARITY", 0.92),
			RetentionDays: getenvInt("SNAPSHOT_RETENTION_DAYS", 90),
		},
		Scheduler: SchedulerConfig{
			TickInterval:   getenvDuration("SCHEDULER_TICK", 60*time.Second),
			MaxConcurrent:  getenvInt("SCHEDULER_MAX_CONCURRENT", 5),
			FailureCeiling: getenvInt("MONITOR_FAILURE_CEILING", 5),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
