package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Groq     GroqConfig
	Gemini   GeminiConfig
	Pipeline PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration (model-attempt metrics sink)
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GroqConfig holds configuration for the Groq chat-completion provider.
// Groq serves both the primary extraction model and the cheaper repair model.
type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	RepairModel string
	Timeout     time.Duration
}

// GeminiConfig holds configuration for the Gemini fallback provider and embeddings
type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

// PipelineConfig holds the policy knobs of the processing pipeline.
// The defaults mirror reasonable production values; none of the specific
// numbers is load-bearing beyond "bounded".
type PipelineConfig struct {
	// Context selection
	ContextCap          int           // max open records handed to extraction
	RecencyWindow       time.Duration // records updated within this window always selected
	SimilarityThreshold float64       // minimum cosine similarity for context inclusion
	TranscriptSample    int           // max chars of transcript embedded for similarity
	EmbeddingCacheTTL   time.Duration

	// Owner resolution
	FuzzyAcceptance     float64 // minimum similarity for a fuzzy owner match
	FuzzyHighConfidence float64 // similarity above which a single match auto-resolves
	FuzzyIndexTTL       time.Duration
	MaxOwnerCandidates  int

	// Review
	LockExpiry time.Duration // soft edit lock lifetime

	// Vector store
	VectorStorePath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "meetwise"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Groq: GroqConfig{
			APIKey:      getEnv("GROQ_API_KEY", ""),
			BaseURL:     getEnv("GROQ_API_URL", "https://api.groq.com"),
			Model:       getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
			RepairModel: getEnv("GROQ_REPAIR_MODEL", "llama-3.1-8b-instant"),
			Timeout:     getEnvAsDuration("GROQ_TIMEOUT", "45s"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
			Timeout:        getEnvAsDuration("GEMINI_TIMEOUT", "45s"),
		},
		Pipeline: PipelineConfig{
			ContextCap:          getEnvAsInt("CONTEXT_CAP", 25),
			RecencyWindow:       getEnvAsDuration("CONTEXT_RECENCY_WINDOW", "336h"), // 14 days
			SimilarityThreshold: getEnvAsFloat("CONTEXT_SIMILARITY_THRESHOLD", 0.35),
			TranscriptSample:    getEnvAsInt("CONTEXT_TRANSCRIPT_SAMPLE", 4000),
			EmbeddingCacheTTL:   getEnvAsDuration("EMBEDDING_CACHE_TTL", "5m"),
			FuzzyAcceptance:     getEnvAsFloat("OWNER_FUZZY_ACCEPTANCE", 0.72),
			FuzzyHighConfidence: getEnvAsFloat("OWNER_FUZZY_HIGH_CONFIDENCE", 0.85),
			FuzzyIndexTTL:       getEnvAsDuration("OWNER_INDEX_TTL", "2m"),
			MaxOwnerCandidates:  getEnvAsInt("OWNER_MAX_CANDIDATES", 5),
			LockExpiry:          getEnvAsDuration("REVIEW_LOCK_EXPIRY", "30m"),
			VectorStorePath:     getEnv("VECTOR_STORE_PATH", ".meetwise/vectorstore"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required (embeddings and completion failover)")
	}
	if c.Pipeline.ContextCap <= 0 {
		return fmt.Errorf("CONTEXT_CAP must be positive")
	}
	if c.Pipeline.SimilarityThreshold < 0 || c.Pipeline.SimilarityThreshold > 1 {
		return fmt.Errorf("CONTEXT_SIMILARITY_THRESHOLD must be in [0,1]")
	}
	if c.Pipeline.FuzzyAcceptance > c.Pipeline.FuzzyHighConfidence {
		return fmt.Errorf("OWNER_FUZZY_ACCEPTANCE cannot exceed OWNER_FUZZY_HIGH_CONFIDENCE")
	}
	if c.Pipeline.LockExpiry <= 0 {
		return fmt.Errorf("REVIEW_LOCK_EXPIRY must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
