package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Assembly AssemblyConfig
	Groq     GroqConfig
	Neo4j    Neo4jConfig
	Storage  StorageConfig
	Upload   UploadConfig
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
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AssemblyConfig holds speech-to-text provider configuration
type AssemblyConfig struct {
	APIKey       string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// GroqConfig holds language model provider configuration
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Neo4jConfig holds graph store configuration. An empty URI disables the
// graph and the system falls back to relational reads.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
}

// StorageConfig holds object storage configuration for exported reports
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PresignExpiry   time.Duration
}

// UploadConfig holds media upload configuration
type UploadConfig struct {
	Dir            string
	MaxSizeMB      int64
	AllowedFormats []string
}

// PipelineConfig holds worker pool configuration
type PipelineConfig struct {
	WorkerCount   int
	MaxAttempts   int
	JobTimeout    time.Duration
	BackoffBase   time.Duration
	FFmpegPath    string
	FFmpegTimeout time.Duration
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
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "meeting_insights"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Assembly: AssemblyConfig{
			APIKey:       getEnv("ASSEMBLYAI_API_KEY", ""),
			PollInterval: getEnvAsDuration("ASSEMBLYAI_POLL_INTERVAL", "3s"),
			PollTimeout:  getEnvAsDuration("ASSEMBLYAI_POLL_TIMEOUT", "10m"),
		},
		Groq: GroqConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com"),
			Model:   getEnv("GROQ_MODEL", "llama-3.1-70b-versatile"),
			Timeout: getEnvAsDuration("GROQ_TIMEOUT", "120s"),
		},
		Neo4j: Neo4jConfig{
			URI:      getEnv("NEO4J_URI", ""),
			Username: getEnv("NEO4J_USERNAME", "neo4j"),
			Password: getEnv("NEO4J_PASSWORD", ""),
			Database: getEnv("NEO4J_DATABASE", "neo4j"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-reports"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PresignExpiry:   getEnvAsDuration("STORAGE_PRESIGN_EXPIRY", "24h"),
		},
		Upload: UploadConfig{
			Dir:            getEnv("UPLOAD_DIR", "./uploads"),
			MaxSizeMB:      int64(getEnvAsInt("UPLOAD_MAX_SIZE_MB", 100)),
			AllowedFormats: getEnvAsSlice("UPLOAD_ALLOWED_FORMATS", ".mp4,.mp3,.wav,.m4a,.avi,.mov,.mkv"),
		},
		Pipeline: PipelineConfig{
			WorkerCount:   getEnvAsInt("PIPELINE_WORKERS", 2),
			MaxAttempts:   getEnvAsInt("PIPELINE_MAX_ATTEMPTS", 3),
			JobTimeout:    getEnvAsDuration("PIPELINE_JOB_TIMEOUT", "30m"),
			BackoffBase:   getEnvAsDuration("PIPELINE_BACKOFF_BASE", "2s"),
			FFmpegPath:    getEnv("FFMPEG_PATH", "ffmpeg"),
			FFmpegTimeout: getEnvAsDuration("FFMPEG_TIMEOUT", "10m"),
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
	if c.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_MB must be positive")
	}
	if c.Pipeline.WorkerCount <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}
	if c.Pipeline.MaxAttempts <= 0 {
		return fmt.Errorf("PIPELINE_MAX_ATTEMPTS must be positive")
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsSlice(key string, defaultValue string) []string {
	valueStr := getEnv(key, defaultValue)
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
