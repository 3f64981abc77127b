package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SslCertPath string
	Port        string
	JwtSecret   string

	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	SnapshotBucket string

	AIAPIKey string
	GenModel string

	EmbedModelPath string
	EmbedModelName string
	EmbedDim       int
	EmbedMaxTokens int
	EmbedBatchSize int

	CrawlMaxDepth int
	CrawlMaxPages int
	CrawlDelay    time.Duration
	ChunkSize     int
	Workers       int
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),
		Port:        getEnv("PORT", "8080"),
		JwtSecret:   getEnv("JWT_SECRET", ""),

		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		SnapshotBucket: getEnv("SNAPSHOT_BUCKET", ""),

		AIAPIKey: getEnv("GEMINI_API_KEY", ""),
		GenModel: getEnv("GEN_MODEL", "gemini-1.5-flash"),

		EmbedModelPath: getEnv("EMBED_MODEL_PATH", "models/all-MiniLM-L6-v2.onnx"),
		EmbedModelName: getEnv("EMBED_MODEL_NAME", "all-MiniLM-L6-v2"),
		EmbedDim:       getEnvInt("EMBED_DIM", 384),
		EmbedMaxTokens: getEnvInt("EMBED_MAX_TOKENS", 256),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 20),

		CrawlMaxDepth: getEnvInt("CRAWL_MAX_DEPTH", 3),
		CrawlMaxPages: getEnvInt("CRAWL_MAX_PAGES", 25),
		CrawlDelay:    getEnvDuration("CRAWL_DELAY", time.Second),
		ChunkSize:     getEnvInt("CHUNK_SIZE", 800),
		Workers:       getEnvInt("WORKERS", 4),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}
