package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	Environment string
	AppId       string

	AllowedOrigins string // comma separated, passed to the CORS middleware

	ChartsDir     string // Physical directory for rendered charts when ArtifactStore is "local"
	ArtifactStore string // local, minio
	ChartWidth    int    // points
	ChartHeight   int    // points

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisAddr     string // empty disables the result cache
	RedisPassword string
	CacheTTL      time.Duration

	SnapshotSchedule string   // cron expression, empty disables snapshots
	SnapshotSources  []string // chart data sources rendered on each tick

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8000"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "restaurant_analytics"),
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-analytics"),

		AllowedOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000, http://localhost:8000"),

		ChartsDir:     getEnv("CHARTS_DIR", "./charts"),
		ArtifactStore: getEnv("ARTIFACT_STORE", "local"),
		ChartWidth:    getEnvInt("CHART_WIDTH", 864),
		ChartHeight:   getEnvInt("CHART_HEIGHT", 576),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    getEnv("MINIO_BUCKET", "charts"),
		MinioUseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,

		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", ""),
		SnapshotSources:  splitList(getEnv("SNAPSHOT_SOURCES", "revenue_daily,order_status")),

		BreakerMaxFailures: uint32(getEnvInt("BREAKER_MAX_FAILURES", 5)),
		BreakerOpenTimeout: time.Duration(getEnvInt("BREAKER_OPEN_SECONDS", 30)) * time.Second,
	}, nil
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
