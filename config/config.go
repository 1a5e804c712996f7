package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HttpAddr  string
	PublicURL string
	TgToken   string

	// SheetURL is the default remote dataset, fetched when nothing was uploaded.
	SheetURL string
	CacheTTL time.Duration

	// ColumnsFile optionally overrides the column role mapping (YAML).
	ColumnsFile string
	UploadDir   string

	MinSchoolCount int
	TopN           int
	HistogramBins  int

	LogLevel  string
	LogFormat string
}

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file, using process environment")
		}
		config = FromEnv()
	})
	return config
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		HttpAddr:       getEnv("HTTP_ADDR", ":8005"),
		PublicURL:      getEnv("PUBLIC_URL", "http://localhost:8005"),
		TgToken:        os.Getenv("TG_TOKEN"),
		SheetURL:       getEnv("SHEET_URL", "https://docs.google.com/spreadsheets/d/1oEMEBkpqFQth_D4skuBY2lAHznSLeim6/export?format=xlsx"),
		CacheTTL:       getDurationEnv("CACHE_TTL", 24*time.Hour),
		ColumnsFile:    os.Getenv("COLUMNS_FILE"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MinSchoolCount: getIntEnv("MIN_SCHOOL_COUNT", 5),
		TopN:           getIntEnv("TOP_N", 20),
		HistogramBins:  getIntEnv("HISTOGRAM_BINS", 20),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
