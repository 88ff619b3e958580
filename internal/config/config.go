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
	App     AppConfig
	Storage StorageConfig
	Editor  EditorConfig
	Offline OfflineConfig
	Auth    AuthConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type StorageConfig struct {
	Driver     string // "file", "memory", "redis" or "postgres"
	Key        string
	Dir        string
	Connection string // postgres DSN
}

type EditorConfig struct {
	AutosaveInterval  time.Duration
	StalenessInterval time.Duration
}

type OfflineConfig struct {
	OriginURL      string
	CacheVersion   string
	Assets         []string
	FontURLs       []string
	ExcludePattern string
}

type AuthConfig struct {
	JWTSecret string // empty disables the API guard
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "file"),
			Key:        getEnv("STORAGE_KEY", "notebookAppData"),
			Dir:        getEnv("STORAGE_DIR", "data"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Editor: EditorConfig{
			AutosaveInterval:  getEnvAsDuration("AUTOSAVE_INTERVAL", 30*time.Second),
			StalenessInterval: getEnvAsDuration("STALENESS_INTERVAL", 10*time.Second),
		},
		Offline: OfflineConfig{
			OriginURL:    getEnv("OFFLINE_ORIGIN_URL", "http://localhost:5173"),
			CacheVersion: getEnv("OFFLINE_CACHE_VERSION", "notebook-app-v1"),
			Assets: getEnvAsList("OFFLINE_ASSETS", []string{
				"/",
				"/index.html",
				"/styles.css",
				"/app.js",
				"/manifest.json",
				"/icons/icon-192.png",
				"/icons/icon-512.png",
			}),
			FontURLs: getEnvAsList("OFFLINE_FONT_URLS", []string{
				"https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&display=swap",
				"https://fonts.googleapis.com/css2?family=Merriweather:wght@400;700&display=swap",
			}),
			ExcludePattern: getEnv("OFFLINE_EXCLUDE_PATTERN", `^/api/|analytics`),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Tracing: TracingConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil && d > 0 {
		return d
	}
	if secs := getEnvAsInt(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strings.TrimSpace(strValue) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
