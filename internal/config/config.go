package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DataPath      string
	DBPath        string
	JWTSecret     string
	AdminUsername string
	AdminPassword string
	CORSOrigins   []string
	StylePath     string
	CookieSecure  bool

	SessionBackend string // "memory", "redis", "sqlite"
	RedisURL       string
	SessionTTL     time.Duration
	IntroDuration  time.Duration

	TranslationEngine  string
	GoogleTranslateURL string
	DeepLAPIKey        string
	DeepLAPIURL        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	GeminiAPIKey       string
	GeminiModel        string

	TranslateRateLimit int // requests per minute per IP
	MaxBodyBytes       int64
}

func Load() *Config {
	// .env is optional; real environment wins over file values
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "./data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	rateLimit, err := strconv.Atoi(getEnv("TRANSLATE_RATE_LIMIT", "30"))
	if err != nil || rateLimit <= 0 {
		rateLimit = 30
	}
	maxBody, err := strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody <= 0 {
		maxBody = 1 << 20
	}

	return &Config{
		Port:          port,
		DataPath:      dataPath,
		DBPath:        getEnv("DB_PATH", dataPath+"/translator.db"),
		JWTSecret:     jwtSecret,
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		CORSOrigins:   corsOrigins,
		StylePath:     getEnv("STYLE_PATH", "style.css"),
		CookieSecure:  getBool("COOKIE_SECURE", false),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:     getDuration("SESSION_TTL", 24*time.Hour),
		IntroDuration:  getDuration("INTRO_DURATION", 3*time.Second),

		TranslationEngine:  strings.ToLower(getEnv("TRANSLATION_ENGINE", "google")),
		GoogleTranslateURL: getEnv("GOOGLE_TRANSLATE_URL", "https://translate.googleapis.com/translate_a/single"),
		DeepLAPIKey:        os.Getenv("DEEPL_API_KEY"),
		DeepLAPIURL:        getEnv("DEEPL_API_URL", "https://api-free.deepl.com/v2"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		TranslateRateLimit: rateLimit,
		MaxBodyBytes:       maxBody,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("3s", "24h") or plain seconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
