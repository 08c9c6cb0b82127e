package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	Env          string
	BusinessName string

	Log     LogConfig
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Draft   DraftConfig
	Storage StorageConfig
	Twilio  TwilioConfig
	Invoice InvoiceConfig

	CORSOrigins []string
}

type LogConfig struct {
	Level string
	File  string
}

type DBConfig struct {
	Driver string // postgres or sqlite
	URL    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret     string
	ExpiryHours   int
	AdminEmail    string
	AdminPassword string
}

type DraftConfig struct {
	Validation string // strict or relaxed
	TTLHours   int
}

type StorageConfig struct {
	Provider            string // supabase, firebase or local
	SupabaseURL         string
	SupabaseServiceKey  string
	FirebaseCredentials string
	FirebaseBucket      string
	LocalDir            string
	PublicBaseURL       string
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
	CountryCode    string
}

type InvoiceConfig struct {
	ReconcileSchedule string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("APP_ENV", "development"),
		BusinessName: getEnv("BUSINESS_NAME", "Balwa Car Cool"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			URL:    getEnv("DB_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			ExpiryHours:   getEnvInt("JWT_EXPIRY_HOURS", 24),
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
		Draft: DraftConfig{
			Validation: getEnv("DRAFT_VALIDATION", "strict"),
			TTLHours:   getEnvInt("DRAFT_TTL_HOURS", 12),
		},
		Storage: StorageConfig{
			Provider:            getEnv("STORAGE_PROVIDER", "local"),
			SupabaseURL:         strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			SupabaseServiceKey:  getEnv("SUPABASE_SERVICE_KEY", ""),
			FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			FirebaseBucket:      getEnv("FIREBASE_BUCKET", ""),
			LocalDir:            getEnv("LOCAL_STORAGE_DIR", "./data"),
			PublicBaseURL:       strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Twilio: TwilioConfig{
			AccountSID:     getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:      getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber:    getEnv("TWILIO_PHONE_NUMBER", ""),
			WhatsAppNumber: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
			CountryCode:    getEnv("COUNTRY_CODE", "+91"),
		},
		Invoice: InvoiceConfig{
			ReconcileSchedule: getEnv("INVOICE_RECONCILE_SCHEDULE", "*/15 * * * *"),
		},
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:8081,http://localhost:19006")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
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
