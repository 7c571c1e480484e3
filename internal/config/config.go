package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Google   GoogleConfig
	Firebase FirebaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

type AppConfig struct {
	Env      string
	Port     string
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=UTC"
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// Google ID token verification modes
const (
	IDTokenVerifyRemote = "remote"
	IDTokenVerifyLocal  = "local"
)

type GoogleConfig struct {
	// ValidClientIDs is the audience allow-list for incoming tokens
	ValidClientIDs   []string
	TokenInfoURL     string
	UserInfoEndpoint string
	HTTPTimeout      time.Duration
	IDTokenVerify    string
}

type FirebaseConfig struct {
	CredentialsFile string
	SendTimeout     time.Duration
}

type AuthConfig struct {
	// CacheTTL enables the verified-token cache when positive
	CacheTTL time.Duration
}

type CORSConfig struct {
	Origins []string
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	return &Config{
		App: AppConfig{
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnv("APP_PORT", "3000"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "squid"),
			Password: getEnv("DB_PASSWORD", "squid"),
			Name:     getEnv("DB_NAME", "squid"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Google: GoogleConfig{
			ValidClientIDs:   splitList(getEnv("GOOGLE_VALID_CLIENT_IDS", "")),
			TokenInfoURL:     getEnv("GOOGLE_TOKENINFO_URL", "https://www.googleapis.com/oauth2/v3/tokeninfo"),
			UserInfoEndpoint: getEnv("GOOGLE_USERINFO_ENDPOINT", "https://www.googleapis.com/"),
			HTTPTimeout:      getDuration("GOOGLE_HTTP_TIMEOUT", 10*time.Second),
			IDTokenVerify:    getEnv("GOOGLE_ID_TOKEN_VERIFY", IDTokenVerifyRemote),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			SendTimeout:     getDuration("FCM_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			CacheTTL: getDuration("AUTH_CACHE_TTL", 0),
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
	}
}

// Validate logs configuration problems that leave parts of the API unusable.
// The server still starts; affected requests fail with a ServiceConfig error.
func (c *Config) Validate() {
	if len(c.Google.ValidClientIDs) == 0 {
		log.Warn("GOOGLE_VALID_CLIENT_IDS is empty, every authenticated request will fail")
	}
	if c.Google.IDTokenVerify != IDTokenVerifyRemote && c.Google.IDTokenVerify != IDTokenVerifyLocal {
		log.Warnf("Unknown GOOGLE_ID_TOKEN_VERIFY=%q, using %q", c.Google.IDTokenVerify, IDTokenVerifyRemote)
		c.Google.IDTokenVerify = IDTokenVerifyRemote
	}
	if c.Firebase.CredentialsFile == "" {
		log.Warn("FIREBASE_CREDENTIALS_FILE is empty, device commands will fail")
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		log.Warnf("Invalid duration for %s, using %s", key, fallback)
		return fallback
	}
	return d
}

// splitList splits a comma separated value, dropping blanks
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
