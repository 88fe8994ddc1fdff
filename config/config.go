package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort             string `mapstructure:"APP_PORT"`
	Env                 string `mapstructure:"ENV"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	LogLevel            string `mapstructure:"LOG_LEVEL"`
	LogFile             string `mapstructure:"LOG_FILE"`
	MaxRequestsPerMin   int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	LoginRequestsPerMin int    `mapstructure:"LOGIN_REQUESTS_PER_MIN"`
	SessionTTLMinutes   int    `mapstructure:"SESSION_TTL_MINUTES"`
	CORSOrigins         string `mapstructure:"CORS_ORIGINS"`
	Timezone            string `mapstructure:"TIMEZONE"`
	PhoneRegion         string `mapstructure:"PHONE_REGION"`
	DefaultMasterPin    string `mapstructure:"DEFAULT_MASTER_PIN"`
	RemindersEnabled    bool   `mapstructure:"REMINDERS_ENABLED"`
	ReminderLeadHours   int    `mapstructure:"REMINDER_LEAD_HOURS"`

	// Store selection: "firestore", "mongo" or "memory".
	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	// Firebase (Firestore + FCM).
	FirebaseCredentials string `mapstructure:"FIREBASE_CREDENTIALS"`
	FirebaseProjectID   string `mapstructure:"FIREBASE_PROJECT_ID"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("LOGIN_REQUESTS_PER_MIN", 10)
	viper.SetDefault("SESSION_TTL_MINUTES", 480)
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("TIMEZONE", "America/Santiago")
	viper.SetDefault("PHONE_REGION", "CL")
	viper.SetDefault("DEFAULT_MASTER_PIN", "0000")
	viper.SetDefault("REMINDERS_ENABLED", true)
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)
	viper.SetDefault("STORE_DRIVER", "firestore")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "agenda")
	viper.SetDefault("FIREBASE_CREDENTIALS", "")
	viper.SetDefault("FIREBASE_PROJECT_ID", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SessionTTL is how long an admin or setup login stays valid without activity.
func SessionTTL() time.Duration {
	if AppConfig.SessionTTLMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(AppConfig.SessionTTLMinutes) * time.Minute
}

// Location resolves TIMEZONE; "today" for reminders is computed in it.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil || AppConfig.Timezone == "" {
		return time.UTC
	}
	return loc
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(AppConfig.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
