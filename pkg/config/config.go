// Package config provides configuration management for the guard bot.
// Values come from the environment, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// MongoDB
	MongoDBURL string
	DBName     string

	// Redis counter backend, empty keeps counters in MongoDB
	RedisURL string

	// MQTT
	MQTTHost        string
	MQTTPort        string
	MQTTUser        string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Web Server
	Port         string
	APIKey       string
	APIRateLimit float64
	APIRateBurst int
	AllowedHosts string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
	GuildsWebhook     string

	// AntiNuke
	PolicyCacheTTL           time.Duration
	ViolationRetentionDays   int
	RetentionInterval        time.Duration
	ConfinementSweepInterval time.Duration
	AuditLogWindow           time.Duration

	// Features
	FilterEnabled  bool
	MetricsEnabled bool
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

func loadConfig() {
	_ = godotenv.Load()

	cfg = &Config{
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "PancyGuard"),

		RedisURL: getEnv("redisUrl", ""),

		MQTTHost:        getEnv("MQTT_Host", "localhost"),
		MQTTPort:        getEnv("MQTT_Port", "1883"),
		MQTTUser:        getEnv("MQTT_User", ""),
		MQTTPassword:    getEnv("MQTT_Password", ""),
		MQTTTopicPrefix: strings.Trim(getEnv("mqttTopicPrefix", "pancy"), "/"),

		Port:         getEnv("PORT", "3000"),
		APIKey:       getEnv("apiKey", ""),
		APIRateLimit: getEnvFloat("apiRateLimit", 5),
		APIRateBurst: getEnvInt("apiRateBurst", 10),
		AllowedHosts: getEnv("allowedHosts", ""),

		Environment: getEnv("enviroment", "dev"),

		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
		GuildsWebhook:     getEnv("guildsWebhook", ""),

		PolicyCacheTTL:           getEnvDuration("policyCacheTTL", 15*time.Second),
		ViolationRetentionDays:   getEnvInt("violationRetentionDays", 30),
		RetentionInterval:        getEnvDuration("retentionInterval", time.Hour),
		ConfinementSweepInterval: getEnvDuration("confinementSweepInterval", 30*time.Second),
		AuditLogWindow:           getEnvDuration("auditLogWindow", 5*time.Second),

		FilterEnabled:  getEnvBool("filterEnabled", true),
		MetricsEnabled: getEnvBool("metricsEnabled", true),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("15s", "1h").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// RetentionWindow is how long violation log entries are kept.
func (c *Config) RetentionWindow() time.Duration {
	if c.ViolationRetentionDays <= 0 {
		return 0
	}
	return time.Duration(c.ViolationRetentionDays) * 24 * time.Hour
}
