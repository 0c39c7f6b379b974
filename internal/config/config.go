package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppName       string  // Application name, used as the TOTP issuer
	AppPort       string  // Application port
	DBUser        string  // Database user
	DBPassword    string  // Database password
	DBHost        string  // Database host
	DBPort        string  // Database port
	DBName        string  // Database name
	JWTSecret     string  // JWT secret key
	RedisAddr     string  // Redis server address
	RedisPass     string  // Redis password
	RedisDB       int     // Redis database number
	IsProd        bool    // Is production environment
	GatewayURL    string  // Payment gateway base URL
	GatewayKey    string  // Payment gateway API key, also handed to the checkout client
	GatewaySecret string  // Payment gateway signing secret
	ImageHostURL  string  // Image host upload endpoint
	ImageHostKey  string  // Image host API key
	GoogleClient  string  // Google OAuth client ID
	ReferralBonus float64 // Wallet credit for a successful referral
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	bonus, err := strconv.ParseFloat(os.Getenv("REFERRAL_BONUS"), 64)
	if err != nil {
		bonus = 5 // Default referral bonus when unset
	}
	appName := os.Getenv("APP_NAME")
	if appName == "" {
		appName = "studenthub"
	}
	return &Config{
		AppName:       appName,                        // Application name
		AppPort:       os.Getenv("APP_PORT"),          // Application port
		DBUser:        os.Getenv("DB_USER"),           // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:        os.Getenv("DB_HOST"),           // Database host
		DBPort:        os.Getenv("DB_PORT"),           // Database port
		DBName:        os.Getenv("DB_NAME"),           // Database name
		JWTSecret:     os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:     os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:       redisDB,                        // Redis database number
		IsProd:        os.Getenv("IS_PROD") == "true", // Is production environment
		GatewayURL:    os.Getenv("GATEWAY_URL"),       // Payment gateway base URL
		GatewayKey:    os.Getenv("GATEWAY_KEY"),       // Payment gateway API key
		GatewaySecret: os.Getenv("GATEWAY_SECRET"),    // Payment gateway signing secret
		ImageHostURL:  os.Getenv("IMAGE_HOST_URL"),    // Image host upload endpoint
		ImageHostKey:  os.Getenv("IMAGE_HOST_KEY"),    // Image host API key
		GoogleClient:  os.Getenv("GOOGLE_CLIENT_ID"),  // Google OAuth client ID
		ReferralBonus: bonus,                          // Referral bonus amount
	}
}
