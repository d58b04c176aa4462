package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort    string
	DatabaseURL string

	// Generation API
	GoogleAPIKey string
	TextModel    string
	ImageModel   string

	// Fuel ledger
	RPCURL              string
	FuelContractAddress string
	AdminPrivateKey     string // operator/relayer signing key, hex
}

// ChainConfigured reports whether the fuel ledger side of the service can be
// wired up. When false the chat pipeline answers every caller with a
// configuration error instead of crashing the process.
func (c *Config) ChainConfigured() bool {
	return c.FuelContractAddress != "" && c.AdminPrivateKey != ""
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DatabaseURL:         dbURL,
		GoogleAPIKey:        getEnv("GOOGLE_API_KEY", ""),
		TextModel:           getEnv("GEMINI_TEXT_MODEL", "gemini-3-flash-preview"),
		ImageModel:          getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		RPCURL:              getEnv("MONAD_RPC_URL", "https://testnet-rpc.monad.xyz"),
		FuelContractAddress: getEnv("LUMINA_FUEL_ADDRESS", ""),
		AdminPrivateKey:     getEnv("ADMIN_PRIVATE_KEY", ""),
	}

	if !cfg.ChainConfigured() {
		log.Println("WARN: LUMINA_FUEL_ADDRESS / ADMIN_PRIVATE_KEY not set; chat turns will be rejected until configured.")
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, RPC=%s, FuelContract=%s", cfg.HTTPPort, cfg.RPCURL, cfg.FuelContractAddress)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
