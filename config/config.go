package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string

	// Akad
	AkadSubscriptionKey  string
	AkadClientHeader     string
	AkadSecurityBaseURL  string
	AkadTokenPath        string
	AkadQuotationBaseURL string
	AkadOperationCode    string
	AkadUsername         string
	AkadPassword         string
	AkadClientID         string
	AkadClientSecret     string
	AkadBrokerCPF        string
	AkadBrokerageCNPJ    string

	// Fairfax
	FairfaxQuotationURL  string
	FairfaxOperationCode string
	FairfaxAPIKeyHeader  string
	FairfaxAPIKeyValue   string
	FairfaxBearerToken   string

	// Tabelas estáticas
	SpecialtiesPath    string
	CarrierClassesPath string
	UnimedTablePath    string

	// Backends opcionais: vazios caem para as implementações em memória.
	RedisAddr   string
	PostgresDSN string

	RateLimitPerMinute int
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		AkadSubscriptionKey:  getEnv("AKAD_SUBSCRIPTION_KEY", ""),
		AkadClientHeader:     getEnv("AKAD_CLIENT_HEADER", "argo_api_moderation"),
		AkadSecurityBaseURL:  getEnv("AKAD_SECURITY_BASE_URL", "https://azuh3-br-api-platform.azure-api.net/security"),
		AkadTokenPath:        getEnv("AKAD_TOKEN_PATH", "/connect/token"),
		AkadQuotationBaseURL: getEnv("AKAD_QUOTATION_BASE_URL", "https://azuh3-br-api-platform.azure-api.net/quotation/api"),
		AkadOperationCode:    getEnv("AKAD_OPERATION_CODE", ""),
		AkadUsername:         getEnv("AKAD_USERNAME", ""),
		AkadPassword:         getEnv("AKAD_PASSWORD", ""),
		AkadClientID:         getEnv("AKAD_CLIENT_ID", "portal_argo"),
		AkadClientSecret:     getEnv("AKAD_CLIENT_SECRET", ""),
		AkadBrokerCPF:        getEnv("AKAD_BROKER_CPF", ""),
		AkadBrokerageCNPJ:    getEnv("AKAD_BROKERAGE_CNPJ", ""),

		FairfaxQuotationURL:  getEnv("FAIRFAX_QUOTATION_URL", ""),
		FairfaxOperationCode: getEnv("FAIRFAX_OPERATION_CODE", "MEDICAL-CIVIL-LIABILITY-PARTNER"),
		FairfaxAPIKeyHeader:  getEnv("FAIRFAX_API_KEY_HEADER", ""),
		FairfaxAPIKeyValue:   getEnv("FAIRFAX_API_KEY_VALUE", ""),
		FairfaxBearerToken:   getEnv("FAIRFAX_BEARER_TOKEN", ""),

		SpecialtiesPath:    getEnv("SPECIALTIES_PATH", "./data/especialidades.json"),
		CarrierClassesPath: getEnv("CARRIER_CLASSES_PATH", "./data/carrier_classes.yaml"),
		UnimedTablePath:    getEnv("UNIMED_TABLE_PATH", "./data/tabela_unimed.json"),

		RedisAddr:   getEnv("REDIS_ADDR", ""),
		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
