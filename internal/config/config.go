package config

import (
	"net"
	"os"

	"github.com/joho/godotenv"
)

const DefaultLocationID = "gid://shopify/Location/1"

type Config struct {
	ListenAddr  string
	SelfURL     string
	AgentID     string
	EdenBaseURL string
	AdminsFile  string

	ShopifyStore      string
	ShopifyAPIVersion string
	ShopifyToken      string
	ShopifyLocationID string
	ProductFile       string
	JournalPath       string

	LogLevel string
	LogFile  string
}

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Variables already set in the environment win.
func Load() *Config {
	_ = godotenv.Load()

	listenAddr := getEnv("LISTEN_ADDR", ":8080")
	return &Config{
		ListenAddr:  listenAddr,
		SelfURL:     getEnv("PORTAL_SELF_URL", selfURL(listenAddr)),
		AgentID:     getEnv("SOLIENNE_AGENT_ID", ""),
		EdenBaseURL: getEnv("EDEN_BASE_URL", "https://api.eden.art"),
		AdminsFile:  getEnv("ADMINS_FILE", "data/admins.json"),

		ShopifyStore:      getEnv("SHOPIFY_STORE_NAME", ""),
		ShopifyAPIVersion: getEnv("SHOPIFY_API_VERSION", ""),
		ShopifyToken:      getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyLocationID: getEnv("SHOPIFY_LOCATION_ID", DefaultLocationID),
		ProductFile:       getEnv("PRODUCT_FILE", "src/product.json"),
		JournalPath:       getEnv("INGEST_JOURNAL", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// selfURL is the loopback URL the portal uses to reach its own listener.
func selfURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://localhost:8080"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
