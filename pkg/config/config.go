package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Telegram
	BotToken string

	// Solana RPC (Alchemy-style gateway; key embedded in URL)
	AlchemyAPIKey string
	SolanaRPCURL  string
	InspectRPCURL string

	// Transfer indexer (Bitquery GraphQL)
	BitqueryAPIKey string
	BitqueryURL    string

	// Token metadata / price
	SolscanAPIURL   string
	JupiterPriceURL string

	// Fetch sizing
	TransferFetchSize   int
	SignatureFetchLimit int

	// Status server
	StatusPort int

	// Registry persistence (empty = in-memory)
	DBPath string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		AlchemyAPIKey: os.Getenv("ALCHEMY_API_KEY"),
		SolanaRPCURL:  os.Getenv("SOLANA_RPC_URL"),
		InspectRPCURL: envOr("INSPECT_RPC_URL", "https://api.mainnet-beta.solana.com"),

		BitqueryAPIKey: os.Getenv("BITQUERY_API_KEY"),
		BitqueryURL:    envOr("BITQUERY_URL", "https://graphql.bitquery.io"),

		SolscanAPIURL:   envOr("SOLSCAN_API_URL", "https://public-api.solscan.io"),
		JupiterPriceURL: envOr("JUPITER_PRICE_URL", "https://api.jup.ag"),

		TransferFetchSize:   envInt("TRANSFER_FETCH_SIZE", 20),
		SignatureFetchLimit: envInt("SIGNATURE_FETCH_LIMIT", 1000),

		StatusPort: envInt("STATUS_PORT", 8080),
		DBPath:     os.Getenv("DB_PATH"),
	}

	// The gateway key lives inside the RPC URL. An explicit SOLANA_RPC_URL wins.
	if cfg.SolanaRPCURL == "" && cfg.AlchemyAPIKey != "" {
		cfg.SolanaRPCURL = fmt.Sprintf("https://solana-mainnet.g.alchemy.com/v2/%s", cfg.AlchemyAPIKey)
	}

	return cfg, nil
}

// Validate checks the one credential the bot cannot run without. Missing
// provider keys are not errors; the features they back degrade on their own.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	return nil
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
