package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// well-known development key (hardhat account 0), used when neither
// PRIVATE_KEY nor MNEMONIC is set
const devPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// Config collects every environment knob of the backend.
type Config struct {
	RPCURL       string
	ChainID      int64
	PrivateKey   string
	Mnemonic     string
	ManifestPath string
	DatabaseDSN  string
	ListenAddr   string
}

// Load reads .env when present, then the environment, falling back to
// development defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg := Config{
		RPCURL:       getenv("RPC_URL", ""),
		ChainID:      getenvInt64("CHAIN_ID", 31337),
		PrivateKey:   getenv("PRIVATE_KEY", ""),
		Mnemonic:     getenv("MNEMONIC", ""),
		ManifestPath: getenv("MANIFEST_PATH", "deployment.json"),
		DatabaseDSN:  getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=fundchain port=5432 sslmode=disable"),
		ListenAddr:   getenv("LISTEN_ADDR", ":8080"),
	}
	if cfg.PrivateKey == "" && cfg.Mnemonic == "" {
		cfg.PrivateKey = devPrivateKey
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
