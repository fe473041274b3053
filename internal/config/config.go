package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config is everything the gateway needs from its environment.
type Config struct {
	// HubURL is the websocket endpoint of the Stop game hub.
	HubURL string
	// ListenAddr is where the local gateway API listens.
	ListenAddr string
	// CachePath is the sqlite session cache file.
	CachePath string
}

// Load reads .env (if present) and the process environment. Only the hub URL
// is mandatory.
func Load() (Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load(".env")

	cfg := Config{
		HubURL:     os.Getenv("STOPGAME_HUB_URL"),
		ListenAddr: os.Getenv("STOPGAME_LISTEN_ADDR"),
		CachePath:  os.Getenv("STOPGAME_CACHE_PATH"),
	}
	if cfg.HubURL == "" {
		return Config{}, fmt.Errorf("STOPGAME_HUB_URL is required")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.CachePath == "" {
		cfg.CachePath = "stopgame-session.db"
	}
	return cfg, nil
}
