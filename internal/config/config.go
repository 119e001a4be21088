package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	ListenAddr string `json:"listen_addr"`
	GeoIPPath  string `json:"geoip_path"`

	// Upload limits
	MaxUploadBytes int64 `json:"max_upload_bytes"`

	// CORS
	AllowedOrigins []string `json:"allowed_origins"`

	// Secret for session tokens
	SecretKey string `json:"secret_key"`
}

// Load reads configuration from a JSON file, falling back to defaults for
// anything missing. A missing file is not an error; flags and env override
// the result in cmd.
func Load(path string) *Config {
	cfg := &Config{
		ListenAddr:     ":8731",
		GeoIPPath:      "",
		MaxUploadBytes: 32 << 20,
		AllowedOrigins: []string{"*"},
		SecretKey:      "change-me-in-production",
	}

	if path == "" {
		path = "config.json"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	json.Unmarshal(data, cfg)

	if key := os.Getenv("AUTOPS_SECRET_KEY"); key != "" {
		cfg.SecretKey = key
	}
	return cfg
}
