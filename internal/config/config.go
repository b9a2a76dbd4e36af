package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	UploadDir     string        `yaml:"upload_dir"`
	WorkerCount   int           `yaml:"worker_count"`
	Push          PushConfig    `yaml:"push"`
}

// PushConfig points at the real-time push gateway. An empty BaseURL
// disables delivery; notification rows are still written.
type PushConfig struct {
	BaseURL string        `yaml:"base_url"`
	AppKey  string        `yaml:"app_key"`
	Timeout time.Duration `yaml:"timeout"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 24 * time.Hour

	cfg := &Config{
		Addr:          getEnv("BIDTRACK_ADDR", ":8080"),
		JWTSecret:     getEnv("BIDTRACK_JWT_SECRET", "supersecretkey"),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("BIDTRACK_DATABASE_PATH", "bidtrack.db"),
		TokenDuration: tokenDuration,
		UploadDir:     getEnv("BIDTRACK_UPLOAD_DIR", "uploads"),
		WorkerCount:   4,
		Push: PushConfig{
			BaseURL: getEnv("BIDTRACK_PUSH_URL", ""),
			AppKey:  getEnv("BIDTRACK_PUSH_KEY", ""),
			Timeout: 5 * time.Second,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
