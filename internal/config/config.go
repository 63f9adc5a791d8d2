package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir string
	TmpDir  string

	PublicationsBaseURL string
	DownloadTimeoutMs   int

	RegistryBaseURL    string
	RegistryTimeoutMs  int
	RegistryDelayMs    int
	RegistryBackoffSec int

	CacheBackend string
	CachePath    string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataDir: getEnv("DATA_DIR", filepath.Join(cwd, "data")),
		TmpDir:  getEnv("TMP_DIR", filepath.Join(cwd, ".tmp")),

		PublicationsBaseURL: getEnv("PUBLICATIONS_BASE_URL", "https://digital.nhs.uk/data-and-information/publications/statistical/appointments-in-general-practice"),
		DownloadTimeoutMs:   getEnvInt("DOWNLOAD_TIMEOUT_MS", 120000),

		RegistryBaseURL:    getEnv("REGISTRY_BASE_URL", "https://directory.spineservices.nhs.uk/ORD/2-0-0"),
		RegistryTimeoutMs:  getEnvInt("REGISTRY_TIMEOUT_MS", 30000),
		RegistryDelayMs:    getEnvInt("REGISTRY_DELAY_MS", 200),
		RegistryBackoffSec: getEnvInt("REGISTRY_BACKOFF_SEC", 5),

		CacheBackend: strings.ToLower(getEnv("CACHE_BACKEND", "csv")),
		CachePath:    getEnv("CACHE_PATH", ""),
	}

	if cfg.CachePath == "" {
		switch cfg.CacheBackend {
		case "sqlite":
			cfg.CachePath = filepath.Join(cfg.DataDir, "commissioner_map.db")
		default:
			cfg.CachePath = filepath.Join(cfg.DataDir, "GP to ICB Sub location - Map.csv")
		}
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
