package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the order gateway.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	CommonStoreURL string
	RedisURL       string
	KafkaEnabled   bool
	BlobRoot       string

	// TenantID selects the tenant this deployment serves. It may be left
	// empty at startup; requests then fail individually until it is set.
	TenantID string

	CacheTimeout     time.Duration
	FlowCacheTimeout time.Duration
	ArchiveContainer string
	ProcessNamePath  string

	MaxDBConns int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
		BlobRoot    string `yaml:"blob_root"`
	} `yaml:"dependencies"`
	Gateway struct {
		TenantID            string `yaml:"tenant_id"`
		CacheTimeoutMin     int    `yaml:"cache_timeout_minutes"`
		FlowCacheTimeoutMin int    `yaml:"flow_cache_timeout_minutes"`
		ArchiveContainer    string `yaml:"archive_container"`
		ProcessNamePath     string `yaml:"process_name_path"`
	} `yaml:"gateway"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:        "order-gateway",
		HTTPPort:         8080,
		BlobRoot:         "./data/blobs",
		CacheTimeout:     360 * time.Minute,
		FlowCacheTimeout: 720 * time.Minute,
		ArchiveContainer: "archive",
		ProcessNamePath:  "//ProcessName",
		MaxDBConns:       20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.CommonStoreURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Dependencies.BlobRoot != "" {
			cfg.BlobRoot = f.Dependencies.BlobRoot
		}
		if f.Gateway.TenantID != "" {
			cfg.TenantID = f.Gateway.TenantID
		}
		if f.Gateway.CacheTimeoutMin > 0 {
			cfg.CacheTimeout = time.Duration(f.Gateway.CacheTimeoutMin) * time.Minute
		}
		if f.Gateway.FlowCacheTimeoutMin > 0 {
			cfg.FlowCacheTimeout = time.Duration(f.Gateway.FlowCacheTimeoutMin) * time.Minute
		}
		if f.Gateway.ArchiveContainer != "" {
			cfg.ArchiveContainer = f.Gateway.ArchiveContainer
		}
		if f.Gateway.ProcessNamePath != "" {
			cfg.ProcessNamePath = f.Gateway.ProcessNamePath
		}
	}

	cfg.CommonStoreURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.CommonStoreURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaEnabled = envBool("KAFKA_ENABLED", cfg.KafkaEnabled)
	cfg.BlobRoot = envOrDefault("BLOB_ROOT", cfg.BlobRoot)
	cfg.TenantID = envOrDefault("TENANT_ID", cfg.TenantID)
	cfg.ArchiveContainer = envOrDefault("ARCHIVE_CONTAINER", cfg.ArchiveContainer)
	cfg.ProcessNamePath = envOrDefault("PROCESS_NAME_PATH", cfg.ProcessNamePath)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.CacheTimeout = time.Duration(envInt("CACHE_TIMEOUT_MINUTES", int(cfg.CacheTimeout.Minutes()))) * time.Minute
	cfg.FlowCacheTimeout = time.Duration(envInt("FLOW_CACHE_TIMEOUT_MINUTES", int(cfg.FlowCacheTimeout.Minutes()))) * time.Minute

	if cfg.CommonStoreURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
