package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/KabiruH/attendance-agent/internal/domain"
)

// Config is the resolved runtime configuration for the agent.
// It merges file defaults and environment overrides to support both local and
// provisioned-device runs.
type Config struct {
	AgentID  string
	HTTPAddr string

	Geofence domain.GeofenceSpec

	LedgerBaseURL string
	LedgerTimeout time.Duration

	PlatformMode     string
	PlatformEndpoint string
	BiometricMode    string
	BiometricPrompt  string
	StaticLatitude   float64
	StaticLongitude  float64
	StaticAccuracy   float64

	LocationTimeout  time.Duration
	LocationCacheTTL time.Duration
	SnapshotCacheTTL time.Duration

	RedisURL         string
	JournalPath      string
	SessionTokenPath string
}

const (
	PlatformModeGRPC   = "grpc"
	PlatformModeStatic = "static"

	BiometricModeGRPC    = "grpc"
	BiometricModeApprove = "approve"
)

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Agent struct {
		ID       string `yaml:"id"`
		HTTPAddr string `yaml:"http_addr"`
	} `yaml:"agent"`
	Geofence struct {
		Latitude     float64 `yaml:"latitude"`
		Longitude    float64 `yaml:"longitude"`
		RadiusMeters float64 `yaml:"radius_meters"`
	} `yaml:"geofence"`
	Ledger struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"ledger"`
	Platform struct {
		Mode            string  `yaml:"mode"`
		Endpoint        string  `yaml:"endpoint"`
		BiometricMode   string  `yaml:"biometric_mode"`
		BiometricPrompt string  `yaml:"biometric_prompt"`
		StaticLatitude  float64 `yaml:"static_latitude"`
		StaticLongitude float64 `yaml:"static_longitude"`
		StaticAccuracy  float64 `yaml:"static_accuracy_meters"`
	} `yaml:"platform"`
	Location struct {
		TimeoutSeconds  int `yaml:"timeout_seconds"`
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"location"`
	Cache struct {
		RedisURL           string `yaml:"redis_url"`
		SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
	} `yaml:"cache"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Credentials struct {
		TokenPath string `yaml:"token_path"`
	} `yaml:"credentials"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AgentID:          "attendance-agent",
		HTTPAddr:         "127.0.0.1:7420",
		LedgerTimeout:    15 * time.Second,
		PlatformMode:     PlatformModeGRPC,
		PlatformEndpoint: "127.0.0.1:9420",
		BiometricMode:    BiometricModeGRPC,
		StaticAccuracy:   5,
		LocationTimeout:  10 * time.Second,
		LocationCacheTTL: 5 * time.Minute,
		SnapshotCacheTTL: 10 * time.Minute,
		JournalPath:      "attendance-journal.db",
		SessionTokenPath: "session.token",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Agent.ID != "" {
			cfg.AgentID = f.Agent.ID
		}
		if f.Agent.HTTPAddr != "" {
			cfg.HTTPAddr = f.Agent.HTTPAddr
		}
		cfg.Geofence = domain.GeofenceSpec{
			Center: domain.Coordinate{
				Latitude:  f.Geofence.Latitude,
				Longitude: f.Geofence.Longitude,
			},
			RadiusMeters: f.Geofence.RadiusMeters,
		}
		if f.Ledger.BaseURL != "" {
			cfg.LedgerBaseURL = f.Ledger.BaseURL
		}
		if f.Ledger.TimeoutSeconds > 0 {
			cfg.LedgerTimeout = time.Duration(f.Ledger.TimeoutSeconds) * time.Second
		}
		if f.Platform.Mode != "" {
			cfg.PlatformMode = f.Platform.Mode
		}
		if f.Platform.Endpoint != "" {
			cfg.PlatformEndpoint = f.Platform.Endpoint
		}
		if f.Platform.BiometricMode != "" {
			cfg.BiometricMode = f.Platform.BiometricMode
		}
		if f.Platform.BiometricPrompt != "" {
			cfg.BiometricPrompt = f.Platform.BiometricPrompt
		}
		if f.Platform.StaticLatitude != 0 || f.Platform.StaticLongitude != 0 {
			cfg.StaticLatitude = f.Platform.StaticLatitude
			cfg.StaticLongitude = f.Platform.StaticLongitude
		}
		if f.Platform.StaticAccuracy > 0 {
			cfg.StaticAccuracy = f.Platform.StaticAccuracy
		}
		if f.Location.TimeoutSeconds > 0 {
			cfg.LocationTimeout = time.Duration(f.Location.TimeoutSeconds) * time.Second
		}
		if f.Location.CacheTTLSeconds > 0 {
			cfg.LocationCacheTTL = time.Duration(f.Location.CacheTTLSeconds) * time.Second
		}
		if f.Cache.RedisURL != "" {
			cfg.RedisURL = f.Cache.RedisURL
		}
		if f.Cache.SnapshotTTLSeconds > 0 {
			cfg.SnapshotCacheTTL = time.Duration(f.Cache.SnapshotTTLSeconds) * time.Second
		}
		if f.Journal.Path != "" {
			cfg.JournalPath = f.Journal.Path
		}
		if f.Credentials.TokenPath != "" {
			cfg.SessionTokenPath = f.Credentials.TokenPath
		}
	}

	cfg.AgentID = envOrDefault("AGENT_ID", cfg.AgentID)
	cfg.HTTPAddr = envOrDefault("AGENT_HTTP_ADDR", cfg.HTTPAddr)
	cfg.Geofence.Center.Latitude = envFloat("GEOFENCE_LATITUDE", cfg.Geofence.Center.Latitude)
	cfg.Geofence.Center.Longitude = envFloat("GEOFENCE_LONGITUDE", cfg.Geofence.Center.Longitude)
	cfg.Geofence.RadiusMeters = envFloat("GEOFENCE_RADIUS_METERS", cfg.Geofence.RadiusMeters)
	cfg.LedgerBaseURL = envOrDefault("LEDGER_BASE_URL", cfg.LedgerBaseURL)
	cfg.LedgerTimeout = time.Duration(envInt("LEDGER_TIMEOUT_SECONDS", int(cfg.LedgerTimeout.Seconds()))) * time.Second
	cfg.PlatformMode = strings.ToLower(strings.TrimSpace(envOrDefault("PLATFORM_MODE", cfg.PlatformMode)))
	cfg.PlatformEndpoint = envOrDefault("PLATFORM_ENDPOINT", cfg.PlatformEndpoint)
	cfg.BiometricMode = strings.ToLower(strings.TrimSpace(envOrDefault("BIOMETRIC_MODE", cfg.BiometricMode)))
	cfg.LocationTimeout = time.Duration(envInt("LOCATION_TIMEOUT_SECONDS", int(cfg.LocationTimeout.Seconds()))) * time.Second
	cfg.LocationCacheTTL = time.Duration(envInt("LOCATION_CACHE_TTL_SECONDS", int(cfg.LocationCacheTTL.Seconds()))) * time.Second
	cfg.SnapshotCacheTTL = time.Duration(envInt("SNAPSHOT_CACHE_TTL_SECONDS", int(cfg.SnapshotCacheTTL.Seconds()))) * time.Second
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JournalPath = envOrDefault("JOURNAL_PATH", cfg.JournalPath)
	cfg.SessionTokenPath = envOrDefault("SESSION_TOKEN_PATH", cfg.SessionTokenPath)

	if cfg.LedgerBaseURL == "" {
		return Config{}, fmt.Errorf("missing LEDGER_BASE_URL")
	}
	// A malformed fence is a deployment mistake; fail at startup, not at the
	// first action attempt.
	if err := cfg.Geofence.Validate(); err != nil {
		return Config{}, fmt.Errorf("geofence config: %w", err)
	}
	switch cfg.PlatformMode {
	case PlatformModeGRPC, PlatformModeStatic:
	default:
		return Config{}, fmt.Errorf("unknown platform mode %q", cfg.PlatformMode)
	}
	switch cfg.BiometricMode {
	case BiometricModeGRPC, BiometricModeApprove:
	default:
		return Config{}, fmt.Errorf("unknown biometric mode %q", cfg.BiometricMode)
	}
	if (cfg.PlatformMode == PlatformModeGRPC || cfg.BiometricMode == BiometricModeGRPC) && cfg.PlatformEndpoint == "" {
		return Config{}, fmt.Errorf("missing PLATFORM_ENDPOINT for grpc capability mode")
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

// envFloat parses float env vars with safe fallback on empty/invalid values.
func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
