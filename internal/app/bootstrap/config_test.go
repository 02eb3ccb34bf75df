package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
agent:
  id: device-7
  http_addr: 127.0.0.1:7421
geofence:
  latitude: -1.22486
  longitude: 36.70958
  radius_meters: 50
ledger:
  base_url: https://attendance.example.com
  timeout_seconds: 20
platform:
  mode: static
  biometric_mode: approve
location:
  timeout_seconds: 8
  cache_ttl_seconds: 120
cache:
  snapshot_ttl_seconds: 240
journal:
  path: /tmp/journal.db
credentials:
  token_path: /tmp/session.token
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.AgentID != "device-7" {
		t.Fatalf("agent id = %q", cfg.AgentID)
	}
	if cfg.HTTPAddr != "127.0.0.1:7421" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.Geofence.RadiusMeters != 50 {
		t.Fatalf("radius = %v", cfg.Geofence.RadiusMeters)
	}
	if cfg.LedgerTimeout != 20*time.Second {
		t.Fatalf("ledger timeout = %v", cfg.LedgerTimeout)
	}
	if cfg.PlatformMode != PlatformModeStatic || cfg.BiometricMode != BiometricModeApprove {
		t.Fatalf("modes = %q/%q", cfg.PlatformMode, cfg.BiometricMode)
	}
	if cfg.LocationTimeout != 8*time.Second {
		t.Fatalf("location timeout = %v", cfg.LocationTimeout)
	}
	if cfg.LocationCacheTTL != 2*time.Minute {
		t.Fatalf("location cache ttl = %v", cfg.LocationCacheTTL)
	}
	if cfg.SnapshotCacheTTL != 4*time.Minute {
		t.Fatalf("snapshot cache ttl = %v", cfg.SnapshotCacheTTL)
	}
	if cfg.JournalPath != "/tmp/journal.db" {
		t.Fatalf("journal path = %q", cfg.JournalPath)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "https://override.example.com")
	t.Setenv("GEOFENCE_RADIUS_METERS", "75")
	t.Setenv("PLATFORM_MODE", "STATIC")
	t.Setenv("LOCATION_TIMEOUT_SECONDS", "3")

	cfg, err := LoadConfig(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LedgerBaseURL != "https://override.example.com" {
		t.Fatalf("base url = %q", cfg.LedgerBaseURL)
	}
	if cfg.Geofence.RadiusMeters != 75 {
		t.Fatalf("radius = %v", cfg.Geofence.RadiusMeters)
	}
	// Modes are normalized to lowercase.
	if cfg.PlatformMode != PlatformModeStatic {
		t.Fatalf("platform mode = %q", cfg.PlatformMode)
	}
	if cfg.LocationTimeout != 3*time.Second {
		t.Fatalf("location timeout = %v", cfg.LocationTimeout)
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("LEDGER_BASE_URL", "https://env-only.example.com")
	t.Setenv("GEOFENCE_LATITUDE", "-1.22486")
	t.Setenv("GEOFENCE_LONGITUDE", "36.70958")
	t.Setenv("GEOFENCE_RADIUS_METERS", "50")
	t.Setenv("PLATFORM_MODE", "static")
	t.Setenv("BIOMETRIC_MODE", "approve")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LedgerBaseURL != "https://env-only.example.com" {
		t.Fatalf("base url = %q", cfg.LedgerBaseURL)
	}
	if cfg.HTTPAddr != "127.0.0.1:7420" {
		t.Fatalf("default http addr = %q", cfg.HTTPAddr)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing ledger url", `
geofence:
  latitude: -1.22486
  longitude: 36.70958
  radius_meters: 50
platform:
  mode: static
  biometric_mode: approve
`},
		{"zero radius fence", `
ledger:
  base_url: https://attendance.example.com
geofence:
  latitude: -1.22486
  longitude: 36.70958
  radius_meters: 0
platform:
  mode: static
  biometric_mode: approve
`},
		{"unknown platform mode", `
ledger:
  base_url: https://attendance.example.com
geofence:
  latitude: -1.22486
  longitude: 36.70958
  radius_meters: 50
platform:
  mode: carrier-pigeon
  biometric_mode: approve
`},
		{"unknown biometric mode", `
ledger:
  base_url: https://attendance.example.com
geofence:
  latitude: -1.22486
  longitude: 36.70958
  radius_meters: 50
platform:
  mode: static
  biometric_mode: vibes
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfigFile(t, tc.yaml)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
