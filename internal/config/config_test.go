package config

import (
	"os"
	"testing"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	// Ensure envs are clean to use defaults
	os.Unsetenv("DB_PATH")
	os.Unsetenv("GRPC_ADDRESS")
	os.Unsetenv("JWT_SECRET")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address == "" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	// Clear JWT_SECRET ensures error
	os.Unsetenv("JWT_SECRET")
	// Other vars can be set or default
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	// When set, it should succeed
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
}

func TestLoadWithDefaults_EngineDefaults(t *testing.T) {
	for _, key := range []string{"ENGINE_SAFETY_BUFFER", "ENGINE_HYSTERESIS", "ENGINE_TIME_RESOLUTION", "ENGINE_FLEET_IDS"} {
		os.Unsetenv(key)
	}
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Engine.SafetyBuffer != 5.0 {
		t.Fatalf("expected default safety buffer 5.0, got %v", cfg.Engine.SafetyBuffer)
	}
	if cfg.Engine.FleetIDs != nil {
		t.Fatalf("expected nil fleet IDs by default, got %v", cfg.Engine.FleetIDs)
	}
}

func TestLoadWithDefaults_EngineOverrides(t *testing.T) {
	t.Setenv("ENGINE_SAFETY_BUFFER", "8.5")
	t.Setenv("ENGINE_FLEET_IDS", "1, 2, 3")
	t.Setenv("ENGINE_TIME_RESOLUTION", "250ms")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Engine.SafetyBuffer != 8.5 {
		t.Fatalf("expected overridden safety buffer 8.5, got %v", cfg.Engine.SafetyBuffer)
	}
	if len(cfg.Engine.FleetIDs) != 3 || cfg.Engine.FleetIDs[2] != 3 {
		t.Fatalf("expected fleet IDs [1 2 3], got %v", cfg.Engine.FleetIDs)
	}
	if cfg.Engine.TimeResolution.String() != "250ms" {
		t.Fatalf("expected 250ms time resolution, got %v", cfg.Engine.TimeResolution)
	}
}

func TestLoadWithDefaults_InvalidEngineValueErrors(t *testing.T) {
	t.Setenv("ENGINE_SAFETY_BUFFER", "not-a-number")
	if _, err := LoadWithDefaults(); err == nil {
		t.Fatalf("expected error for invalid ENGINE_SAFETY_BUFFER")
	}
}

func TestLoadWithDefaults_AnchorOverrides(t *testing.T) {
	t.Setenv("ENGINE_ANCHOR_LAT_DEG", "37.7749")
	t.Setenv("ENGINE_ANCHOR_LNG_DEG", "-122.4194")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Engine.AnchorLatDeg != 37.7749 || cfg.Engine.AnchorLngDeg != -122.4194 {
		t.Fatalf("expected overridden anchor (37.7749,-122.4194), got (%v,%v)", cfg.Engine.AnchorLatDeg, cfg.Engine.AnchorLngDeg)
	}
}
