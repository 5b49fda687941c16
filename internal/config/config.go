package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	GRPC     GRPCConfig
	Auth     AuthConfig
	Engine   EngineConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string // SQLite database file path
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string // gRPC server listen address (e.g., ":50051")
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // JWT signing secret
}

// EngineConfig holds the deconfliction engine's tunable parameters, every
// one of which is an open question resolved to a
// configurable default rather than a hardcoded constant.
type EngineConfig struct {
	SafetyBuffer           float64       // meters, default 5.0
	TimeResolution         time.Duration // trajectory sampling interval τ
	TimeAlignmentTolerance time.Duration // conflict detector alignment window
	Lookahead              time.Duration // realtime-monitor horizon; no component reads it, and Submit windows are not bounded by it
	GCInterval             time.Duration // store garbage-collection period
	GCGrace                time.Duration // store retains samples this long after they pass
	Hysteresis             float64       // proximity monitor clear-threshold ratio
	PollInterval           time.Duration // proximity monitor poll period
	FleetIDs               []int64       // recognized drone IDs; empty means "any"
	AnchorLatDeg           float64       // geodetic origin of the local ENU frame
	AnchorLngDeg           float64       // geodetic origin of the local ENU frame
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg, err := load(getEnv("JWT_SECRET", ""))
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	return load(getEnv("JWT_SECRET", "dev-secret-change-me"))
}

func load(jwtSecret string) (*Config, error) {
	safetyBuffer, err := getEnvFloat("ENGINE_SAFETY_BUFFER", 5.0)
	if err != nil {
		return nil, err
	}
	hysteresis, err := getEnvFloat("ENGINE_HYSTERESIS", 0.10)
	if err != nil {
		return nil, err
	}
	timeResolution, err := getEnvDuration("ENGINE_TIME_RESOLUTION", 100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	alignmentTolerance, err := getEnvDuration("ENGINE_TIME_ALIGNMENT_TOLERANCE", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	lookahead, err := getEnvDuration("ENGINE_LOOKAHEAD", 30*time.Second)
	if err != nil {
		return nil, err
	}
	gcInterval, err := getEnvDuration("ENGINE_GC_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	gcGrace, err := getEnvDuration("ENGINE_GC_GRACE", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	pollInterval, err := getEnvDuration("ENGINE_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	fleetIDs, err := getEnvIntSlice("ENGINE_FLEET_IDS", nil)
	if err != nil {
		return nil, err
	}
	anchorLat, err := getEnvFloat("ENGINE_ANCHOR_LAT_DEG", 0)
	if err != nil {
		return nil, err
	}
	anchorLng, err := getEnvFloat("ENGINE_ANCHOR_LNG_DEG", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "app.db"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Engine: EngineConfig{
			SafetyBuffer:           safetyBuffer,
			TimeResolution:         timeResolution,
			TimeAlignmentTolerance: alignmentTolerance,
			Lookahead:              lookahead,
			GCInterval:             gcInterval,
			GCGrace:                gcGrace,
			Hysteresis:             hysteresis,
			PollInterval:           pollInterval,
			FleetIDs:               fleetIDs,
			AnchorLatDeg:           anchorLat,
			AnchorLngDeg:           anchorLng,
		},
	}, nil
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

// getEnvFloat retrieves an environment variable as a float64 with a default fallback.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %w", key, err)
		}
		return f, nil
	}
	return defaultVal, nil
}

// getEnvDuration retrieves an environment variable as a time.Duration (Go
// duration syntax, e.g. "500ms", "24h") with a default fallback.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}

// getEnvIntSlice retrieves a comma-separated list of int64s with a default
// fallback. An empty-string value is treated as an explicit empty list.
func getEnvIntSlice(key string, defaultVal []int64) ([]int64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int in %s: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, gRPC: %s, Auth: *** (masked) ***}", c.Database.Path, c.GRPC.Address)
}
