package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Game tuning configuration
	Game GameConfig `json:"game"`

	// Content deck configuration
	Deck DeckConfig `json:"deck"`
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	// Server port
	Port string `json:"port" env:"ECCLESIA_PORT"`

	// Log level (debug, info, warn, error)
	LogLevel string `json:"log_level" env:"ECCLESIA_LOG_LEVEL"`

	// Path for persisted student identities
	StudentStorePath string `json:"student_store_path" env:"ECCLESIA_STUDENT_STORE"`
}

// DeckConfig holds content deck configuration
type DeckConfig struct {
	// Path to a deck file (JSON or YAML); empty means the embedded deck
	Path string `json:"path" env:"ECCLESIA_DECK"`
}

// GameConfig holds game tuning parameters. Era boundaries and progression
// counts live in the deck's own tables; everything session-wide lives here.
type GameConfig struct {
	// Starting statistics
	StartingMembers   int `json:"starting_members"`
	StartingCohesion  int `json:"starting_cohesion"`
	StartingResources int `json:"starting_resources"`
	StartingInfluence int `json:"starting_influence"`

	// Members count at which the session ends in victory
	WinTarget int `json:"win_target"`

	// Cooldown between resolutions in milliseconds
	CooldownMs int `json:"cooldown_ms"`

	// Fraction of the cooldown after which the micro-event reveals
	MicroRevealFraction float64 `json:"micro_reveal_fraction"`

	// Delay in milliseconds before completing on content exhaustion,
	// so the final outcome stays readable
	FinalHoldMs int `json:"final_hold_ms"`

	// Resources at or below which micro-event selection draws only
	// from the donation pool
	LowResourceThreshold int `json:"low_resource_threshold"`

	// Probability of a donation micro-event when resources are healthy
	DonationChance float64 `json:"donation_chance"`

	// Donation scaling anchors: linear interpolation between the two,
	// clamped outside the range
	DonationBaseYear   int     `json:"donation_base_year"`
	DonationBaseFactor float64 `json:"donation_base_factor"`
	DonationLateYear   int     `json:"donation_late_year"`
	DonationLateFactor float64 `json:"donation_late_factor"`

	// Trailing micro-event history window used for anti-repetition
	MicroHistoryWindow int `json:"micro_history_window"`

	// Bounded reselection attempts before accepting a repeat
	MicroRetries int `json:"micro_retries"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:             "8080",
			LogLevel:         "info",
			StudentStorePath: "./data/students.json",
		},
		Deck: DeckConfig{
			Path: "",
		},
		Game: GameConfig{
			StartingMembers:      48,
			StartingCohesion:     70,
			StartingResources:    35,
			StartingInfluence:    20,
			WinTarget:            500,
			CooldownMs:           6500,
			MicroRevealFraction:  0.5,
			FinalHoldMs:          2000,
			LowResourceThreshold: 25,
			DonationChance:       0.2,
			DonationBaseYear:     100,
			DonationBaseFactor:   1.0,
			DonationLateYear:     500,
			DonationLateFactor:   1.8,
			MicroHistoryWindow:   4,
			MicroRetries:         3,
		},
	}
}

// LoadConfig loads configuration from a file, creating it with defaults
// when missing, then applies environment overrides.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return config, err
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Create default config file
		if err := SaveConfig(config, path); err != nil {
			return config, err
		}
		return applyEnv(config)
	}

	// Read config file
	file, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}

	return applyEnv(config)
}

// SaveConfig saves configuration to a file
func SaveConfig(config Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create or truncate file
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write config to file
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(config); err != nil {
		return err
	}

	return nil
}

// applyEnv overlays environment variables onto file-derived values.
func applyEnv(config Config) (Config, error) {
	if err := env.Parse(&config.Server); err != nil {
		return config, err
	}
	if err := env.Parse(&config.Deck); err != nil {
		return config, err
	}
	return config, nil
}
