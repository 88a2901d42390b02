package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the mission pipeline service.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Drone   DroneConfig   `mapstructure:"drone" yaml:"drone"`
	Mission MissionConfig `mapstructure:"mission" yaml:"mission"`
	POI     POIConfig     `mapstructure:"poi" yaml:"poi"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig configures the gateway HTTP server.
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider  string `mapstructure:"provider" yaml:"provider"`
	Model     string `mapstructure:"model" yaml:"model"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// DroneConfig configures the flight interface.
type DroneConfig struct {
	// Address of the vehicle or simulator endpoint, kept for SDK adapters.
	Address string `mapstructure:"address" yaml:"address"`

	// Simulate selects the in-memory flight interface.
	Simulate bool `mapstructure:"simulate" yaml:"simulate"`
}

// MissionConfig bounds mission execution and the confirmation gate.
type MissionConfig struct {
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`
	MoveTimeout    time.Duration `mapstructure:"move_timeout" yaml:"move_timeout"`
	HomeTimeout    time.Duration `mapstructure:"home_timeout" yaml:"home_timeout"`
	CommandRateHz  float64       `mapstructure:"command_rate_hz" yaml:"command_rate_hz"`

	// PendingTTL expires unconfirmed plans; zero keeps them forever.
	PendingTTL time.Duration `mapstructure:"pending_ttl" yaml:"pending_ttl"`
}

// POIConfig locates the points-of-interest map file.
type POIConfig struct {
	MapFile string `mapstructure:"map_file" yaml:"map_file"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		LLM: LLMConfig{
			Provider:  "mistral",
			Model:     "mistral-medium-latest",
			MaxTokens: 600,
		},
		Drone: DroneConfig{
			Address:  "10.202.0.1",
			Simulate: true,
		},
		Mission: MissionConfig{
			CommandTimeout: 25 * time.Second,
			MoveTimeout:    120 * time.Second,
			HomeTimeout:    5 * time.Minute,
			CommandRateHz:  20,
			PendingTTL:     15 * time.Minute,
		},
		POI: POIConfig{
			MapFile: "maps/industrial_city.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.Mission.CommandRateHz < 0 {
		return fmt.Errorf("mission.command_rate_hz must be non-negative")
	}
	if c.Mission.PendingTTL < 0 {
		return fmt.Errorf("mission.pending_ttl must be non-negative")
	}
	return nil
}
