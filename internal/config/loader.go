package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// Load reads configuration from the given file (optional), layers
// environment variables on top, and returns the merged result.
//
// Values in the file may reference environment variables with
// ${VAR} syntax; they are expanded before parsing. Environment
// variables use the PARROTAI_ prefix with underscores for nesting,
// e.g. PARROTAI_LLM_API_KEY overrides llm.api_key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("PARROTAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED,
				fmt.Sprintf("read config file %s", path), err)
		}
		expanded := os.ExpandEnv(string(raw))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, types.WrapError(types.CONFIG_PARSE_FAILED,
				fmt.Sprintf("parse config file %s", path), err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "unmarshal config", err)
	}

	// Direct fallbacks for keys conventionally set without the prefix.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "mistral":
			cfg.LLM.APIKey = os.Getenv("MISTRAL_API_KEY")
		default:
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, types.WrapError(types.CONFIG_VALIDATION_FAILED, "validate config", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.allowed_origins", def.Server.AllowedOrigins)
	v.SetDefault("llm.provider", def.LLM.Provider)
	v.SetDefault("llm.model", def.LLM.Model)
	v.SetDefault("llm.max_tokens", def.LLM.MaxTokens)
	v.SetDefault("drone.address", def.Drone.Address)
	v.SetDefault("drone.simulate", def.Drone.Simulate)
	v.SetDefault("mission.command_timeout", def.Mission.CommandTimeout)
	v.SetDefault("mission.move_timeout", def.Mission.MoveTimeout)
	v.SetDefault("mission.home_timeout", def.Mission.HomeTimeout)
	v.SetDefault("mission.command_rate_hz", def.Mission.CommandRateHz)
	v.SetDefault("mission.pending_ttl", def.Mission.PendingTTL)
	v.SetDefault("poi.map_file", def.POI.MapFile)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}
