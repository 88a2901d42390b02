package providers

import (
	"fmt"
	"os"

	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

const mistralBaseURL = "https://api.mistral.ai/v1"

// New creates a provider by name. The "mistral" provider rides the
// OpenAI-compatible client with Mistral's endpoint and key.
func New(name string, cfg llm.ProviderConfig) (llm.Provider, error) {
	switch name {
	case "", "openai":
		return NewOpenAIProvider(cfg)
	case "mistral":
		if cfg.BaseURL == "" {
			cfg.BaseURL = mistralBaseURL
		}
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("MISTRAL_API_KEY")
		}
		return NewOpenAIProvider(cfg)
	default:
		return nil, types.NewError(types.LLM_PROVIDER_INIT_FAILED,
			fmt.Sprintf("unknown provider: %s", name))
	}
}
