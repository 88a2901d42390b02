package providers

import (
	"context"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// OpenAIProvider implements llm.Provider on top of any OpenAI-compatible
// chat completion endpoint. With a Mistral base URL it drives Mistral's API,
// which exposes the same wire format.
type OpenAIProvider struct {
	client *openai.LLM
	config llm.ProviderConfig
}

// NewOpenAIProvider creates a new OpenAI-compatible provider.
func NewOpenAIProvider(cfg llm.ProviderConfig) (*OpenAIProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return nil, types.NewError(types.LLM_PROVIDER_INIT_FAILED, "openai: missing API key")
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
	}

	if cfg.DefaultModel != "" {
		opts = append(opts, openai.WithModel(cfg.DefaultModel))
	}

	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, types.WrapError(types.LLM_PROVIDER_INIT_FAILED, "openai: client init failed", err)
	}

	return &OpenAIProvider{
		client: client,
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends a completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	messages := toContentMessages(req.Messages)
	callOpts := buildCallOptions(req)

	resp, err := p.client.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED, "openai: completion failed", err)
	}

	return fromContentResponse(resp, req.Model), nil
}

// toContentMessages converts our messages to the langchaingo representation.
func toContentMessages(messages []llm.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role schema.ChatMessageType
		switch m.Role {
		case llm.RoleSystem:
			role = schema.ChatMessageTypeSystem
		case llm.RoleAssistant:
			role = schema.ChatMessageTypeAI
		default:
			role = schema.ChatMessageTypeHuman
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

// buildCallOptions maps request knobs to langchaingo call options.
func buildCallOptions(req llm.CompletionRequest) []llms.CallOption {
	var opts []llms.CallOption
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	opts = append(opts, llms.WithTemperature(req.Temperature))
	return opts
}

// fromContentResponse converts a langchaingo response to our representation.
func fromContentResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{
		ID:           types.NewID().String(),
		Model:        model,
		FinishReason: llm.FinishReasonStop,
	}

	if len(resp.Choices) == 0 {
		out.FinishReason = llm.FinishReasonError
		return out
	}

	choice := resp.Choices[0]
	out.Message = llm.NewAssistantMessage(choice.Content)
	out.FinishReason = mapStopReason(choice.StopReason)
	return out
}

// mapStopReason normalizes provider stop reasons to our FinishReason set.
func mapStopReason(reason string) llm.FinishReason {
	switch strings.ToLower(reason) {
	case "length", "max_tokens":
		return llm.FinishReasonLength
	case "content_filter":
		return llm.FinishReasonContentFilter
	case "", "stop", "end_turn", "stop_sequence":
		return llm.FinishReasonStop
	default:
		return llm.FinishReasonStop
	}
}
