package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// MockCall records a single request made against the mock provider.
type MockCall struct {
	Request llm.CompletionRequest
}

// MockResponse pairs a canned response body with the finish reason the mock
// should report for it.
type MockResponse struct {
	Content      string
	FinishReason llm.FinishReason
}

// MockProvider implements llm.Provider for testing. Responses are replayed
// in order; calls are recorded for assertion.
type MockProvider struct {
	mu            sync.Mutex
	responses     []MockResponse
	responseIndex int
	calls         []MockCall
	err           error
}

// NewMockProvider creates a mock provider that replays the given responses
// with a "stop" finish reason.
func NewMockProvider(responses ...string) *MockProvider {
	m := &MockProvider{}
	for _, r := range responses {
		m.responses = append(m.responses, MockResponse{Content: r, FinishReason: llm.FinishReasonStop})
	}
	return m
}

// NewMockProviderWithResponses creates a mock provider from fully-specified
// responses, including finish reasons.
func NewMockProviderWithResponses(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// FailWith makes every subsequent call return err.
func (p *MockProvider) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Complete replays the next canned response.
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, MockCall{Request: req})

	if p.err != nil {
		return nil, p.err
	}

	if len(p.responses) == 0 {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED, "mock", fmt.Errorf("no responses configured"))
	}

	resp := p.responses[p.responseIndex%len(p.responses)]
	p.responseIndex++

	return &llm.CompletionResponse{
		ID:           types.NewID().String(),
		Model:        req.Model,
		Message:      llm.NewAssistantMessage(resp.Content),
		FinishReason: resp.FinishReason,
	}, nil
}

// Calls returns a copy of all recorded calls.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]MockCall, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of completion calls made.
func (p *MockProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
