package mission

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/llm/providers"
	"github.com/purrsec/Hackathon-parrotAI/internal/poi"
)

const testPlanJSON = `{"missionId":"auto-1","segments":[` +
	`{"type":"takeoff","constraints":{"maxWaitSec":20}},` +
	`{"type":"move_to","latitude":48.87895,"longitude":2.36754,"altitude":60},` +
	`{"type":"return_to_home"},{"type":"land"}],` +
	`"safety":{"geofence":{"enabled":true},"maxAltitudeMeters":80}}`

func testRegistry() *poi.Registry {
	return poi.NewRegistry([]poi.Point{
		{Name: "Water Tower", Description: "north water tower",
			Coordinates: poi.Coordinates{Latitude: 48.87895, Longitude: 2.36754, AltitudeMeters: 35}},
	})
}

func TestGenerate_HappyPath(t *testing.T) {
	provider := providers.NewMockProvider(
		"Yes, I can inspect the water tower.",
		testPlanJSON,
	)
	g := NewGenerator(provider, testRegistry())

	plan, err := g.Generate(context.Background(), "inspect the water tower")
	require.NoError(t, err)

	assert.Equal(t, "auto-1", plan.ID)
	assert.Equal(t, "Yes, I can inspect the water tower.", plan.Understanding)
	require.Len(t, plan.Segments, 4)
	assert.Equal(t, KindTakeoff, plan.Segments[0].Kind())

	calls := provider.Calls()
	require.Len(t, calls, 2)
	// Understanding call stays small and warm, plan call tight and bounded.
	assert.Equal(t, 100, calls[0].Request.MaxTokens)
	assert.InDelta(t, 0.5, calls[0].Request.Temperature, 1e-9)
	assert.Equal(t, 600, calls[1].Request.MaxTokens)
	assert.InDelta(t, 0.1, calls[1].Request.Temperature, 1e-9)
}

func TestGenerate_AssignsMissionID(t *testing.T) {
	planNoID := strings.Replace(testPlanJSON, `"missionId":"auto-1",`, "", 1)
	provider := providers.NewMockProvider("understood", planNoID)
	g := NewGenerator(provider, testRegistry())

	plan, err := g.Generate(context.Background(), "patrol the site")
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
}

func TestGenerate_FencedResponse(t *testing.T) {
	provider := providers.NewMockProvider(
		"understood",
		"```json\n"+testPlanJSON+"\n```",
	)
	g := NewGenerator(provider, testRegistry())

	plan, err := g.Generate(context.Background(), "inspect the tower")
	require.NoError(t, err)
	assert.Equal(t, "auto-1", plan.ID)
}

func TestGenerate_LengthStopRetriesOnce(t *testing.T) {
	truncated := testPlanJSON[:len(testPlanJSON)/2]
	provider := providers.NewMockProviderWithResponses(
		providers.MockResponse{Content: "understood", FinishReason: llm.FinishReasonStop},
		providers.MockResponse{Content: truncated, FinishReason: llm.FinishReasonLength},
		providers.MockResponse{Content: testPlanJSON, FinishReason: llm.FinishReasonStop},
	)
	g := NewGenerator(provider, testRegistry())

	plan, err := g.Generate(context.Background(), "inspect the tower")
	require.NoError(t, err)
	assert.Equal(t, "auto-1", plan.ID)

	calls := provider.Calls()
	require.Len(t, calls, 3)

	retry := calls[2].Request
	assert.Equal(t, 900, retry.MaxTokens)
	assert.Zero(t, retry.Temperature)
	assert.Contains(t, retry.Messages[0].Content, "CRITICAL: respond ONLY with valid JSON")
}

func TestGenerate_EmptyResponseRetriesWithSmallerBudget(t *testing.T) {
	provider := providers.NewMockProvider("understood", "   \n", testPlanJSON)
	g := NewGenerator(provider, testRegistry())

	plan, err := g.Generate(context.Background(), "inspect the tower")
	require.NoError(t, err)
	assert.Equal(t, "auto-1", plan.ID)

	calls := provider.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, 300, calls[2].Request.MaxTokens)
	assert.Zero(t, calls[2].Request.Temperature)
}

func TestGenerate_EmptyAfterRetry(t *testing.T) {
	provider := providers.NewMockProvider("understood", "", "  ")
	g := NewGenerator(provider, testRegistry())

	_, err := g.Generate(context.Background(), "inspect the tower")
	require.Error(t, err)

	var gerr *GenerationError
	assert.ErrorAs(t, err, &gerr)
	assert.Equal(t, 3, provider.CallCount())
}

func TestGenerate_NoJSONCarriesRaw(t *testing.T) {
	provider := providers.NewMockProvider(
		"understood",
		"I cannot plan that mission, sorry.",
	)
	g := NewGenerator(provider, testRegistry())

	_, err := g.Generate(context.Background(), "fly to the moon")
	require.Error(t, err)

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "I cannot plan that mission, sorry.", gerr.Raw)
	assert.ErrorIs(t, err, llm.ErrNoJSONFound)
}

func TestGenerate_InvalidDSLCarriesRaw(t *testing.T) {
	provider := providers.NewMockProvider(
		"understood",
		`{"segments": [{"type": "warp_drive"}]}`,
	)
	g := NewGenerator(provider, testRegistry())

	_, err := g.Generate(context.Background(), "engage")
	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.Contains(t, gerr.Raw, "warp_drive")
}

func TestGenerate_ProviderFailure(t *testing.T) {
	provider := providers.NewMockProvider()
	provider.FailWith(errors.New("upstream unavailable"))
	g := NewGenerator(provider, testRegistry())

	_, err := g.Generate(context.Background(), "inspect the tower")
	var gerr *GenerationError
	assert.ErrorAs(t, err, &gerr)
}

func TestGenerate_UnderstandingFallback(t *testing.T) {
	provider := providers.NewMockProvider("", testPlanJSON)
	g := NewGenerator(provider, testRegistry())

	plan, err := g.Generate(context.Background(), "inspect the water tower")
	require.NoError(t, err)
	assert.Equal(t, "Yes, I can execute: inspect the water tower...", plan.Understanding)
}

func TestFallbackUnderstanding_Truncates(t *testing.T) {
	long := strings.Repeat("a", 100)
	got := fallbackUnderstanding(long)
	assert.Equal(t, "Yes, I can execute: "+strings.Repeat("a", 60)+"...", got)
}

func TestSystemPromptListsPOIs(t *testing.T) {
	g := NewGenerator(providers.NewMockProvider(), testRegistry())

	assert.Contains(t, g.systemPrompt, "Water Tower")
	assert.Contains(t, g.systemPrompt, "return_to_home")
	assert.Contains(t, g.systemPrompt, "maxAltitudeMeters")
}
