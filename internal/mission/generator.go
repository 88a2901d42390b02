package mission

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/poi"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// Generation defaults. The primary budget is sized for a compact minified
// mission DSL; the understanding call only needs one sentence.
const (
	defaultPlanMaxTokens     = 600
	planTemperature          = 0.1
	understandingMaxTokens   = 100
	understandingTemperature = 0.5
)

// strictJSONInstruction is appended to the system prompt on retries after a
// truncated or empty completion.
const strictJSONInstruction = "\n\nCRITICAL: respond ONLY with valid JSON matching the template. " +
	"No formatting, NO markdown, NO backticks. Respond with compact, minified JSON " +
	"(no spaces or line breaks)."

// Generator turns a free-text operator request into a mission plan via the
// language-model capability. It is stateless across invocations; every
// failure mode is converted into a *GenerationError rather than escaping.
type Generator struct {
	provider     llm.Provider
	registry     *poi.Registry
	model        string
	maxTokens    int
	logger       *slog.Logger
	systemPrompt string
}

// GeneratorOption is a functional option for configuring a Generator.
type GeneratorOption func(*Generator)

// WithModel sets the completion model.
func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		g.model = model
	}
}

// WithMaxTokens sets the primary completion token budget.
func WithMaxTokens(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = l
	}
}

// NewGenerator creates a plan generator over the given completion provider
// and POI registry.
func NewGenerator(provider llm.Provider, registry *poi.Registry, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider:  provider,
		registry:  registry,
		maxTokens: defaultPlanMaxTokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.systemPrompt = buildSystemPrompt(registry)
	return g
}

// Generate produces a mission plan and a one-sentence understanding of the
// operator's intent from free text. On unrecoverable model output it
// returns a *GenerationError carrying the raw response.
func (g *Generator) Generate(ctx context.Context, userText string) (*Plan, error) {
	understanding := g.generateUnderstanding(ctx, userText)

	text, err := g.completePlan(ctx, userText)
	if err != nil {
		return nil, err
	}

	jsonStr, err := llm.ExtractJSON(text)
	if err != nil {
		g.logger.Error("no JSON object in model response", "raw_len", len(text))
		return nil, &GenerationError{Raw: text, Cause: err}
	}

	var plan Plan
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		g.logger.Error("failed to decode mission DSL", "error", err)
		return nil, &GenerationError{Raw: text, Cause: err}
	}

	if plan.ID == "" {
		plan.ID = types.NewID().String()
	}
	plan.Understanding = understanding

	g.logger.Info("mission plan generated",
		"mission_id", plan.ID,
		"segments", len(plan.Segments),
	)
	return &plan, nil
}

// completePlan issues the primary completion and applies the retry policy:
// one escalated retry after truncation-by-length, one reduced-budget retry
// after an empty response. Retries are sequential and each condition is
// evaluated once.
func (g *Generator) completePlan(ctx context.Context, userText string) (string, error) {
	resp, err := g.complete(ctx, g.systemPrompt, userText, g.maxTokens, planTemperature)
	if err != nil {
		return "", &GenerationError{Cause: err}
	}

	text := resp.Message.Content

	if resp.FinishReason.IsTruncated() {
		budget := g.maxTokens * 3 / 2
		if budget < defaultPlanMaxTokens {
			budget = defaultPlanMaxTokens
		}
		g.logger.Warn("completion stopped due to length, retrying with larger token budget",
			"budget", budget,
		)
		retry, retryErr := g.complete(ctx, g.systemPrompt+strictJSONInstruction, userText, budget, 0)
		if retryErr != nil {
			g.logger.Error("retry after length stop failed", "error", retryErr)
		} else {
			text = retry.Message.Content
		}
	}

	if strings.TrimSpace(text) == "" {
		budget := g.maxTokens / 2
		if budget < 256 {
			budget = 256
		}
		g.logger.Warn("empty completion, retrying with stricter instruction", "budget", budget)
		retry, retryErr := g.complete(ctx, g.systemPrompt+strictJSONInstruction, userText, budget, 0)
		if retryErr != nil {
			g.logger.Error("retry after empty response failed", "error", retryErr)
			return "", &GenerationError{Cause: retryErr}
		}
		text = retry.Message.Content
		if strings.TrimSpace(text) == "" {
			return "", &GenerationError{Cause: fmt.Errorf("empty response from model after retry")}
		}
	}

	return text, nil
}

func (g *Generator) complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (*llm.CompletionResponse, error) {
	return g.provider.Complete(ctx, llm.CompletionRequest{
		Model: g.model,
		Messages: []llm.Message{
			llm.NewSystemMessage(system),
			llm.NewUserMessage(user),
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}

// generateUnderstanding asks the model for a one-sentence confirmation of
// intent. Best-effort: on any failure it synthesizes a generic fallback
// from the request text instead of aborting generation.
func (g *Generator) generateUnderstanding(ctx context.Context, userText string) string {
	prompt := fmt.Sprintf(`You are a helpful drone assistant.
Given this user request, respond with a SHORT confirmation (1 sentence max).
Format: "Yes, I can [action] [details]"

User request: %s

Respond with ONLY the confirmation sentence, nothing else.`, userText)

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		Model: g.model,
		Messages: []llm.Message{
			llm.NewUserMessage(prompt),
		},
		Temperature: understandingTemperature,
		MaxTokens:   understandingMaxTokens,
	})
	if err == nil {
		if u := strings.TrimSpace(resp.Message.Content); u != "" {
			return u
		}
	} else {
		g.logger.Warn("failed to generate understanding, using fallback", "error", err)
	}

	return fallbackUnderstanding(userText)
}

// fallbackUnderstanding builds a generic confirmation from the request.
func fallbackUnderstanding(userText string) string {
	const max = 60
	if len(userText) > max {
		userText = userText[:max]
	}
	return fmt.Sprintf("Yes, I can execute: %s...", userText)
}

// buildSystemPrompt renders the fixed planning instruction: the closed
// action set, the known points of interest, the safety rules, and the exact
// JSON template the model must emit.
func buildSystemPrompt(registry *poi.Registry) string {
	var sb strings.Builder

	sb.WriteString("You are a drone mission planner. Generate missions as JSON ONLY.\n\n")
	sb.WriteString("Actions (use ONLY these):\n")
	sb.WriteString(`- takeoff: {"type":"takeoff","constraints":{"maxWaitSec":20}}` + "\n")
	sb.WriteString(`- move_to: {"type":"move_to","latitude":48.88,"longitude":2.37,"altitude":60,"max_horizontal_speed":15,"max_vertical_speed":2,"max_yaw_rotation_speed":1}` + "\n")
	sb.WriteString(`- poi_inspection: {"type":"poi_inspection","poi_name":"NAME","latitude":LAT,"longitude":LON,"altitude":65,"rotation_duration":30,"roll_rate":50,"offset_distance":15}` + "\n")
	sb.WriteString(`- return_to_home: {"type":"return_to_home"}` + "\n")
	sb.WriteString(`- land: {"type":"land"}` + "\n")

	sb.WriteString("\nPOIs:\n")
	sb.WriteString(formatPoiList(registry))

	sb.WriteString("\n\nTemplate:\n")
	sb.WriteString(`{"missionId":"auto-X","segments":[{"type":"takeoff","constraints":{"maxWaitSec":20}},{"type":"move_to",...},{"type":"poi_inspection",...},{"type":"return_to_home"},{"type":"land"}],"safety":{"geofence":{"enabled":true},"maxAltitudeMeters":80,"minBatteryPercent":25}}` + "\n")

	sb.WriteString("\nRules:\n")
	sb.WriteString("1. ONLY use action types: takeoff,move_to,poi_inspection,return_to_home,land\n")
	sb.WriteString("2. NO orbit/loiter/survey\n")
	sb.WriteString("3. Use real POI coordinates\n")
	sb.WriteString("4. Start with takeoff, end with return_to_home+land\n")
	sb.WriteString("5. Add move_to before each poi_inspection\n")
	sb.WriteString("6. Output ONLY valid JSON, no text, NO markdown, NO code fences/backticks\n")
	sb.WriteString("7. CRITICAL SAFETY: MINIMUM altitude 60m for move_to, 65m for poi_inspection\n")
	sb.WriteString("8. Buildings are 30-40m tall - NEVER fly below 55m altitude\n")
	sb.WriteString("9. For inspection, position drone ABOVE buildings at 65m minimum\n")

	return sb.String()
}

func formatPoiList(registry *poi.Registry) string {
	if registry == nil || registry.Len() == 0 {
		return "No points of interest available."
	}

	var sb strings.Builder
	for _, p := range registry.Points() {
		desc := p.Description
		if desc == "" {
			desc = "No description"
		}
		sb.WriteString(fmt.Sprintf("\n- %s: %s (Latitude: %g, Longitude: %g, Altitude: %gm)",
			p.Name, desc,
			p.Coordinates.Latitude, p.Coordinates.Longitude, p.Coordinates.AltitudeMeters,
		))
	}
	return sb.String()
}
