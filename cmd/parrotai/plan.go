package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/purrsec/Hackathon-parrotAI/internal/flight"
	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/llm/providers"
	"github.com/purrsec/Hackathon-parrotAI/internal/mission"
	"github.com/purrsec/Hackathon-parrotAI/internal/poi"
)

var planDryRun bool

var planCmd = &cobra.Command{
	Use:   "plan <request...>",
	Short: "Generate and validate a mission plan for a request",
	Long: `plan runs the pipeline once for a single request and prints the
validated mission as JSON. With --dry-run the plan is also walked
through the execution engine against the simulator, printing the
execution report.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	planCmd.Flags().BoolVar(&planDryRun, "dry-run", false, "walk the plan through the simulator")
}

func runPlan(ctx context.Context, request string) error {
	registry, err := poi.Load(cfg.POI.MapFile)
	if err != nil {
		return err
	}

	provider, err := providers.New(cfg.LLM.Provider, llm.ProviderConfig{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.Model,
	})
	if err != nil {
		return err
	}

	generator := mission.NewGenerator(provider, registry,
		mission.WithModel(cfg.LLM.Model),
		mission.WithMaxTokens(cfg.LLM.MaxTokens),
		mission.WithGeneratorLogger(logger))

	plan, err := generator.Generate(ctx, request)
	if err != nil {
		return err
	}

	validator := mission.NewValidator(mission.WithValidatorLogger(logger))
	if err := validator.Validate(plan); err != nil {
		return err
	}

	if err := printJSON(plan); err != nil {
		return err
	}

	if !planDryRun {
		return nil
	}

	executor := mission.NewExecutor(flight.NewSimulator(),
		mission.WithExecutorLogger(logger))
	report := executor.Execute(ctx, plan, true)
	fmt.Println()
	return printJSON(report)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
