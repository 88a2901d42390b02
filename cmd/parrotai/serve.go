package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/purrsec/Hackathon-parrotAI/internal/flight"
	"github.com/purrsec/Hackathon-parrotAI/internal/gateway"
	"github.com/purrsec/Hackathon-parrotAI/internal/llm"
	"github.com/purrsec/Hackathon-parrotAI/internal/llm/providers"
	"github.com/purrsec/Hackathon-parrotAI/internal/mission"
	"github.com/purrsec/Hackathon-parrotAI/internal/poi"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

var serveDryRun bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mission gateway server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "log confirmed missions instead of flying them")
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := poi.Load(cfg.POI.MapFile)
	if err != nil {
		return err
	}
	logger.Info("points of interest loaded", "file", cfg.POI.MapFile, "count", registry.Len())

	provider, err := providers.New(cfg.LLM.Provider, llm.ProviderConfig{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.Model,
	})
	if err != nil {
		return err
	}

	if !cfg.Drone.Simulate {
		return types.NewError(types.FLIGHT_CONNECT_FAILED,
			"no vehicle adapter is built in; set drone.simulate=true")
	}
	vehicle := flight.NewSimulator()

	generator := mission.NewGenerator(provider, registry,
		mission.WithModel(cfg.LLM.Model),
		mission.WithMaxTokens(cfg.LLM.MaxTokens),
		mission.WithGeneratorLogger(logger))
	validator := mission.NewValidator(mission.WithValidatorLogger(logger))
	gate := mission.NewGate(
		mission.WithGateLogger(logger),
		mission.WithPendingTTL(cfg.Mission.PendingTTL))
	executor := mission.NewExecutor(vehicle,
		mission.WithExecutorLogger(logger),
		mission.WithExecutorConfig(mission.ExecutorConfig{
			CommandTimeout: cfg.Mission.CommandTimeout,
			MoveTimeout:    cfg.Mission.MoveTimeout,
			HomeTimeout:    cfg.Mission.HomeTimeout,
			CommandRateHz:  cfg.Mission.CommandRateHz,
		}))

	service := gateway.NewMissionService(generator, validator, gate, executor,
		gateway.WithServiceLogger(logger),
		gateway.WithReadinessProbe(func(ctx context.Context) error {
			_, err := vehicle.State(ctx)
			return err
		}))
	server := gateway.NewServer(cfg.Server.Addr, cfg.Server.AllowedOrigins, service,
		gateway.WithServerLogger(logger),
		gateway.WithDryRun(serveDryRun))

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
