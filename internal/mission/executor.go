package mission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/purrsec/Hackathon-parrotAI/internal/flight"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// ExecutorConfig bounds every blocking wait the execution engine performs.
// The home-return timeout is generous: a return flight can take minutes.
type ExecutorConfig struct {
	CommandTimeout time.Duration
	MoveTimeout    time.Duration
	HomeTimeout    time.Duration
	CommandRateHz  float64
}

// DefaultExecutorConfig returns the stock timeout set.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CommandTimeout: 25 * time.Second,
		MoveTimeout:    120 * time.Second,
		HomeTimeout:    5 * time.Minute,
		CommandRateHz:  20,
	}
}

func (c *ExecutorConfig) applyDefaults() {
	def := DefaultExecutorConfig()
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = def.CommandTimeout
	}
	if c.MoveTimeout <= 0 {
		c.MoveTimeout = def.MoveTimeout
	}
	if c.HomeTimeout <= 0 {
		c.HomeTimeout = def.HomeTimeout
	}
	if c.CommandRateHz <= 0 {
		c.CommandRateHz = def.CommandRateHz
	}
}

// Executor runs an approved plan's segments in order against the flight
// interface. It never returns an error: every failure, including a panic
// escaping the flight layer, is captured into the execution report. The
// flight interface is an exclusively-owned resource; callers must not run
// two executions concurrently against the same vehicle.
type Executor struct {
	flight     flight.Interface
	logger     *slog.Logger
	cfg        ExecutorConfig
	supervisor *SafetySupervisor
}

// ExecutorOption is a functional option for configuring an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger sets the logger.
func WithExecutorLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithExecutorConfig sets the timeout configuration. Zero fields keep
// their defaults.
func WithExecutorConfig(cfg ExecutorConfig) ExecutorOption {
	return func(e *Executor) {
		e.cfg = cfg
	}
}

// NewExecutor creates an execution engine over the given flight interface.
func NewExecutor(fl flight.Interface, opts ...ExecutorOption) *Executor {
	e := &Executor{
		flight: fl,
		logger: slog.Default(),
		cfg:    DefaultExecutorConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.applyDefaults()
	e.supervisor = NewSafetySupervisor(fl, e.logger, e.cfg.CommandTimeout, e.cfg.HomeTimeout)
	return e
}

// Execute runs the plan's segments strictly in order and returns the
// execution report. In dry-run mode the same state machine runs but every
// handler only logs its intended action; the flight interface is never
// touched.
//
// Exit contract: if the vehicle is airborne when execution stops for any
// reason, the safety supervisor's return-home-and-land sequence runs
// before the connection is released. The connection is always closed.
func (e *Executor) Execute(ctx context.Context, plan *Plan, dryRun bool) (report *Report) {
	report = NewReport()

	var connected, airborne bool

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("flight interface fault: %v", r)
			e.logger.Error("mission execution aborted", "error", err)
			report.fail(len(report.ExecutedSegments), err)
		}
		if !dryRun && connected {
			if airborne {
				e.supervisor.ForceHome(ctx)
			}
			if err := e.flight.Disconnect(); err != nil {
				e.logger.Warn("disconnect failed", "error", err)
			} else {
				e.logger.Info("disconnected from vehicle")
			}
		}
	}()

	e.logger.Info("starting mission execution",
		"mission_id", plan.ID,
		"segments", len(plan.Segments),
		"dry_run", dryRun,
	)

	if dryRun {
		e.logger.Info("dry run: skipping vehicle connection and commands")
	} else {
		if err := e.connect(ctx); err != nil {
			e.logger.Error("mission execution failed", "error", err)
			report.fail(0, err)
			return report
		}
		connected = true
	}

	for idx, seg := range plan.Segments {
		start := time.Now()

		if err := e.runSegment(ctx, idx, seg, dryRun, &airborne); err != nil {
			e.logger.Error("mission execution failed",
				"mission_id", plan.ID,
				"segment", idx,
				"type", seg.Kind(),
				"error", err,
			)
			report.fail(idx, err)
			return report
		}

		report.recordSegment(idx, seg.Kind(), float64(time.Since(start).Microseconds())/1000.0)
	}

	report.Status = ReportStatusCompleted
	e.logger.Info("mission completed", "mission_id", plan.ID, "segments", len(plan.Segments))
	return report
}

// connect acquires the flight interface, waits for a known flying state,
// and enables obstacle avoidance best-effort.
func (e *Executor) connect(ctx context.Context) error {
	e.logger.Info("connecting to vehicle")
	if err := e.flight.Connect(ctx); err != nil {
		return types.WrapError(types.FLIGHT_CONNECT_FAILED, "failed to connect to vehicle", err)
	}

	if err := e.flight.WaitReady(ctx, e.cfg.CommandTimeout); err != nil {
		return types.WrapError(types.FLIGHT_NOT_READY, "vehicle not ready (flying state unavailable)", err)
	}

	if err := e.flight.EnableObstacleAvoidance(ctx); err != nil {
		e.logger.Warn("failed to enable obstacle avoidance, continuing without it", "error", err)
	} else {
		e.logger.Info("obstacle avoidance enabled")
	}

	if state, err := e.flight.State(ctx); err == nil {
		e.logger.Info("initial flying state", "state", state)
	}
	return nil
}

// runSegment dispatches one segment to its handler. The airborne flag is
// set only after a successful takeoff and cleared only after the land
// handler returns.
func (e *Executor) runSegment(ctx context.Context, idx int, seg Segment, dryRun bool, airborne *bool) error {
	if dryRun {
		e.logger.Info("dry run segment", "index", idx, "type", seg.Kind())
		return nil
	}

	switch s := seg.(type) {
	case *Takeoff:
		if err := e.segmentTakeoff(ctx, s); err != nil {
			return err
		}
		*airborne = true
		return nil

	case *MoveTo:
		return e.segmentMoveTo(ctx, s)

	case *PoiInspection:
		return e.segmentPoiInspection(ctx, s)

	case *ReturnToHome:
		return e.supervisor.ReturnHome(ctx)

	case *Land:
		if err := e.supervisor.Land(ctx); err != nil {
			return err
		}
		*airborne = false
		return nil

	default:
		// Unreachable with segments decoded at the schema boundary, kept
		// as a guard against future kinds.
		return types.NewError(types.MISSION_SEGMENT_FAILED,
			fmt.Sprintf("unsupported segment type: %s", seg.Kind()))
	}
}

// segmentTakeoff issues takeoff and waits for hover. A failed takeoff is
// fatal to the mission; an unobserved hover state after a successful
// command is only a warning.
func (e *Executor) segmentTakeoff(ctx context.Context, seg *Takeoff) error {
	e.logger.Info("segment: takeoff")

	wait := seg.MaxWait
	if wait <= 0 {
		wait = e.cfg.CommandTimeout
	}

	if err := e.flight.Takeoff(ctx); err != nil {
		return types.WrapError(types.FLIGHT_COMMAND_FAILED, "takeoff command failed", err)
	}

	if err := e.flight.WaitState(ctx, flight.StateHovering, wait); err != nil {
		e.logger.Warn("did not observe hovering state after takeoff", "error", err)
	}
	return nil
}

// segmentMoveTo issues a navigate-to-coordinate command with the segment's
// speed caps. Failure is fatal.
func (e *Executor) segmentMoveTo(ctx context.Context, seg *MoveTo) error {
	e.logger.Info("segment: move_to",
		"lat", seg.Latitude,
		"lon", seg.Longitude,
		"alt_m", seg.Altitude,
		"max_hs", seg.MaxHorizontalSpeed,
		"max_vs", seg.MaxVerticalSpeed,
		"max_yaw", seg.MaxYawRotationSpeed,
	)

	cmd := flight.MoveCommand{
		Latitude:            seg.Latitude,
		Longitude:           seg.Longitude,
		Altitude:            seg.Altitude,
		MaxHorizontalSpeed:  seg.MaxHorizontalSpeed,
		MaxVerticalSpeed:    seg.MaxVerticalSpeed,
		MaxYawRotationSpeed: seg.MaxYawRotationSpeed,
	}
	if err := e.flight.MoveTo(ctx, cmd); err != nil {
		return types.WrapError(types.FLIGHT_COMMAND_FAILED, "move_to failed", err)
	}

	// Wait for hover for stability before the next segment.
	if err := e.flight.WaitState(ctx, flight.StateHovering, e.cfg.MoveTimeout); err != nil {
		e.logger.Warn("did not observe hovering state after move", "error", err)
	}
	return nil
}

// segmentPoiInspection locks the orbit pivot on the point, streams
// constant-turn-rate attitude commands for the rotation duration, then
// stops movement and releases the lock. Failing to start the orbit is
// fatal; failing to cleanly release it is not. The zero-attitude stop is
// sent unconditionally first so the vehicle is never left spinning.
func (e *Executor) segmentPoiInspection(ctx context.Context, seg *PoiInspection) error {
	e.logger.Info("segment: poi_inspection",
		"poi", seg.PoiName,
		"lat", seg.Latitude,
		"lon", seg.Longitude,
		"alt_m", seg.Altitude,
		"duration_s", seg.RotationDuration,
		"roll_rate", seg.RollRate,
	)

	if err := e.flight.StartOrbit(ctx, seg.Latitude, seg.Longitude, seg.Altitude); err != nil {
		return types.WrapError(types.FLIGHT_COMMAND_FAILED, "failed to start orbit lock", err)
	}

	if state, err := e.flight.State(ctx); err != nil {
		e.logger.Warn("orbit state unavailable", "error", err)
	} else {
		e.logger.Info("orbit locked", "state", state)
	}

	e.streamOrbit(ctx, seg)

	// Stop movement before releasing the lock, unconditionally.
	if err := e.flight.Attitude(ctx, flight.AttitudeCommand{}); err != nil {
		e.logger.Warn("failed to zero attitude after orbit", "error", err)
	}
	if err := e.flight.StopOrbit(ctx); err != nil {
		e.logger.Warn("failed to release orbit lock", "error", err)
	}
	return nil
}

// streamOrbit emits the fixed-rate constant-roll command stream.
func (e *Executor) streamOrbit(ctx context.Context, seg *PoiInspection) {
	steps := int(seg.RotationDuration * e.cfg.CommandRateHz)
	if steps < 1 {
		steps = 1
	}
	interval := time.Duration(float64(time.Second) / e.cfg.CommandRateHz)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cmd := flight.AttitudeCommand{Roll: seg.RollRate}
	for i := 0; i < steps; i++ {
		if err := e.flight.Attitude(ctx, cmd); err != nil {
			e.logger.Debug("attitude command dropped during orbit", "step", i, "error", err)
		}
		<-ticker.C
	}
}
