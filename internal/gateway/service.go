package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/purrsec/Hackathon-parrotAI/internal/mission"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// maxHistory bounds the in-memory mission history.
const maxHistory = 100

// HistoryEntry records one completed mission for the history endpoint.
type HistoryEntry struct {
	MissionID     string          `json:"mission_id"`
	Request       string          `json:"request"`
	Understanding string          `json:"understanding,omitempty"`
	Report        *mission.Report `json:"report"`
	FinishedAt    time.Time       `json:"finished_at"`
}

// Proposal is the outcome of planning a request: a validated plan parked
// behind the confirmation gate.
type Proposal struct {
	MissionID     string
	Understanding string
	Plan          *mission.Plan
}

// MissionService drives the full pipeline: plan a request, hold the plan
// for confirmation, and execute confirmed plans one at a time.
type MissionService struct {
	generator *mission.Generator
	validator *mission.Validator
	gate      *mission.Gate
	executor  *mission.Executor
	logger    *slog.Logger

	// vehicleMu serializes flight access; one mission flies at a time.
	vehicleMu sync.Mutex

	mu        sync.Mutex
	reports   map[string]*mission.Report
	history   []HistoryEntry
	executing bool
	startedAt time.Time

	// onResult, when set, receives the report of every finished mission.
	onResult func(missionID string, report *mission.Report)

	// probe, when set, is the best-effort vehicle readiness check used by
	// the health endpoint.
	probe func(ctx context.Context) error
}

// ServiceOption configures a MissionService.
type ServiceOption func(*MissionService)

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *MissionService) { s.logger = l }
}

// WithResultHook registers a callback invoked after each mission finishes.
func WithResultHook(fn func(missionID string, report *mission.Report)) ServiceOption {
	return func(s *MissionService) { s.onResult = fn }
}

// WithReadinessProbe registers a vehicle readiness check for the health
// endpoint.
func WithReadinessProbe(probe func(ctx context.Context) error) ServiceOption {
	return func(s *MissionService) { s.probe = probe }
}

// NewMissionService wires the pipeline stages together.
func NewMissionService(gen *mission.Generator, val *mission.Validator, gate *mission.Gate, exec *mission.Executor, opts ...ServiceOption) *MissionService {
	s := &MissionService{
		generator: gen,
		validator: val,
		gate:      gate,
		executor:  exec,
		logger:    slog.Default(),
		reports:   make(map[string]*mission.Report),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan turns a natural-language request into a validated pending mission.
// Nothing flies until the returned mission ID is confirmed.
func (s *MissionService) Plan(ctx context.Context, request string) (*Proposal, error) {
	plan, err := s.generator.Generate(ctx, request)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(plan); err != nil {
		return nil, err
	}

	if err := s.gate.Propose(plan.ID, plan, request); err != nil {
		return nil, err
	}

	s.logger.Info("mission proposed",
		"mission_id", plan.ID,
		"segments", len(plan.Segments))

	return &Proposal{
		MissionID:     plan.ID,
		Understanding: plan.Understanding,
		Plan:          plan,
	}, nil
}

// Confirm pops the pending mission and starts executing it in the
// background. The report is retrievable by mission ID once execution
// finishes; until then Report returns a pending report.
func (s *MissionService) Confirm(id string, dryRun bool) error {
	pending, err := s.gate.Confirm(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reports[id] = mission.NewReport()
	s.executing = true
	s.mu.Unlock()

	go s.run(pending, dryRun)
	return nil
}

// Reject discards the pending mission.
func (s *MissionService) Reject(id string) error {
	return s.gate.Reject(id)
}

// Report returns the execution report for a mission, or an error when the
// mission is unknown.
func (s *MissionService) Report(id string) (*mission.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, types.NewError(types.MISSION_NOT_PENDING, "no report for mission "+id)
	}
	return report, nil
}

// History returns finished missions, newest first.
func (s *MissionService) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Status summarizes service state for the health endpoint.
func (s *MissionService) Status() (pending int, executing bool, uptime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gate.Len(), s.executing, time.Since(s.startedAt)
}

// VehicleReady runs the readiness probe. Without a probe the vehicle is
// reported ready.
func (s *MissionService) VehicleReady(ctx context.Context) error {
	if s.probe == nil {
		return nil
	}
	return s.probe(ctx)
}

// Reset drops all pending missions and stored reports. Running missions
// are left to finish; their reports land in history as usual.
func (s *MissionService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = make(map[string]*mission.Report)
	s.history = nil
}

// run executes a confirmed mission while holding the vehicle lock.
func (s *MissionService) run(pending *mission.PendingMission, dryRun bool) {
	s.vehicleMu.Lock()
	defer s.vehicleMu.Unlock()

	// Execution is bounded by the executor's own per-command timeouts, so
	// the background context is enough here.
	report := s.executor.Execute(context.Background(), pending.Plan, dryRun)

	s.mu.Lock()
	s.reports[pending.ID] = report
	s.executing = false
	s.history = append(s.history, HistoryEntry{
		MissionID:     pending.ID,
		Request:       pending.Request,
		Understanding: pending.Plan.Understanding,
		Report:        report,
		FinishedAt:    time.Now(),
	})
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	hook := s.onResult
	s.mu.Unlock()

	s.logger.Info("mission finished",
		"mission_id", pending.ID,
		"status", report.Status,
		"segments", len(report.ExecutedSegments))

	if hook != nil {
		hook(pending.ID, report)
	}
}
