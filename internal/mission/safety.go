package mission

import (
	"context"
	"log/slog"
	"time"

	"github.com/purrsec/Hackathon-parrotAI/internal/flight"
	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// SafetySupervisor owns the return-home-and-land command sequences. The
// executor uses them as its ReturnToHome and Land segment handlers, and
// ForceHome replays both as a last resort whenever execution stops while
// the vehicle is airborne. No code path may release the flight interface
// with the vehicle airborne without going through ForceHome first.
type SafetySupervisor struct {
	flight         flight.Interface
	logger         *slog.Logger
	commandTimeout time.Duration
	homeTimeout    time.Duration
}

// NewSafetySupervisor creates a supervisor over the given flight interface.
func NewSafetySupervisor(fl flight.Interface, logger *slog.Logger, commandTimeout, homeTimeout time.Duration) *SafetySupervisor {
	return &SafetySupervisor{
		flight:         fl,
		logger:         logger,
		commandTimeout: commandTimeout,
		homeTimeout:    homeTimeout,
	}
}

// ForceHome attempts ReturnHome then Land, swallowing and logging any
// further failure. This is a best-effort last resort and is not retried;
// panics from the flight layer are contained here too.
func (s *SafetySupervisor) ForceHome(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("safety fallback aborted by flight interface fault", "fault", r)
		}
	}()

	s.logger.Warn("safety: attempting return-to-home and landing")

	if err := s.ReturnHome(ctx); err != nil {
		s.logger.Warn("safety return-to-home attempt failed", "error", err)
	}
	if err := s.Land(ctx); err != nil {
		s.logger.Warn("safety landing attempt failed", "error", err)
	}
}

// ReturnHome brings the vehicle back to its launch point. It prefers the
// dedicated home-return capability with land-on-arrival when the flight
// interface exposes one, falling back to a generic navigate-home command.
// Failing to start the return is an error; not observing completion within
// the (generously sized) home timeout is logged and treated as proceed
// anyway, because the subsequent Land step is unconditional.
func (s *SafetySupervisor) ReturnHome(ctx context.Context) error {
	hr, ok := s.flight.(flight.HomeReturner)
	if !ok {
		return s.navigateHomeFallback(ctx)
	}

	if err := hr.SetEndingBehavior(ctx, flight.EndingBehaviorLanding); err != nil {
		s.logger.Info("could not set return-to-home ending behavior", "error", err)
	}

	if err := hr.ReturnToHome(ctx); err != nil {
		s.logger.Info("dedicated return-to-home unavailable, falling back to navigate-home", "error", err)
		return s.navigateHomeFallback(ctx)
	}

	s.logger.Info("return-to-home started, waiting for completion", "timeout", s.homeTimeout)
	if err := hr.AwaitHomeReached(ctx, s.homeTimeout); err != nil {
		s.logger.Warn("return-to-home did not report completion in time", "error", err)
	}
	return nil
}

func (s *SafetySupervisor) navigateHomeFallback(ctx context.Context) error {
	if err := s.flight.NavigateHome(ctx); err != nil {
		return types.WrapError(types.FLIGHT_COMMAND_FAILED, "failed to start navigate-home", err)
	}
	if err := s.flight.WaitState(ctx, flight.StateHovering, s.commandTimeout); err != nil {
		s.logger.Warn("navigate-home did not report a settled state", "error", err)
	}
	return nil
}

// Land grounds the vehicle. If the vehicle already reports a grounded
// state, it only waits for confirmation. A landing command that fails or a
// confirmation that never arrives is logged, not escalated: the command was
// still sent.
func (s *SafetySupervisor) Land(ctx context.Context) error {
	confirmTimeout := 2 * s.commandTimeout

	state, err := s.flight.State(ctx)
	if err != nil {
		s.logger.Warn("could not check flying state, proceeding with landing command", "error", err)
	} else if state.OnGround() {
		s.logger.Info("vehicle already landed or landing, waiting for confirmation", "state", state)
		if err := s.flight.WaitState(ctx, flight.StateLanded, confirmTimeout); err != nil {
			s.logger.Warn("landing not confirmed within timeout, continuing", "error", err)
		}
		return nil
	}

	if err := s.flight.Land(ctx); err != nil {
		s.logger.Warn("landing command did not return success", "error", err)
	}

	if err := s.flight.WaitState(ctx, flight.StateLanded, confirmTimeout); err != nil {
		s.logger.Warn("landing not confirmed within timeout", "error", err)
	} else {
		s.logger.Info("vehicle landed")
	}
	return nil
}
