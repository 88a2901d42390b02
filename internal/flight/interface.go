// Package flight defines the boundary to the flight-control SDK. The mission
// executor drives a single exclusively-owned vehicle through this interface;
// implementations wrap a real SDK or simulate one.
package flight

import (
	"context"
	"time"
)

// State is the vehicle's reported flying state.
type State string

const (
	StateUnknown   State = "unknown"
	StateLanded    State = "landed"
	StateTakingOff State = "takingoff"
	StateHovering  State = "hovering"
	StateFlying    State = "flying"
	StateLanding   State = "landing"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// OnGround reports whether the state is a grounded one.
func (s State) OnGround() bool {
	return s == StateLanded || s == StateLanding
}

// MoveCommand is a navigate-to-coordinate command with speed caps.
type MoveCommand struct {
	Latitude  float64
	Longitude float64
	Altitude  float64

	MaxHorizontalSpeed  float64
	MaxVerticalSpeed    float64
	MaxYawRotationSpeed float64
}

// AttitudeCommand is a raw attitude/throttle command, used to hold a
// constant turn rate during orbit segments. A zero-valued command stops all
// movement.
type AttitudeCommand struct {
	Roll  int
	Pitch int
	Yaw   int
	Gaz   int
}

// IsZero reports whether the command stops all movement.
func (c AttitudeCommand) IsZero() bool {
	return c == AttitudeCommand{}
}

// Interface is the capability the execution engine consumes. Every command
// either completes within the implementation's own bounds or returns an
// error; blocking waits take an explicit timeout.
type Interface interface {
	// Connect acquires the vehicle connection.
	Connect(ctx context.Context) error

	// Disconnect releases the vehicle connection. Safe to call after a
	// failed Connect.
	Disconnect() error

	// WaitReady blocks until the vehicle reports a known flying state.
	WaitReady(ctx context.Context, timeout time.Duration) error

	// EnableObstacleAvoidance turns on obstacle avoidance in standard mode.
	EnableObstacleAvoidance(ctx context.Context) error

	// State returns the current flying state.
	State(ctx context.Context) (State, error)

	// WaitState blocks until the vehicle reports the given state or the
	// timeout elapses.
	WaitState(ctx context.Context, state State, timeout time.Duration) error

	// Takeoff issues a takeoff command.
	Takeoff(ctx context.Context) error

	// MoveTo issues a navigate-to-coordinate command.
	MoveTo(ctx context.Context, cmd MoveCommand) error

	// StartOrbit locks the orbit pivot at the given ground point.
	StartOrbit(ctx context.Context, latitude, longitude, altitude float64) error

	// StopOrbit releases the orbit lock.
	StopOrbit(ctx context.Context) error

	// Attitude issues a raw attitude/throttle command.
	Attitude(ctx context.Context, cmd AttitudeCommand) error

	// NavigateHome issues a generic navigate-home command.
	NavigateHome(ctx context.Context) error

	// Land issues a landing command.
	Land(ctx context.Context) error
}

// EndingBehavior selects what a dedicated return-to-home does on arrival.
type EndingBehavior string

const (
	EndingBehaviorLanding  EndingBehavior = "landing"
	EndingBehaviorHovering EndingBehavior = "hovering"
)

// HomeReturner is an optional capability upgrade: flight interfaces that
// expose a dedicated return-to-home implement it, and the executor prefers
// it over the generic NavigateHome fallback.
type HomeReturner interface {
	// SetEndingBehavior configures what happens when home is reached.
	SetEndingBehavior(ctx context.Context, behavior EndingBehavior) error

	// ReturnToHome starts the dedicated home-return sequence.
	ReturnToHome(ctx context.Context) error

	// AwaitHomeReached blocks until the home-return sequence finishes or
	// the timeout elapses.
	AwaitHomeReached(ctx context.Context, timeout time.Duration) error
}
