package flight

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/purrsec/Hackathon-parrotAI/internal/types"
)

// Command names recorded by the simulator, used for failure injection and
// test assertions.
const (
	CmdConnect           = "connect"
	CmdDisconnect        = "disconnect"
	CmdWaitReady         = "wait_ready"
	CmdObstacleAvoidance = "obstacle_avoidance"
	CmdTakeoff           = "takeoff"
	CmdMoveTo            = "move_to"
	CmdStartOrbit        = "start_orbit"
	CmdStopOrbit         = "stop_orbit"
	CmdAttitude          = "attitude"
	CmdNavigateHome      = "navigate_home"
	CmdSetEnding         = "set_ending_behavior"
	CmdReturnToHome      = "return_to_home"
	CmdAwaitHome         = "await_home"
	CmdLand              = "land"
	CmdWaitState         = "wait_state"
)

// Simulator is an in-memory vehicle implementing Interface and HomeReturner.
// Commands complete instantly and update the simulated flying state; failures
// and panics can be injected per command name for testing the execution
// engine's failure paths.
type Simulator struct {
	mu        sync.Mutex
	connected bool
	state     State
	commands  []string
	failures  map[string]error
	panics    map[string]bool

	// RTHSupported gates the HomeReturner capability surface. When false,
	// ReturnToHome reports an unsupported-command failure so the executor
	// exercises its NavigateHome fallback.
	RTHSupported bool
}

// NewSimulator creates a grounded, disconnected simulated vehicle.
func NewSimulator() *Simulator {
	return &Simulator{
		state:        StateLanded,
		failures:     make(map[string]error),
		panics:       make(map[string]bool),
		RTHSupported: true,
	}
}

// FailOn makes the named command return err.
func (s *Simulator) FailOn(command string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[command] = err
}

// PanicOn makes the named command panic, simulating an SDK-level fault.
func (s *Simulator) PanicOn(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panics[command] = true
}

// Commands returns the ordered list of commands issued so far.
func (s *Simulator) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// CommandCount returns how many times the named command was issued.
func (s *Simulator) CommandCount(command string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.commands {
		if c == command {
			n++
		}
	}
	return n
}

// Connected reports whether the vehicle connection is open.
func (s *Simulator) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// CurrentState returns the simulated flying state.
func (s *Simulator) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// record logs the command, then applies injected panics and failures.
// Callers must not hold the mutex.
func (s *Simulator) record(command string) error {
	s.mu.Lock()
	s.commands = append(s.commands, command)
	shouldPanic := s.panics[command]
	err := s.failures[command]
	s.mu.Unlock()

	if shouldPanic {
		panic(fmt.Sprintf("simulated fault in %s", command))
	}
	return err
}

func (s *Simulator) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Connect implements Interface.
func (s *Simulator) Connect(ctx context.Context) error {
	if err := s.record(CmdConnect); err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	return nil
}

// Disconnect implements Interface.
func (s *Simulator) Disconnect() error {
	if err := s.record(CmdDisconnect); err != nil {
		return err
	}
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	return nil
}

// WaitReady implements Interface.
func (s *Simulator) WaitReady(ctx context.Context, timeout time.Duration) error {
	return s.record(CmdWaitReady)
}

// EnableObstacleAvoidance implements Interface.
func (s *Simulator) EnableObstacleAvoidance(ctx context.Context) error {
	return s.record(CmdObstacleAvoidance)
}

// State implements Interface.
func (s *Simulator) State(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

// WaitState implements Interface. The simulator transitions states
// synchronously with commands, so this only checks the current state.
func (s *Simulator) WaitState(ctx context.Context, state State, timeout time.Duration) error {
	if err := s.record(CmdWaitState); err != nil {
		return err
	}
	s.mu.Lock()
	current := s.state
	s.mu.Unlock()
	if current != state {
		return types.NewError(types.FLIGHT_COMMAND_TIMEOUT,
			fmt.Sprintf("state %q not reached (current %q)", state, current))
	}
	return nil
}

// Takeoff implements Interface.
func (s *Simulator) Takeoff(ctx context.Context) error {
	if err := s.record(CmdTakeoff); err != nil {
		return err
	}
	s.setState(StateHovering)
	return nil
}

// MoveTo implements Interface.
func (s *Simulator) MoveTo(ctx context.Context, cmd MoveCommand) error {
	if err := s.record(CmdMoveTo); err != nil {
		return err
	}
	s.setState(StateHovering)
	return nil
}

// StartOrbit implements Interface.
func (s *Simulator) StartOrbit(ctx context.Context, latitude, longitude, altitude float64) error {
	if err := s.record(CmdStartOrbit); err != nil {
		return err
	}
	s.setState(StateFlying)
	return nil
}

// StopOrbit implements Interface.
func (s *Simulator) StopOrbit(ctx context.Context) error {
	if err := s.record(CmdStopOrbit); err != nil {
		return err
	}
	s.setState(StateHovering)
	return nil
}

// Attitude implements Interface.
func (s *Simulator) Attitude(ctx context.Context, cmd AttitudeCommand) error {
	return s.record(CmdAttitude)
}

// NavigateHome implements Interface.
func (s *Simulator) NavigateHome(ctx context.Context) error {
	if err := s.record(CmdNavigateHome); err != nil {
		return err
	}
	s.setState(StateHovering)
	return nil
}

// Land implements Interface.
func (s *Simulator) Land(ctx context.Context) error {
	if err := s.record(CmdLand); err != nil {
		return err
	}
	s.setState(StateLanded)
	return nil
}

// SetEndingBehavior implements HomeReturner.
func (s *Simulator) SetEndingBehavior(ctx context.Context, behavior EndingBehavior) error {
	return s.record(CmdSetEnding)
}

// ReturnToHome implements HomeReturner.
func (s *Simulator) ReturnToHome(ctx context.Context) error {
	if err := s.record(CmdReturnToHome); err != nil {
		return err
	}
	s.mu.Lock()
	supported := s.RTHSupported
	s.mu.Unlock()
	if !supported {
		return types.NewError(types.FLIGHT_COMMAND_FAILED, "return-to-home not supported")
	}
	s.setState(StateHovering)
	return nil
}

// AwaitHomeReached implements HomeReturner.
func (s *Simulator) AwaitHomeReached(ctx context.Context, timeout time.Duration) error {
	return s.record(CmdAwaitHome)
}
