package guide

// State is the guidance engine's lifecycle phase. Transitions follow
// Idle -> AwaitingCommand -> Planning -> Stepping -> Arrived ->
// AwaitingCommand, with Exited terminal.
type State int

const (
	StateIdle State = iota
	StateAwaitingCommand
	StatePlanning
	StateStepping
	StateArrived
	StateExited
)

// String returns the state name for logs and the status line.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCommand:
		return "awaiting command"
	case StatePlanning:
		return "planning"
	case StateStepping:
		return "stepping"
	case StateArrived:
		return "arrived"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}
