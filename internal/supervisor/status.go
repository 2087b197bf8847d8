package supervisor

// State is one of the three supervisor states for the backend.
type State string

const (
	StateNotReady State = "NOT_READY"
	StateStarting State = "STARTING"
	StateReady    State = "READY"
)

// Reason is a machine-readable diagnostic attached to NOT_READY.
type Reason string

// ReasonPortInUseNoHealth marks the case where something holds the backend
// port but does not answer health checks. Spawning would collide, so the
// condition is surfaced instead of retried silently.
const ReasonPortInUseNoHealth Reason = "PORT_IN_USE_NO_HEALTH"

// Status is the single source of truth shared between the flow worker and
// every status-query caller. Exactly one value is active at a time.
type Status struct {
	State  State  `json:"state"`
	Reason Reason `json:"reason,omitempty"`
}

// String renders the wire form: "READY", "STARTING", "NOT_READY" or
// "NOT_READY:<reason>".
func (s Status) String() string {
	if s.State == StateNotReady && s.Reason != "" {
		return string(s.State) + ":" + string(s.Reason)
	}
	return string(s.State)
}

func notReady() Status            { return Status{State: StateNotReady} }
func notReadyFor(r Reason) Status { return Status{State: StateNotReady, Reason: r} }
func starting() Status            { return Status{State: StateStarting} }
func ready() Status               { return Status{State: StateReady} }
