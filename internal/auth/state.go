package auth

// State is a handshake state.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateAwaitingUserAction
	StatePollingToken
	StateSucceeded
	StateAlreadyAuthorized
	StateFailed
	StateCancelled
)

var stateNames = [...]string{
	StateIdle:               "idle",
	StateRequesting:         "requesting",
	StateAwaitingUserAction: "awaiting-user-action",
	StatePollingToken:       "polling-token",
	StateSucceeded:          "succeeded",
	StateAlreadyAuthorized:  "already-authorized",
	StateFailed:             "failed",
	StateCancelled:          "cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a handshake.
func (s State) Terminal() bool { return s >= StateSucceeded && s <= StateCancelled }

// Succeeded reports whether s is a successful terminal state.
func (s State) Succeeded() bool { return s == StateSucceeded || s == StateAlreadyAuthorized }

// Result describes a finished handshake.
type Result struct {
	SessionID string
	State     State
	// Trace lists every state entered, starting with StateIdle.
	Trace []State
	// Err is the cause of StateFailed.
	Err error
}
