package pipeline

import "fmt"

// State of a pipeline run.
//
//	idle ─► logged_in ─► searched ─► collected ─► enriched ─► persisted ─► idle
//	  │         │            │            │            │            │
//	  └─────────┴────────────┴────────────┴────────────┴────────────┴──► failed
type State string

const (
	StateIdle      State = "idle"
	StateLoggedIn  State = "logged_in"
	StateSearched  State = "searched"
	StateCollected State = "collected"
	StateEnriched  State = "enriched"
	StatePersisted State = "persisted"
	StateFailed    State = "failed"
)

var validTransitions = map[State][]State{
	StateIdle:      {StateLoggedIn, StateFailed},
	StateLoggedIn:  {StateSearched, StateFailed},
	StateSearched:  {StateCollected, StateFailed},
	StateCollected: {StateEnriched, StateFailed},
	StateEnriched:  {StatePersisted, StateFailed},
	StatePersisted: {StateIdle, StateFailed},
	// failed is terminal
}

func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (r *Report) advance(to State) error {
	if !IsTransitionAllowed(r.State, to) {
		return fmt.Errorf("pipeline transition %s → %s is not allowed", r.State, to)
	}
	r.State = to
	r.States = append(r.States, to)
	return nil
}

func (r *Report) fail(err error) {
	if r.State != StateFailed {
		r.FailedIn = r.State
		r.State = StateFailed
		r.States = append(r.States, StateFailed)
	}
	r.Err = err
}
