package solver

import "github.com/google/uuid"

// Session holds the mutable state of one solving attempt. It lives for the
// duration of a single Solve call and is never shared between pages.
type Session struct {
	// Short id used to tell concurrent sessions apart in logs
	ID string

	// Credits, Pro tier only. Free tier keeps it at zero
	Balance int

	// Solves left on the current plan
	RequestsLeft int

	// Set only when the widget is gone after a solve action
	Solved bool

	// Unrecoverable quota or service failure, the loop must not spin on it
	APIError bool

	// Prompt text of the current challenge
	Target string

	// Classified challenge type
	Type ChallengeType

	// Captured once per session, reused on image fetches
	UserAgent string
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()[:8]}
}

// Exhausted reports whether both quota counters are spent.
func (s *Session) Exhausted() bool {
	return s.Balance <= 0 && s.RequestsLeft <= 0
}
