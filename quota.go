package solver

import (
	"context"
	"log"
)

// refreshBalance updates the session quota counters from the service.
//
// A response carrying an "error" field is a soft failure: it is logged and
// the counters stay untouched, the loop's exhaustion check decides what
// happens next. A response with none of the expected keys marks the session
// with an API error so the loop aborts instead of spinning.
func (s *Solver) refreshBalance(ctx context.Context, session *Session) error {
	info, err := s.api.Balance(ctx)
	if err != nil {
		session.APIError = true
		return err
	}

	if info.Err != "" {
		log.Printf("solver [%s]: balance check failed: %s", session.ID, info.Err)
		return nil
	}

	if !info.Recognized {
		log.Printf("solver [%s]: balance response missing expected keys", session.ID)
		session.APIError = true
		return nil
	}

	session.Balance = info.Balance
	session.RequestsLeft = info.Remaining
	return nil
}
