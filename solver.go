package solver

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
)

const NEXT_CHALLENGE_LABEL = "Next Challenge"

// Solver drives an hcaptcha widget on a browser page, delegating image
// recognition to the solving service. Attach a page with SetPage, then call
// Solve.
//
// One Solver handles one page at a time. Run separate Solver instances for
// concurrent pages, they share nothing.
type Solver struct {
	model   *Model
	api     *APIClient
	surface Surface

	session *Session
}

// New builds a solver from the model. A nil model is resolved from the
// environment.
func New(model *Model) (*Solver, error) {
	if model == nil {
		model = NewModelFromEnv()
	}

	api, err := NewAPIClient(model)
	if err != nil {
		return nil, err
	}

	return &Solver{model: model, api: api}, nil
}

// SetPage attaches the chrome page the challenge lives on.
func (s *Solver) SetPage(page *rod.Page) {
	s.surface = NewRodSurface(page)
}

// SetSurface attaches a custom rendering surface. Used by tests and by
// callers with their own driver.
func (s *Solver) SetSurface(surface Surface) {
	s.surface = surface
}

// Session returns the state of the last solve attempt, nil before the first.
func (s *Solver) Session() *Session {
	return s.session
}

func (s *Solver) Solve() (bool, error) {
	return s.SolveContext(context.Background())
}

// SolveContext runs the solve loop until the challenge is solved, the quota
// is spent, an unsupported challenge type shows up or the context is
// cancelled. The returned flag is the session's solved state; inspect
// Session().APIError to tell "gave up" from "service is unusable".
func (s *Solver) SolveContext(ctx context.Context) (bool, error) {
	if s.surface == nil {
		return false, ErrNoSurface
	}

	session := NewSession()
	s.session = session

	userAgent, err := s.surface.UserAgent()
	if err != nil {
		return false, err
	}
	session.UserAgent = userAgent

	for !session.Solved {
		if err := ctx.Err(); err != nil {
			return session.Solved, err
		}

		if err := s.refreshBalance(ctx, session); err != nil {
			return session.Solved, err
		}
		if session.APIError {
			return session.Solved, ErrMalformedResponse
		}
		if session.Exhausted() {
			session.APIError = true
			log.Printf("solver [%s]: no balance or requests left", session.ID)
			return session.Solved, ErrQuotaExhausted
		}

		prompt, present, err := s.detectChallenge(ctx)
		if err != nil {
			return session.Solved, err
		}
		if !present {
			// Nothing to solve, possibly passed by the checkbox alone
			break
		}

		session.Target = prompt
		session.Type = Classify(prompt)
		log.Printf("solver [%s]: challenge %q classified as %s", session.ID, prompt, session.Type)

		switch session.Type {
		case ChallengeGrid:
			if err := s.solveGrid(ctx, session); err != nil {
				if ctx.Err() != nil {
					return session.Solved, err
				}
				log.Printf("solver [%s]: grid attempt: %v", session.ID, err)
			}

		case ChallengeBoundingBox:
			if err := s.solveBBox(ctx, session); err != nil {
				if ctx.Err() != nil {
					return session.Solved, err
				}
				log.Printf("solver [%s]: bbox attempt: %v", session.ID, err)
			}

		default:
			// No strategy for this challenge type
			return session.Solved, nil
		}

		if !session.Solved {
			if err := sleepCtx(ctx, s.model.retryDelay()); err != nil {
				return session.Solved, err
			}
		}
	}

	return session.Solved, nil
}

// submitAndCheckNext reads the submit button label, clicks it and reports
// whether the label announced another challenge step.
func (s *Solver) submitAndCheckNext(ctx context.Context) (bool, error) {
	button, err := s.surface.Find(SUBMIT_BUTTON_SELECTOR)
	if err != nil {
		return false, err
	}

	label, _ := button.Attribute("title")

	if err := sleepCtx(ctx, s.model.submitDelay()); err != nil {
		return false, err
	}
	if err := button.Click(); err != nil {
		return false, err
	}

	return label != nil && *label == NEXT_CHALLENGE_LABEL, nil
}

func (s *Solver) clickRefresh() {
	if button, err := s.surface.Find(REFRESH_BUTTON_SELECTOR); err == nil {
		button.Click()
	}
}

func (s *Solver) clickDelay() time.Duration {
	min, max := s.model.clickDelayRange()
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// sleepCtx is a fixed pause that still honors cancellation.
func sleepCtx(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
