package solver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// solveBBox runs bounding-box solve steps until the widget stops asking for
// another round, up to the step cap.
func (s *Solver) solveBBox(ctx context.Context, session *Session) error {
	for step := 0; step < s.model.maxSteps(); step++ {
		again, err := s.bboxStep(ctx, session)
		if err != nil || !again {
			return err
		}
	}
	return ErrTooManySteps
}

func (s *Solver) bboxStep(ctx context.Context, session *Session) (again bool, err error) {
	if err := sleepCtx(ctx, s.model.settleDelay()); err != nil {
		return false, err
	}

	if !s.surface.WaitClickable(HOOK_CHALLENGE_SELECTOR, s.model.shortWait()) {
		session.Solved = true
		return false, nil
	}

	if err := s.surface.EnterFrame(HOOK_CHALLENGE_SELECTOR); err != nil {
		return false, err
	}
	defer s.surface.LeaveFrame()

	snapshot, err := s.surface.RunScript(CANVAS_SNAPSHOT_SCRIPT)
	if err != nil {
		return false, err
	}
	if snapshot == "" {
		// Canvas not painted yet, drop this attempt
		return false, nil
	}

	response, err := s.api.PostSolve(ctx, NewBBoxRequest(session.Target, s.model.language(), snapshot))
	if err != nil {
		return false, err
	}
	session.RequestsLeft--

	if response.Status == StatusError {
		s.clickRefresh()
		return false, nil
	}
	if response.PollURL == "" {
		return false, fmt.Errorf("%w: %q without poll url", ErrUnexpectedStatus, response.RawStatus)
	}

	answer, err := s.pollAnswer(ctx, response.PollURL)
	if err != nil {
		if errors.Is(err, ErrPollDeadline) {
			s.clickRefresh()
		}
		return false, err
	}

	if answer.Status != StatusSolved {
		s.clickRefresh()
		if err := sleepCtx(ctx, s.model.settleDelay()); err != nil {
			return false, err
		}
		return false, nil
	}
	if answer.Point == nil {
		return false, fmt.Errorf("%w: solved without answer point", ErrUnexpectedStatus)
	}

	canvas, err := s.surface.Find(CHALLENGE_CANVAS_SELECTOR)
	if err != nil {
		return false, err
	}
	width, height, err := canvas.Size()
	if err != nil {
		return false, err
	}

	offsetX, offsetY := ClickOffset(answer.Point.X, answer.Point.Y, width, height)
	if err := canvas.ClickAt(offsetX, offsetY); err != nil {
		return false, err
	}
	if err := sleepCtx(ctx, s.model.submitDelay()); err != nil {
		return false, err
	}

	return s.submitAndCheckNext(ctx)
}

// pollAnswer waits for the asynchronous answer to become terminal, bounded by
// the configured poll deadline.
func (s *Solver) pollAnswer(ctx context.Context, pollURL string) (*SolveResponse, error) {
	deadline := time.Now().Add(s.model.pollTimeout())

	for {
		if time.Now().After(deadline) {
			return nil, ErrPollDeadline
		}
		if err := sleepCtx(ctx, s.model.pollInterval()); err != nil {
			return nil, err
		}

		response, err := s.api.PollSolve(ctx, pollURL)
		if err != nil {
			return nil, err
		}

		switch response.Status {
		case StatusSolved, StatusSkip, StatusError:
			return response, nil
		}
	}
}

// ClickOffset converts a service answer point into a cursor offset from the
// canvas center. The click primitive always targets the element center, so
// the offset is what repositions the cursor onto the answer.
func ClickOffset(x, y, width, height float64) (offsetX, offsetY float64) {
	return x - width/2, y - height/2
}
