package solver

import (
	"context"
	"fmt"
	"regexp"
)

// Tile background style looks like `background: url("https://...") 50% 50%`.
var tileStyleURL = regexp.MustCompile(`url\("?([^")]+)"?\)`)

// solveGrid runs grid solve steps until the widget stops asking for another
// round, up to the step cap. Each step is one request/response cycle with the
// service.
func (s *Solver) solveGrid(ctx context.Context, session *Session) error {
	for step := 0; step < s.model.maxSteps(); step++ {
		again, err := s.gridStep(ctx, session)
		if err != nil || !again {
			return err
		}
	}
	return ErrTooManySteps
}

func (s *Solver) gridStep(ctx context.Context, session *Session) (again bool, err error) {
	if err := sleepCtx(ctx, s.model.settleDelay()); err != nil {
		return false, err
	}

	// Challenge gone between detection and solving counts as success
	if !s.surface.WaitClickable(HOOK_CHALLENGE_SELECTOR, s.model.shortWait()) {
		session.Solved = true
		return false, nil
	}

	if err := s.surface.EnterFrame(HOOK_CHALLENGE_SELECTOR); err != nil {
		return false, err
	}
	defer s.surface.LeaveFrame()

	tiles, err := s.surface.FindAll(TASK_IMAGE_SELECTOR)
	if err != nil {
		return false, err
	}

	images := make(ImageMap, 0, len(tiles))
	for _, tile := range tiles {
		imageURL, ok := tileImageURL(tile)
		if !ok {
			// Tile not rendered yet, drop this attempt and let the
			// outer loop re-detect
			return false, nil
		}

		encoded, err := s.api.FetchImageBase64(ctx, imageURL, session.UserAgent)
		if err != nil {
			return false, err
		}
		images = append(images, encoded)
	}

	response, err := s.api.PostSolve(ctx, NewGridRequest(session.Target, images))
	if err != nil {
		return false, err
	}
	session.RequestsLeft--

	switch response.Status {
	case StatusSolved:
		for _, index := range response.Selection {
			if index < 0 || index >= len(tiles) {
				return false, fmt.Errorf("solver: tile index %d out of range of %d tiles", index, len(tiles))
			}
			if err := tiles[index].Click(); err != nil {
				return false, err
			}
			if err := sleepCtx(ctx, s.clickDelay()); err != nil {
				return false, err
			}
		}
		return s.submitAndCheckNext(ctx)

	case StatusSkip, StatusError:
		s.clickRefresh()
		if err := sleepCtx(ctx, s.model.settleDelay()); err != nil {
			return false, err
		}
		return false, nil

	default:
		return false, fmt.Errorf("%w: %q", ErrUnexpectedStatus, response.RawStatus)
	}
}

func tileImageURL(tile Element) (string, bool) {
	image, err := tile.Find(".image")
	if err != nil {
		return "", false
	}

	style, err := image.Attribute("style")
	if err != nil || style == nil {
		return "", false
	}

	match := tileStyleURL.FindStringSubmatch(*style)
	if match == nil {
		return "", false
	}
	return match[1], true
}
