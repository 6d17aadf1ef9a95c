package solver

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Challenge widget selectors, as hcaptcha renders them.
const (
	CHECKBOX_CHALLENGE_SELECTOR = "(//iframe[contains(@title,'checkbox')])[1]"
	HOOK_CHALLENGE_SELECTOR     = "(//iframe[contains(@title,'content')])[1]"
	PROMPT_TEXT_SELECTOR        = "(//h2[@class='prompt-text'])[1]"
	CHALLENGE_CANVAS_SELECTOR   = "(//canvas)[1]"
	SUBMIT_BUTTON_SELECTOR      = "(//div[@class='button-submit button'])[1]"
	REFRESH_BUTTON_SELECTOR     = "(//div[@class='refresh button'])[1]"
	TASK_IMAGE_SELECTOR         = "//div[@class='task-image']"
)

// Iframe markers the markup pre-check looks for.
var widgetMarkers = []string{
	"iframe[title*='checkbox']",
	"iframe[title*='content']",
	"iframe[src*='hcaptcha']",
}

// HasWidgetMarkup reports whether the page HTML carries hcaptcha widget
// markup. Cheap pre-check that avoids paying the bounded waits on pages with
// no widget at all.
func HasWidgetMarkup(html string) bool {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	for _, marker := range widgetMarkers {
		if document.Find(marker).Size() > 0 {
			return true
		}
	}
	return false
}

// detectChallenge reports the current challenge prompt text, or ok=false when
// no unsolved challenge is present. Clicking the consent checkbox is part of
// detection: the widget may need it before it shows any images, and the click
// alone sometimes passes the gate.
func (s *Solver) detectChallenge(ctx context.Context) (prompt string, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	if html, err := s.surface.PageHTML(); err == nil && !HasWidgetMarkup(html) {
		return "", false, nil
	}

	if !s.surface.WaitClickable(HOOK_CHALLENGE_SELECTOR, s.model.shortWait()) {
		if s.surface.WaitClickable(CHECKBOX_CHALLENGE_SELECTOR, s.model.shortWait()) {
			if checkbox, err := s.surface.Find(CHECKBOX_CHALLENGE_SELECTOR); err == nil {
				checkbox.Click()
				if err := sleepCtx(ctx, s.model.settleDelay()); err != nil {
					return "", false, err
				}
			}
		}

		// Still nothing to click on means the checkbox alone was enough
		if !s.surface.WaitClickable(HOOK_CHALLENGE_SELECTOR, s.model.appearTimeout()) {
			return "", false, nil
		}
	}

	if !s.surface.WaitPresent(HOOK_CHALLENGE_SELECTOR, s.model.waitTimeout()) {
		return "", false, nil
	}

	if err := s.surface.EnterFrame(HOOK_CHALLENGE_SELECTOR); err != nil {
		return "", false, err
	}
	defer s.surface.LeaveFrame()

	if err := sleepCtx(ctx, s.model.promptDelay()); err != nil {
		return "", false, err
	}

	text, err := s.surface.ReadText(PROMPT_TEXT_SELECTOR)
	if err != nil {
		return "", false, err
	}

	return text, true, nil
}
