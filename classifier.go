package solver

import "strings"

type ChallengeType int

const (
	// No known phrase matched, the solver gives up on these
	ChallengeUnknown ChallengeType = iota

	// Select all tiles containing X
	ChallengeGrid

	// Click a point on a single image
	ChallengeBoundingBox

	// Pick a textual description, no strategy implemented
	ChallengeMultipleChoice
)

func (t ChallengeType) String() string {
	switch t {
	case ChallengeGrid:
		return "grid"
	case ChallengeBoundingBox:
		return "bbox"
	case ChallengeMultipleChoice:
		return "multiple-choice"
	default:
		return "unknown"
	}
}

// Prompt wording hcaptcha uses per challenge kind.
var (
	gridPrompts = []string{
		"please click each image containing",
		"please click on all images containing",
	}

	boundingBoxPrompts = []string{
		"please click the center of the",
		"please click on the",
	}

	multipleChoicePrompts = []string{
		"select the most accurate description of the image",
	}
)

// Classify maps challenge prompt text to a challenge type. The phrase sets
// are checked in order and a later match overwrites an earlier one, so a
// prompt carrying both grid and bounding-box wording classifies as
// bounding-box. Do not short-circuit on the first hit.
func Classify(prompt string) ChallengeType {
	target := strings.ToLower(strings.TrimSpace(prompt))

	result := ChallengeUnknown
	if containsAny(target, gridPrompts) {
		result = ChallengeGrid
	}
	if containsAny(target, boundingBoxPrompts) {
		result = ChallengeBoundingBox
	}
	if containsAny(target, multipleChoicePrompts) {
		result = ChallengeMultipleChoice
	}
	return result
}

func containsAny(target string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(target, phrase) {
			return true
		}
	}
	return false
}
