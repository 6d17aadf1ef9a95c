package solver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModelDefaults(t *testing.T) {
	model := &Model{}

	assert.Equal(t, TIER_FREE, model.tier())
	assert.Equal(t, DEFAULT_LANGUAGE, model.language())
	assert.Equal(t, DEFAULT_SHORT_WAIT_TIMEOUT, model.shortWait())
	assert.Equal(t, DEFAULT_APPEAR_TIMEOUT, model.appearTimeout())
	assert.Equal(t, DEFAULT_HTTP_TIMEOUT, model.httpTimeout())
	assert.Equal(t, DEFAULT_POLL_TIMEOUT, model.pollTimeout())
	assert.Equal(t, DEFAULT_MAX_STEPS, model.maxSteps())

	min, max := model.clickDelayRange()
	assert.Equal(t, DEFAULT_CLICK_DELAY_MIN, min)
	assert.Equal(t, DEFAULT_CLICK_DELAY_MAX, max)
}

func TestModelOverrides(t *testing.T) {
	model := &Model{
		APITier:     TIER_PRO,
		Language:    "de",
		PollTimeout: time.Second * 5,
		MaxSteps:    3,
	}

	assert.Equal(t, TIER_PRO, model.tier())
	assert.Equal(t, "de", model.language())
	assert.Equal(t, time.Second*5, model.pollTimeout())
	assert.Equal(t, 3, model.maxSteps())
}

func TestNewModelFromEnv(t *testing.T) {
	t.Setenv("API_KEY", "env-key")
	t.Setenv("API_URL", "pro")
	t.Setenv("LANGUAGE", "fr")

	model := NewModelFromEnv()
	assert.Equal(t, "env-key", model.APIKey)
	assert.Equal(t, TIER_PRO, model.APITier)
	assert.Equal(t, "fr", model.Language)
}
