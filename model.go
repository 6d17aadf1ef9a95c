package solver

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Service tiers. The tier decides the endpoint set and the balance schema.
const (
	TIER_FREE = "free"
	TIER_PRO  = "pro"
)

const (
	DEFAULT_LANGUAGE = "en"

	DEFAULT_SHORT_WAIT_TIMEOUT = time.Second
	DEFAULT_WAIT_TIMEOUT       = time.Second * 2
	DEFAULT_APPEAR_TIMEOUT     = time.Second * 10
	DEFAULT_HTTP_TIMEOUT       = time.Second * 2

	DEFAULT_POLL_INTERVAL = time.Millisecond * 200
	DEFAULT_POLL_TIMEOUT  = time.Minute

	DEFAULT_SETTLE_DELAY = time.Second
	DEFAULT_PROMPT_DELAY = time.Millisecond * 500
	DEFAULT_SUBMIT_DELAY = time.Millisecond * 500
	DEFAULT_RETRY_DELAY  = time.Second * 2

	DEFAULT_CLICK_DELAY_MIN = time.Millisecond * 200
	DEFAULT_CLICK_DELAY_MAX = time.Millisecond * 250

	DEFAULT_MAX_STEPS = 10
)

// Model - solver configuration. Zero values fall back to defaults, so an
// empty Model with only APIKey set is usable.
type Model struct {
	// Solving service credentials and tier ("free" or "pro")
	APIKey  string
	APITier string

	// Challenge prompt language sent with bounding-box requests
	Language string

	// Endpoint overrides. Empty means the tier default.
	BalanceURL string
	SolveURL   string

	// Optional proxy for service and image traffic
	Proxy string

	// Skip TLS verification on service and image traffic
	InsecureTLS bool

	// UI condition waits
	ShortWaitTimeout time.Duration // quick clickability probes
	WaitTimeout      time.Duration // element presence
	AppearTimeout    time.Duration // challenge appearing after checkbox click

	// Network timeout, separate from UI waits
	HTTPTimeout time.Duration

	// Bounding-box answer polling
	PollInterval time.Duration
	PollTimeout  time.Duration

	// Fixed pauses where no checkable condition exists
	SettleDelay time.Duration // after checkbox/refresh clicks and before solving
	PromptDelay time.Duration // after switching into the challenge frame
	SubmitDelay time.Duration // before clicking submit
	RetryDelay  time.Duration // between control loop iterations

	// Randomized inter-tile click pacing
	ClickDelayMin time.Duration
	ClickDelayMax time.Duration

	// Cap on continuation steps within one challenge
	MaxSteps int
}

// NewModelFromEnv resolves the configuration from the process environment:
// API_KEY, API_URL ("free" or "pro") and LANGUAGE. A .env file is loaded
// first when present.
func NewModelFromEnv() *Model {
	godotenv.Load()

	return &Model{
		APIKey:   os.Getenv("API_KEY"),
		APITier:  os.Getenv("API_URL"),
		Language: os.Getenv("LANGUAGE"),
	}
}

// ---------------------------------- Defaulted getters ----------------------------------

func (m *Model) tier() string {
	if m.APITier == "" {
		return TIER_FREE
	}
	return m.APITier
}

func (m *Model) language() string {
	if m.Language == "" {
		return DEFAULT_LANGUAGE
	}
	return m.Language
}

func (m *Model) shortWait() time.Duration {
	return defaultDuration(m.ShortWaitTimeout, DEFAULT_SHORT_WAIT_TIMEOUT)
}

func (m *Model) waitTimeout() time.Duration {
	return defaultDuration(m.WaitTimeout, DEFAULT_WAIT_TIMEOUT)
}

func (m *Model) appearTimeout() time.Duration {
	return defaultDuration(m.AppearTimeout, DEFAULT_APPEAR_TIMEOUT)
}

func (m *Model) httpTimeout() time.Duration {
	return defaultDuration(m.HTTPTimeout, DEFAULT_HTTP_TIMEOUT)
}

func (m *Model) pollInterval() time.Duration {
	return defaultDuration(m.PollInterval, DEFAULT_POLL_INTERVAL)
}

func (m *Model) pollTimeout() time.Duration {
	return defaultDuration(m.PollTimeout, DEFAULT_POLL_TIMEOUT)
}

func (m *Model) settleDelay() time.Duration {
	return defaultDuration(m.SettleDelay, DEFAULT_SETTLE_DELAY)
}

func (m *Model) promptDelay() time.Duration {
	return defaultDuration(m.PromptDelay, DEFAULT_PROMPT_DELAY)
}

func (m *Model) submitDelay() time.Duration {
	return defaultDuration(m.SubmitDelay, DEFAULT_SUBMIT_DELAY)
}

func (m *Model) retryDelay() time.Duration {
	return defaultDuration(m.RetryDelay, DEFAULT_RETRY_DELAY)
}

func (m *Model) clickDelayRange() (time.Duration, time.Duration) {
	min := defaultDuration(m.ClickDelayMin, DEFAULT_CLICK_DELAY_MIN)
	max := defaultDuration(m.ClickDelayMax, DEFAULT_CLICK_DELAY_MAX)
	return min, max
}

func (m *Model) maxSteps() int {
	if m.MaxSteps > 0 {
		return m.MaxSteps
	}
	return DEFAULT_MAX_STEPS
}

func defaultDuration(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
