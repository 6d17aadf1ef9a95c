package solver

import "errors"

var (
	// Returned when Solve is called before a page or surface is attached
	ErrNoSurface = errors.New("solver: page is not set")

	// API key missing from both the model and the environment
	ErrNoAPIKey = errors.New("solver: api key is not set")

	// Tier name is neither "free" nor "pro"
	ErrUnknownTier = errors.New("solver: unknown api tier")

	// Network-level failure talking to the solving service or the image host
	ErrTransport = errors.New("solver: transport failure")

	// Both balance and remaining requests are spent
	ErrQuotaExhausted = errors.New("solver: no balance or requests left")

	// Balance response is missing every key we know how to read
	ErrMalformedResponse = errors.New("solver: malformed service response")

	// Service returned a status the protocol does not define
	ErrUnexpectedStatus = errors.New("solver: unexpected solve status")

	// Challenge kept asking for more steps than the configured cap
	ErrTooManySteps = errors.New("solver: challenge step limit exceeded")

	// Bounding-box answer never became terminal within the poll deadline
	ErrPollDeadline = errors.New("solver: poll deadline exceeded")
)
