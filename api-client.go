package solver

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/proxy"
	gtls "gopkg.in/h2non/gentleman.v2/plugins/tls"
)

// Solving service endpoints per tier, in the order balance, solve, status.
var apiEndpoints = map[string][]string{
	TIER_FREE: {
		"https://free.nocaptchaai.com/balance",
		"https://free.nocaptchaai.com/solve",
	},
	TIER_PRO: {
		"https://manage.nocaptchaai.com/balance",
		"https://pro.nocaptchaai.com/solve",
		"https://pro.nocaptchaai.com/status",
	},
}

const SOLVE_METHOD = "hcaptcha_base64"

type SolveStatus int

const (
	// Anything the service did not mark terminal. The bounding-box poll
	// keeps waiting on it, the grid path reports it as unexpected
	StatusPending SolveStatus = iota

	StatusSolved
	StatusSkip
	StatusError
)

func parseStatus(status string) SolveStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "solved":
		return StatusSolved
	case "skip":
		return StatusSkip
	case "error":
		return StatusError
	default:
		return StatusPending
	}
}

// ImageMap holds base64 tile images by tile index. The backing slice keeps
// enumeration order, and MarshalJSON emits keys 0..N-1 in numeric order so
// payloads are deterministic.
type ImageMap []string

func (m ImageMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for index, image := range m {
		if index > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `"%d":`, index)
		encoded, err := json.Marshal(image)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SolveRequest is the outbound solve payload. Sitekey and site are
// placeholders the service accepts for base64 methods.
type SolveRequest struct {
	Target  string          `json:"target"`
	Method  string          `json:"method"`
	Sitekey string          `json:"sitekey"`
	Site    string          `json:"site"`
	Type    string          `json:"type,omitempty"`
	Choices json.RawMessage `json:"choices,omitempty"`
	Ln      string          `json:"ln,omitempty"`
	Images  ImageMap        `json:"images"`
}

func NewGridRequest(target string, images ImageMap) *SolveRequest {
	return &SolveRequest{
		Target:  target,
		Method:  SOLVE_METHOD,
		Sitekey: "sitekey",
		Site:    "site",
		Images:  images,
	}
}

func NewBBoxRequest(target, language, image string) *SolveRequest {
	return &SolveRequest{
		Target:  target,
		Method:  SOLVE_METHOD,
		Sitekey: "sitekey",
		Site:    "site",
		Type:    "bbox",
		Choices: json.RawMessage("[]"),
		Ln:      language,
		Images:  ImageMap{image},
	}
}

type Point struct {
	X float64
	Y float64
}

// SolveResponse is the normalized service answer for both the solve POST and
// the status poll.
type SolveResponse struct {
	Status    SolveStatus
	RawStatus string

	// Grid: tile indices to click, in service order
	Selection []int

	// Bounding box: point to click on the downscaled canvas
	Point *Point

	// Bounding box only, where to poll for the answer
	PollURL string
}

func parseSolveResponse(data []byte) (*SolveResponse, error) {
	var body struct {
		Status   string    `json:"status"`
		Solution []any     `json:"solution"`
		Answer   []float64 `json:"answer"`
		URL      string    `json:"url"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("solver: decode solve response: %w", err)
	}

	response := &SolveResponse{
		Status:    parseStatus(body.Status),
		RawStatus: body.Status,
		PollURL:   body.URL,
	}

	// The service sends tile indices as numbers or numeric strings
	for _, value := range body.Solution {
		switch index := value.(type) {
		case float64:
			response.Selection = append(response.Selection, int(index))
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(index))
			if err != nil {
				return nil, fmt.Errorf("solver: bad solution index %q", index)
			}
			response.Selection = append(response.Selection, parsed)
		default:
			return nil, fmt.Errorf("solver: bad solution entry %v", value)
		}
	}

	if len(body.Answer) >= 2 {
		response.Point = &Point{X: body.Answer[0], Y: body.Answer[1]}
	}

	return response, nil
}

// BalanceInfo is the balance response normalized across tiers.
type BalanceInfo struct {
	Balance   int
	Remaining int

	// Soft failure reported by the service, counters must stay untouched
	Err string

	// False when the response carried none of the keys we know
	Recognized bool
}

func parseBalance(data []byte, tier string) *BalanceInfo {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &BalanceInfo{}
	}

	if rawErr, ok := raw["error"]; ok {
		var message string
		if json.Unmarshal(rawErr, &message) != nil {
			message = string(rawErr)
		}
		return &BalanceInfo{Err: message, Recognized: true}
	}

	if tier == TIER_PRO {
		_, hasBalance := raw["Balance"]
		_, hasSubscription := raw["Subscription"]
		if hasBalance && hasSubscription {
			var body struct {
				Balance      int `json:"Balance"`
				Subscription struct {
					Remaining int `json:"remaining"`
				} `json:"Subscription"`
			}
			if json.Unmarshal(data, &body) == nil {
				return &BalanceInfo{
					Balance:    body.Balance,
					Remaining:  body.Subscription.Remaining,
					Recognized: true,
				}
			}
		}
		return &BalanceInfo{}
	}

	if rawRemaining, ok := raw["remaining"]; ok {
		var remaining int
		if json.Unmarshal(rawRemaining, &remaining) == nil {
			return &BalanceInfo{Remaining: remaining, Recognized: true}
		}
	}

	return &BalanceInfo{}
}

// APIClient talks to the solving service and to the hcaptcha image host.
type APIClient struct {
	model  *Model
	client *gentleman.Client

	balanceURL string
	solveURL   string
}

func NewAPIClient(model *Model) (*APIClient, error) {
	if model.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	endpoints, ok := apiEndpoints[model.tier()]
	if !ok {
		return nil, ErrUnknownTier
	}

	client := gentleman.New()
	client.Context.Client.Timeout = model.httpTimeout()

	if model.InsecureTLS {
		client.Use(gtls.Config(&tls.Config{InsecureSkipVerify: true}))
	}
	if model.Proxy != "" {
		client.Use(proxy.Set(map[string]string{
			"http":  model.Proxy,
			"https": model.Proxy,
		}))
	}

	api := &APIClient{
		model:      model,
		client:     client,
		balanceURL: endpoints[0],
		solveURL:   endpoints[1],
	}
	if model.BalanceURL != "" {
		api.balanceURL = model.BalanceURL
	}
	if model.SolveURL != "" {
		api.solveURL = model.SolveURL
	}

	return api, nil
}

// PostSolve ships a challenge to the solve endpoint.
func (c *APIClient) PostSolve(ctx context.Context, request *SolveRequest) (*SolveResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := c.client.Request().Method("POST").URL(c.solveURL)
	req.SetHeader("Content-Type", "application/json")
	req.SetHeader("apikey", c.model.APIKey)
	req.JSON(request)

	res, err := req.Send()
	if err != nil {
		return nil, fmt.Errorf("%w: solve request: %v", ErrTransport, err)
	}
	if !res.Ok {
		return nil, fmt.Errorf("%w: solve endpoint status %d", ErrTransport, res.StatusCode)
	}

	return parseSolveResponse(res.Bytes())
}

// PollSolve fetches the current status of an asynchronous bounding-box
// answer. One GET per call, the waiting loop lives with the caller.
func (c *APIClient) PollSolve(ctx context.Context, pollURL string) (*SolveResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := c.client.Request().URL(pollURL)
	req.SetHeader("Accept-Language", "last-requested-languages")
	req.SetHeader("apikey", c.model.APIKey)

	res, err := req.Send()
	if err != nil {
		return nil, fmt.Errorf("%w: status request: %v", ErrTransport, err)
	}
	if !res.Ok {
		return nil, fmt.Errorf("%w: status endpoint status %d", ErrTransport, res.StatusCode)
	}

	return parseSolveResponse(res.Bytes())
}

// Balance fetches and normalizes the tier balance.
func (c *APIClient) Balance(ctx context.Context) (*BalanceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := c.client.Request().URL(c.balanceURL)
	req.SetHeader("apikey", c.model.APIKey)

	res, err := req.Send()
	if err != nil {
		return nil, fmt.Errorf("%w: balance request: %v", ErrTransport, err)
	}
	if !res.Ok {
		return nil, fmt.Errorf("%w: balance endpoint status %d", ErrTransport, res.StatusCode)
	}

	return parseBalance(res.Bytes(), c.model.tier()), nil
}

// FetchImageBase64 downloads one tile image from the hcaptcha asset host and
// returns it base64-encoded. The header set mirrors what the widget itself
// sends, including the session user agent.
func (c *APIClient) FetchImageBase64(ctx context.Context, imageURL, userAgent string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	req := c.client.Request().URL(imageURL)
	req.SetHeader("Authority", "hcaptcha.com")
	req.SetHeader("Accept", "application/json")
	req.SetHeader("Accept-Language", "en-US,en;q=0.9")
	req.SetHeader("Content-Type", "application/json")
	req.SetHeader("Origin", "https://newassets.hcaptcha.com/")
	req.SetHeader("Sec-Fetch-Site", "same-site")
	req.SetHeader("Sec-Fetch-Mode", "cors")
	req.SetHeader("Sec-Fetch-Dest", "empty")
	req.SetHeader("User-Agent", userAgent)

	res, err := req.Send()
	if err != nil {
		return "", fmt.Errorf("%w: fetch tile image: %v", ErrTransport, err)
	}
	if !res.Ok {
		return "", fmt.Errorf("%w: tile image status %d", ErrTransport, res.StatusCode)
	}

	return base64.StdEncoding.EncodeToString(res.Bytes()), nil
}
