package hyperion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Path is the JSON-RPC endpoint on the device.
const Path = "/json-rpc"

// Result is the normalized outcome of a single command.
// Payload holds the raw response body, or an error description when the
// request never produced a usable response.
type Result struct {
	Succeeded bool
	Payload   json.RawMessage
	Err       error
}

// Reason returns a short human readable description of a failed result.
func (r Result) Reason() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return string(r.Payload)
}

type response struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// Client posts commands to a single device.
// Address and token are fixed at construction; the client keeps no state
// between calls and never retries.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new device client. baseURL may omit the scheme.
// A non-positive rateLimitRPS disables outgoing pacing.
func NewClient(baseURL, token string, timeout time.Duration, rateLimitRPS float64) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if !strings.Contains(baseURL, "http") {
		baseURL = "http://" + baseURL
	}

	var limiter *rate.Limiter
	if rateLimitRPS > 0 {
		burst := int(rateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rateLimitRPS), burst)
	}

	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + Path,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Endpoint returns the full JSON-RPC URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close closes the client
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Send performs exactly one round trip. Transport faults, non-2xx statuses and
// application-level rejections all come back as a failed Result.
func (c *Client) Send(ctx context.Context, cmd Command) Result {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return failed(fmt.Errorf("rate limiter: %w", err))
		}
	}

	body, err := json.Marshal(cmd)
	if err != nil {
		return failed(fmt.Errorf("failed to marshal command: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return failed(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("command", cmd.Name).Msg("Error while contacting Hyperion")
		return failed(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().
			Int("status", resp.StatusCode).
			Str("command", cmd.Name).
			Msg("Error while contacting Hyperion")
		return Result{
			Payload: data,
			Err:     fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	var parsed response
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{Payload: data, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	log.Debug().
		Str("command", cmd.Name).
		RawJSON("response", data).
		Msg("Hyperion responded")

	if parsed.Success == nil || !*parsed.Success {
		res := Result{Payload: data}
		if parsed.Error != "" {
			res.Err = fmt.Errorf("device rejected %s: %s", cmd.Name, parsed.Error)
		}
		return res
	}

	return Result{Succeeded: true, Payload: data}
}

func failed(err error) Result {
	desc, _ := json.Marshal(err.Error())
	return Result{Payload: desc, Err: err}
}
