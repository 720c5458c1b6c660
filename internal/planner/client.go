package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// solvePath is the solver's admin endpoint for a single-day solve.
const solvePath = "/timeTable/admin/solve-day"

// Client dispatches assembled requests to the external solver. The call is
// fire and forget: it returns once the solver accepts the request, and the
// solution arrives later at the callback URL.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient builds a solver client with basic-auth credentials.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SolveDay submits one run for solving. A non-2xx status is an error; the
// body is read for the solver's reason but capped to keep logs bounded.
func (c *Client) SolveDay(ctx context.Context, req *PlannerRequestBody) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal planner request %s: %w", req.SingletonID, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+solvePath, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build planner request %s: %w", req.SingletonID, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("dispatch planner request %s: %w", req.SingletonID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("planner rejected request %s: status %d: %s",
			req.SingletonID, resp.StatusCode, string(reason))
	}

	slog.Info("planner request accepted",
		slog.String("singletonId", req.SingletonID),
		slog.String("hostId", req.HostID),
		slog.Int("eventParts", len(req.EventParts)),
		slog.Int("timeslots", len(req.Timeslots)))
	return nil
}
