package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const telemetryTimeout = 5 * time.Second

// TelemetryEvent describes how effective an install run was.
type TelemetryEvent struct {
	SessionID string `json:"sessionId"`
	Plugin    string `json:"plugin"`
	Total     int    `json:"total"`
	Success   int    `json:"success"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// TelemetryResult is the swallowed outcome of a telemetry post. Telemetry is
// best-effort: failures are returned as values, never as errors.
type TelemetryResult struct {
	Success bool
	Error   string
}

// Telemetry posts effectiveness events to the registry. Disabled instances
// report success without network access.
type Telemetry struct {
	baseURL   string
	disabled  bool
	sessionID string
	http      *http.Client
}

// NewTelemetry creates a telemetry reporter with a fresh session ID.
func NewTelemetry(cfg Config, disabled bool) *Telemetry {
	return &Telemetry{
		baseURL:   cfg.APIBaseURL,
		disabled:  disabled,
		sessionID: uuid.NewString(),
		http:      &http.Client{Timeout: telemetryTimeout},
	}
}

// ReportEffectiveness posts one event. All failures, including timeouts, are
// swallowed into the result.
func (t *Telemetry) ReportEffectiveness(ctx context.Context, event TelemetryEvent) TelemetryResult {
	if t.disabled {
		return TelemetryResult{Success: true}
	}
	event.SessionID = t.sessionID

	payload, err := json.Marshal(event)
	if err != nil {
		return TelemetryResult{Error: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, telemetryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.baseURL+"/telemetry/effectiveness", bytes.NewReader(payload))
	if err != nil {
		return TelemetryResult{Error: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return TelemetryResult{Error: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TelemetryResult{Error: resp.Status}
	}
	return TelemetryResult{Success: true}
}
