package scenariod

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/scenario-engine/pkg/logger"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/models"
	"github.com/GoSim-25-26J-441/scenario-engine/pkg/utils"
)

var (
	ErrInvalidURL       = errors.New("invalid callback URL")
	ErrMetadataEndpoint = errors.New("callback URL targets a metadata endpoint")
	ErrInternalHost     = errors.New("callback URL targets an internal host")
)

// validateCallbackURL rejects callback targets that would let a run request
// probe internal infrastructure. Plain "localhost" stays allowed for
// development; direct loopback and wildcard IPs do not.
func validateCallbackURL(rawURL string) error {
	// The {run_id} placeholder is substituted at delivery time.
	candidate := strings.ReplaceAll(rawURL, "{run_id}", "placeholder")

	u, err := url.Parse(candidate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}

	lower := strings.ToLower(host)
	if lower == "169.254.169.254" || lower == "metadata.google.internal" {
		return fmt.Errorf("%w: %s", ErrMetadataEndpoint, host)
	}
	if lower == "localhost" {
		return nil
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsUnspecified() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			return fmt.Errorf("%w: %s", ErrInternalHost, host)
		}
	}
	return nil
}

// NotificationPayload represents the JSON payload sent to the callback URL
type NotificationPayload struct {
	RunID           string           `json:"run_id"`
	Status          models.RunStatus `json:"status"`
	Backend         string           `json:"backend,omitempty"`
	ScenarioCount   int              `json:"scenario_count"`
	CreatedAtUnixMs int64            `json:"created_at_unix_ms"`
	StartedAtUnixMs int64            `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64            `json:"ended_at_unix_ms,omitempty"`
	Error           string           `json:"error,omitempty"`
	Timestamp       int64            `json:"timestamp"` // When notification was sent
}

// Notifier delivers completion webhooks for finished runs.
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	backoff    utils.BackoffStrategy
}

// NewNotifier creates a new notification service
func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		backoff:    utils.NewExponentialBackoff(time.Second, 30*time.Second, 2.0, true),
	}
}

// Notify sends a notification to the run's callback URL asynchronously.
// Returns immediately; delivery and retries happen in a goroutine.
func (n *Notifier) Notify(rec *RunRecord) {
	if rec == nil || rec.Run == nil || rec.CallbackURL == "" {
		return
	}

	// Replace {run_id} template in callback URL if present
	finalURL := strings.ReplaceAll(rec.CallbackURL, "{run_id}", rec.Run.ID)

	payload := NotificationPayload{
		RunID:           rec.Run.ID,
		Status:          rec.Run.Status,
		Backend:         rec.Run.Backend,
		ScenarioCount:   rec.Run.ScenarioCount,
		CreatedAtUnixMs: rec.Run.CreatedAtUnixMs,
		StartedAtUnixMs: rec.Run.StartedAtUnixMs,
		EndedAtUnixMs:   rec.Run.EndedAtUnixMs,
		Error:           rec.Run.Error,
		Timestamp:       time.Now().UTC().UnixMilli(),
	}

	go n.sendNotification(finalURL, rec.CallbackSecret, payload)
}

// sendNotification performs the actual HTTP POST with retry logic
func (n *Notifier) sendNotification(callbackURL string, callbackSecret string, payload NotificationPayload) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff.NextDelay(attempt - 1)
			logger.Debug("retrying notification",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(payloadJSON))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "scenario-engine/1.0")
		if callbackSecret != "" {
			req.Header.Set("X-Scenario-Callback-Secret", callbackSecret)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt+1,
				"error", err)
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// Success if status code is 2xx
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent",
				"run_id", payload.RunID,
				"status", payload.Status,
				"status_code", resp.StatusCode)
			return
		}

		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"status_code", resp.StatusCode,
			"attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"callback_url", callbackURL,
		"run_id", payload.RunID,
		"error", lastErr)
}
