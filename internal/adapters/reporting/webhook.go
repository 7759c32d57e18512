// Package reporting forwards pipeline failures to external error trackers.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/mapserver/internal/core/domain"
	"github.com/melih/mapserver/internal/platform/logger"
)

const maxReportedOutput = 8192

// Payload is the JSON body posted for every failure.
type Payload struct {
	RequestID  string    `json:"requestId"`
	Ref        string    `json:"ref"`
	Maps       []string  `json:"maps,omitempty"`
	SyncAll    bool      `json:"syncAll"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error"`
	Output     string    `json:"output,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	FailedAt   time.Time `json:"failedAt"`
}

// WebhookReporter implements ports.ErrorReporter by posting a Payload to a URL.
type WebhookReporter struct {
	url     string
	timeout time.Duration
	log     logger.Logger
}

// NewWebhookReporter creates a WebhookReporter. A zero timeout defaults to ten seconds.
func NewWebhookReporter(url string, timeout time.Duration, log logger.Logger) *WebhookReporter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookReporter{url: url, timeout: timeout, log: log}
}

// Report posts the failure. Delivery errors are logged and dropped.
func (r *WebhookReporter) Report(_ context.Context, req domain.BuildRequest, err error) {
	if err := r.send(NewPayload(req, err)); err != nil {
		r.log.Warn("Failed to report pipeline failure",
			logger.WithField("request", req.ID),
			logger.WithError(err))
	}
}

func (r *WebhookReporter) send(payload Payload) error {
	agent := fiber.Post(r.url).
		JSON(payload).
		Timeout(r.timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook responded %d: %s", code, body)
	}
	return nil
}

// NewPayload describes a failed request.
func NewPayload(req domain.BuildRequest, err error) Payload {
	payload := Payload{
		RequestID:  req.ID,
		Ref:        req.Ref,
		Maps:       req.MapFiles,
		SyncAll:    req.SyncAll,
		Error:      err.Error(),
		EnqueuedAt: req.EnqueuedAt,
		FailedAt:   time.Now().UTC(),
	}

	var stageErr *domain.StageError
	if errors.As(err, &stageErr) {
		payload.Stage = string(stageErr.Stage)
		payload.Output = stageErr.Output
		if len(payload.Output) > maxReportedOutput {
			payload.Output = payload.Output[len(payload.Output)-maxReportedOutput:]
		}
	}
	return payload
}
