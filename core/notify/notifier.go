package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/model"
)

// Service is the outbound notification surface of the pipeline. Every event is
// best-effort: delivery failures are the caller's to log and ignore, never to
// propagate into pipeline control flow.
type Service interface {
	SubmissionReceived(ctx context.Context, submissionID string) error
	ReleaseProcessed(ctx context.Context, release *model.ProcessedRelease) error
	ProcessingFailed(ctx context.Context, submissionID string, cause error) error
}

// NewService builds a notification service backed by the transactional email
// API when configured. With no API URL configured, a noop implementation is
// returned.
func NewService(cfg *config.Config) Service {
	apiURL := strings.TrimSpace(cfg.EmailAPIURL)
	if apiURL == "" {
		return noopService{}
	}

	return &emailService{
		apiURL:    apiURL,
		apiKey:    cfg.EmailAPIKey,
		sender:    cfg.EmailSender,
		adminAddr: cfg.EmailAdminAddr,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type emailService struct {
	apiURL    string
	apiKey    string
	sender    string
	adminAddr string
	client    *http.Client
}

// emailRequest is the transactional email API payload.
type emailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *emailService) SubmissionReceived(ctx context.Context, submissionID string) error {
	return s.send(ctx, emailRequest{
		From:    s.sender,
		To:      s.adminAddr,
		Subject: fmt.Sprintf("FreshWax: submission %s received", submissionID),
		HTML:    receivedTemplate(submissionID),
	})
}

func (s *emailService) ReleaseProcessed(ctx context.Context, release *model.ProcessedRelease) error {
	return s.send(ctx, emailRequest{
		From:    s.sender,
		To:      s.adminAddr,
		Subject: fmt.Sprintf("FreshWax: %s - %s is ready for review", release.Artist, release.Title),
		HTML:    completeTemplate(release),
	})
}

func (s *emailService) ProcessingFailed(ctx context.Context, submissionID string, cause error) error {
	errText := "unknown error"
	if cause != nil {
		errText = cause.Error()
	}
	return s.send(ctx, emailRequest{
		From:    s.sender,
		To:      s.adminAddr,
		Subject: fmt.Sprintf("FreshWax: submission %s failed", submissionID),
		HTML:    failedTemplate(submissionID, errText),
	})
}

// send posts one email to the API, retrying once on failure. Delivery has its
// own retry policy precisely so pipeline correctness never depends on it.
func (s *emailService) send(ctx context.Context, email emailRequest) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = s.post(ctx, body)
		if lastErr == nil {
			logger.Info("Notification email sent",
				logger.String("to", email.To),
				logger.String("subject", email.Subject))
			return nil
		}

		logger.Warn("Notification email attempt failed",
			logger.Int("attempt", attempt),
			logger.String("subject", email.Subject),
			logger.ErrorField(lastErr))
	}
	return lastErr
}

func (s *emailService) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) SubmissionReceived(context.Context, string) error                { return nil }
func (noopService) ReleaseProcessed(context.Context, *model.ProcessedRelease) error { return nil }
func (noopService) ProcessingFailed(context.Context, string, error) error           { return nil }
