package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kepngern/internal/log"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramSender posts messages to one chat through the Telegram Bot API.
type TelegramSender struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   *log.Logger

	// sleep waits between retries; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewTelegramSender(botToken, chatID string, logger *log.Logger) *TelegramSender {
	if logger == nil {
		logger = log.Discard()
	}
	return &TelegramSender{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultTelegramAPI,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.WithComponent(log.ComponentDelivery),
		sleep:    sleepContext,
	}
}

// Send posts text to the configured chat as HTML.
func (t *TelegramSender) Send(ctx context.Context, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	body, err := json.Marshal(map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of the error.
		return fmt.Errorf("send message: %w", redact(err, t.botToken))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SendWithRetry sends text, retrying failures with exponential backoff
// (1s, 2s, 4s, ...) up to maxRetries extra attempts.
func (t *TelegramSender) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			if err := t.sleep(ctx, time.Duration(1<<uint(i-1))*time.Second); err != nil {
				return err
			}
		}
		if lastErr = t.Send(ctx, text); lastErr == nil {
			return nil
		}
		t.logger.WarnContext(ctx, "Telegram send failed",
			log.FieldAttempt, i+1,
			"max_attempts", maxRetries+1,
			log.FieldError, lastErr)
	}
	return fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, secret string) error {
	if secret == "" {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "<redacted>"), err: err}
}
