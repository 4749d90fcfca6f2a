package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const telegramAPI = "https://api.telegram.org"

const (
	defaultMaxRetries = 3
	defaultBackoff    = time.Second
)

// TelegramNotifier sends alerts via the Telegram Bot API. Send retries
// with exponential backoff before giving up, so a flaky network does
// not drop an alert.
type TelegramNotifier struct {
	BotToken   string
	ChatID     string
	APIURL     string
	MaxRetries int
	Backoff    time.Duration
	Client     *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken:   botToken,
		ChatID:     chatID,
		APIURL:     telegramAPI,
		MaxRetries: defaultMaxRetries,
		Backoff:    defaultBackoff,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Send delivers one message to the configured chat, retrying failed
// attempts with exponential backoff.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	var lastErr error
	for i := 0; i <= t.MaxRetries; i++ {
		if err := t.sendOnce(ctx, text); err != nil {
			lastErr = err
			backoff := t.Backoff * time.Duration(1<<uint(i))
			log.Printf("[WARN] Telegram send failed (attempt %d/%d): %v, retrying in %v",
				i+1, t.MaxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed: %w", t.MaxRetries+1, lastErr)
}

func (t *TelegramNotifier) sendOnce(ctx context.Context, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.APIURL, t.BotToken)
	payload := map[string]string{
		"chat_id": t.ChatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
