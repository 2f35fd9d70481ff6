package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

const DefaultURL = "https://www.telcosms.co.ao/send_message"

// Client sends text messages through the SMS gateway.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func NewClient(url, apiKey string, httpClient *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{url: url, apiKey: apiKey, http: httpClient}
}

type message struct {
	APIKey string `json:"api_key_app"`
	Phone  string `json:"phone_number"`
	Body   string `json:"message_body"`
}

func (c *Client) Send(ctx context.Context, phone, text string) error {
	const op = "SMS.Send"

	if c.apiKey == "" {
		return types.ErrFeatureDisabled
	}
	if phone == "" || text == "" {
		return types.NewValidation("phone and text are required")
	}

	body, err := json.Marshal(map[string]message{"message": {APIKey: c.apiKey, Phone: phone, Body: text}})
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return types.NewService("sms gateway unreachable", fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.NewService("sms not sent", fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, bytes.TrimSpace(msg)))
	}
	return nil
}
