package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Temutjin2k/ride-dispatch/internal/domain/models"
	"github.com/Temutjin2k/ride-dispatch/internal/domain/types"
)

const DefaultTimeout = 30 * time.Second

// Client adjusts balances on the wallet service on behalf of the caller's bearer token.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type updateAmountRequest struct {
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	UserID      string  `json:"userId,omitempty"`
	Reference   string  `json:"reference,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Debit withdraws d.Amount. Network failures, timeouts and 5xx answers are
// reported as types.ErrWalletUnavailable, other non-200 answers as types.ErrWalletRejected.
func (c *Client) Debit(ctx context.Context, token string, d models.Debit) error {
	const op = "Wallet.Debit"

	if token == "" {
		return types.ErrUnauthorized
	}

	body, err := json.Marshal(updateAmountRequest{
		Amount:      d.Amount,
		Type:        "debit",
		UserID:      d.UserID,
		Reference:   d.Reference,
		Description: d.Description,
	})
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/updateAmount", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %v", op, types.ErrWalletUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s: %w: status %d: %s", op, types.ErrWalletUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
	}
	return fmt.Errorf("%s: %w: status %d: %s", op, types.ErrWalletRejected, resp.StatusCode, bytes.TrimSpace(msg))
}
