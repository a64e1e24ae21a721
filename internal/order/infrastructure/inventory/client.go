package inventory

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

const (
	defaultCallTimeout  = 5 * time.Second
	defaultMaxAttempts  = 3
	defaultFirstBackoff = 500 * time.Millisecond
)

// Client consumes the inventory service's REST contract. Restore retries
// with exponential backoff because a lost restore strands stock; the other
// operations are single attempts.
type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client

	callTimeout  time.Duration
	maxAttempts  int
	firstBackoff time.Duration
}

func NewClient(log *slog.Logger, baseURL string, httpClient *http.Client) *Client {
	return &Client{
		log:          log,
		baseURL:      baseURL,
		http:         httpClient,
		callTimeout:  defaultCallTimeout,
		maxAttempts:  defaultMaxAttempts,
		firstBackoff: defaultFirstBackoff,
	}
}

type envelope struct {
	Message string          `json:"message"`
	Flag    bool            `json:"flag"`
	Data    json.RawMessage `json:"data"`
	Code    int             `json:"code"`
}

type stockRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Item is the inventory row as reported by the collaborator.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) Deduct(ctx context.Context, productID string, quantity int) error {
	url := fmt.Sprintf("%s/inventory/internal/deduct-stock?productId=%s&quantity=%d", c.baseURL, productID, quantity)
	_, err := c.call(ctx, http.MethodPatch, url, nil)
	return err
}

// Restore enforces a per-call timeout and retries with exponential backoff.
// Exhausted retries surface to the direct caller.
func (c *Client) Restore(ctx context.Context, productID string, quantity int) error {
	body, err := json.Marshal(stockRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return err
	}
	url := c.baseURL + "/inventory/internal/restore-inventory"

	backoff := c.firstBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		_, lastErr = c.call(callCtx, http.MethodPost, url, body)
		cancel()
		if lastErr == nil {
			return nil
		}
		c.log.Warn("inventory restore attempt failed",
			"product_id", productID, "attempt", attempt, "err", lastErr)

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("restore inventory for %s after %d attempts: %w", productID, c.maxAttempts, lastErr)
}

func (c *Client) GetByProduct(ctx context.Context, productID string) (Item, error) {
	url := fmt.Sprintf("%s/inventory/product/%s", c.baseURL, productID)
	data, err := c.call(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Item{}, err
	}
	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return Item{}, fmt.Errorf("inventory get %s: decode data: %w", productID, err)
	}
	return item, nil
}

func (c *Client) Update(ctx context.Context, productID string, quantity int) error {
	body, err := json.Marshal(stockRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/inventory/update/%s", c.baseURL, productID)
	_, err = c.call(ctx, http.MethodPut, url, body)
	return err
}

func (c *Client) Delete(ctx context.Context, productID string) error {
	url := fmt.Sprintf("%s/inventory/%s", c.baseURL, productID)
	_, err := c.call(ctx, http.MethodDelete, url, nil)
	return err
}

func (c *Client) call(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("inventory %s %s: decode: %w", method, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Flag {
		return nil, fmt.Errorf("inventory %s %s: status %d: %s", method, url, resp.StatusCode, env.Message)
	}
	return env.Data, nil
}
