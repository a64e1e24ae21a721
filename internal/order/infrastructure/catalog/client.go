package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/orderflow/order-service/internal/order/domain"
)

// Client consumes the product catalog's REST contract. Lookups are a single
// attempt: a miss is a business error, not a transient fault, so there is no
// retry here.
type Client struct {
	log     *slog.Logger
	baseURL string
	http    *http.Client
}

func NewClient(log *slog.Logger, baseURL string, httpClient *http.Client) *Client {
	return &Client{log: log, baseURL: baseURL, http: httpClient}
}

type envelope struct {
	Message string          `json:"message"`
	Flag    bool            `json:"flag"`
	Data    json.RawMessage `json:"data"`
	Code    int             `json:"code"`
}

type productPayload struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	AvailableQuantity int             `json:"availableQuantity"`
}

func (c *Client) GetProduct(ctx context.Context, productID string) (domain.ProductSnapshot, error) {
	url := fmt.Sprintf("%s/product/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ProductSnapshot{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: catalog lookup %s: %v", domain.ErrUpstream, productID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ProductSnapshot{}, domain.ProductNotFoundError{ProductID: productID}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.ProductSnapshot{}, fmt.Errorf("%w: catalog lookup %s: status %d", domain.ErrUpstream, productID, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("catalog lookup %s: decode: %w", productID, err)
	}
	if !env.Flag {
		return domain.ProductSnapshot{}, fmt.Errorf("catalog lookup %s: %s", productID, env.Message)
	}

	var p productPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("catalog lookup %s: decode data: %w", productID, err)
	}
	return domain.ProductSnapshot{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		AvailableQuantity: p.AvailableQuantity,
	}, nil
}
