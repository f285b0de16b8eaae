package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/upstream"
)

// JupiterClient queries the Jupiter price API for USD quotes.
type JupiterClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

func NewJupiterClient(logger *slog.Logger, baseURL string, timeout time.Duration) *JupiterClient {
	return &JupiterClient{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type priceResponse struct {
	Data map[string]*priceEntry `json:"data"`
}

type priceEntry struct {
	Price     flexNumber `json:"price"`
	ExtraInfo *struct {
		QuotedPrice *struct {
			BuyPrice  flexNumber `json:"buyPrice"`
			SellPrice flexNumber `json:"sellPrice"`
		} `json:"quotedPrice"`
	} `json:"extraInfo"`
}

// flexNumber tolerates the API encoding prices either as JSON numbers or
// as quoted decimal strings. Unparsable values decode to 0.
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexNumber(v)
	return nil
}

// Price returns the USD price for the given mint. The native sentinel is
// mapped to the wrapped-SOL address before querying. A mint unknown to the
// API yields 0 without error; transport and decode failures return typed
// errors so the retry layer can classify them.
func (c *JupiterClient) Price(ctx context.Context, mint string) (float64, error) {
	queryMint := mint
	if queryMint == ports.NativeMint {
		queryMint = ports.WrappedSOLMint
	}

	reqURL := fmt.Sprintf("%s?ids=%s&showExtraInfo=true", c.baseURL, url.QueryEscape(queryMint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &upstream.StatusError{Status: resp.StatusCode, URL: c.baseURL}
	}

	var payload priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("failed to decode price response: %w", err)
	}

	entry := payload.Data[queryMint]
	if entry == nil {
		c.logger.DebugContext(ctx, "No price entry for mint", "mint", mint)
		return 0, nil
	}

	// The quoted buy/sell mid-price is preferred over the single derived
	// price field when the API provides it.
	if entry.ExtraInfo != nil && entry.ExtraInfo.QuotedPrice != nil {
		quoted := entry.ExtraInfo.QuotedPrice
		return (float64(quoted.BuyPrice) + float64(quoted.SellPrice)) / 2, nil
	}

	return float64(entry.Price), nil
}
