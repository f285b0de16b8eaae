package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"solana-wallet-backend/internal/entities"
	"solana-wallet-backend/internal/upstream"
)

// TokenListClient looks up display metadata in the Jupiter token list.
type TokenListClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

func NewTokenListClient(logger *slog.Logger, baseURL string, timeout time.Duration) *TokenListClient {
	return &TokenListClient{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Lookup fetches name/symbol/logo for the given mint. Unknown mints come
// back as a StatusError carrying the upstream 4xx/5xx status.
func (c *TokenListClient) Lookup(ctx context.Context, mint string) (entities.TokenMetadata, error) {
	var meta entities.TokenMetadata

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mint, nil)
	if err != nil {
		return meta, fmt.Errorf("failed to create token list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return meta, fmt.Errorf("token list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta, &upstream.StatusError{Status: resp.StatusCode, URL: c.baseURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return meta, fmt.Errorf("failed to decode token list response: %w", err)
	}

	return meta, nil
}
