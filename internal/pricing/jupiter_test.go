package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/upstream"
)

const testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func TestJupiterPriceUsesQuotedMidPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, testMint, r.URL.Query().Get("ids"))
		fmt.Fprintf(w, `{"data":{"%s":{"price":"99.0","extraInfo":{"quotedPrice":{"buyPrice":"10","sellPrice":"12"}}}}}`, testMint)
	}))
	defer server.Close()

	client := NewJupiterClient(slog.Default(), server.URL, time.Second)

	price, err := client.Price(context.Background(), testMint)
	require.NoError(t, err)
	require.InDelta(t, 11.0, price, 1e-9)
}

func TestJupiterPriceFallsBackToPriceField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"data":{"%s":{"price":"1.2345"}}}`, testMint)
	}))
	defer server.Close()

	client := NewJupiterClient(slog.Default(), server.URL, time.Second)

	price, err := client.Price(context.Background(), testMint)
	require.NoError(t, err)
	require.InDelta(t, 1.2345, price, 1e-9)
}

func TestJupiterPriceUnknownMintIsZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"data":{"%s":null}}`, testMint)
	}))
	defer server.Close()

	client := NewJupiterClient(slog.Default(), server.URL, time.Second)

	price, err := client.Price(context.Background(), testMint)
	require.NoError(t, err)
	require.Zero(t, price)
}

func TestJupiterPriceMapsNativeToWrappedSOL(t *testing.T) {
	var requestedID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedID = r.URL.Query().Get("ids")
		fmt.Fprintf(w, `{"data":{"%s":{"price":"150.5"}}}`, ports.WrappedSOLMint)
	}))
	defer server.Close()

	client := NewJupiterClient(slog.Default(), server.URL, time.Second)

	price, err := client.Price(context.Background(), ports.NativeMint)
	require.NoError(t, err)
	require.Equal(t, ports.WrappedSOLMint, requestedID)
	require.InDelta(t, 150.5, price, 1e-9)
}

func TestJupiterPriceRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewJupiterClient(slog.Default(), server.URL, time.Second)

	_, err := client.Price(context.Background(), testMint)
	require.Error(t, err)

	var statusErr *upstream.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.True(t, statusErr.RateLimited())
	require.True(t, upstream.IsRateLimited(err))
}
