package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solana-wallet-backend/internal/core/ports"
)

const (
	pumpMint    = "8vCXs1jQvB7mXsKP5ZasjP1TqCXWUEVJFA4EJpGXpump"
	regularMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) *MetadataResolver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokenList := NewTokenListClient(slog.Default(), server.URL+"/", time.Second)
	return NewMetadataResolver(slog.Default(), tokenList)
}

func TestIsPumpAsset(t *testing.T) {
	require.True(t, IsPumpAsset(pumpMint))
	require.True(t, IsPumpAsset("abc123PUMP"))
	require.False(t, IsPumpAsset(regularMint))
	require.False(t, IsPumpAsset("pumpkin111"))
}

func TestResolveKnownToken(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"USD Coin","symbol":"USDC","logoURI":"https://example.com/usdc.png"}`)
	})

	meta, isFun := resolver.Resolve(context.Background(), regularMint)

	require.False(t, isFun)
	require.Equal(t, "USD Coin", meta.Name)
	require.Equal(t, "USDC", meta.Symbol)
	require.Equal(t, "https://example.com/usdc.png", meta.LogoURI)
}

func TestResolveKnownPumpTokenFillsGaps(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"","symbol":"","logoURI":""}`)
	})

	meta, isFun := resolver.Resolve(context.Background(), pumpMint)

	require.True(t, isFun)
	require.Equal(t, "PUMP "+pumpMint[:4], meta.Name)
	require.Equal(t, "PUMP", meta.Symbol)
	require.Equal(t, ports.PumpLogoURL, meta.LogoURI)
}

func TestResolveUnknownPumpToken(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	meta, isFun := resolver.Resolve(context.Background(), pumpMint)

	require.True(t, isFun)
	require.Equal(t, "Unknown", meta.Name)
	require.Empty(t, meta.Symbol)
	require.Equal(t, ports.PumpLogoURL, meta.LogoURI)
}

func TestResolveUnknownRegularToken(t *testing.T) {
	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	meta, isFun := resolver.Resolve(context.Background(), regularMint)

	require.False(t, isFun)
	require.Equal(t, fmt.Sprintf("Token %s...%s", regularMint[:4], regularMint[len(regularMint)-4:]), meta.Name)
	require.Equal(t, regularMint[:4], meta.Symbol)
	require.Equal(t, ports.UnknownTokenLogoURL, meta.LogoURI)
}

func TestResolveNeverFailsOnTransportError(t *testing.T) {
	tokenList := NewTokenListClient(slog.Default(), "http://127.0.0.1:1/", 100*time.Millisecond)
	resolver := NewMetadataResolver(slog.Default(), tokenList)

	meta, isFun := resolver.Resolve(context.Background(), regularMint)

	require.False(t, isFun)
	require.NotEmpty(t, meta.Name)
}
