package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/entities"
)

// MetadataResolver turns a mint address into display metadata. Lookup
// failures never escape this component: every path degrades to a
// synthesized placeholder so a single bad token cannot abort a wallet
// aggregation.
type MetadataResolver struct {
	logger    *slog.Logger
	tokenList *TokenListClient
}

func NewMetadataResolver(logger *slog.Logger, tokenList *TokenListClient) *MetadataResolver {
	return &MetadataResolver{logger: logger, tokenList: tokenList}
}

// IsPumpAsset reports whether the mint belongs to the pump.fun token
// family, recognized by its fixed mint-address suffix.
func IsPumpAsset(mint string) bool {
	return strings.HasSuffix(strings.ToLower(mint), ports.PumpSuffix)
}

// Resolve returns metadata for the mint and whether it is a pump-family
// asset. Pump assets fall back to pump.fun defaults, other assets to a
// placeholder built from the truncated mint address.
func (r *MetadataResolver) Resolve(ctx context.Context, mint string) (entities.TokenMetadata, bool) {
	isPump := IsPumpAsset(mint)

	meta, err := r.tokenList.Lookup(ctx, mint)
	if err != nil {
		r.logger.DebugContext(ctx, "Token list lookup failed, using placeholder",
			"mint", mint, "is_pump", isPump, "error", err)

		if isPump {
			return entities.TokenMetadata{
				Name:    "Unknown",
				Symbol:  "",
				LogoURI: ports.PumpLogoURL,
			}, true
		}
		return entities.TokenMetadata{
			Name:    fmt.Sprintf("Token %s...%s", truncateHead(mint), truncateTail(mint)),
			Symbol:  truncateHead(mint),
			LogoURI: ports.UnknownTokenLogoURL,
		}, false
	}

	if isPump {
		if meta.Name == "" {
			meta.Name = "PUMP " + truncateHead(mint)
		}
		if meta.Symbol == "" {
			meta.Symbol = "PUMP"
		}
		if meta.LogoURI == "" {
			meta.LogoURI = ports.PumpLogoURL
		}
		return meta, true
	}

	if meta.LogoURI == "" {
		meta.LogoURI = ports.UnknownTokenLogoURL
	}
	return meta, false
}

func truncateHead(mint string) string {
	if len(mint) < 4 {
		return mint
	}
	return mint[:4]
}

func truncateTail(mint string) string {
	if len(mint) < 4 {
		return mint
	}
	return mint[len(mint)-4:]
}
