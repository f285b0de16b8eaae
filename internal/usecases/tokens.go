package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/sync/errgroup"

	"solana-wallet-backend/config"
	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/entities"
	"solana-wallet-backend/internal/upstream"
)

// TokenService turns a wallet address into a priced, deduplicated list of
// held assets. All outbound calls are gated by the shared rate limiter;
// transient 429 rejections are retried with backoff, and per-token lookup
// failures degrade to fallback values instead of aborting the wallet view.
type TokenService struct {
	logger   *slog.Logger
	limiter  *upstream.Limiter
	retrier  *upstream.Retrier
	batcher  *upstream.Batcher
	prices   ports.PriceSource
	metadata ports.MetadataSource
}

func NewTokenService(
	logger *slog.Logger,
	cfg *config.Config,
	limiter *upstream.Limiter,
	prices ports.PriceSource,
	metadata ports.MetadataSource,
) *TokenService {
	retrier := upstream.NewRetrier(logger, limiter, cfg.Pricing.MaxRetries, cfg.Pricing.BaseRetryDelay)
	batcher := upstream.NewBatcher(retrier, cfg.Pricing.BatchSize, cfg.Pricing.BatchPause, cfg.Pricing.RequestTimeout)

	return &TokenService{
		logger:   logger,
		limiter:  limiter,
		retrier:  retrier,
		batcher:  batcher,
		prices:   prices,
		metadata: metadata,
	}
}

// GetTokensForWallet fetches all non-zero SPL holdings plus the native
// balance for the address and resolves metadata and USD prices for each.
// The native entry, when its balance is positive, is always first. The
// returned slice is always usable; a non-nil error marks a catastrophic
// failure (bad address, exhausted ledger retries) for callers that want
// to distinguish "no tokens" from "fetch failed".
func (s *TokenService) GetTokensForWallet(ctx context.Context, address string, ledger ports.LedgerRPC) ([]entities.TokenInfo, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		s.logger.ErrorContext(ctx, "Invalid wallet address", "address", address, "error", err)
		return []entities.TokenInfo{}, fmt.Errorf("invalid wallet address %q: %w", address, err)
	}

	if err = s.limiter.Wait(ctx); err != nil {
		return []entities.TokenInfo{}, err
	}

	var (
		accounts *rpc.GetTokenAccountsResult
		lamports uint64
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		result, fetchErr := upstream.Do(ctx, s.retrier, func(opCtx context.Context) (*rpc.GetTokenAccountsResult, error) {
			programID := solana.TokenProgramID
			return ledger.GetTokenAccountsByOwner(opCtx, owner,
				&rpc.GetTokenAccountsConfig{ProgramId: &programID},
				&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed})
		})
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch token accounts: %w", fetchErr)
		}
		accounts = result
		return nil
	})
	g.Go(func() error {
		result, fetchErr := upstream.Do(ctx, s.retrier, func(opCtx context.Context) (*rpc.GetBalanceResult, error) {
			return ledger.GetBalance(opCtx, owner, rpc.CommitmentFinalized)
		})
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch native balance: %w", fetchErr)
		}
		lamports = result.Value
		return nil
	})
	if err = g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch wallet state from ledger",
			"address", address, "error", err)
		return []entities.TokenInfo{}, err
	}

	holdings := s.parseHoldings(ctx, accounts)

	tokens, err := upstream.RunBatch(ctx, s.batcher, holdings, s.resolveHolding)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to resolve wallet holdings",
			"address", address, "error", err)
		return []entities.TokenInfo{}, err
	}

	if lamports > 0 {
		if err = s.limiter.Wait(ctx); err != nil {
			return []entities.TokenInfo{}, err
		}
		native := entities.TokenInfo{
			Name:     ports.NativeTokenName,
			Symbol:   ports.NativeTokenSymbol,
			LogoURI:  ports.NativeLogoURL,
			Balance:  float64(lamports) / ports.LamportsPerSOL,
			PriceUSD: s.resolvePrice(ctx, ports.NativeMint),
			Mint:     ports.NativeMint,
			Address:  ports.WrappedSOLMint,
			IsFun:    false,
		}
		tokens = append([]entities.TokenInfo{native}, tokens...)
	}

	s.logger.InfoContext(ctx, "Aggregated wallet tokens",
		"address", address, "holdings", len(holdings), "tokens", len(tokens))

	return tokens, nil
}

// parsedTokenAccount mirrors the jsonParsed SPL account layout:
// data.parsed.info.{mint,tokenAmount.{uiAmount,decimals}}.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				UIAmount float64 `json:"uiAmount"`
				Decimals int     `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// parseHoldings extracts non-zero holdings from the ledger response,
// skipping accounts whose payload cannot be decoded.
func (s *TokenService) parseHoldings(ctx context.Context, accounts *rpc.GetTokenAccountsResult) []entities.Holding {
	if accounts == nil {
		return nil
	}

	holdings := make([]entities.Holding, 0, len(accounts.Value))
	for _, raw := range accounts.Value {
		if raw == nil || raw.Account.Data == nil {
			continue
		}

		rawJSON := raw.Account.Data.GetRawJSON()
		if rawJSON == nil {
			continue
		}

		var parsed parsedTokenAccount
		if err := json.Unmarshal(rawJSON, &parsed); err != nil {
			s.logger.WarnContext(ctx, "Failed to decode token account data",
				"token_account", raw.Pubkey.String(), "error", err)
			continue
		}

		info := parsed.Parsed.Info
		if info.Mint == "" || info.TokenAmount.UIAmount <= 0 {
			continue
		}

		holdings = append(holdings, entities.Holding{
			Mint:         info.Mint,
			Amount:       info.TokenAmount.UIAmount,
			Decimals:     info.TokenAmount.Decimals,
			TokenAccount: raw.Pubkey.String(),
		})
	}

	return holdings
}

// resolveHolding resolves metadata and price for one holding. The retry
// wrapper around it already waits on the shared limiter, so the two lookups
// here just run concurrently.
func (s *TokenService) resolveHolding(ctx context.Context, holding entities.Holding) (entities.TokenInfo, error) {
	mint := strings.ToLower(holding.Mint)

	var (
		meta  entities.TokenMetadata
		isFun bool
		price float64
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		meta, isFun = s.metadata.Resolve(ctx, mint)
		return nil
	})
	g.Go(func() error {
		price = s.resolvePrice(ctx, mint)
		return nil
	})
	_ = g.Wait()

	return entities.TokenInfo{
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		LogoURI:  meta.LogoURI,
		Balance:  holding.Amount,
		PriceUSD: price,
		Mint:     mint,
		Address:  mint,
		IsFun:    isFun,
	}, nil
}

// resolvePrice absorbs price lookup failures into a zero price; a missing
// quote must not abort the wallet view.
func (s *TokenService) resolvePrice(ctx context.Context, mint string) float64 {
	price, err := s.prices.Price(ctx, mint)
	if err != nil {
		s.logger.WarnContext(ctx, "Price lookup failed, defaulting to zero",
			"mint", mint, "error", err)
		return 0
	}
	return price
}
