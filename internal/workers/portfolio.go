package workers

import (
	"context"
	"log/slog"
	"time"

	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/entities"
	"solana-wallet-backend/internal/handlers"
)

// PortfolioRefresher worker periodically re-aggregates the token list for
// every tracked wallet, stores the snapshot and pushes it to websocket
// subscribers.
type PortfolioRefresher struct {
	logger *slog.Logger

	wallets    handlers.WalletService
	tokens     handlers.TokenService
	portfolios handlers.PortfolioStore
	broadcast  *handlers.Manager
	ledger     ports.LedgerRPC

	// How often to refresh all tracked wallets
	refreshInterval time.Duration
}

// NewPortfolioRefresher creates a new portfolio refresh worker.
func NewPortfolioRefresher(
	logger *slog.Logger,
	wallets handlers.WalletService,
	tokens handlers.TokenService,
	portfolios handlers.PortfolioStore,
	broadcast *handlers.Manager,
	ledger ports.LedgerRPC,
	refreshInterval time.Duration,
) *PortfolioRefresher {
	return &PortfolioRefresher{
		logger:          logger,
		wallets:         wallets,
		tokens:          tokens,
		portfolios:      portfolios,
		broadcast:       broadcast,
		ledger:          ledger,
		refreshInterval: refreshInterval,
	}
}

// Start begins the periodic refresh of tracked wallet portfolios.
func (pr *PortfolioRefresher) Start(ctx context.Context) {
	pr.logger.Info("Starting portfolio refresh worker",
		"refresh_interval", pr.refreshInterval.String())

	// Run an initial refresh immediately
	if err := pr.refreshAll(ctx); err != nil {
		pr.logger.Error("Initial portfolio refresh failed", "error", err)
	}

	ticker := time.NewTicker(pr.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pr.logger.Info("Portfolio refresh worker stopped")
			return
		case <-ticker.C:
			if err := pr.refreshAll(ctx); err != nil {
				pr.logger.Error("Portfolio refresh failed", "error", err)
			}
		}
	}
}

// refreshAll re-aggregates every tracked wallet sequentially. The token
// service already throttles and batches its upstream calls, so one wallet
// at a time keeps the shared rate limit predictable.
func (pr *PortfolioRefresher) refreshAll(ctx context.Context) error {
	wallets, err := pr.wallets.ListWallets(ctx)
	if err != nil {
		return err
	}

	if len(wallets) == 0 {
		pr.logger.Debug("No tracked wallets to refresh")
		return nil
	}

	for _, wallet := range wallets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		pr.refreshWallet(ctx, wallet.Address)
	}

	return nil
}

func (pr *PortfolioRefresher) refreshWallet(ctx context.Context, address string) {
	tokens, err := pr.tokens.GetTokensForWallet(ctx, address, pr.ledger)
	if err != nil {
		pr.logger.Error("Failed to refresh wallet portfolio", "address", address, "error", err)
		return
	}

	snapshot := entities.PortfolioSnapshot{
		Address:     address,
		Tokens:      tokens,
		RefreshedAt: time.Now(),
	}

	if err = pr.portfolios.SaveSnapshot(ctx, snapshot); err != nil {
		pr.logger.Error("Failed to save portfolio snapshot", "address", address, "error", err)
		return
	}

	pr.broadcast.Broadcast(address, snapshot)

	pr.logger.Debug("Wallet portfolio refreshed",
		"address", address, "tokens", len(tokens),
		"subscribers", pr.broadcast.SubscriberCount(address))
}
