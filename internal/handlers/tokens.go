package handlers

import (
	"context"

	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/entities"
)

type TokenService interface {
	GetTokensForWallet(ctx context.Context, address string, ledger ports.LedgerRPC) ([]entities.TokenInfo, error)
}

type PortfolioStore interface {
	GetSnapshot(ctx context.Context, address string) (*entities.PortfolioSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot entities.PortfolioSnapshot) error
}
