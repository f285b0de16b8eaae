package handlers

import (
	"context"

	"solana-wallet-backend/internal/entities"
)

type WalletService interface {
	GenerateWallet(ctx context.Context, label string) (*entities.WalletSecrets, error)
	ImportMnemonic(ctx context.Context, mnemonic, label string) (*entities.WalletSecrets, error)
	ImportPrivateKey(ctx context.Context, encodedKey, label string) (*entities.WalletSecrets, error)
	ListWallets(ctx context.Context) ([]entities.Wallet, error)
	CurrentWallet(ctx context.Context) (string, error)
	SetCurrentWallet(ctx context.Context, address string) error
	DeleteWallet(ctx context.Context, walletID int) error
}
