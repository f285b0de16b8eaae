package ports

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"solana-wallet-backend/internal/entities"
)

// LedgerRPC is the slice of the Solana RPC surface the aggregator needs.
// *rpc.Client satisfies it.
type LedgerRPC interface {
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, conf *rpc.GetTokenAccountsConfig, opts *rpc.GetTokenAccountsOpts) (*rpc.GetTokenAccountsResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
}

// PriceSource resolves a USD price for a mint address.
type PriceSource interface {
	Price(ctx context.Context, mint string) (float64, error)
}

// MetadataSource resolves display metadata for a mint address. It never
// fails: lookups that cannot be served degrade to synthesized placeholders.
type MetadataSource interface {
	Resolve(ctx context.Context, mint string) (entities.TokenMetadata, bool)
}

// TokenService aggregates the priced token list for a wallet address.
type TokenService interface {
	GetTokensForWallet(ctx context.Context, address string, ledger LedgerRPC) ([]entities.TokenInfo, error)
}

// WalletService manages wallet key material and the tracked wallet list.
type WalletService interface {
	GenerateWallet(ctx context.Context, label string) (*entities.WalletSecrets, error)
	ImportMnemonic(ctx context.Context, mnemonic, label string) (*entities.WalletSecrets, error)
	ImportPrivateKey(ctx context.Context, encodedKey, label string) (*entities.WalletSecrets, error)
	ListWallets(ctx context.Context) ([]entities.Wallet, error)
	CurrentWallet(ctx context.Context) (string, error)
	SetCurrentWallet(ctx context.Context, address string) error
	DeleteWallet(ctx context.Context, walletID int) error
}
