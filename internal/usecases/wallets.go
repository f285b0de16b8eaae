package usecases

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"

	"solana-wallet-backend/internal/entities"
)

const (
	mnemonicEntropyBits = 128

	// currentWalletKey is the settings key holding the active wallet address.
	currentWalletKey = "current_wallet"
)

// WalletStore is the persistence surface the wallet service needs.
type WalletStore interface {
	TrackWallet(ctx context.Context, address, label string) (int, error)
	ListWallets(ctx context.Context) ([]entities.Wallet, error)
	FindWalletByID(ctx context.Context, id int) (*entities.Wallet, error)
	DeleteWallet(ctx context.Context, id int) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// WalletService manages wallet key material. Keys are derived on demand and
// handed back to the caller exactly once; only public addresses and labels
// reach the store.
type WalletService struct {
	logger *slog.Logger
	store  WalletStore
}

func NewWalletService(logger *slog.Logger, store WalletStore) *WalletService {
	return &WalletService{
		logger: logger,
		store:  store,
	}
}

// GenerateWallet creates a fresh mnemonic-backed wallet and starts tracking
// its address.
func (ws *WalletService) GenerateWallet(ctx context.Context, label string) (*entities.WalletSecrets, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate wallet entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to build mnemonic: %w", err)
	}

	return ws.ImportMnemonic(ctx, mnemonic, label)
}

// ImportMnemonic derives a keypair from a BIP-39 mnemonic and starts
// tracking the resulting address.
func (ws *WalletService) ImportMnemonic(ctx context.Context, mnemonic, label string) (*entities.WalletSecrets, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic phrase")
	}

	seed := bip39.NewSeed(mnemonic, "")
	key := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	privateKey := solana.PrivateKey(key)
	address := privateKey.PublicKey().String()

	if _, err := ws.store.TrackWallet(ctx, address, label); err != nil {
		return nil, fmt.Errorf("failed to track wallet %s: %w", address, err)
	}

	ws.logger.InfoContext(ctx, "Wallet imported from mnemonic", "address", address)

	return &entities.WalletSecrets{
		Address:    address,
		PrivateKey: base58.Encode(key),
		Mnemonic:   mnemonic,
	}, nil
}

// ImportPrivateKey accepts a base58-encoded key, either a full 64-byte
// ed25519 private key (the common wallet-export format) or a bare 32-byte
// seed, and starts tracking the resulting address.
func (ws *WalletService) ImportPrivateKey(ctx context.Context, encodedKey, label string) (*entities.WalletSecrets, error) {
	raw, err := base58.Decode(strings.TrimSpace(encodedKey))
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	var key ed25519.PrivateKey
	switch len(raw) {
	case ed25519.PrivateKeySize:
		key = ed25519.PrivateKey(raw)
	case ed25519.SeedSize:
		key = ed25519.NewKeyFromSeed(raw)
	default:
		return nil, fmt.Errorf("unexpected private key length %d", len(raw))
	}

	privateKey := solana.PrivateKey(key)
	address := privateKey.PublicKey().String()

	if _, err = ws.store.TrackWallet(ctx, address, label); err != nil {
		return nil, fmt.Errorf("failed to track wallet %s: %w", address, err)
	}

	ws.logger.InfoContext(ctx, "Wallet imported from private key", "address", address)

	return &entities.WalletSecrets{
		Address:    address,
		PrivateKey: base58.Encode(key),
	}, nil
}

// ListWallets returns all tracked wallets.
func (ws *WalletService) ListWallets(ctx context.Context) ([]entities.Wallet, error) {
	return ws.store.ListWallets(ctx)
}

// CurrentWallet returns the active wallet address, or an empty string when
// none has been selected yet.
func (ws *WalletService) CurrentWallet(ctx context.Context) (string, error) {
	return ws.store.GetSetting(ctx, currentWalletKey)
}

// SetCurrentWallet marks the given address as the active wallet.
func (ws *WalletService) SetCurrentWallet(ctx context.Context, address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid wallet address %q: %w", address, err)
	}
	return ws.store.SetSetting(ctx, currentWalletKey, address)
}

// DeleteWallet removes a tracked wallet. If it was the active wallet, the
// selection is cleared as well.
func (ws *WalletService) DeleteWallet(ctx context.Context, walletID int) error {
	wallet, err := ws.store.FindWalletByID(ctx, walletID)
	if err != nil {
		return err
	}
	if wallet == nil {
		return fmt.Errorf("wallet %d not found", walletID)
	}

	current, err := ws.store.GetSetting(ctx, currentWalletKey)
	if err != nil {
		return err
	}
	if current == wallet.Address {
		if err = ws.store.SetSetting(ctx, currentWalletKey, ""); err != nil {
			return err
		}
	}

	if err = ws.store.DeleteWallet(ctx, walletID); err != nil {
		return fmt.Errorf("failed to delete wallet %d: %w", walletID, err)
	}

	ws.logger.InfoContext(ctx, "Wallet removed from tracking", "address", wallet.Address)
	return nil
}
