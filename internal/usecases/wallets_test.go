package usecases

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"log/slog"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"solana-wallet-backend/internal/entities"
)

type memoryStore struct {
	wallets  []entities.Wallet
	settings map[string]string
	nextID   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{settings: make(map[string]string), nextID: 1}
}

func (s *memoryStore) TrackWallet(_ context.Context, address, label string) (int, error) {
	for _, w := range s.wallets {
		if w.Address == address {
			return w.ID, nil
		}
	}
	id := s.nextID
	s.nextID++
	s.wallets = append(s.wallets, entities.Wallet{ID: id, Address: address, Label: label})
	return id, nil
}

func (s *memoryStore) ListWallets(_ context.Context) ([]entities.Wallet, error) {
	return s.wallets, nil
}

func (s *memoryStore) FindWalletByID(_ context.Context, id int) (*entities.Wallet, error) {
	for _, w := range s.wallets {
		if w.ID == id {
			wallet := w
			return &wallet, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) DeleteWallet(_ context.Context, id int) error {
	for i, w := range s.wallets {
		if w.ID == id {
			s.wallets = append(s.wallets[:i], s.wallets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memoryStore) GetSetting(_ context.Context, key string) (string, error) {
	return s.settings[key], nil
}

func (s *memoryStore) SetSetting(_ context.Context, key, value string) error {
	s.settings[key] = value
	return nil
}

func TestGenerateWallet(t *testing.T) {
	store := newMemoryStore()
	service := NewWalletService(slog.Default(), store)

	secrets, err := service.GenerateWallet(context.Background(), "main")
	require.NoError(t, err)

	require.Len(t, strings.Fields(secrets.Mnemonic), 12)
	require.NotEmpty(t, secrets.PrivateKey)

	_, err = solana.PublicKeyFromBase58(secrets.Address)
	require.NoError(t, err)

	wallets, err := service.ListWallets(context.Background())
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	require.Equal(t, secrets.Address, wallets[0].Address)
	require.Equal(t, "main", wallets[0].Label)
}

func TestImportMnemonicIsDeterministic(t *testing.T) {
	service := NewWalletService(slog.Default(), newMemoryStore())

	secrets, err := service.GenerateWallet(context.Background(), "")
	require.NoError(t, err)

	again, err := service.ImportMnemonic(context.Background(), secrets.Mnemonic, "")
	require.NoError(t, err)
	require.Equal(t, secrets.Address, again.Address)
	require.Equal(t, secrets.PrivateKey, again.PrivateKey)
}

func TestImportMnemonicRejectsGarbage(t *testing.T) {
	service := NewWalletService(slog.Default(), newMemoryStore())

	_, err := service.ImportMnemonic(context.Background(), "definitely not a valid phrase", "")
	require.Error(t, err)
}

func TestImportPrivateKeyRoundTrip(t *testing.T) {
	service := NewWalletService(slog.Default(), newMemoryStore())

	secrets, err := service.GenerateWallet(context.Background(), "")
	require.NoError(t, err)

	imported, err := service.ImportPrivateKey(context.Background(), secrets.PrivateKey, "restored")
	require.NoError(t, err)
	require.Equal(t, secrets.Address, imported.Address)
}

func TestImportPrivateKeyFromSeed(t *testing.T) {
	service := NewWalletService(slog.Default(), newMemoryStore())

	seed := make([]byte, ed25519.SeedSize)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	key := ed25519.NewKeyFromSeed(seed)
	wantAddress := solana.PrivateKey(key).PublicKey().String()

	imported, err := service.ImportPrivateKey(context.Background(), base58.Encode(seed), "")
	require.NoError(t, err)
	require.Equal(t, wantAddress, imported.Address)
}

func TestImportPrivateKeyRejectsBadLength(t *testing.T) {
	service := NewWalletService(slog.Default(), newMemoryStore())

	_, err := service.ImportPrivateKey(context.Background(), base58.Encode([]byte("short")), "")
	require.Error(t, err)
}

func TestCurrentWalletLifecycle(t *testing.T) {
	store := newMemoryStore()
	service := NewWalletService(slog.Default(), store)

	ctx := context.Background()

	current, err := service.CurrentWallet(ctx)
	require.NoError(t, err)
	require.Empty(t, current)

	secrets, err := service.GenerateWallet(ctx, "")
	require.NoError(t, err)

	require.NoError(t, service.SetCurrentWallet(ctx, secrets.Address))

	current, err = service.CurrentWallet(ctx)
	require.NoError(t, err)
	require.Equal(t, secrets.Address, current)

	require.Error(t, service.SetCurrentWallet(ctx, "not-an-address"))
}

func TestDeleteWalletClearsCurrentSelection(t *testing.T) {
	store := newMemoryStore()
	service := NewWalletService(slog.Default(), store)

	ctx := context.Background()

	secrets, err := service.GenerateWallet(ctx, "")
	require.NoError(t, err)

	wallets, err := service.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	require.NoError(t, service.SetCurrentWallet(ctx, secrets.Address))
	require.NoError(t, service.DeleteWallet(ctx, wallets[0].ID))

	current, err := service.CurrentWallet(ctx)
	require.NoError(t, err)
	require.Empty(t, current)

	require.Error(t, service.DeleteWallet(ctx, wallets[0].ID))
}
