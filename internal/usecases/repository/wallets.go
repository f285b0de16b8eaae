package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"solana-wallet-backend/internal/entities"
	"solana-wallet-backend/pkg/database"
)

// WalletsRepository persists tracked wallet addresses and service settings.
type WalletsRepository struct {
	logger     *slog.Logger
	db         tx.DBGetter
	transactor *tx.Transactor
	builder    sq.StatementBuilderType
}

// NewWalletsRepository creates a new wallet repository.
func NewWalletsRepository(logger *slog.Logger, pg *database.Postgres) *WalletsRepository {
	return &WalletsRepository{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// TrackWallet adds a wallet address to the tracking list. Tracking an
// already-known address is a no-op that returns the existing id, so imports
// are idempotent. The check and insert run in one transaction.
func (r *WalletsRepository) TrackWallet(ctx context.Context, address, label string) (int, error) {
	var id int

	err := r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		err := r.db(ctx).QueryRow(ctx, "SELECT id FROM wallets WHERE address = $1", address).Scan(&id)
		if err == nil {
			r.logger.Debug("Wallet already tracked", "address", address)
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check if wallet exists: %w", err)
		}

		err = r.db(ctx).QueryRow(ctx,
			"INSERT INTO wallets (address, label, created_at) VALUES ($1, $2, $3) RETURNING id",
			address, label, time.Now()).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert wallet: %w", err)
		}

		r.logger.Info("Wallet added to tracking", "address", address, "id", id)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// ListWallets retrieves all tracked wallets.
func (r *WalletsRepository) ListWallets(ctx context.Context) ([]entities.Wallet, error) {
	query, args, err := r.builder.
		Select("id", "address", "label", "created_at").
		From("wallets").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build wallets query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	wallets, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.Wallet])
	if err != nil {
		r.logger.Error("failed to collect wallets rows", "error", err)
		return nil, err
	}

	return wallets, nil
}

// FindWalletByID retrieves a wallet by its id, or nil when it is unknown.
func (r *WalletsRepository) FindWalletByID(ctx context.Context, id int) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := r.db(ctx).QueryRow(ctx,
		"SELECT id, address, label, created_at FROM wallets WHERE id = $1", id).Scan(
		&wallet.ID,
		&wallet.Address,
		&wallet.Label,
		&wallet.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet by id: %w", err)
	}

	return &wallet, nil
}

// DeleteWallet removes a tracked wallet and its cached snapshots.
func (r *WalletsRepository) DeleteWallet(ctx context.Context, id int) error {
	return r.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := r.db(ctx).Exec(ctx,
			"DELETE FROM portfolio_snapshots WHERE address = (SELECT address FROM wallets WHERE id = $1)", id)
		if err != nil {
			return fmt.Errorf("failed to delete wallet snapshots: %w", err)
		}

		res, err := r.db(ctx).Exec(ctx, "DELETE FROM wallets WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("failed to delete wallet: %w", err)
		}
		if res.RowsAffected() == 0 {
			return fmt.Errorf("wallet %d not found", id)
		}

		return nil
	})
}

// GetSetting returns the value for a settings key, or an empty string when
// the key is unset.
func (r *WalletsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db(ctx).QueryRow(ctx, "SELECT value FROM settings WHERE key = $1", key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}

	return value, nil
}

// SetSetting upserts a settings key.
func (r *WalletsRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
