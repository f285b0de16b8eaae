package repository

import (
	"context"
	"encoding/json"
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

// PortfolioRepository caches the latest aggregated token list per wallet so
// the UI has something to show while a fresh aggregation is in flight.
type PortfolioRepository struct {
	logger     *slog.Logger
	db         tx.DBGetter
	transactor *tx.Transactor
	builder    sq.StatementBuilderType
}

func NewPortfolioRepository(logger *slog.Logger, pg *database.Postgres) *PortfolioRepository {
	return &PortfolioRepository{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveSnapshot stores the aggregated token list for an address, replacing
// any previous snapshot.
func (r *PortfolioRepository) SaveSnapshot(ctx context.Context, snapshot entities.PortfolioSnapshot) error {
	tokens, err := json.Marshal(snapshot.Tokens)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot tokens: %w", err)
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO portfolio_snapshots (address, tokens, refreshed_at) VALUES ($1, $2, $3)
		 ON CONFLICT (address) DO UPDATE SET tokens = EXCLUDED.tokens, refreshed_at = EXCLUDED.refreshed_at`,
		snapshot.Address, tokens, snapshot.RefreshedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio snapshot: %w", err)
	}

	return nil
}

// GetSnapshot returns the cached snapshot for an address, or nil when no
// aggregation has been stored yet.
func (r *PortfolioRepository) GetSnapshot(ctx context.Context, address string) (*entities.PortfolioSnapshot, error) {
	query, args, err := r.builder.
		Select("tokens", "refreshed_at").
		From("portfolio_snapshots").
		Where(sq.Eq{"address": address}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot query: %w", err)
	}

	var (
		tokens      []byte
		refreshedAt time.Time
	)
	err = r.db(ctx).QueryRow(ctx, query, args...).Scan(&tokens, &refreshedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio snapshot: %w", err)
	}

	snapshot := entities.PortfolioSnapshot{
		Address:     address,
		RefreshedAt: refreshedAt,
	}
	if err = json.Unmarshal(tokens, &snapshot.Tokens); err != nil {
		r.logger.Error("failed to decode snapshot tokens", "address", address, "error", err)
		return nil, fmt.Errorf("failed to decode snapshot tokens: %w", err)
	}

	return &snapshot, nil
}
