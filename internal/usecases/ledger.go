package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go/rpc"

	"solana-wallet-backend/config"
	"solana-wallet-backend/internal/shared"
)

// GetSolanaHTTPEndpoints returns the RPC endpoints to try, in order. An
// explicitly configured URL always wins; otherwise the network is picked
// by the blockchain debug mode flag.
func GetSolanaHTTPEndpoints(cfg *config.Config) []string {
	if cfg != nil && cfg.Solana.RPCURL != "" {
		return []string{cfg.Solana.RPCURL}
	}
	if shared.IsBlockchainDebugMode() {
		return []string{
			rpc.DevNet_RPC,
		}
	}
	return []string{
		rpc.MainNetBeta_RPC,
	}
}

// GetSolanaClient connects to the first healthy RPC endpoint, verifying the
// connection with a version call before handing the client out.
func GetSolanaClient(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*rpc.Client, error) {
	var lastErr error

	for _, endpoint := range GetSolanaHTTPEndpoints(cfg) {
		logger.InfoContext(ctx, "Trying to connect to Solana HTTP endpoint", "endpoint", endpoint)

		client := rpc.New(endpoint)
		if _, err := client.GetVersion(ctx); err != nil {
			lastErr = err
			logger.WarnContext(ctx, "Failed to connect to Solana HTTP endpoint", "endpoint", endpoint, "error", err)
			continue
		}

		logger.InfoContext(ctx, "Successfully connected to Solana HTTP endpoint", "endpoint", endpoint)
		return client, nil
	}

	return nil, fmt.Errorf("failed to connect to any Solana HTTP endpoint: %w", lastErr)
}
