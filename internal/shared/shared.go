package shared

import (
	"os"
	"strings"
)

const EnvBlockchainDebugMode = "BLOCKCHAIN_DEBUG_MODE"

// IsBlockchainDebugMode reports whether the service should talk to devnet
// instead of mainnet.
func IsBlockchainDebugMode() bool {
	mode := strings.ToLower(os.Getenv(EnvBlockchainDebugMode))
	return mode == "true" || mode == "1"
}
