package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// StatusError is returned by the HTTP clients when an upstream answers
// with a non-2xx status. It carries the status code so retry logic can
// classify the failure instead of inspecting message text.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.Status)
}

// RateLimited reports whether the status marks a throttled request.
func (e *StatusError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// rateLimited is implemented by errors that know they came from a 429.
type rateLimited interface {
	RateLimited() bool
}

// IsRateLimited classifies an error as an upstream rate-limit rejection.
// It understands our own StatusError, solana-go JSON-RPC errors with code
// 429, and falls back to message inspection for wrapped transport errors.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var rl rateLimited
	if errors.As(err, &rl) {
		return rl.RateLimited()
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr.Code == http.StatusTooManyRequests
	}

	return strings.Contains(err.Error(), "429")
}
