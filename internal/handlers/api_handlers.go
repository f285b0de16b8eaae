package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"solana-wallet-backend/internal/core/ports"
	"solana-wallet-backend/internal/entities"
	"solana-wallet-backend/internal/usecases"
)

var _ WalletService = (*usecases.WalletService)(nil)
var _ TokenService = (*usecases.TokenService)(nil)

type HTTPHandler struct {
	logger        *slog.Logger
	walletService WalletService
	tokenService  TokenService
	portfolios    PortfolioStore
	ledger        ports.LedgerRPC
}

func NewHTTPHandler(
	logger *slog.Logger,
	walletService WalletService,
	tokenService TokenService,
	portfolios PortfolioStore,
	ledger ports.LedgerRPC,
) *HTTPHandler {
	return &HTTPHandler{
		logger:        logger,
		walletService: walletService,
		tokenService:  tokenService,
		portfolios:    portfolios,
		ledger:        ledger,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	// API endpoints.

	// Wallets
	router.HandleFunc("/wallet/generate", h.GenerateWallet).Methods("POST")
	router.HandleFunc("/wallet/import/mnemonic", h.ImportMnemonic).Methods("POST")
	router.HandleFunc("/wallet/import/key", h.ImportPrivateKey).Methods("POST")
	router.HandleFunc("/wallets", h.ListWallets).Methods("GET")
	router.HandleFunc("/wallet/current", h.GetCurrentWallet).Methods("GET")
	router.HandleFunc("/wallet/current", h.SetCurrentWallet).Methods("POST")
	router.HandleFunc("/wallet/{walletId:[0-9]+}", h.DeleteWallet).Methods("DELETE")

	// Tokens
	router.HandleFunc("/wallet/tokens", h.GetWalletTokens).Methods("GET")
	router.HandleFunc("/wallet/portfolio", h.GetPortfolio).Methods("GET")

	// Static files - register last to avoid intercepting other routes.
	fs := http.FileServer(http.Dir("./static"))
	router.PathPrefix("/").Handler(http.StripPrefix("/", fs))
}

type importRequest struct {
	Mnemonic   string `json:"mnemonic"`
	PrivateKey string `json:"private_key"`
	Label      string `json:"label"`
}

// GenerateWallet creates a fresh wallet and returns its one-time secrets.
func (h *HTTPHandler) GenerateWallet(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")

	secrets, err := h.walletService.GenerateWallet(r.Context(), label)
	if err != nil {
		h.logger.Error("Error generating wallet", "error", err)
		http.Error(w, fmt.Sprintf("Failed to generate wallet: %v", err), http.StatusInternalServerError)
		return
	}

	h.logger.Info("Generated new wallet", "address", secrets.Address)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(secrets)
}

// ImportMnemonic imports a wallet from a BIP-39 mnemonic phrase.
func (h *HTTPHandler) ImportMnemonic(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Mnemonic == "" {
		http.Error(w, "Missing required field: mnemonic", http.StatusBadRequest)
		return
	}

	secrets, err := h.walletService.ImportMnemonic(r.Context(), req.Mnemonic, req.Label)
	if err != nil {
		h.logger.Error("Error importing mnemonic", "error", err)
		http.Error(w, fmt.Sprintf("Failed to import wallet: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(secrets)
}

// ImportPrivateKey imports a wallet from a base58-encoded private key.
func (h *HTTPHandler) ImportPrivateKey(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PrivateKey == "" {
		http.Error(w, "Missing required field: private_key", http.StatusBadRequest)
		return
	}

	secrets, err := h.walletService.ImportPrivateKey(r.Context(), req.PrivateKey, req.Label)
	if err != nil {
		h.logger.Error("Error importing private key", "error", err)
		http.Error(w, fmt.Sprintf("Failed to import wallet: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(secrets)
}

// ListWallets returns all tracked wallets.
func (h *HTTPHandler) ListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.walletService.ListWallets(r.Context())
	if err != nil {
		h.logger.Error("Error listing wallets", "error", err)
		http.Error(w, fmt.Sprintf("Failed to retrieve wallets: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(wallets)
}

// GetCurrentWallet returns the active wallet address, empty when unset.
func (h *HTTPHandler) GetCurrentWallet(w http.ResponseWriter, r *http.Request) {
	address, err := h.walletService.CurrentWallet(r.Context())
	if err != nil {
		h.logger.Error("Error getting current wallet", "error", err)
		http.Error(w, fmt.Sprintf("Failed to get current wallet: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"address": address})
}

// SetCurrentWallet marks the given address as the active wallet.
func (h *HTTPHandler) SetCurrentWallet(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "Missing required parameter: address", http.StatusBadRequest)
		return
	}

	if err := h.walletService.SetCurrentWallet(r.Context(), address); err != nil {
		h.logger.Error("Error setting current wallet", "error", err, "address", address)
		http.Error(w, fmt.Sprintf("Failed to set current wallet: %v", err), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success", "address": address})
}

// DeleteWallet removes a tracked wallet.
func (h *HTTPHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	walletIDStr, ok := vars["walletId"]
	if !ok {
		http.Error(w, "Wallet ID is required", http.StatusBadRequest)
		return
	}

	walletID, err := strconv.Atoi(walletIDStr)
	if err != nil {
		h.logger.Error("Invalid wallet ID format", "error", err, "wallet_id", walletIDStr)
		http.Error(w, "Invalid wallet ID format", http.StatusBadRequest)
		return
	}

	if err = h.walletService.DeleteWallet(r.Context(), walletID); err != nil {
		h.logger.Error("Failed to delete wallet", "error", err, "wallet_id", walletID)
		http.Error(w, fmt.Sprintf("Failed to delete wallet: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Wallet deleted successfully"})
}

// GetWalletTokens aggregates the live priced token list for an address and
// refreshes the cached snapshot on the way out.
func (h *HTTPHandler) GetWalletTokens(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "Missing required parameter: address", http.StatusBadRequest)
		return
	}

	tokens, err := h.tokenService.GetTokensForWallet(r.Context(), address, h.ledger)
	if err != nil {
		// The aggregator is total: it already logged the failure and tokens
		// is an empty, encodable list. Surface it as such to keep the UI
		// responsive.
		h.logger.Warn("Token aggregation degraded", "address", address, "error", err)
	} else if len(tokens) > 0 {
		snapshot := entities.PortfolioSnapshot{
			Address:     address,
			Tokens:      tokens,
			RefreshedAt: time.Now(),
		}
		if saveErr := h.portfolios.SaveSnapshot(r.Context(), snapshot); saveErr != nil {
			h.logger.Error("Failed to save portfolio snapshot", "address", address, "error", saveErr)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(tokens); err != nil {
		h.logger.Error("Error encoding tokens", "error", err)
	}
}

// GetPortfolio returns the cached snapshot for an address without touching
// the upstream APIs.
func (h *HTTPHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		http.Error(w, "Missing required parameter: address", http.StatusBadRequest)
		return
	}

	snapshot, err := h.portfolios.GetSnapshot(r.Context(), address)
	if err != nil {
		h.logger.Error("Error getting portfolio snapshot", "error", err, "address", address)
		http.Error(w, fmt.Sprintf("Failed to retrieve portfolio: %v", err), http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		http.Error(w, "No portfolio snapshot for address", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(snapshot); err != nil {
		h.logger.Error("Error encoding portfolio snapshot", "error", err)
	}
}
