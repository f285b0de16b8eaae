package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"
)

type WebSocketHandler struct {
	logger           *slog.Logger
	portfolios       PortfolioStore
	websocketManager *Manager
}

func NewWebSocketHandler(
	logger *slog.Logger,
	portfolios PortfolioStore,
	websocketManager *Manager,
) *WebSocketHandler {
	return &WebSocketHandler{
		logger:           logger,
		portfolios:       portfolios,
		websocketManager: websocketManager,
	}
}

func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/portfolio/{address}", h.HandleConnection)
}

// HandleConnection subscribes the client to portfolio updates for one
// wallet address. The cached snapshot, when present, is pushed immediately
// so the client has data before the next refresh cycle.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	address := vars["address"]

	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		http.Error(w, "Invalid wallet address", http.StatusBadRequest)
		return
	}

	conn, err := h.websocketManager.Upgrade(w, r)
	if err != nil {
		h.logger.Error("Error upgrading connection", "error", err)
		return
	}

	h.logger.Info("New WebSocket connection", "address", address)

	clientID := h.websocketManager.Subscribe(address, conn)

	// The push goes through the manager so it shares the write lock with
	// concurrent broadcasts; the websocket allows only one writer at a time.
	if snapshot, snapErr := h.portfolios.GetSnapshot(r.Context(), address); snapErr == nil && snapshot != nil {
		if writeErr := h.websocketManager.Send(address, clientID, snapshot); writeErr != nil {
			h.logger.Warn("Failed to push cached snapshot", "address", address, "error", writeErr)
		}
	}

	// Keep connection open and handle disconnection.
	for {
		_, _, readErr := conn.ReadMessage()
		if readErr != nil {
			h.logger.Info("WebSocket connection closed", "address", address, "error", readErr)
			h.websocketManager.Unsubscribe(address, clientID)
			conn.Close()
			break
		}
	}
}
