package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/smartmoney/wallet-tracker/internal/application/services"
)

// WalletHandler handles HTTP requests for wallet queries
type WalletHandler struct {
	walletService *services.WalletService
	statsService  *services.StatsService
	logger        *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(
	walletService *services.WalletService,
	statsService *services.StatsService,
	logger *zap.Logger,
) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		statsService:  statsService,
		logger:        logger,
	}
}

// RegisterRoutes registers the wallet routes
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets", h.GetWallets)
	r.Get("/wallets/stats", h.GetStats)
	r.Get("/wallets/{address}", h.GetWallet)
}

// GetWallets handles GET /wallets
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var params services.WalletQueryParams

	if v := r.URL.Query().Get("min_winrate"); v != "" {
		minWinrate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "min_winrate must be a number")
			return
		}
		params.MinWinrate = &minWinrate
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		params.Limit = &limit
	}
	params.StartDate = r.URL.Query().Get("start_date")
	params.EndDate = r.URL.Query().Get("end_date")

	response, err := h.walletService.GetWallets(ctx, params)
	if err != nil {
		var inputErr *services.InputError
		if errors.As(err, &inputErr) {
			h.respondError(w, http.StatusBadRequest, inputErr.Reason)
			return
		}
		h.logger.Error("Failed to get wallets", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetStats handles GET /wallets/stats
func (h *WalletHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response, err := h.statsService.GetStats(ctx)
	if err != nil {
		h.logger.Error("Failed to get wallet stats", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetWallet handles GET /wallets/{address}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	response, err := h.walletService.GetWalletByAddress(ctx, address)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "Wallet not found")
			return
		}
		h.logger.Error("Failed to get wallet",
			zap.String("wallet_address", address),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *WalletHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *WalletHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
