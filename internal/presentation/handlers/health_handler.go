package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartmoney/wallet-tracker/internal/domain/repositories"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db         HealthChecker
	walletRepo repositories.WalletRepository
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, walletRepo repositories.WalletRepository) *HealthHandler {
	return &HealthHandler{
		db:         db,
		walletRepo: walletRepo,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	Database     string `json:"database"`
	TotalWallets int64  `json:"total_wallets"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "connected",
	}

	status := http.StatusOK
	if err := h.db.HealthCheck(ctx); err != nil {
		response.Status = "unhealthy"
		response.Database = "disconnected"
		status = http.StatusServiceUnavailable
	} else if stats, err := h.walletRepo.Stats(ctx); err != nil {
		response.Status = "unhealthy"
		response.Database = "disconnected"
		status = http.StatusServiceUnavailable
	} else {
		response.TotalWallets = stats.TotalWallets
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.HealthCheck(ctx); err != nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
