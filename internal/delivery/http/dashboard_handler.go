package http

import (
	"encoding/json"
	"net/http"

	"github.com/avery69gael/mi-proyecto-trading/internal/usecase"
)

// DashboardHandler exposes the refresh pipeline state over HTTP.
type DashboardHandler struct {
	refresh *usecase.RefreshUsecase
}

func NewDashboardHandler(refresh *usecase.RefreshUsecase) *DashboardHandler {
	return &DashboardHandler{refresh: refresh}
}

// HandleDashboard serves GET /api/dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.refresh.State())
}

// HandleSignals serves GET /api/signals.
func (h *DashboardHandler) HandleSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.refresh.SignalHistory())
}

type SelectCoinRequest struct {
	CoinID string `json:"coin_id"`
}

// HandleSelectCoin serves POST /api/coin.
func (h *DashboardHandler) HandleSelectCoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SelectCoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CoinID == "" {
		http.Error(w, "coin_id is required", http.StatusBadRequest)
		return
	}

	h.refresh.SelectCoin(req.CoinID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.refresh.State())
}

// HandleRefresh serves POST /api/refresh for a manual retry.
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.refresh.Refresh()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.refresh.State())
}
