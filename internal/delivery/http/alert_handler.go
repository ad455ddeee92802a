package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/avery69gael/mi-proyecto-trading/internal/domain"
	"github.com/avery69gael/mi-proyecto-trading/internal/usecase"
)

// AlertHandler handles alert CRUD endpoints.
type AlertHandler struct {
	uc *usecase.AlertUsecase
}

func NewAlertHandler(uc *usecase.AlertUsecase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

type CreateAlertRequest struct {
	CoinID    string  `json:"coin_id"`
	Kind      string  `json:"kind"`
	Threshold float64 `json:"threshold"`
	Email     string  `json:"email"`
}

// HandleAlerts serves POST (create) and GET (list) on /api/alerts.
func (h *AlertHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AlertHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	alert, err := h.uc.Create(r.Context(), req.CoinID, domain.AlertKind(req.Kind), req.Threshold, req.Email)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(alert)
}

func (h *AlertHandler) list(w http.ResponseWriter, r *http.Request) {
	coinID := r.URL.Query().Get("coin_id")
	if coinID == "" {
		http.Error(w, "coin_id is required", http.StatusBadRequest)
		return
	}

	alerts, err := h.uc.List(r.Context(), coinID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

// HandleDeleteAlert serves DELETE /api/alerts/{id}.
func (h *AlertHandler) HandleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Alert id is required", http.StatusBadRequest)
		return
	}

	if err := h.uc.Delete(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
