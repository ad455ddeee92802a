package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/avery69gael/mi-proyecto-trading/internal/usecase"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// Handler streams dashboard state over a WebSocket. Each connection holds
// one subscription on the refresh pipeline and releases it when the
// client goes away.
type Handler struct {
	refresh *usecase.RefreshUsecase
}

func NewHandler(refresh *usecase.RefreshUsecase) *Handler {
	return &Handler{refresh: refresh}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[ws]", err)
		return
	}
	defer conn.Close()

	log.Println("[ws] client connected")

	updates, release := h.refresh.Subscribe()
	defer release()

	// Drain client frames so close/ping handling works; the stream is
	// one-way otherwise.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current state immediately, then every update.
	if err := conn.WriteJSON(h.refresh.State()); err != nil {
		log.Println("[ws] write error:", err)
		return
	}

	for {
		select {
		case <-done:
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				log.Println("[ws] write error:", err)
				return
			}
		}
	}
}
