package handlers

import (
	"log"
	"net/http"

	"github.com/Dosada05/league-system/schedule"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub *schedule.Hub
}

func NewWebSocketHandler(hub *schedule.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs обрабатывает WebSocket запросы для конкретной лиги.
// Клиент подключается к /ws/leagues/{leagueID} и получает события
// CALENDAR_UPDATED / MATCH_UPDATED.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	leagueIDStr := chi.URLParam(r, "leagueID")
	if leagueIDStr == "" {
		http.Error(w, "Missing leagueID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		log.Printf("Failed to upgrade connection for league %s: %v", leagueIDStr, err)
		return
	}

	// ID комнаты соответствует ID лиги.
	roomID := "league_" + leagueIDStr

	client := &schedule.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	client.Hub.Register <- client

	// Горутины чтения и записи живут, пока клиент не отключится.
	go client.WritePump()
	go client.ReadPump()
}
