// Package feed pushes new ledger entries to admin dashboard websocket
// clients, giving the back office a live view of points moving.
package feed

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"loyalty-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware upstream
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan *models.LedgerEntry
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan *models.LedgerEntry, 256),
	}
	go h.run()
	return h
}

// Publish queues a ledger entry for broadcast. Non-blocking: when the
// buffer is full the entry is dropped, the feed is best-effort display
// and never back-pressures a checkout.
func (h *Hub) Publish(entry *models.LedgerEntry) {
	if h == nil || entry == nil {
		return
	}
	select {
	case h.broadcast <- entry:
	default:
	}
}

func (h *Hub) run() {
	for entry := range h.broadcast {
		h.clientsMux.Lock()
		for conn := range h.clients {
			if err := conn.WriteJSON(entry); err != nil {
				conn.Close()
				delete(h.clients, conn)
			}
		}
		h.clientsMux.Unlock()
	}
}

// ServeWS upgrades the request and registers the client
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithField("component", "feed").Warnf("websocket upgrade failed: %v", err)
		return
	}

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	// Drain (and discard) client messages to detect disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.clientsMux.Lock()
				delete(h.clients, conn)
				h.clientsMux.Unlock()
				conn.Close()
				return
			}
		}
	}()
}
