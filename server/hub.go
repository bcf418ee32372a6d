package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tiggercwh/go-dealornodeal/gameModel"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Watchers only send control frames.
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans game snapshots out to the websocket watchers of each game.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[*watcher]struct{})}
}

func (h *Hub) subscribe(gameID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[gameID] == nil {
		h.watchers[gameID] = make(map[*watcher]struct{})
	}
	h.watchers[gameID][w] = struct{}{}
}

func (h *Hub) unsubscribe(gameID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(gameID, w)
}

// drop must be called with h.mu held.
func (h *Hub) drop(gameID string, w *watcher) {
	set, ok := h.watchers[gameID]
	if !ok {
		return
	}
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	close(w.send)
	if len(set) == 0 {
		delete(h.watchers, gameID)
	}
}

// Publish queues state for every watcher of its game. Watchers too slow to
// keep up are disconnected.
func (h *Hub) Publish(gameID string, state gameModel.GameState) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("Failed to serialize game %s for watchers: %v", gameID, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[gameID] {
		select {
		case w.send <- payload:
		default:
			h.drop(gameID, w)
		}
	}
}

func (h *Hub) count(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[gameID])
}

// handleWatch upgrades to a websocket that receives the game's state now and
// after every move.
func (gs *GameServer) handleWatch(w http.ResponseWriter, r *http.Request) {
	s, exists := gs.getGame(mux.Vars(r)["gameID"])
	if !exists {
		writeError(w, http.StatusNotFound, "Game not found", "")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}
	watch := &watcher{conn: conn, send: make(chan []byte, sendBuffer)}

	// Holding the game lock orders the first snapshot before any later move.
	s.mu.Lock()
	if payload, err := json.Marshal(s.state()); err == nil {
		watch.send <- payload
	}
	gs.hub.subscribe(s.id, watch)
	s.mu.Unlock()
	log.Printf("Watcher connected to game %s", s.id)

	go watch.writePump()
	watch.readPump(gs.hub, s.id)
}

func (w *watcher) readPump(h *Hub, gameID string) {
	defer func() {
		h.unsubscribe(gameID, w)
		w.conn.Close()
	}()
	w.conn.SetReadLimit(maxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("watcher error: %v", err)
			}
			return
		}
	}
}

func (w *watcher) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()
	for {
		select {
		case message, ok := <-w.send:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
