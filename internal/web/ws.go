package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"corkboard-cli/internal/model"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for localhost use.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// wsHub tracks live websocket connections per workspace and fans change
// frames out to them. Frames carry only change metadata; clients refetch
// the full item list on receipt.
type wsHub struct {
	mu    sync.Mutex
	conns map[string]map[*wsConn]struct{}
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSHub() *wsHub {
	return &wsHub{conns: make(map[string]map[*wsConn]struct{})}
}

func (h *wsHub) add(workspaceID string, c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[workspaceID]
	if !ok {
		set = make(map[*wsConn]struct{})
		h.conns[workspaceID] = set
	}
	set[c] = struct{}{}
}

func (h *wsHub) remove(workspaceID string, c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[workspaceID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, workspaceID)
	}
}

func (h *wsHub) broadcast(c model.Change) {
	// Subscribers include guests who must not learn private-zone item ids.
	// Frames are reconcile triggers, so the id is not needed on the wire.
	c.ItemID = ""
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	h.mu.Lock()
	targets := make([]*wsConn, 0, len(h.conns[c.WorkspaceID]))
	for wc := range h.conns[c.WorkspaceID] {
		targets = append(targets, wc)
	}
	h.mu.Unlock()
	for _, wc := range targets {
		wc.write(data)
	}
}

func (c *wsConn) write(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_ = c.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	workspaceID := strings.TrimSpace(r.URL.Query().Get("workspace"))
	if workspaceID == "" {
		http.Error(w, "workspace query parameter required", http.StatusBadRequest)
		return
	}
	if _, err := s.db.Workspace(r.Context(), workspaceID); err != nil {
		writeStoreError(w, err)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}
	wc := &wsConn{conn: conn}
	s.hub.add(workspaceID, wc)
	defer func() {
		s.hub.remove(workspaceID, wc)
		_ = conn.Close()
	}()

	// Inbound traffic is discarded; the read loop only notices closure.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
