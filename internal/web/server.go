// Package web is the corkboard sync server: a JSON API over the item
// store plus a websocket change feed. Multiple TUIs attached to the same
// workspace stay in sync by reconciling on every broadcast change.
package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"corkboard-cli/internal/access"
	"corkboard-cli/internal/feed"
	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
	"corkboard-cli/internal/zone"
)

// actorHeader carries the caller identity. Auth proper (sessions, magic
// links) lives outside this subsystem; the server trusts the header the
// way the CLI trusts --actor.
const actorHeader = "X-Corkboard-Actor"

type ServerConfig struct {
	Addr string
}

type Server struct {
	cfg ServerConfig
	db  *store.DB
	bc  *feed.Broadcaster
	hub *wsHub
}

func NewServer(cfg ServerConfig, db *store.DB) *Server {
	s := &Server{
		cfg: cfg,
		db:  db,
		bc:  feed.NewBroadcaster(),
		hub: newWSHub(),
	}
	// Every committed store mutation fans out to in-process subscribers
	// and websocket clients.
	db.SetChangeHook(func(c model.Change) {
		s.bc.Publish(c)
		s.hub.broadcast(c)
	})
	return s
}

// Feed exposes the in-process change broadcaster, for a TUI running in
// the same process as the server.
func (s *Server) Feed() *feed.Broadcaster { return s.bc }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/workspaces/{workspaceId}", s.handleWorkspace)
	mux.HandleFunc("GET /api/workspaces/{workspaceId}/items", s.handleListItems)
	mux.HandleFunc("POST /api/workspaces/{workspaceId}/folders", s.handleCreateFolder)
	mux.HandleFunc("POST /api/items/{itemId}/position", s.handleUpdatePosition)
	mux.HandleFunc("POST /api/items/{itemId}/parent", s.handleMoveToFolder)
	mux.HandleFunc("POST /api/items/{itemId}/rename", s.handleRename)
	mux.HandleFunc("DELETE /api/items/{itemId}", s.handleDelete)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) ListenAndServe() error {
	addr := s.cfg.Addr
	if strings.TrimSpace(addr) == "" {
		addr = "127.0.0.1:7464"
	}
	log.Printf("corkboard sync server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func actorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(actorHeader))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	var invalid store.InvalidInputError
	switch {
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.db.Workspace(r.Context(), r.PathValue("workspaceId"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// handleListItems returns the caller's view of the workspace: guests get
// the private zone filtered out server-side, before anything crosses the
// wire.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wsID := r.PathValue("workspaceId")
	ws, err := s.db.Workspace(ctx, wsID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	grant, err := s.db.ResolveAccess(ctx, actorID(r), wsID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	items, err := s.db.ListItemsByWorkspace(ctx, wsID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	items = access.VisibleItems(items, grant, ws)
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "grant": grant})
}

type createFolderReq struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	wsID := r.PathValue("workspaceId")
	caller := actorID(r)
	grant, err := s.db.ResolveAccess(ctx, caller, wsID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !access.Authorize(access.ActionCreateFolder, grant, true) {
		writeError(w, http.StatusForbidden, "createFolder not permitted for role "+string(grant.Role))
		return
	}
	var req createFolderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ws, err := s.db.Workspace(ctx, wsID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !access.CanPlace(grant, req.Y, req.Y, ws) {
		writeError(w, http.StatusForbidden, "guests cannot place items in the private zone")
		return
	}
	it, err := s.db.CreateFolder(ctx, wsID, req.Name, req.X, req.Y, caller)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// authorizeItemMutation loads the item and checks the role matrix for it.
func (s *Server) authorizeItemMutation(w http.ResponseWriter, r *http.Request, action access.Action) (*model.Item, *model.Workspace, model.AccessGrant, bool) {
	var none model.AccessGrant
	ctx := r.Context()
	it, err := s.db.Item(ctx, r.PathValue("itemId"))
	if err != nil {
		writeStoreError(w, err)
		return nil, nil, none, false
	}
	ws, err := s.db.Workspace(ctx, it.WorkspaceID)
	if err != nil {
		writeStoreError(w, err)
		return nil, nil, none, false
	}
	caller := actorID(r)
	grant, err := s.db.ResolveAccess(ctx, caller, it.WorkspaceID)
	if err != nil {
		writeStoreError(w, err)
		return nil, nil, none, false
	}
	if grant.IsGuest && zone.OfItem(it, ws) == model.ZonePrivate {
		// Guests never see private items; treat targeted guesses as absent.
		writeError(w, http.StatusNotFound, "item not found: "+it.ID)
		return nil, nil, none, false
	}
	if !access.CanMutate(action, grant, it, caller) {
		writeError(w, http.StatusForbidden, string(action)+" not permitted for role "+string(grant.Role))
		return nil, nil, none, false
	}
	return it, ws, grant, true
}

type positionReq struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	it, ws, grant, ok := s.authorizeItemMutation(w, r, access.ActionMoveItem)
	if !ok {
		return
	}
	var req positionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !access.CanPlace(grant, it.Position.Y, req.Y, ws) {
		writeError(w, http.StatusForbidden, "guests cannot move items across the zone boundary")
		return
	}
	if err := s.db.UpdateItemPosition(r.Context(), it.ID, req.X, req.Y); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type parentReq struct {
	FolderID *string `json:"folderId"`
}

func (s *Server) handleMoveToFolder(w http.ResponseWriter, r *http.Request) {
	it, _, _, ok := s.authorizeItemMutation(w, r, access.ActionMoveItem)
	if !ok {
		return
	}
	var req parentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.db.MoveFileToFolder(r.Context(), it.ID, req.FolderID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type renameReq struct {
	Name string `json:"name"`
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	it, _, _, ok := s.authorizeItemMutation(w, r, access.ActionRenameItem)
	if !ok {
		return
	}
	var req renameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.db.RenameItem(r.Context(), it.ID, req.Name); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	it, _, _, ok := s.authorizeItemMutation(w, r, access.ActionDeleteItem)
	if !ok {
		return
	}
	if err := s.db.DeleteItem(r.Context(), it.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
