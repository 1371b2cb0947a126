package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"corkboard-cli/internal/model"
	"corkboard-cli/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.DB, *model.Workspace) {
	t.Helper()
	s := store.Store{Dir: t.TempDir()}
	db, err := s.Open(context.Background())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ws, err := db.CreateWorkspace(context.Background(), "test board", 1600, 1000, 0.6)
	if err != nil {
		t.Fatalf("create workspace: %v", err)
	}
	srv := NewServer(ServerConfig{}, db)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db, ws
}

func doJSON(t *testing.T, method, url, actor string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestListItemsFiltersPrivateZoneForGuests(t *testing.T) {
	ts, db, ws := newTestServer(t)
	ctx := context.Background()

	if err := db.AddMember(ctx, ws.ID, "user-owner", model.RoleOwner, false); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := db.CreateDocument(ctx, ws.ID, "shared doc", 100, 100, "user-owner"); err != nil {
		t.Fatalf("create shared: %v", err)
	}
	if _, err := db.CreateDocument(ctx, ws.ID, "private doc", 100, 800, "user-owner"); err != nil {
		t.Fatalf("create private: %v", err)
	}

	var listed struct {
		Items []model.Item      `json:"items"`
		Grant model.AccessGrant `json:"grant"`
	}

	// Owner sees both zones.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/workspaces/"+ws.ID+"/items", "user-owner", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner list status = %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode owner list: %v", err)
	}
	if len(listed.Items) != 2 {
		t.Fatalf("owner expected 2 items, got %d", len(listed.Items))
	}

	// An unknown caller resolves to a guest viewer and loses the private item.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/workspaces/"+ws.ID+"/items", "user-stranger", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("guest list status = %d", resp.StatusCode)
	}
	listed.Items = nil
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode guest list: %v", err)
	}
	if len(listed.Items) != 1 || listed.Items[0].Name != "shared doc" {
		t.Fatalf("guest expected only the shared doc, got %+v", listed.Items)
	}
	if !listed.Grant.IsGuest || listed.Grant.Role != model.RoleViewer {
		t.Fatalf("unexpected guest grant: %+v", listed.Grant)
	}
}

func TestCreateFolderRequiresEditPermission(t *testing.T) {
	ts, db, ws := newTestServer(t)
	ctx := context.Background()

	if err := db.AddMember(ctx, ws.ID, "user-owner", model.RoleOwner, false); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := db.AddMember(ctx, ws.ID, "user-viewer", model.RoleViewer, false); err != nil {
		t.Fatalf("add member: %v", err)
	}

	url := ts.URL + "/api/workspaces/" + ws.ID + "/folders"
	body := map[string]any{"name": "reports", "x": 100.0, "y": 200.0}

	resp := doJSON(t, http.MethodPost, url, "user-viewer", body)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("viewer create status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, url, "user-owner", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("owner create status = %d, want 201", resp.StatusCode)
	}
	var created model.Item
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created folder: %v", err)
	}
	if created.Kind != model.ItemKindFolder || created.Name != "reports" {
		t.Fatalf("unexpected created item: %+v", created)
	}
}

func TestEditorMutatesOnlyOwnItems(t *testing.T) {
	ts, db, ws := newTestServer(t)
	ctx := context.Background()

	if err := db.AddMember(ctx, ws.ID, "user-editor", model.RoleEditor, false); err != nil {
		t.Fatalf("add member: %v", err)
	}
	mine, err := db.CreateDocument(ctx, ws.ID, "mine", 100, 100, "user-editor")
	if err != nil {
		t.Fatalf("create mine: %v", err)
	}
	theirs, err := db.CreateDocument(ctx, ws.ID, "theirs", 200, 100, "user-other")
	if err != nil {
		t.Fatalf("create theirs: %v", err)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/items/"+theirs.ID+"/rename", "user-editor", map[string]string{"name": "stolen"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("rename foreign item status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/items/"+mine.ID+"/rename", "user-editor", map[string]string{"name": "renamed"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename own item status = %d, want 200", resp.StatusCode)
	}
	got, err := db.Item(ctx, mine.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if got.Name != "renamed" {
		t.Fatalf("expected renamed item, got %q", got.Name)
	}
}

func TestGuestEditorCannotCrossZoneBoundary(t *testing.T) {
	ts, db, ws := newTestServer(t)
	ctx := context.Background()

	if err := db.AddMember(ctx, ws.ID, "user-guest", model.RoleEditor, true); err != nil {
		t.Fatalf("add member: %v", err)
	}
	it, err := db.CreateDocument(ctx, ws.ID, "shared doc", 100, 100, "user-guest")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/items/"+it.ID+"/position", "user-guest", map[string]float64{"x": 100, "y": 800})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("cross-zone move status = %d, want 403", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/items/"+it.ID+"/position", "user-guest", map[string]float64{"x": 300, "y": 120})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("shared-zone move status = %d, want 200", resp.StatusCode)
	}
}

func TestUnknownItemReturnsNotFound(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp := doJSON(t, http.MethodDelete, ts.URL+"/api/items/item-missing", "user-a", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("delete missing status = %d, want 404", resp.StatusCode)
	}
}

func TestWebsocketReceivesChangeFrames(t *testing.T) {
	ts, db, ws := newTestServer(t)
	ctx := context.Background()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?workspace=" + ws.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	if _, err := db.CreateDocument(ctx, ws.ID, "announced", 100, 900, "user-a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read change frame: %v", err)
	}
	var change model.Change
	if err := json.Unmarshal(data, &change); err != nil {
		t.Fatalf("decode change frame: %v", err)
	}
	if change.WorkspaceID != ws.ID || change.Kind != model.ChangeInsert {
		t.Fatalf("unexpected change frame: %+v", change)
	}
	// Any subscriber may be a guest, so frames must not name the item.
	if change.ItemID != "" {
		t.Fatalf("change frame leaked item id %q", change.ItemID)
	}
}
