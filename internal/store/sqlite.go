package store

import (
	"context"
	"database/sql"
	"time"

	"corkboard-cli/internal/model"
)

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workspaces (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			zone_threshold REAL NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS members (
			workspace_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			is_guest INTEGER NOT NULL,
			added_at_unixms INTEGER NOT NULL,
			PRIMARY KEY (workspace_id, user_id)
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			parent_folder_id TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			position_x REAL NOT NULL,
			position_y REAL NOT NULL,
			file_size INTEGER,
			mime_type TEXT NOT NULL DEFAULT '',
			uploaded_by TEXT NOT NULL DEFAULT '',
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_workspace ON items(workspace_id);`,
		`CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_folder_id);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func nowMs() int64 { return time.Now().UTC().UnixMilli() }

func msToTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// CreateWorkspace initializes a board. Zero width/height/threshold fall
// back to the reference board (1600x1000, threshold 0.6).
func (d *DB) CreateWorkspace(ctx context.Context, name string, width, height, threshold float64) (*model.Workspace, error) {
	name = trimmed(name)
	if name == "" {
		return nil, InvalidInputError{Reason: "workspace name is required"}
	}
	if width <= 0 {
		width = 1600
	}
	if height <= 0 {
		height = 1000
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.6
	}
	id, err := newRandomID("ws")
	if err != nil {
		return nil, err
	}
	ms := nowMs()
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO workspaces(id, name, width, height, zone_threshold, created_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		id, name, width, height, threshold, ms)
	if err != nil {
		return nil, err
	}
	return &model.Workspace{
		ID: id, Name: name, Width: width, Height: height,
		ZoneThreshold: threshold, CreatedAt: msToTime(ms),
	}, nil
}

func (d *DB) Workspace(ctx context.Context, id string) (*model.Workspace, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, name, width, height, zone_threshold, created_at_unixms FROM workspaces WHERE id = ?`, id)
	return scanWorkspace(row)
}

// DefaultWorkspace returns the first (usually only) workspace in this
// store directory.
func (d *DB) DefaultWorkspace(ctx context.Context) (*model.Workspace, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, name, width, height, zone_threshold, created_at_unixms FROM workspaces ORDER BY created_at_unixms LIMIT 1`)
	return scanWorkspace(row)
}

func scanWorkspace(row *sql.Row) (*model.Workspace, error) {
	var ws model.Workspace
	var ms int64
	err := row.Scan(&ws.ID, &ws.Name, &ws.Width, &ws.Height, &ws.ZoneThreshold, &ms)
	if err == sql.ErrNoRows {
		return nil, NotFoundError{Kind: "workspace"}
	}
	if err != nil {
		return nil, err
	}
	ws.CreatedAt = msToTime(ms)
	return &ws, nil
}

// ListItemsByWorkspace returns all items of a workspace, including files
// parked inside folders. Folder ChildCount is derived here. Order is
// stable (created_at, id) so repeated fetches compare cleanly.
func (d *DB) ListItemsByWorkspace(ctx context.Context, workspaceID string) ([]model.Item, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT
			id, workspace_id, parent_folder_id, kind, name,
			position_x, position_y, file_size, mime_type, uploaded_by,
			created_at_unixms, updated_at_unixms
		FROM items WHERE workspace_id = ?
		ORDER BY created_at_unixms, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Item
	children := map[string]int{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if it.InFolder() {
			children[*it.ParentFolderID]++
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Kind == model.ItemKindFolder {
			items[i].ChildCount = children[items[i].ID]
		}
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (*model.Item, error) {
	var it model.Item
	var parent, mime, uploadedBy string
	var fileSize sql.NullInt64
	var createdMs, updatedMs int64
	err := r.Scan(&it.ID, &it.WorkspaceID, &parent, &it.Kind, &it.Name,
		&it.Position.X, &it.Position.Y, &fileSize, &mime, &uploadedBy,
		&createdMs, &updatedMs)
	if err != nil {
		return nil, err
	}
	if parent != "" {
		it.ParentFolderID = &parent
	}
	if mime != "" {
		it.MimeType = &mime
	}
	if uploadedBy != "" {
		it.OwnerID = &uploadedBy
	}
	if fileSize.Valid {
		v := fileSize.Int64
		it.FileSize = &v
	}
	it.CreatedAt = msToTime(createdMs)
	it.UpdatedAt = msToTime(updatedMs)
	return &it, nil
}

func (d *DB) Item(ctx context.Context, id string) (*model.Item, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT
			id, workspace_id, parent_folder_id, kind, name,
			position_x, position_y, file_size, mime_type, uploaded_by,
			created_at_unixms, updated_at_unixms
		FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, NotFoundError{Kind: "item", ID: id}
	}
	return it, err
}

// CreateFolder places a new empty folder on the board.
func (d *DB) CreateFolder(ctx context.Context, workspaceID, name string, x, y float64, ownerID string) (*model.Item, error) {
	return d.createItem(ctx, workspaceID, model.ItemKindFolder, name, x, y, ownerID, nil, "")
}

// CreateFile records an uploaded file's board entry. The bytes themselves
// live with the upload service; the store only keeps metadata.
func (d *DB) CreateFile(ctx context.Context, workspaceID, name string, x, y float64, ownerID string, size int64, mimeType string) (*model.Item, error) {
	return d.createItem(ctx, workspaceID, model.ItemKindFile, name, x, y, ownerID, &size, mimeType)
}

// CreateDocument places a draft document. Documents stay pinned to the
// board root until they are finalized into a file externally.
func (d *DB) CreateDocument(ctx context.Context, workspaceID, name string, x, y float64, ownerID string) (*model.Item, error) {
	return d.createItem(ctx, workspaceID, model.ItemKindDocument, name, x, y, ownerID, nil, "")
}

func (d *DB) createItem(ctx context.Context, workspaceID string, kind model.ItemKind, name string, x, y float64, ownerID string, size *int64, mimeType string) (*model.Item, error) {
	name = trimmed(name)
	if name == "" {
		return nil, InvalidInputError{Reason: "item name is required"}
	}
	if x < 0 || y < 0 {
		return nil, InvalidInputError{Reason: "position must be non-negative"}
	}
	if _, err := d.Workspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	id, err := newRandomID("item")
	if err != nil {
		return nil, err
	}
	ms := nowMs()
	var sizeVal sql.NullInt64
	if size != nil {
		sizeVal = sql.NullInt64{Int64: *size, Valid: true}
	}
	_, err = d.sql.ExecContext(ctx, `INSERT INTO items(
			id, workspace_id, parent_folder_id, kind, name,
			position_x, position_y, file_size, mime_type, uploaded_by,
			created_at_unixms, updated_at_unixms
		) VALUES(?, ?, '', ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, workspaceID, string(kind), name, x, y, sizeVal, mimeType, trimmed(ownerID), ms, ms)
	if err != nil {
		return nil, err
	}
	it := &model.Item{
		ID: id, WorkspaceID: workspaceID, Kind: kind, Name: name,
		Position:  model.Position{X: x, Y: y},
		CreatedAt: msToTime(ms), UpdatedAt: msToTime(ms),
	}
	if o := trimmed(ownerID); o != "" {
		it.OwnerID = &o
	}
	if size != nil {
		it.FileSize = size
	}
	if mimeType != "" {
		it.MimeType = &mimeType
	}
	d.notify(model.Change{WorkspaceID: workspaceID, Kind: model.ChangeInsert, ItemID: id, At: time.Now().UTC()})
	return it, nil
}

// UpdateItemPosition writes a board position. Last write wins: there is no
// version check, concurrent writers simply overwrite each other and the
// next reconciliation fetch reflects whichever landed last.
func (d *DB) UpdateItemPosition(ctx context.Context, itemID string, x, y float64) error {
	if x < 0 || y < 0 {
		return InvalidInputError{Reason: "position must be non-negative"}
	}
	it, err := d.Item(ctx, itemID)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`UPDATE items SET position_x = ?, position_y = ?, updated_at_unixms = ? WHERE id = ?`,
		x, y, nowMs(), itemID)
	if err != nil {
		return err
	}
	d.notify(model.Change{WorkspaceID: it.WorkspaceID, Kind: model.ChangeUpdate, ItemID: itemID, At: time.Now().UTC()})
	return nil
}

// MoveFileToFolder files an item into a folder, or extracts it to the
// board root when folderID is nil. Only file items can be filed; folders
// and documents are pinned to the root.
func (d *DB) MoveFileToFolder(ctx context.Context, fileID string, folderID *string) error {
	it, err := d.Item(ctx, fileID)
	if err != nil {
		return err
	}
	parent := ""
	if folderID != nil && trimmed(*folderID) != "" {
		if it.Kind != model.ItemKindFile {
			return InvalidInputError{Reason: "only files can be placed inside a folder"}
		}
		target, err := d.Item(ctx, trimmed(*folderID))
		if err != nil {
			return err
		}
		if target.Kind != model.ItemKindFolder {
			return InvalidInputError{Reason: "target is not a folder"}
		}
		if target.WorkspaceID != it.WorkspaceID {
			return InvalidInputError{Reason: "folder belongs to a different workspace"}
		}
		parent = target.ID
	}
	_, err = d.sql.ExecContext(ctx,
		`UPDATE items SET parent_folder_id = ?, updated_at_unixms = ? WHERE id = ?`,
		parent, nowMs(), fileID)
	if err != nil {
		return err
	}
	d.notify(model.Change{WorkspaceID: it.WorkspaceID, Kind: model.ChangeUpdate, ItemID: fileID, At: time.Now().UTC()})
	return nil
}

func (d *DB) RenameItem(ctx context.Context, itemID, name string) error {
	name = trimmed(name)
	if name == "" {
		return InvalidInputError{Reason: "item name is required"}
	}
	it, err := d.Item(ctx, itemID)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`UPDATE items SET name = ?, updated_at_unixms = ? WHERE id = ?`,
		name, nowMs(), itemID)
	if err != nil {
		return err
	}
	d.notify(model.Change{WorkspaceID: it.WorkspaceID, Kind: model.ChangeUpdate, ItemID: itemID, At: time.Now().UTC()})
	return nil
}

// DeleteItem removes an item. Deleting a folder re-roots its children at
// the folder's own position rather than cascading the delete.
func (d *DB) DeleteItem(ctx context.Context, itemID string) error {
	it, err := d.Item(ctx, itemID)
	if err != nil {
		return err
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ms := nowMs()
	if it.Kind == model.ItemKindFolder {
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET parent_folder_id = '', position_x = ?, position_y = ?, updated_at_unixms = ? WHERE parent_folder_id = ?`,
			it.Position.X, it.Position.Y, ms, itemID); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "item", ID: itemID}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	d.notify(model.Change{WorkspaceID: it.WorkspaceID, Kind: model.ChangeDelete, ItemID: itemID, At: time.Now().UTC()})
	return nil
}

// AddMember upserts a workspace membership.
func (d *DB) AddMember(ctx context.Context, workspaceID, userID string, role model.Role, isGuest bool) error {
	userID = trimmed(userID)
	if userID == "" {
		return InvalidInputError{Reason: "user id is required"}
	}
	if !role.Valid() {
		return InvalidInputError{Reason: "unknown role: " + string(role)}
	}
	if _, err := d.Workspace(ctx, workspaceID); err != nil {
		return err
	}
	guest := 0
	if isGuest {
		guest = 1
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT OR REPLACE INTO members(workspace_id, user_id, role, is_guest, added_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		workspaceID, userID, string(role), guest, nowMs())
	return err
}

func (d *DB) ListMembers(ctx context.Context, workspaceID string) ([]model.Member, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT workspace_id, user_id, role, is_guest, added_at_unixms FROM members WHERE workspace_id = ? ORDER BY added_at_unixms`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Member
	for rows.Next() {
		var m model.Member
		var guest int
		var ms int64
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Role, &guest, &ms); err != nil {
			return nil, err
		}
		m.IsGuest = guest != 0
		m.AddedAt = msToTime(ms)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ResolveAccess maps a caller to its grant on a workspace. Callers with no
// membership row resolve to the default guest grant: viewer + guest.
func (d *DB) ResolveAccess(ctx context.Context, callerID, workspaceID string) (model.AccessGrant, error) {
	callerID = trimmed(callerID)
	if callerID == "" {
		return model.AccessGrant{Role: model.RoleViewer, IsGuest: true}, nil
	}
	row := d.sql.QueryRowContext(ctx,
		`SELECT role, is_guest FROM members WHERE workspace_id = ? AND user_id = ?`, workspaceID, callerID)
	var role string
	var guest int
	err := row.Scan(&role, &guest)
	if err == sql.ErrNoRows {
		return model.AccessGrant{Role: model.RoleViewer, IsGuest: true}, nil
	}
	if err != nil {
		return model.AccessGrant{}, err
	}
	return model.AccessGrant{Role: model.Role(role), IsGuest: guest != 0}, nil
}
