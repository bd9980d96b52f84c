package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"doneit-cli/internal/model"
)

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness with a second process.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS workspaces (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			pos INTEGER NOT NULL,
			title TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_workspaces_parent ON workspaces(parent_id, pos);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			pos INTEGER NOT NULL,
			text TEXT NOT NULL,
			completed INTEGER NOT NULL,
			priority INTEGER NOT NULL,
			effort INTEGER NOT NULL,
			due_unixms INTEGER,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_workspace ON items(workspace_id);`,
		`CREATE INDEX IF NOT EXISTS idx_items_parent ON items(workspace_id, parent_id, pos);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// LoadSQLite loads state from index.sqlite. If the db holds nothing but a
// legacy doneit.json exists, it imports that file once and then loads from
// SQLite.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	hasState, err := sqliteStateHasAnyRows(ctx, db)
	if err != nil {
		return nil, err
	}
	if !hasState {
		if b, err := os.ReadFile(s.legacyPath()); err == nil && len(b) > 0 {
			legacy, err := loadLegacyDB(b)
			if err != nil {
				return nil, fmt.Errorf("import %s: %w", legacyFileName, err)
			}
			if err := s.SaveSQLite(ctx, legacy); err != nil {
				return nil, err
			}
		}
	}

	return loadStateFromSQLite(ctx, db)
}

func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(st.Version)); err != nil {
		return err
	}

	// Replace-all strategy: simple and safe for a single-user tool.
	for _, t := range []string{"workspaces", "items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	var saveItems func(wsID, parentID string, items []model.Todo) error
	saveItems = func(wsID, parentID string, items []model.Todo) error {
		for pos, it := range items {
			var due any
			if it.Due != nil {
				due = it.Due.UTC().UnixMilli()
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO items(id, workspace_id, parent_id, pos, text, completed, priority, effort, due_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, wsID, parentID, pos, it.Text, boolToInt(it.Completed), it.Priority, it.Effort, due, nowMs); err != nil {
				return err
			}
			if err := saveItems(wsID, it.ID, it.Children); err != nil {
				return err
			}
		}
		return nil
	}

	var saveWorkspaces func(parentID string, wss []model.Workspace) error
	saveWorkspaces = func(parentID string, wss []model.Workspace) error {
		for pos, ws := range wss {
			if _, err := tx.ExecContext(ctx, `INSERT INTO workspaces(id, parent_id, pos, title, updated_at_unixms) VALUES(?, ?, ?, ?, ?)`,
				ws.ID, parentID, pos, ws.Title, nowMs); err != nil {
				return err
			}
			if err := saveItems(ws.ID, "", ws.Items); err != nil {
				return err
			}
			if err := saveWorkspaces(ws.ID, ws.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := saveWorkspaces("", st.Workspaces); err != nil {
		return err
	}

	return tx.Commit()
}

func sqliteStateHasAnyRows(ctx context.Context, db *sql.DB) (bool, error) {
	for _, q := range []string{`SELECT COUNT(1) FROM workspaces`, `SELECT COUNT(1) FROM items`} {
		var n int
		if err := db.QueryRowContext(ctx, q).Scan(&n); err != nil {
			// Tables missing means empty.
			return false, nil
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

type wsRow struct {
	id, parentID, title string
	pos                 int
}

type itemRow struct {
	id, wsID, parentID, text string
	pos, priority, effort    int
	completed                bool
	due                      *time.Time
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: 1}

	var v string
	_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&v)
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		out.Version = n
	}

	wsRows, err := readWorkspaceRows(ctx, db)
	if err != nil {
		return nil, err
	}
	itRows, err := readItemRows(ctx, db)
	if err != nil {
		return nil, err
	}

	itemsByParent := map[string][]itemRow{}
	for _, r := range itRows {
		k := r.wsID + "\x00" + r.parentID
		itemsByParent[k] = append(itemsByParent[k], r)
	}
	for _, rs := range itemsByParent {
		sort.Slice(rs, func(i, j int) bool { return rs[i].pos < rs[j].pos })
	}

	var buildItems func(wsID, parentID string) []model.Todo
	buildItems = func(wsID, parentID string) []model.Todo {
		var out []model.Todo
		for _, r := range itemsByParent[wsID+"\x00"+parentID] {
			out = append(out, model.Todo{
				ID:        r.id,
				Text:      r.text,
				Completed: r.completed,
				Priority:  r.priority,
				Effort:    r.effort,
				Due:       r.due,
				Children:  buildItems(wsID, r.id),
			})
		}
		return out
	}

	wsByParent := map[string][]wsRow{}
	for _, r := range wsRows {
		wsByParent[r.parentID] = append(wsByParent[r.parentID], r)
	}
	for _, rs := range wsByParent {
		sort.Slice(rs, func(i, j int) bool { return rs[i].pos < rs[j].pos })
	}

	var buildWorkspaces func(parentID string) []model.Workspace
	buildWorkspaces = func(parentID string) []model.Workspace {
		var out []model.Workspace
		for _, r := range wsByParent[parentID] {
			out = append(out, model.Workspace{
				ID:       r.id,
				Title:    r.title,
				Items:    buildItems(r.id, ""),
				Children: buildWorkspaces(r.id),
			})
		}
		return out
	}
	out.Workspaces = buildWorkspaces("")
	if out.Workspaces == nil {
		out.Workspaces = []model.Workspace{}
	}
	return out, nil
}

func readWorkspaceRows(ctx context.Context, db *sql.DB) ([]wsRow, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, parent_id, pos, title FROM workspaces`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []wsRow
	for rows.Next() {
		var r wsRow
		if err := rows.Scan(&r.id, &r.parentID, &r.pos, &r.title); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func readItemRows(ctx context.Context, db *sql.DB) ([]itemRow, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, workspace_id, parent_id, pos, text, completed, priority, effort, due_unixms FROM items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []itemRow
	for rows.Next() {
		var r itemRow
		var completed int
		var due sql.NullInt64
		if err := rows.Scan(&r.id, &r.wsID, &r.parentID, &r.pos, &r.text, &completed, &r.priority, &r.effort, &due); err != nil {
			return nil, err
		}
		r.completed = completed != 0
		if due.Valid {
			t := time.UnixMilli(due.Int64).UTC()
			r.due = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
