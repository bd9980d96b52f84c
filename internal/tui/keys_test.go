package tui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"doneit-cli/internal/logging"
	"doneit-cli/internal/model"
	"doneit-cli/internal/store"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m appModel, msgs ...tea.Msg) appModel {
	t.Helper()
	for _, msg := range msgs {
		mm, _ := m.Update(msg)
		m = mm.(appModel)
	}
	return m
}

func newTestModel(t *testing.T, dir string, db *store.DB) appModel {
	t.Helper()
	s := store.Store{Dir: dir}
	if err := s.Save(context.Background(), db); err != nil {
		t.Fatalf("save db: %v", err)
	}
	loaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load db: %v", err)
	}
	return newAppModel(dir, loaded, store.DefaultTheme(), logging.New(io.Discard, "error"))
}

func seedDB() *store.DB {
	return &store.DB{
		Version: 1,
		Workspaces: []model.Workspace{
			{
				ID:    "ws-home",
				Title: "Home",
				Items: []model.Todo{
					{ID: "t-1", Text: "water plants"},
					{ID: "t-2", Text: "renovate", Children: []model.Todo{
						{ID: "t-3", Text: "paint hallway"},
					}},
				},
			},
		},
	}
}

func TestAddWorkspaceThroughEdit(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, &store.DB{Version: 1})

	m = press(t, m, key("a"))
	if !m.editing {
		t.Fatalf("a should open the inline editor")
	}
	m = press(t, m, key("Garden"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Fatalf("enter should close the editor")
	}
	rows := m.wsView.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	info, err := m.wsView.Info(rows[0])
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Title != "Garden" {
		t.Fatalf("title = %q, want Garden", info.Title)
	}
}

func TestItemNavigationAndToggles(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.pane != paneItems {
		t.Fatalf("tab should focus the items pane")
	}

	v := m.activeItems()
	if v == nil {
		t.Fatalf("no item view for active workspace")
	}
	if cur, _ := v.Cursor(); cur.Depth != 0 {
		t.Fatalf("cursor should start at first row")
	}

	m = press(t, m, key("c"), key("+"), key("+"))
	cur, ok := v.Cursor()
	if !ok {
		t.Fatalf("cursor lost")
	}
	info, err := v.Info(cur)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !info.Completed || info.Priority != 2 {
		t.Fatalf("completed=%v priority=%d, want true 2", info.Completed, info.Priority)
	}

	m = press(t, m, key("j"), key("j"))
	cur, _ = v.Cursor()
	info, _ = v.Info(cur)
	if info.Text != "paint hallway" {
		t.Fatalf("cursor = %q, want paint hallway", info.Text)
	}
	_ = m
}

func TestCutPasteKeys(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("x"))
	v := m.activeItems()
	if n := len(v.Rows()); n != 2 {
		t.Fatalf("rows after cut = %d, want 2", n)
	}
	m = press(t, m, key("j"), key("P"))
	if m.minibuffer != "" {
		t.Fatalf("paste reported error: %q", m.minibuffer)
	}
	texts := []string{}
	for _, r := range v.Rows() {
		info, err := v.Info(r)
		if err != nil {
			t.Fatalf("info: %v", err)
		}
		texts = append(texts, info.Text)
	}
	want := "renovate paint hallway water plants"
	if got := strings.Join(texts, " "); got != want {
		t.Fatalf("rows = %q, want %q", got, want)
	}
}

func TestPasteWithEmptyClipboardReportsError(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("p"))
	if m.minibuffer == "" {
		t.Fatalf("paste on empty clipboard should surface an error")
	}
}

func TestQuitPersistsState(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("c"))
	mm, cmd := m.Update(key("q"))
	m = mm.(appModel)
	if cmd == nil {
		t.Fatalf("q should quit")
	}

	db, err := store.Store{Dir: dir}.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !db.Workspaces[0].Items[0].Completed {
		t.Fatalf("completion not persisted on quit")
	}

	ts, err := store.Store{Dir: dir}.LoadTUIState()
	if err != nil {
		t.Fatalf("tui state: %v", err)
	}
	if ts.Pane != "items" || ts.SelectedWorkspaceID != "ws-home" {
		t.Fatalf("tui state = %+v", ts)
	}
}

func TestDeleteLastWorkspaceEmptiesItemPane(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, key("d"))
	if len(m.wsView.Rows()) != 0 {
		t.Fatalf("workspace not deleted")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("a"))
	if m.editing {
		t.Fatalf("items pane should refuse edits with no workspace")
	}
	if m.minibuffer == "" {
		t.Fatalf("expected a hint about the missing workspace")
	}
}

func cursorText(t *testing.T, m appModel) string {
	t.Helper()
	v := m.activeItems()
	if v == nil {
		t.Fatalf("no item view")
	}
	cur, ok := v.Cursor()
	if !ok {
		t.Fatalf("cursor lost")
	}
	info, err := v.Info(cur)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	return info.Text
}

func TestSearchJumpsAndCycles(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("j"))
	if got := cursorText(t, m); got != "renovate" {
		t.Fatalf("cursor = %q, want renovate", got)
	}

	m = press(t, m, key("/"))
	if !m.searching {
		t.Fatalf("/ should start a search")
	}
	m = press(t, m, key("wa"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Fatalf("enter should commit the search")
	}
	if got := cursorText(t, m); got != "water plants" {
		t.Fatalf("cursor = %q, want water plants", got)
	}

	m = press(t, m, key("n"))
	if got := cursorText(t, m); got != "paint hallway" {
		t.Fatalf("n cursor = %q, want paint hallway", got)
	}
	m = press(t, m, key("n"))
	if got := cursorText(t, m); got != "water plants" {
		t.Fatalf("n should wrap, cursor = %q", got)
	}
	m = press(t, m, key("N"))
	if got := cursorText(t, m); got != "paint hallway" {
		t.Fatalf("N cursor = %q, want paint hallway", got)
	}
}

func TestSearchEscapeClears(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("/"), key("plants"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching || m.search != "" {
		t.Fatalf("esc should cancel and clear the search, got %q", m.search)
	}
	before := cursorText(t, m)
	m = press(t, m, key("n"))
	if got := cursorText(t, m); got != before {
		t.Fatalf("n with no search moved the cursor to %q", got)
	}
}

func TestSearchNoMatchReportsInMinibuffer(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t, dir, seedDB())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("/"), key("zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.minibuffer == "" {
		t.Fatalf("unmatched search should surface a hint")
	}
}

func TestSortKeysReorderChildren(t *testing.T) {
	dir := t.TempDir()
	db := &store.DB{
		Version: 1,
		Workspaces: []model.Workspace{
			{
				ID:    "ws-chores",
				Title: "Chores",
				Items: []model.Todo{
					{ID: "p", Text: "weekend", Children: []model.Todo{
						{ID: "c1", Text: "mop"},
						{ID: "c2", Text: "dust", Priority: 2},
						{ID: "c3", Text: "vacuum", Priority: 1},
					}},
				},
			},
		},
	}
	m := newTestModel(t, dir, db)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}, key("s"))
	if !m.sortPending {
		t.Fatalf("s should await a sort mode key")
	}
	m = press(t, m, key("u"))
	if m.sortPending {
		t.Fatalf("sort mode key should complete the sequence")
	}

	v := m.activeItems()
	texts := []string{}
	for _, r := range v.Rows() {
		info, err := v.Info(r)
		if err != nil {
			t.Fatalf("info: %v", err)
		}
		texts = append(texts, info.Text)
	}
	want := "weekend dust vacuum mop"
	if got := strings.Join(texts, " "); got != want {
		t.Fatalf("rows = %q, want %q", got, want)
	}
}
