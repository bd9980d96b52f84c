package treeview

import (
	"errors"
	"testing"

	"doneit-cli/internal/arena"
)

// seedMeta builds workspaces [Home, Work] where Work has child Errands.
func seedMeta(t *testing.T) (*arena.Store, *WorkspaceView, map[string]arena.WorkspaceKey) {
	t.Helper()
	s := arena.New()
	keys := map[string]arena.WorkspaceKey{}
	home, err := s.InsertWorkspace(arena.WorkspaceKey{}, -1, "Home")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	work, err := s.InsertWorkspace(arena.WorkspaceKey{}, -1, "Work")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	errands, err := s.InsertWorkspace(work, -1, "Errands")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	keys["Home"], keys["Work"], keys["Errands"] = home, work, errands
	return s, NewWorkspaceView(s, NewWorkspaceClipboard(s)), keys
}

func metaTitles(t *testing.T, v *WorkspaceView) []string {
	t.Helper()
	var out []string
	for _, r := range v.Rows() {
		info, err := v.Info(r)
		if err != nil {
			t.Fatalf("info: %v", err)
		}
		out = append(out, info.Title)
	}
	return out
}

func wantMeta(t *testing.T, v *WorkspaceView, want ...string) {
	t.Helper()
	got := metaTitles(t, v)
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
}

func TestWorkspaceViewFlatten(t *testing.T) {
	_, v, keys := seedMeta(t)
	wantMeta(t, v, "Home", "Work", "Errands")
	rows := v.Rows()
	if rows[2].Depth != 1 || rows[2].Parent != keys["Work"] {
		t.Fatalf("Errands row = %+v, want depth 1 under Work", rows[2])
	}
}

func TestWorkspaceViewCollapse(t *testing.T) {
	_, v, keys := seedMeta(t)
	v.Select(keys["Work"])
	if err := v.ToggleCollapse(); err != nil {
		t.Fatalf("collapse: %v", err)
	}
	wantMeta(t, v, "Home", "Work")
	if err := v.ToggleCollapse(); err != nil {
		t.Fatalf("expand: %v", err)
	}
	wantMeta(t, v, "Home", "Work", "Errands")
}

func TestWorkspaceViewAddAndEdit(t *testing.T) {
	s, v, keys := seedMeta(t)
	v.Select(keys["Home"])
	nk, err := v.AddSibling("Garden")
	if err != nil {
		t.Fatalf("add sibling: %v", err)
	}
	wantMeta(t, v, "Home", "Garden", "Work", "Errands")
	if cur, _ := v.Cursor(); cur.Key != nk {
		t.Fatalf("cursor not on new workspace")
	}
	if err := v.EditTitle("Yard"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	ws, err := s.Workspace(nk)
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if ws.Title != "Yard" {
		t.Fatalf("title = %q", ws.Title)
	}

	if _, err := v.AddChild("Projects"); err != nil {
		t.Fatalf("add child: %v", err)
	}
	wantMeta(t, v, "Home", "Yard", "Projects", "Work", "Errands")
}

func TestWorkspaceViewCutPaste(t *testing.T) {
	_, v, keys := seedMeta(t)
	v.Select(keys["Errands"])
	if err := v.Cut(); err != nil {
		t.Fatalf("cut: %v", err)
	}
	wantMeta(t, v, "Home", "Work")
	// cursor falls back to the parent when no siblings remain
	if cur, _ := v.Cursor(); cur.Key != keys["Work"] {
		t.Fatalf("cursor after cut = %v, want Work", cur.Key)
	}
	v.Select(keys["Home"])
	if err := v.PasteChild(); err != nil {
		t.Fatalf("paste child: %v", err)
	}
	wantMeta(t, v, "Home", "Errands", "Work")
	if err := v.PasteChild(); !errors.Is(err, ErrClipboardEmpty) {
		t.Fatalf("second paste err = %v, want ErrClipboardEmpty", err)
	}
}

func TestWorkspaceViewDeleteRetiresItems(t *testing.T) {
	s, v, keys := seedMeta(t)
	item, err := s.InsertItem(arena.InWorkspace(keys["Errands"]), -1, "buy milk")
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	v.Select(keys["Work"])
	if err := v.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	wantMeta(t, v, "Home")
	if _, err := s.Workspace(keys["Errands"]); !errors.Is(err, arena.ErrUnknownKey) {
		t.Fatalf("nested workspace survived delete")
	}
	if _, err := s.Item(item); !errors.Is(err, arena.ErrUnknownKey) {
		t.Fatalf("owned item survived workspace delete")
	}
}

func TestWorkspaceViewEmptyList(t *testing.T) {
	s := arena.New()
	v := NewWorkspaceView(s, NewWorkspaceClipboard(s))
	if _, ok := v.Cursor(); ok {
		t.Fatalf("cursor set on empty list")
	}
	if err := v.Navigate(1); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("navigate err = %v, want ErrEmptySelection", err)
	}
	if _, err := v.AddSibling("first"); err != nil {
		t.Fatalf("add on empty list: %v", err)
	}
	wantMeta(t, v, "first")
}
