// Package treeview maintains, per tree, the ordered flattened projection of
// an arena tree: a pre-order sequence of rows carrying entity key, parent,
// depth and visibility, plus a cursor and the clipboard-driven structural
// edits a UI needs. The view holds keys and derived metadata only; entity
// content lives in the arena, so text/priority/completed edits need no
// flatten repair.
package treeview

import (
	"sort"
	"time"

	"doneit-cli/internal/arena"
)

// Row is one entry of the flattened item tree. The full sequence (hidden rows
// included) is retained so toggling collapse is a visibility-only pass, not a
// rebuild.
type Row struct {
	Key     arena.ItemKey
	Parent  arena.ItemKey // zero for root items
	Depth   int
	Visible bool
}

// RowInfo bundles the displayable fields the UI needs for one row.
type RowInfo struct {
	Row
	Text          string
	Completed     bool
	Priority      int
	Effort        int
	Due           *time.Time
	HasChildren   bool
	Collapsed     bool
	DoneChildren  int
	TotalChildren int
}

// ItemView is the tree view state for one workspace's todo tree. The active
// workspace is explicit state here, never hidden package globals, so several
// views (workspace list vs. item trees) coexist without aliasing.
type ItemView struct {
	store *arena.Store
	ws    arena.WorkspaceKey
	clip  *Clipboard

	rows   []Row
	cursor arena.ItemKey // zero => empty selection
}

// NewItemView builds the flattened view for ws. The cursor starts on the
// first visible row, or empty for an empty tree.
func NewItemView(s *arena.Store, ws arena.WorkspaceKey, clip *Clipboard) (*ItemView, error) {
	if _, err := s.Workspace(ws); err != nil {
		return nil, err
	}
	v := &ItemView{store: s, ws: ws, clip: clip}
	if err := v.Refresh(); err != nil {
		return nil, err
	}
	return v, nil
}

// Workspace returns the workspace this view projects.
func (v *ItemView) Workspace() arena.WorkspaceKey { return v.ws }

// Refresh rebuilds the flattened sequence from the arena. The cursor stays on
// its key when that key is still a visible row; otherwise it falls back to
// the first visible row (or empty). Full rebuild is the correctness baseline;
// everything else is an optimization.
func (v *ItemView) Refresh() error {
	ws, err := v.store.Workspace(v.ws)
	if err != nil {
		return err
	}
	v.rows = v.rows[:0]
	for _, k := range ws.Items {
		if err := v.walk(k, arena.ItemKey{}, 0, true); err != nil {
			return err
		}
	}
	v.normalizeCursor()
	return nil
}

func (v *ItemView) walk(k, parent arena.ItemKey, depth int, visible bool) error {
	it, err := v.store.Item(k)
	if err != nil {
		return err
	}
	v.rows = append(v.rows, Row{Key: k, Parent: parent, Depth: depth, Visible: visible})
	childVisible := visible && !it.Collapsed
	for _, c := range it.Children {
		if err := v.walk(c, k, depth+1, childVisible); err != nil {
			return err
		}
	}
	return nil
}

// normalizeCursor enforces the invariant: the cursor is empty iff the tree is
// empty, and always rests on a visible row.
func (v *ItemView) normalizeCursor() {
	if len(v.rows) == 0 {
		v.cursor = arena.ItemKey{}
		return
	}
	if !v.cursor.IsZero() {
		if i := v.indexOf(v.cursor); i >= 0 && v.rows[i].Visible {
			return
		}
	}
	for _, r := range v.rows {
		if r.Visible {
			v.cursor = r.Key
			return
		}
	}
	v.cursor = arena.ItemKey{}
}

func (v *ItemView) indexOf(k arena.ItemKey) int {
	for i, r := range v.rows {
		if r.Key == k {
			return i
		}
	}
	return -1
}

// AllRows returns the full flattened sequence, hidden rows included.
func (v *ItemView) AllRows() []Row { return v.rows }

// Rows returns the visible rows in display order.
func (v *ItemView) Rows() []Row {
	out := make([]Row, 0, len(v.rows))
	for _, r := range v.rows {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

// Cursor returns the selected row, if any.
func (v *ItemView) Cursor() (Row, bool) {
	if v.cursor.IsZero() {
		return Row{}, false
	}
	if i := v.indexOf(v.cursor); i >= 0 {
		return v.rows[i], true
	}
	return Row{}, false
}

// CursorVisibleIndex returns the cursor's position within Rows(), or -1.
func (v *ItemView) CursorVisibleIndex() int {
	if v.cursor.IsZero() {
		return -1
	}
	i := 0
	for _, r := range v.rows {
		if !r.Visible {
			continue
		}
		if r.Key == v.cursor {
			return i
		}
		i++
	}
	return -1
}

// Select moves the cursor to k when k is a visible row.
func (v *ItemView) Select(k arena.ItemKey) {
	if i := v.indexOf(k); i >= 0 && v.rows[i].Visible {
		v.cursor = k
	}
}

// Info resolves the displayable fields for one row through the arena.
func (v *ItemView) Info(r Row) (RowInfo, error) {
	it, err := v.store.Item(r.Key)
	if err != nil {
		return RowInfo{}, err
	}
	info := RowInfo{
		Row:           r,
		Text:          it.Text,
		Completed:     it.Completed,
		Priority:      it.Priority,
		Effort:        it.Effort,
		Due:           it.Due,
		HasChildren:   len(it.Children) > 0,
		Collapsed:     it.Collapsed,
		TotalChildren: len(it.Children),
	}
	for _, c := range it.Children {
		child, err := v.store.Item(c)
		if err != nil {
			return RowInfo{}, err
		}
		if child.Completed {
			info.DoneChildren++
		}
	}
	return info, nil
}

func (v *ItemView) selected() (arena.ItemKey, error) {
	if v.cursor.IsZero() {
		return arena.ItemKey{}, ErrEmptySelection
	}
	if _, err := v.store.Item(v.cursor); err != nil {
		return arena.ItemKey{}, ErrEmptySelection
	}
	return v.cursor, nil
}

// Navigate moves the cursor delta visible rows down (positive) or up
// (negative), clamped at the ends. No wraparound.
func (v *ItemView) Navigate(delta int) error {
	vis := v.Rows()
	if len(vis) == 0 {
		return ErrEmptySelection
	}
	cur := v.CursorVisibleIndex()
	if cur < 0 {
		cur = 0
	}
	i := cur + delta
	if i < 0 {
		i = 0
	}
	if i >= len(vis) {
		i = len(vis) - 1
	}
	v.cursor = vis[i].Key
	return nil
}

// siblingsOf returns the selected item's sibling list together with the
// item's index in it. The returned slice is the live arena list.
func (v *ItemView) siblingsOf(k arena.ItemKey) (sibs []arena.ItemKey, idx int, parent arena.ItemParent, err error) {
	parent, attached, err := v.store.ParentOfItem(k)
	if err != nil || !attached {
		return nil, -1, arena.ItemParent{}, ErrEmptySelection
	}
	if parent.IsItem() {
		p, err := v.store.Item(parent.Item())
		if err != nil {
			return nil, -1, arena.ItemParent{}, err
		}
		sibs = p.Children
	} else {
		w, err := v.store.Workspace(parent.Workspace())
		if err != nil {
			return nil, -1, arena.ItemParent{}, err
		}
		sibs = w.Items
	}
	for i, s := range sibs {
		if s == k {
			return sibs, i, parent, nil
		}
	}
	return nil, -1, arena.ItemParent{}, arena.ErrUnknownKey
}

// MoveItem swaps the selected item with its previous (delta<0) or next
// (delta>0) sibling. At a boundary it is a no-op, not an error; depth and
// parent never change.
func (v *ItemView) MoveItem(delta int) error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	sibs, i, _, err := v.siblingsOf(k)
	if err != nil {
		return err
	}
	j := i + delta
	if j < 0 || j >= len(sibs) {
		return nil
	}
	sibs[i], sibs[j] = sibs[j], sibs[i]
	return v.Refresh()
}

// SortMode selects the key SortChildren orders by.
type SortMode int

const (
	SortByText SortMode = iota
	SortByCompleted
	SortByPriority
)

// SortChildren stably reorders the selected item's child list: text sorts
// ascending, priority descending, completed groups unfinished items first.
// Only the direct children move; each child keeps its own subtree order.
func (v *ItemView) SortChildren(mode SortMode) error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	it, err := v.store.Item(k)
	if err != nil {
		return err
	}
	sort.SliceStable(it.Children, func(i, j int) bool {
		a, errA := v.store.Item(it.Children[i])
		b, errB := v.store.Item(it.Children[j])
		if errA != nil || errB != nil {
			return false
		}
		switch mode {
		case SortByPriority:
			return a.Priority > b.Priority
		case SortByCompleted:
			return !a.Completed && b.Completed
		default:
			return a.Text < b.Text
		}
	})
	return v.Refresh()
}

// ToggleCollapse flips the selected item's collapsed flag and repairs
// visibility only: structure and depths are untouched.
func (v *ItemView) ToggleCollapse() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	it, err := v.store.Item(k)
	if err != nil {
		return err
	}
	it.Collapsed = !it.Collapsed
	v.repairVisibility()
	return nil
}

// repairVisibility recomputes Visible for every row from the collapsed flags,
// leaving order and depth alone.
func (v *ItemView) repairVisibility() {
	// Stack of "children hidden?" per depth level.
	hidden := make([]bool, 0, 8)
	for i := range v.rows {
		r := &v.rows[i]
		hidden = hidden[:r.Depth]
		vis := true
		for _, h := range hidden {
			if h {
				vis = false
				break
			}
		}
		r.Visible = vis
		collapsed := false
		if it, err := v.store.Item(r.Key); err == nil {
			collapsed = it.Collapsed
		}
		hidden = append(hidden, collapsed)
	}
}

// AddSibling inserts a new item immediately after the selection in the same
// sibling list and moves the cursor to it. With no selection on an empty tree
// the new item becomes the workspace's first root item; with no selection on a
// non-empty tree it fails with ErrEmptySelection.
func (v *ItemView) AddSibling(text string) (arena.ItemKey, error) {
	if v.cursor.IsZero() {
		if len(v.rows) != 0 {
			return arena.ItemKey{}, ErrEmptySelection
		}
		k, err := v.store.InsertItem(arena.InWorkspace(v.ws), -1, text)
		if err != nil {
			return arena.ItemKey{}, err
		}
		v.cursor = k
		return k, v.Refresh()
	}
	k, err := v.selected()
	if err != nil {
		return arena.ItemKey{}, err
	}
	_, i, parent, err := v.siblingsOf(k)
	if err != nil {
		return arena.ItemKey{}, err
	}
	nk, err := v.store.InsertItem(parent, i+1, text)
	if err != nil {
		return arena.ItemKey{}, err
	}
	v.cursor = nk
	return nk, v.Refresh()
}

// AddChild appends a new item as the last child of the selection,
// un-collapsing the parent so the child is visible, and moves the cursor to
// it.
func (v *ItemView) AddChild(text string) (arena.ItemKey, error) {
	k, err := v.selected()
	if err != nil {
		return arena.ItemKey{}, err
	}
	it, err := v.store.Item(k)
	if err != nil {
		return arena.ItemKey{}, err
	}
	it.Collapsed = false
	nk, err := v.store.InsertItem(arena.UnderItem(k), -1, text)
	if err != nil {
		return arena.ItemKey{}, err
	}
	v.cursor = nk
	return nk, v.Refresh()
}

// EditText replaces the selected item's text in place. No structural change,
// no flatten repair.
func (v *ItemView) EditText(text string) error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	it, err := v.store.Item(k)
	if err != nil {
		return err
	}
	it.Text = text
	return nil
}

// SetPriority adds delta to the selected item's priority. Unbounded in both
// directions; comparison only, no normalization.
func (v *ItemView) SetPriority(delta int) error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	it, err := v.store.Item(k)
	if err != nil {
		return err
	}
	it.Priority += delta
	return nil
}

// ToggleCompleted flips the selected item's completed flag.
func (v *ItemView) ToggleCompleted() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	it, err := v.store.Item(k)
	if err != nil {
		return err
	}
	it.Completed = !it.Completed
	return nil
}

// nextCursorAfterRemoval picks where the cursor lands once k's subtree is
// gone: the next sibling, else the previous sibling, else the parent, else
// empty.
func (v *ItemView) nextCursorAfterRemoval(k arena.ItemKey) arena.ItemKey {
	sibs, i, parent, err := v.siblingsOf(k)
	if err != nil {
		return arena.ItemKey{}
	}
	if i+1 < len(sibs) {
		return sibs[i+1]
	}
	if i > 0 {
		return sibs[i-1]
	}
	if parent.IsItem() {
		return parent.Item()
	}
	return arena.ItemKey{}
}

// Cut detaches the selected subtree into the clipboard. Ownership transfers
// whole; keys stay live. A subtree already in the clipboard is permanently
// dropped first ("last cut wins").
func (v *ItemView) Cut() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	next := v.nextCursorAfterRemoval(k)
	if err := v.clip.setCut(k); err != nil {
		return err
	}
	v.cursor = next
	return v.Refresh()
}

// pasteTarget resolves the paste destination. asChild pastes under the
// selection; otherwise after it in its sibling list. With an empty selection
// on an empty tree, sibling-paste targets the workspace root list (same
// policy as AddSibling).
func (v *ItemView) pasteTarget(asChild bool) (arena.ItemParent, int, error) {
	if v.cursor.IsZero() {
		if asChild || len(v.rows) != 0 {
			return arena.ItemParent{}, 0, ErrEmptySelection
		}
		return arena.InWorkspace(v.ws), -1, nil
	}
	k, err := v.selected()
	if err != nil {
		return arena.ItemParent{}, 0, err
	}
	if asChild {
		return arena.UnderItem(k), -1, nil
	}
	_, i, parent, err := v.siblingsOf(k)
	if err != nil {
		return arena.ItemParent{}, 0, err
	}
	return parent, i + 1, nil
}

func (v *ItemView) paste(asChild bool) error {
	root, ok := v.clip.Root()
	if !ok {
		return ErrClipboardEmpty
	}
	parent, at, err := v.pasteTarget(asChild)
	if err != nil {
		return err
	}
	// CycleDetected is checked inside ReparentItem before any splice, so a
	// failed paste leaves both the arena and the clipboard as they were.
	if err := v.store.ReparentItem(root, parent, at); err != nil {
		return err
	}
	if asChild {
		if it, err := v.store.Item(parent.Item()); err == nil {
			it.Collapsed = false
		}
	}
	v.clip.clear()
	v.cursor = root
	return v.Refresh()
}

// PasteSibling splices the clipboard subtree in immediately after the
// selection. The clipboard is single-use: it empties on success.
func (v *ItemView) PasteSibling() error { return v.paste(false) }

// PasteChild splices the clipboard subtree in as the selection's last child.
func (v *ItemView) PasteChild() error { return v.paste(true) }

// Delete retires the selected subtree permanently; it is not recoverable via
// the clipboard.
func (v *ItemView) Delete() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	next := v.nextCursorAfterRemoval(k)
	if err := v.store.RemoveItem(k); err != nil {
		return err
	}
	v.cursor = next
	return v.Refresh()
}
