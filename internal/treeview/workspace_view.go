package treeview

import "doneit-cli/internal/arena"

// WorkspaceRow is one entry of the flattened workspace meta-tree.
type WorkspaceRow struct {
	Key     arena.WorkspaceKey
	Parent  arena.WorkspaceKey // zero for top-level workspaces
	Depth   int
	Visible bool
}

// WorkspaceRowInfo bundles the displayable fields for one meta-tree row.
type WorkspaceRowInfo struct {
	WorkspaceRow
	Title       string
	HasChildren bool
	Collapsed   bool
	ItemCount   int
}

// WorkspaceView is the tree view state for the workspace list itself: the
// same flattened-row machinery as ItemView, over the meta-tree of
// workspaces.
type WorkspaceView struct {
	store *arena.Store
	clip  *WorkspaceClipboard

	rows   []WorkspaceRow
	cursor arena.WorkspaceKey
}

func NewWorkspaceView(s *arena.Store, clip *WorkspaceClipboard) *WorkspaceView {
	v := &WorkspaceView{store: s, clip: clip}
	v.Refresh()
	return v
}

// Refresh rebuilds the flattened sequence from the arena's root list.
func (v *WorkspaceView) Refresh() {
	v.rows = v.rows[:0]
	for _, k := range v.store.RootWorkspaces() {
		v.walk(k, arena.WorkspaceKey{}, 0, true)
	}
	v.normalizeCursor()
}

func (v *WorkspaceView) walk(k, parent arena.WorkspaceKey, depth int, visible bool) {
	ws, err := v.store.Workspace(k)
	if err != nil {
		return
	}
	v.rows = append(v.rows, WorkspaceRow{Key: k, Parent: parent, Depth: depth, Visible: visible})
	childVisible := visible && !ws.Collapsed
	for _, c := range ws.Children {
		v.walk(c, k, depth+1, childVisible)
	}
}

func (v *WorkspaceView) normalizeCursor() {
	if len(v.rows) == 0 {
		v.cursor = arena.WorkspaceKey{}
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
	v.cursor = arena.WorkspaceKey{}
}

func (v *WorkspaceView) indexOf(k arena.WorkspaceKey) int {
	for i, r := range v.rows {
		if r.Key == k {
			return i
		}
	}
	return -1
}

func (v *WorkspaceView) AllRows() []WorkspaceRow { return v.rows }

func (v *WorkspaceView) Rows() []WorkspaceRow {
	out := make([]WorkspaceRow, 0, len(v.rows))
	for _, r := range v.rows {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

func (v *WorkspaceView) Cursor() (WorkspaceRow, bool) {
	if v.cursor.IsZero() {
		return WorkspaceRow{}, false
	}
	if i := v.indexOf(v.cursor); i >= 0 {
		return v.rows[i], true
	}
	return WorkspaceRow{}, false
}

func (v *WorkspaceView) CursorVisibleIndex() int {
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
func (v *WorkspaceView) Select(k arena.WorkspaceKey) {
	if i := v.indexOf(k); i >= 0 && v.rows[i].Visible {
		v.cursor = k
	}
}

func (v *WorkspaceView) Info(r WorkspaceRow) (WorkspaceRowInfo, error) {
	ws, err := v.store.Workspace(r.Key)
	if err != nil {
		return WorkspaceRowInfo{}, err
	}
	return WorkspaceRowInfo{
		WorkspaceRow: r,
		Title:        ws.Title,
		HasChildren:  len(ws.Children) > 0,
		Collapsed:    ws.Collapsed,
		ItemCount:    len(ws.Items),
	}, nil
}

func (v *WorkspaceView) selected() (arena.WorkspaceKey, error) {
	if v.cursor.IsZero() {
		return arena.WorkspaceKey{}, ErrEmptySelection
	}
	if _, err := v.store.Workspace(v.cursor); err != nil {
		return arena.WorkspaceKey{}, ErrEmptySelection
	}
	return v.cursor, nil
}

func (v *WorkspaceView) Navigate(delta int) error {
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

func (v *WorkspaceView) siblingsOf(k arena.WorkspaceKey) (sibs []arena.WorkspaceKey, idx int, parent arena.WorkspaceKey, err error) {
	parent, attached, err := v.store.ParentOfWorkspace(k)
	if err != nil || !attached {
		return nil, -1, arena.WorkspaceKey{}, ErrEmptySelection
	}
	if parent.IsZero() {
		sibs = v.store.RootWorkspaces()
	} else {
		p, err := v.store.Workspace(parent)
		if err != nil {
			return nil, -1, arena.WorkspaceKey{}, err
		}
		sibs = p.Children
	}
	for i, s := range sibs {
		if s == k {
			return sibs, i, parent, nil
		}
	}
	return nil, -1, arena.WorkspaceKey{}, arena.ErrUnknownKey
}

// MoveWorkspace swaps the selection with a neighboring sibling; boundary is a
// no-op.
func (v *WorkspaceView) MoveWorkspace(delta int) error {
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
	v.Refresh()
	return nil
}

func (v *WorkspaceView) ToggleCollapse() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	ws, err := v.store.Workspace(k)
	if err != nil {
		return err
	}
	ws.Collapsed = !ws.Collapsed
	v.repairVisibility()
	return nil
}

func (v *WorkspaceView) repairVisibility() {
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
		if ws, err := v.store.Workspace(r.Key); err == nil {
			collapsed = ws.Collapsed
		}
		hidden = append(hidden, collapsed)
	}
}

// AddSibling inserts a new workspace after the selection; on an empty list it
// becomes the first top-level workspace.
func (v *WorkspaceView) AddSibling(title string) (arena.WorkspaceKey, error) {
	if v.cursor.IsZero() {
		if len(v.rows) != 0 {
			return arena.WorkspaceKey{}, ErrEmptySelection
		}
		k, err := v.store.InsertWorkspace(arena.WorkspaceKey{}, -1, title)
		if err != nil {
			return arena.WorkspaceKey{}, err
		}
		v.cursor = k
		v.Refresh()
		return k, nil
	}
	k, err := v.selected()
	if err != nil {
		return arena.WorkspaceKey{}, err
	}
	_, i, parent, err := v.siblingsOf(k)
	if err != nil {
		return arena.WorkspaceKey{}, err
	}
	nk, err := v.store.InsertWorkspace(parent, i+1, title)
	if err != nil {
		return arena.WorkspaceKey{}, err
	}
	v.cursor = nk
	v.Refresh()
	return nk, nil
}

// AddChild appends a new workspace under the selection, un-collapsing it.
func (v *WorkspaceView) AddChild(title string) (arena.WorkspaceKey, error) {
	k, err := v.selected()
	if err != nil {
		return arena.WorkspaceKey{}, err
	}
	ws, err := v.store.Workspace(k)
	if err != nil {
		return arena.WorkspaceKey{}, err
	}
	ws.Collapsed = false
	nk, err := v.store.InsertWorkspace(k, -1, title)
	if err != nil {
		return arena.WorkspaceKey{}, err
	}
	v.cursor = nk
	v.Refresh()
	return nk, nil
}

// EditTitle replaces the selected workspace's title in place.
func (v *WorkspaceView) EditTitle(title string) error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	ws, err := v.store.Workspace(k)
	if err != nil {
		return err
	}
	ws.Title = title
	return nil
}

func (v *WorkspaceView) nextCursorAfterRemoval(k arena.WorkspaceKey) arena.WorkspaceKey {
	sibs, i, parent, err := v.siblingsOf(k)
	if err != nil {
		return arena.WorkspaceKey{}
	}
	if i+1 < len(sibs) {
		return sibs[i+1]
	}
	if i > 0 {
		return sibs[i-1]
	}
	return parent // zero when k was the only top-level workspace
}

// Cut detaches the selected workspace subtree into the workspace clipboard.
func (v *WorkspaceView) Cut() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	next := v.nextCursorAfterRemoval(k)
	if err := v.clip.setCut(k); err != nil {
		return err
	}
	v.cursor = next
	v.Refresh()
	return nil
}

func (v *WorkspaceView) paste(asChild bool) error {
	root, ok := v.clip.Root()
	if !ok {
		return ErrClipboardEmpty
	}
	var parent arena.WorkspaceKey
	at := -1
	if v.cursor.IsZero() {
		if asChild || len(v.rows) != 0 {
			return ErrEmptySelection
		}
		// parent stays zero: top-level paste into an empty list.
	} else {
		k, err := v.selected()
		if err != nil {
			return err
		}
		if asChild {
			parent = k
		} else {
			_, i, p, err := v.siblingsOf(k)
			if err != nil {
				return err
			}
			parent = p
			at = i + 1
		}
	}
	if err := v.store.ReparentWorkspace(root, parent, at); err != nil {
		return err
	}
	if asChild {
		if ws, err := v.store.Workspace(parent); err == nil {
			ws.Collapsed = false
		}
	}
	v.clip.clear()
	v.cursor = root
	v.Refresh()
	return nil
}

func (v *WorkspaceView) PasteSibling() error { return v.paste(false) }
func (v *WorkspaceView) PasteChild() error   { return v.paste(true) }

// Delete retires the selected workspace subtree, including its item trees.
func (v *WorkspaceView) Delete() error {
	k, err := v.selected()
	if err != nil {
		return err
	}
	next := v.nextCursorAfterRemoval(k)
	if err := v.store.RemoveWorkspace(k); err != nil {
		return err
	}
	v.cursor = next
	v.Refresh()
	return nil
}
