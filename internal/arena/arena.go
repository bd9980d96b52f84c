// Package arena owns all workspace and todo entities in flat, stable-key
// tables. Keys are generation-checked handles: a key stays valid across
// unrelated mutations and is invalidated only when its entity is retired.
// The arena knows nothing about rendering order, depth, or visibility; that
// is the treeview package's job.
package arena

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// WorkspaceKey and ItemKey live in disjoint namespaces: the zero value of
// either is never a live key, and one kind can never address the other kind's
// table.
type WorkspaceKey struct {
	idx uint32
	gen uint32
}

func (k WorkspaceKey) IsZero() bool { return k.gen == 0 }

type ItemKey struct {
	idx uint32
	gen uint32
}

func (k ItemKey) IsZero() bool { return k.gen == 0 }

// Workspace holds a title, nested child workspaces, and the ordered root list
// of its own todo tree. Children/Items order may be rearranged in place by
// callers (sibling swaps); membership changes must go through Store ops so the
// arena's parent bookkeeping stays consistent.
type Workspace struct {
	ID        string
	Title     string
	Collapsed bool
	Children  []WorkspaceKey
	Items     []ItemKey
}

// Item is a single todo. Owner is the workspace whose tree currently contains
// the item; the store rewrites it on cross-workspace reparenting. Collapsed
// hides the item's children (not the item itself) in flattened views.
type Item struct {
	ID        string
	Owner     WorkspaceKey
	Text      string
	Completed bool
	Priority  int
	Effort    int
	Due       *time.Time
	Collapsed bool
	Children  []ItemKey
}

// ItemParent identifies where an item hangs (or is inserted): either the root
// list of a workspace or the child list of another item.
type ItemParent struct {
	ws   WorkspaceKey
	item ItemKey
}

// InWorkspace addresses a workspace's root item list.
func InWorkspace(k WorkspaceKey) ItemParent { return ItemParent{ws: k} }

// UnderItem addresses another item's child list.
func UnderItem(k ItemKey) ItemParent { return ItemParent{item: k} }

func (p ItemParent) IsItem() bool { return !p.item.IsZero() }

// Item returns the parent item key; only meaningful when IsItem reports true.
func (p ItemParent) Item() ItemKey { return p.item }

// Workspace returns the parent workspace key; only meaningful when IsItem
// reports false.
func (p ItemParent) Workspace() WorkspaceKey { return p.ws }

type wsSlot struct {
	gen  uint32
	live bool
	ws   Workspace

	// parent is zero both for root workspaces and for detached ones;
	// attached tells them apart.
	parent   WorkspaceKey
	attached bool
}

type itemSlot struct {
	gen  uint32
	live bool
	it   Item

	// zero parent => detached (clipboard-owned or mid-move).
	parent ItemParent
}

// Store is the arena itself. All lookups and mutations are O(1) in the table
// plus the size of the touched child lists; nothing here blocks or suspends,
// so a caller never observes a half-applied structural edit.
type Store struct {
	workspaces []wsSlot
	items      []itemSlot
	freeWs     []uint32
	freeItems  []uint32
	roots      []WorkspaceKey
}

func New() *Store {
	return &Store{}
}

// RootWorkspaces returns the ordered top-level workspace keys. The returned
// slice is the live list; callers may reorder it in place but must not add or
// remove entries.
func (s *Store) RootWorkspaces() []WorkspaceKey { return s.roots }

func (s *Store) wsSlotOf(k WorkspaceKey) (*wsSlot, error) {
	if k.IsZero() || int(k.idx) >= len(s.workspaces) {
		return nil, fmt.Errorf("workspace %v: %w", k, ErrUnknownKey)
	}
	sl := &s.workspaces[k.idx]
	if !sl.live || sl.gen != k.gen {
		return nil, fmt.Errorf("workspace %v: %w", k, ErrUnknownKey)
	}
	return sl, nil
}

func (s *Store) itemSlotOf(k ItemKey) (*itemSlot, error) {
	if k.IsZero() || int(k.idx) >= len(s.items) {
		return nil, fmt.Errorf("item %v: %w", k, ErrUnknownKey)
	}
	sl := &s.items[k.idx]
	if !sl.live || sl.gen != k.gen {
		return nil, fmt.Errorf("item %v: %w", k, ErrUnknownKey)
	}
	return sl, nil
}

// Workspace returns the live workspace for k, or ErrUnknownKey if the key was
// never minted or has been retired. The pointer is valid until the next
// insert; edits through it are visible to every later lookup.
func (s *Store) Workspace(k WorkspaceKey) (*Workspace, error) {
	sl, err := s.wsSlotOf(k)
	if err != nil {
		return nil, err
	}
	return &sl.ws, nil
}

// Item is the item-table counterpart of Workspace.
func (s *Store) Item(k ItemKey) (*Item, error) {
	sl, err := s.itemSlotOf(k)
	if err != nil {
		return nil, err
	}
	return &sl.it, nil
}

// ParentOfItem reports where k currently hangs. attached is false while the
// subtree is detached (held by a clipboard).
func (s *Store) ParentOfItem(k ItemKey) (parent ItemParent, attached bool, err error) {
	sl, err := s.itemSlotOf(k)
	if err != nil {
		return ItemParent{}, false, err
	}
	p := sl.parent
	return p, !p.ws.IsZero() || !p.item.IsZero(), nil
}

// ParentOfWorkspace reports k's parent workspace. A zero parent with
// attached=true means k is a root workspace.
func (s *Store) ParentOfWorkspace(k WorkspaceKey) (parent WorkspaceKey, attached bool, err error) {
	sl, err := s.wsSlotOf(k)
	if err != nil {
		return WorkspaceKey{}, false, err
	}
	return sl.parent, sl.attached, nil
}

func (s *Store) mintWorkspace(ws Workspace) WorkspaceKey {
	if n := len(s.freeWs); n > 0 {
		idx := s.freeWs[n-1]
		s.freeWs = s.freeWs[:n-1]
		sl := &s.workspaces[idx]
		sl.live = true
		sl.ws = ws
		sl.parent = WorkspaceKey{}
		sl.attached = false
		return WorkspaceKey{idx: idx, gen: sl.gen}
	}
	s.workspaces = append(s.workspaces, wsSlot{gen: 1, live: true, ws: ws})
	return WorkspaceKey{idx: uint32(len(s.workspaces) - 1), gen: 1}
}

func (s *Store) mintItem(it Item) ItemKey {
	if n := len(s.freeItems); n > 0 {
		idx := s.freeItems[n-1]
		s.freeItems = s.freeItems[:n-1]
		sl := &s.items[idx]
		sl.live = true
		sl.it = it
		sl.parent = ItemParent{}
		return ItemKey{idx: idx, gen: sl.gen}
	}
	s.items = append(s.items, itemSlot{gen: 1, live: true, it: it})
	return ItemKey{idx: uint32(len(s.items) - 1), gen: 1}
}

// InsertWorkspace mints a new workspace under parent at index at (clamped;
// negative appends). A zero parent inserts into the top-level list.
func (s *Store) InsertWorkspace(parent WorkspaceKey, at int, title string) (WorkspaceKey, error) {
	if parent.IsZero() {
		k := s.mintWorkspace(Workspace{ID: NewID(), Title: title})
		s.workspaces[k.idx].attached = true
		s.roots = insertKeyAt(s.roots, at, k)
		return k, nil
	}
	psl, err := s.wsSlotOf(parent)
	if err != nil {
		return WorkspaceKey{}, fmt.Errorf("%w: %v", ErrInvalidParent, err)
	}
	k := s.mintWorkspace(Workspace{ID: NewID(), Title: title})
	psl = &s.workspaces[parent.idx] // mint may have grown the table
	sl := &s.workspaces[k.idx]
	sl.parent = parent
	sl.attached = true
	psl.ws.Children = insertKeyAt(psl.ws.Children, at, k)
	return k, nil
}

// InsertItem mints a new item under parent at index at (clamped; negative
// appends). Fails with ErrInvalidParent when the parent key is dead.
func (s *Store) InsertItem(parent ItemParent, at int, text string) (ItemKey, error) {
	if parent.IsItem() {
		psl, err := s.itemSlotOf(parent.item)
		if err != nil {
			return ItemKey{}, fmt.Errorf("%w: %v", ErrInvalidParent, err)
		}
		owner := psl.it.Owner
		k := s.mintItem(Item{ID: NewID(), Owner: owner, Text: text})
		psl = &s.items[parent.item.idx]
		s.items[k.idx].parent = parent
		psl.it.Children = insertItemKeyAt(psl.it.Children, at, k)
		return k, nil
	}
	psl, err := s.wsSlotOf(parent.ws)
	if err != nil {
		return ItemKey{}, fmt.Errorf("%w: %v", ErrInvalidParent, err)
	}
	k := s.mintItem(Item{ID: NewID(), Owner: parent.ws, Text: text})
	s.items[k.idx].parent = parent
	psl.ws.Items = insertItemKeyAt(psl.ws.Items, at, k)
	return k, nil
}

// DetachItem unhooks k's whole subtree from its parent list. Every key in the
// subtree stays live; ownership passes to the caller (typically a clipboard)
// until ReparentItem splices it back in or RemoveItem retires it.
func (s *Store) DetachItem(k ItemKey) error {
	sl, err := s.itemSlotOf(k)
	if err != nil {
		return err
	}
	p := sl.parent
	switch {
	case p.IsItem():
		psl, err := s.itemSlotOf(p.item)
		if err != nil {
			return err
		}
		psl.it.Children = removeItemKey(psl.it.Children, k)
	case !p.ws.IsZero():
		psl, err := s.wsSlotOf(p.ws)
		if err != nil {
			return err
		}
		psl.ws.Items = removeItemKey(psl.ws.Items, k)
	default:
		return nil // already detached
	}
	sl.parent = ItemParent{}
	return nil
}

// RemoveItem detaches k and retires every key in its subtree (post-order).
// This is permanent: the keys cannot be pasted back.
func (s *Store) RemoveItem(k ItemKey) error {
	if err := s.DetachItem(k); err != nil {
		return err
	}
	s.retireItemSubtree(k)
	return nil
}

func (s *Store) retireItemSubtree(k ItemKey) {
	sl, err := s.itemSlotOf(k)
	if err != nil {
		return
	}
	for _, c := range sl.it.Children {
		s.retireItemSubtree(c)
	}
	sl.live = false
	sl.gen++
	sl.it = Item{}
	sl.parent = ItemParent{}
	s.freeItems = append(s.freeItems, k.idx)
}

// ReparentItem moves k's subtree under parent at index at. The cycle check
// (parent inside k's subtree, or parent == k) runs before any list is
// spliced, so a failed reparent leaves the arena untouched. Works on both
// attached and detached subtrees; cross-workspace moves rewrite Owner on the
// whole subtree.
func (s *Store) ReparentItem(k ItemKey, parent ItemParent, at int) error {
	if _, err := s.itemSlotOf(k); err != nil {
		return err
	}
	var owner WorkspaceKey
	if parent.IsItem() {
		psl, err := s.itemSlotOf(parent.item)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParent, err)
		}
		if parent.item == k || s.itemInSubtree(k, parent.item) {
			return fmt.Errorf("paste into own subtree: %w", ErrCycleDetected)
		}
		owner = psl.it.Owner
	} else {
		if _, err := s.wsSlotOf(parent.ws); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParent, err)
		}
		owner = parent.ws
	}

	if err := s.DetachItem(k); err != nil {
		return err
	}
	if parent.IsItem() {
		psl := &s.items[parent.item.idx]
		psl.it.Children = insertItemKeyAt(psl.it.Children, at, k)
	} else {
		psl := &s.workspaces[parent.ws.idx]
		psl.ws.Items = insertItemKeyAt(psl.ws.Items, at, k)
	}
	s.items[k.idx].parent = parent
	s.setOwner(k, owner)
	return nil
}

// itemInSubtree reports whether needle lies strictly inside root's subtree.
func (s *Store) itemInSubtree(root, needle ItemKey) bool {
	sl, err := s.itemSlotOf(root)
	if err != nil {
		return false
	}
	for _, c := range sl.it.Children {
		if c == needle || s.itemInSubtree(c, needle) {
			return true
		}
	}
	return false
}

func (s *Store) setOwner(k ItemKey, owner WorkspaceKey) {
	sl, err := s.itemSlotOf(k)
	if err != nil {
		return
	}
	sl.it.Owner = owner
	for _, c := range sl.it.Children {
		s.setOwner(c, owner)
	}
}

// DetachWorkspace is DetachItem for the workspace meta-tree.
func (s *Store) DetachWorkspace(k WorkspaceKey) error {
	sl, err := s.wsSlotOf(k)
	if err != nil {
		return err
	}
	if !sl.attached {
		return nil
	}
	if sl.parent.IsZero() {
		s.roots = removeKey(s.roots, k)
	} else {
		psl, err := s.wsSlotOf(sl.parent)
		if err != nil {
			return err
		}
		psl.ws.Children = removeKey(psl.ws.Children, k)
	}
	sl.parent = WorkspaceKey{}
	sl.attached = false
	return nil
}

// RemoveWorkspace detaches k and retires its whole subtree, including every
// item tree owned by the retired workspaces.
func (s *Store) RemoveWorkspace(k WorkspaceKey) error {
	if err := s.DetachWorkspace(k); err != nil {
		return err
	}
	s.retireWorkspaceSubtree(k)
	return nil
}

func (s *Store) retireWorkspaceSubtree(k WorkspaceKey) {
	sl, err := s.wsSlotOf(k)
	if err != nil {
		return
	}
	for _, c := range sl.ws.Children {
		s.retireWorkspaceSubtree(c)
	}
	for _, it := range sl.ws.Items {
		s.retireItemSubtree(it)
	}
	sl.live = false
	sl.gen++
	sl.ws = Workspace{}
	sl.parent = WorkspaceKey{}
	sl.attached = false
	s.freeWs = append(s.freeWs, k.idx)
}

// ReparentWorkspace moves k under parent (zero parent => top level) at index
// at, with the same cycle discipline as ReparentItem.
func (s *Store) ReparentWorkspace(k WorkspaceKey, parent WorkspaceKey, at int) error {
	if _, err := s.wsSlotOf(k); err != nil {
		return err
	}
	if !parent.IsZero() {
		if _, err := s.wsSlotOf(parent); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidParent, err)
		}
		if parent == k || s.workspaceInSubtree(k, parent) {
			return fmt.Errorf("paste into own subtree: %w", ErrCycleDetected)
		}
	}
	if err := s.DetachWorkspace(k); err != nil {
		return err
	}
	sl := &s.workspaces[k.idx]
	if parent.IsZero() {
		s.roots = insertKeyAt(s.roots, at, k)
	} else {
		psl := &s.workspaces[parent.idx]
		psl.ws.Children = insertKeyAt(psl.ws.Children, at, k)
	}
	sl.parent = parent
	sl.attached = true
	return nil
}

func (s *Store) workspaceInSubtree(root, needle WorkspaceKey) bool {
	sl, err := s.wsSlotOf(root)
	if err != nil {
		return false
	}
	for _, c := range sl.ws.Children {
		if c == needle || s.workspaceInSubtree(c, needle) {
			return true
		}
	}
	return false
}

// NewID mints a ULID string for the persisted form.
func NewID() string {
	t := ulid.Timestamp(time.Now())
	id, err := ulid.New(t, ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return id.String()
}

func insertKeyAt(list []WorkspaceKey, at int, k WorkspaceKey) []WorkspaceKey {
	if at < 0 || at > len(list) {
		at = len(list)
	}
	list = append(list, WorkspaceKey{})
	copy(list[at+1:], list[at:])
	list[at] = k
	return list
}

func insertItemKeyAt(list []ItemKey, at int, k ItemKey) []ItemKey {
	if at < 0 || at > len(list) {
		at = len(list)
	}
	list = append(list, ItemKey{})
	copy(list[at+1:], list[at:])
	list[at] = k
	return list
}

func removeKey(list []WorkspaceKey, k WorkspaceKey) []WorkspaceKey {
	for i, v := range list {
		if v == k {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeItemKey(list []ItemKey, k ItemKey) []ItemKey {
	for i, v := range list {
		if v == k {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
