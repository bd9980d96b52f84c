package treeview

import "doneit-cli/internal/arena"

// Mode says what the clipboard holds. Only cut exists: paste splices the
// detached subtree back by key, never a deep copy.
type Mode int

const (
	ModeNone Mode = iota
	ModeCut
)

// Clipboard owns at most one detached item subtree. It is shared between the
// item views of all workspaces so a cut in one workspace can paste into
// another. Overwriting is "last cut wins": the previous subtree is retired,
// permanently.
type Clipboard struct {
	store *arena.Store
	mode  Mode
	root  arena.ItemKey
}

func NewClipboard(s *arena.Store) *Clipboard {
	return &Clipboard{store: s}
}

func (c *Clipboard) Mode() Mode { return c.mode }

// Root returns the held subtree's root key, if any.
func (c *Clipboard) Root() (arena.ItemKey, bool) {
	if c.mode == ModeNone {
		return arena.ItemKey{}, false
	}
	return c.root, true
}

func (c *Clipboard) setCut(k arena.ItemKey) error {
	if c.mode == ModeCut {
		// Last cut wins; the evicted subtree is gone for good.
		_ = c.store.RemoveItem(c.root)
	}
	if err := c.store.DetachItem(k); err != nil {
		return err
	}
	c.mode = ModeCut
	c.root = k
	return nil
}

func (c *Clipboard) clear() {
	c.mode = ModeNone
	c.root = arena.ItemKey{}
}

// WorkspaceClipboard is the meta-tree counterpart of Clipboard.
type WorkspaceClipboard struct {
	store *arena.Store
	mode  Mode
	root  arena.WorkspaceKey
}

func NewWorkspaceClipboard(s *arena.Store) *WorkspaceClipboard {
	return &WorkspaceClipboard{store: s}
}

func (c *WorkspaceClipboard) Mode() Mode { return c.mode }

func (c *WorkspaceClipboard) Root() (arena.WorkspaceKey, bool) {
	if c.mode == ModeNone {
		return arena.WorkspaceKey{}, false
	}
	return c.root, true
}

func (c *WorkspaceClipboard) setCut(k arena.WorkspaceKey) error {
	if c.mode == ModeCut {
		_ = c.store.RemoveWorkspace(c.root)
	}
	if err := c.store.DetachWorkspace(k); err != nil {
		return err
	}
	c.mode = ModeCut
	c.root = k
	return nil
}

func (c *WorkspaceClipboard) clear() {
	c.mode = ModeNone
	c.root = arena.WorkspaceKey{}
}
