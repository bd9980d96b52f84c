package arena

import "doneit-cli/internal/model"

// ToPersisted converts the arena into the plain persisted form: an ordered
// sequence of workspaces, each holding nested child workspaces and a
// recursively nested todo tree. The projection is loss-free and has no
// behavior of its own. Detached (clipboard-held) subtrees are not part of any
// tree and therefore do not appear.
func (s *Store) ToPersisted() []model.Workspace {
	out := make([]model.Workspace, 0, len(s.roots))
	for _, k := range s.roots {
		out = append(out, s.persistWorkspace(k))
	}
	return out
}

func (s *Store) persistWorkspace(k WorkspaceKey) model.Workspace {
	ws, err := s.Workspace(k)
	if err != nil {
		return model.Workspace{}
	}
	out := model.Workspace{ID: ws.ID, Title: ws.Title}
	for _, c := range ws.Children {
		out.Children = append(out.Children, s.persistWorkspace(c))
	}
	for _, it := range ws.Items {
		out.Items = append(out.Items, s.persistItem(it))
	}
	return out
}

func (s *Store) persistItem(k ItemKey) model.Todo {
	it, err := s.Item(k)
	if err != nil {
		return model.Todo{}
	}
	out := model.Todo{
		ID:        it.ID,
		Text:      it.Text,
		Completed: it.Completed,
		Priority:  it.Priority,
		Effort:    it.Effort,
		Due:       it.Due,
	}
	for _, c := range it.Children {
		out.Children = append(out.Children, s.persistItem(c))
	}
	return out
}

// FromPersisted builds a fresh arena from the persisted form, minting new
// keys in traversal order. Key literals never survive a save/load round trip;
// identity is structural. Entities without a stored ID get a fresh one.
func FromPersisted(workspaces []model.Workspace) *Store {
	s := New()
	for _, w := range workspaces {
		s.loadWorkspace(WorkspaceKey{}, w)
	}
	return s
}

func (s *Store) loadWorkspace(parent WorkspaceKey, w model.Workspace) {
	k, err := s.InsertWorkspace(parent, -1, w.Title)
	if err != nil {
		return
	}
	if w.ID != "" {
		s.workspaces[k.idx].ws.ID = w.ID
	}
	for _, t := range w.Items {
		s.loadItem(InWorkspace(k), t)
	}
	for _, c := range w.Children {
		s.loadWorkspace(k, c)
	}
}

func (s *Store) loadItem(parent ItemParent, t model.Todo) {
	k, err := s.InsertItem(parent, -1, t.Text)
	if err != nil {
		return
	}
	it := &s.items[k.idx].it
	if t.ID != "" {
		it.ID = t.ID
	}
	it.Completed = t.Completed
	it.Priority = t.Priority
	it.Effort = t.Effort
	it.Due = t.Due
	for _, c := range t.Children {
		s.loadItem(UnderItem(k), c)
	}
}
