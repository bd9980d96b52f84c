package arena

// FindWorkspaceByID walks the attached workspace forest for a stored ID.
func (s *Store) FindWorkspaceByID(id string) (WorkspaceKey, bool) {
	if id == "" {
		return WorkspaceKey{}, false
	}
	var walk func(ks []WorkspaceKey) (WorkspaceKey, bool)
	walk = func(ks []WorkspaceKey) (WorkspaceKey, bool) {
		for _, k := range ks {
			ws, err := s.Workspace(k)
			if err != nil {
				continue
			}
			if ws.ID == id {
				return k, true
			}
			if found, ok := walk(ws.Children); ok {
				return found, true
			}
		}
		return WorkspaceKey{}, false
	}
	return walk(s.RootWorkspaces())
}

// FindItemByID walks every attached workspace's item tree for a stored ID.
func (s *Store) FindItemByID(id string) (ItemKey, bool) {
	if id == "" {
		return ItemKey{}, false
	}
	var walkItems func(ks []ItemKey) (ItemKey, bool)
	walkItems = func(ks []ItemKey) (ItemKey, bool) {
		for _, k := range ks {
			it, err := s.Item(k)
			if err != nil {
				continue
			}
			if it.ID == id {
				return k, true
			}
			if found, ok := walkItems(it.Children); ok {
				return found, true
			}
		}
		return ItemKey{}, false
	}
	var walkWs func(ks []WorkspaceKey) (ItemKey, bool)
	walkWs = func(ks []WorkspaceKey) (ItemKey, bool) {
		for _, k := range ks {
			ws, err := s.Workspace(k)
			if err != nil {
				continue
			}
			if found, ok := walkItems(ws.Items); ok {
				return found, true
			}
			if found, ok := walkWs(ws.Children); ok {
				return found, true
			}
		}
		return ItemKey{}, false
	}
	return walkWs(s.RootWorkspaces())
}
