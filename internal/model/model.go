package model

import "time"

// Workspace is the persisted form of a workspace: a title plus its nested
// child workspaces and its own todo tree. This is a pure data shape shared by
// the store backends and the arena projection; it carries no behavior.
type Workspace struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Children []Workspace `json:"children,omitempty"`
	Items    []Todo      `json:"items,omitempty"`
}

// Todo is the persisted form of a single item. Children are nested in order;
// identity across save/load is positional, the ID is only a stable label.
type Todo struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Priority  int        `json:"priority"`
	Effort    int        `json:"effort,omitempty"`
	Due       *time.Time `json:"due,omitempty"`
	Children  []Todo     `json:"children,omitempty"`
}
