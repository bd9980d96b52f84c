package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "embed"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"doneit-cli/internal/model"
)

//go:embed legacy_schema.json
var legacySchemaJSON string

// Legacy wire format of doneit.json. Items were "todos" with an urgency
// number and a pending flag instead of priority/completed.
type legacyStore struct {
	Workspaces []legacyWorkspace `json:"workspaces"`
}

type legacyWorkspace struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Children    []legacyWorkspace `json:"children"`
	Todos       []legacyTodo      `json:"todos"`
}

type legacyTodo struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Urgency     int          `json:"urgency"`
	Effort      int          `json:"effort"`
	Pending     bool         `json:"pending"`
	Due         *legacyTime  `json:"due"`
	Children    []legacyTodo `json:"children"`
}

// legacyTime is the wire shape of an optional due timestamp in doneit.json:
// seconds and nanoseconds since the Unix epoch.
type legacyTime struct {
	Secs  int64 `json:"secs_since_epoch"`
	Nanos int64 `json:"nanos_since_epoch"`
}

func (t *legacyTime) time() *time.Time {
	if t == nil {
		return nil
	}
	tt := time.Unix(t.Secs, t.Nanos).UTC()
	return &tt
}

// loadLegacyDB parses and validates a doneit.json payload and converts it to
// the current model.
func loadLegacyDB(b []byte) (*DB, error) {
	if err := validateLegacy(b); err != nil {
		return nil, err
	}
	var ls legacyStore
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&ls); err != nil {
		return nil, err
	}

	var convertTodos func(ts []legacyTodo) []model.Todo
	convertTodos = func(ts []legacyTodo) []model.Todo {
		var out []model.Todo
		for _, t := range ts {
			out = append(out, model.Todo{
				ID:        t.ID,
				Text:      t.Description,
				Completed: !t.Pending,
				Priority:  t.Urgency,
				Effort:    t.Effort,
				Due:       t.Due.time(),
				Children:  convertTodos(t.Children),
			})
		}
		return out
	}
	var convertWorkspaces func(ws []legacyWorkspace) []model.Workspace
	convertWorkspaces = func(ws []legacyWorkspace) []model.Workspace {
		var out []model.Workspace
		for _, w := range ws {
			out = append(out, model.Workspace{
				ID:       w.ID,
				Title:    w.Description,
				Items:    convertTodos(w.Todos),
				Children: convertWorkspaces(w.Children),
			})
		}
		return out
	}

	return &DB{Version: 1, Workspaces: convertWorkspaces(ls.Workspaces)}, nil
}

func validateLegacy(b []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("doneit.schema.json", strings.NewReader(legacySchemaJSON)); err != nil {
		return err
	}
	schema, err := compiler.Compile("doneit.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid legacy file: %w", err)
	}
	return nil
}
