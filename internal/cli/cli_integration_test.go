package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"doneit-cli/internal/store"
)

func run(t *testing.T, dir string, args ...string) []byte {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("doneit %v: %v (stderr: %s)", args, err, errOut.String())
	}
	return out.Bytes()
}

func runExpectErr(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	if err := cmd.Execute(); err == nil {
		t.Fatalf("doneit %v succeeded, want error", args)
	}
}

func TestWorkspaceAndItemLifecycle(t *testing.T) {
	dir := t.TempDir()

	run(t, dir, "init")

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(run(t, dir, "workspaces", "add", "--title", "Home"), &created); err != nil {
		t.Fatalf("parse add output: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("workspace id missing")
	}
	wsID := created.ID

	var item struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(run(t, dir, "items", "add", "--workspace", wsID, "--text", "water plants", "--priority", "2"), &item); err != nil {
		t.Fatalf("parse item add: %v", err)
	}
	var child struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(run(t, dir, "items", "add", "--parent", item.ID, "--text", "fill the can"), &child); err != nil {
		t.Fatalf("parse child add: %v", err)
	}

	var rows []itemRowOut
	if err := json.Unmarshal(run(t, dir, "items", "list", "--workspace", wsID), &rows); err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	if rows[0].Text != "water plants" || rows[0].Priority != 2 || rows[0].Depth != 0 {
		t.Fatalf("first row = %+v", rows[0])
	}
	if rows[1].Text != "fill the can" || rows[1].Depth != 1 {
		t.Fatalf("child row = %+v", rows[1])
	}

	var done struct {
		Completed bool `json:"completed"`
	}
	if err := json.Unmarshal(run(t, dir, "items", "done", item.ID), &done); err != nil {
		t.Fatalf("parse done: %v", err)
	}
	if !done.Completed {
		t.Fatalf("done should toggle to true")
	}

	run(t, dir, "items", "rm", item.ID)
	if err := json.Unmarshal(run(t, dir, "items", "list", "--workspace", wsID), &rows); err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("subtree removal left rows: %+v", rows)
	}
}

func TestItemEffortAndDueFlags(t *testing.T) {
	dir := t.TempDir()

	var ws struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(run(t, dir, "workspaces", "add", "--title", "Deadlines"), &ws); err != nil {
		t.Fatalf("parse: %v", err)
	}
	run(t, dir, "items", "add", "--workspace", ws.ID, "--text", "file taxes",
		"--effort", "4", "--due", "2026-09-14T12:00:00Z")

	var rows []itemRowOut
	if err := json.Unmarshal(run(t, dir, "items", "list", "--workspace", ws.ID), &rows); err != nil {
		t.Fatalf("parse list: %v", err)
	}
	if len(rows) != 1 || rows[0].Effort != 4 {
		t.Fatalf("rows = %+v, want one row with effort 4", rows)
	}
	want := time.Date(2026, 9, 14, 12, 0, 0, 0, time.UTC)
	if rows[0].Due == nil || !rows[0].Due.Equal(want) {
		t.Fatalf("due = %v, want %v", rows[0].Due, want)
	}

	runExpectErr(t, dir, "items", "add", "--workspace", ws.ID, "--text", "bad", "--due", "tomorrow")
}

func TestNestedWorkspaceListing(t *testing.T) {
	dir := t.TempDir()

	var parent struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(run(t, dir, "workspaces", "add", "--title", "Work"), &parent); err != nil {
		t.Fatalf("parse: %v", err)
	}
	run(t, dir, "workspaces", "add", "--title", "Errands", "--parent", parent.ID)

	var rows []workspaceRowOut
	if err := json.Unmarshal(run(t, dir, "workspaces", "list"), &rows); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 || rows[1].Depth != 1 || rows[1].Title != "Errands" {
		t.Fatalf("rows = %+v", rows)
	}

	run(t, dir, "workspaces", "rm", parent.ID)
	if err := json.Unmarshal(run(t, dir, "workspaces", "list"), &rows); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("nested workspace survived rm: %+v", rows)
	}
}

func TestUnknownIDsFail(t *testing.T) {
	dir := t.TempDir()
	runExpectErr(t, dir, "items", "list", "--workspace", "ws-missing")
	runExpectErr(t, dir, "items", "done", "t-missing")
	runExpectErr(t, dir, "workspaces", "rm", "ws-missing")
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "workspaces", "add", "--title", "Home")

	out := run(t, dir, "export")
	var db struct {
		Workspaces []struct {
			Title string `json:"title"`
		} `json:"workspaces"`
	}
	if err := json.Unmarshal(out, &db); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(db.Workspaces) != 1 || db.Workspaces[0].Title != "Home" {
		t.Fatalf("export = %s", out)
	}
}

func TestMutationsRequireStoreLock(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "init")

	lock, err := store.Store{Dir: dir}.AcquireLock()
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Unlock()

	runExpectErr(t, dir, "workspaces", "add", "--title", "Blocked")
	runExpectErr(t, dir, "items", "add", "--workspace", "nope", "--text", "blocked")

	// Read-only commands do not take the lock.
	run(t, dir, "workspaces", "list")
}
