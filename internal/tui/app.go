package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"doneit-cli/internal/arena"
	"doneit-cli/internal/store"
	"doneit-cli/internal/treeview"
)

type pane int

const (
	paneWorkspaces pane = iota
	paneItems
)

type appModel struct {
	dir    string
	st     store.Store
	logger *log.Logger

	arena    *arena.Store
	wsClip   *treeview.WorkspaceClipboard
	itemClip *treeview.Clipboard
	wsView   *treeview.WorkspaceView
	itemView map[arena.WorkspaceKey]*treeview.ItemView

	// active is the workspace whose items the right pane shows.
	active arena.WorkspaceKey

	// savedCursors maps workspace id to the item id the cursor rested on
	// when the state file was written; consumed lazily as views are built.
	savedCursors map[string]string

	pane   pane
	width  int
	height int

	editing bool
	input   textinput.Model

	// searching is true while the query is being typed; search is the
	// committed (or in-progress) query highlighted in the item pane.
	searching bool
	search    string

	// sortPending is set after s; the next key picks the sort order.
	sortPending bool

	minibuffer string
	styles     styles

	lastSaveAt time.Time
}

func newAppModel(dir string, db *store.DB, theme store.Theme, logger *log.Logger) appModel {
	m := appModel{
		dir:    dir,
		st:     store.Store{Dir: dir},
		logger: logger,
		styles: newStyles(theme),
		pane:   paneWorkspaces,
	}
	m.input = textinput.New()
	m.input.Prompt = ""
	m.rebuild(db)
	m.restoreTUIState()
	return m
}

// rebuild replaces the in-memory arena and all views from persisted form.
func (m *appModel) rebuild(db *store.DB) {
	m.arena = arena.FromPersisted(db.Workspaces)
	m.wsClip = treeview.NewWorkspaceClipboard(m.arena)
	m.itemClip = treeview.NewClipboard(m.arena)
	m.wsView = treeview.NewWorkspaceView(m.arena, m.wsClip)
	m.itemView = map[arena.WorkspaceKey]*treeview.ItemView{}
	m.active = arena.WorkspaceKey{}
	if roots := m.arena.RootWorkspaces(); len(roots) > 0 {
		m.active = roots[0]
	}
}

func (m *appModel) restoreTUIState() {
	ts, err := m.st.LoadTUIState()
	if err != nil {
		return
	}
	if ts.Pane == "items" {
		m.pane = paneItems
	}
	m.savedCursors = ts.CursorByWorkspace
	if k, ok := m.arena.FindWorkspaceByID(ts.SelectedWorkspaceID); ok {
		m.active = k
		m.wsView.Select(k)
	}
}

// activeItems returns the item view for the active workspace, building it on
// first use. Nil when no workspace exists.
func (m *appModel) activeItems() *treeview.ItemView {
	if m.active.IsZero() {
		return nil
	}
	if _, err := m.arena.Workspace(m.active); err != nil {
		// The active workspace was cut or deleted; fall back.
		m.active = arena.WorkspaceKey{}
		if roots := m.arena.RootWorkspaces(); len(roots) > 0 {
			m.active = roots[0]
		}
		if m.active.IsZero() {
			return nil
		}
	}
	if v, ok := m.itemView[m.active]; ok {
		return v
	}
	v, err := treeview.NewItemView(m.arena, m.active, m.itemClip)
	if err != nil {
		return nil
	}
	if ws, err := m.arena.Workspace(m.active); err == nil {
		if id, ok := m.savedCursors[ws.ID]; ok {
			if k, ok := m.arena.FindItemByID(id); ok {
				v.Select(k)
			}
		}
	}
	m.itemView[m.active] = v
	return v
}

func (m *appModel) persist() {
	db := &store.DB{Version: 1, Workspaces: m.arena.ToPersisted()}
	if err := m.st.Save(context.Background(), db); err != nil {
		m.logger.Error("save failed", "err", err)
		m.minibuffer = "save failed: " + err.Error()
		return
	}
	m.lastSaveAt = time.Now()

	ts := &store.TUIState{Pane: "workspaces"}
	if m.pane == paneItems {
		ts.Pane = "items"
	}
	if !m.active.IsZero() {
		if ws, err := m.arena.Workspace(m.active); err == nil {
			ts.SelectedWorkspaceID = ws.ID
		}
	}
	cursors := map[string]string{}
	for id, itemID := range m.savedCursors {
		cursors[id] = itemID
	}
	for wsKey, v := range m.itemView {
		ws, err := m.arena.Workspace(wsKey)
		if err != nil {
			continue
		}
		cur, ok := v.Cursor()
		if !ok {
			delete(cursors, ws.ID)
			continue
		}
		if it, err := m.arena.Item(cur.Key); err == nil {
			cursors[ws.ID] = it.ID
		}
	}
	if len(cursors) > 0 {
		ts.CursorByWorkspace = cursors
	}
	if err := m.st.SaveTUIState(ts); err != nil {
		m.logger.Warn("tui state save failed", "err", err)
	}
}

func (m *appModel) reloadFromDisk() {
	db, err := m.st.Load(context.Background())
	if err != nil {
		m.logger.Error("reload failed", "err", err)
		m.minibuffer = "reload failed: " + err.Error()
		return
	}
	var activeID string
	if !m.active.IsZero() {
		if ws, err := m.arena.Workspace(m.active); err == nil {
			activeID = ws.ID
		}
	}
	m.rebuild(db)
	if k, ok := m.arena.FindWorkspaceByID(activeID); ok {
		m.active = k
		m.wsView.Select(k)
	}
}

// report surfaces a recoverable error in the minibuffer.
func (m *appModel) report(err error) {
	if err == nil {
		m.minibuffer = ""
		return
	}
	m.minibuffer = err.Error()
}

func (m appModel) Init() tea.Cmd { return watchStore(m.dir) }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case storeChangedMsg:
		// Ignore the echo of our own save.
		if time.Since(m.lastSaveAt) > 2*time.Second {
			m.reloadFromDisk()
		}
		return m, watchStore(m.dir)

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearching(msg)
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m appModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		text := m.input.Value()
		if m.pane == paneWorkspaces {
			m.report(m.wsView.EditTitle(text))
		} else if v := m.activeItems(); v != nil {
			m.report(v.EditText(text))
		}
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *appModel) startEdit(initial string) tea.Cmd {
	m.editing = true
	m.input.Prompt = ""
	m.input.SetValue(initial)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *appModel) startSearch() tea.Cmd {
	m.searching = true
	m.search = ""
	m.input.Prompt = "/"
	m.input.SetValue("")
	return m.input.Focus()
}

func (m appModel) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search = ""
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		if v := m.activeItems(); v != nil {
			m.selectFirstMatch(v)
		}
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.search = m.input.Value()
	return m, cmd
}

func (m *appModel) matchesSearch(v *treeview.ItemView, r treeview.Row) bool {
	if m.search == "" {
		return false
	}
	info, err := v.Info(r)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(info.Text), strings.ToLower(m.search))
}

func (m *appModel) selectFirstMatch(v *treeview.ItemView) {
	for _, r := range v.Rows() {
		if m.matchesSearch(v, r) {
			v.Select(r.Key)
			return
		}
	}
	if m.search != "" {
		m.minibuffer = "no match for " + m.search
	}
}

// cycleMatch moves the cursor to the next (delta 1) or previous (delta -1)
// visible row matching the committed search, wrapping around.
func (m *appModel) cycleMatch(v *treeview.ItemView, delta int) {
	if m.search == "" {
		return
	}
	vis := v.Rows()
	n := len(vis)
	if n == 0 {
		return
	}
	cur := v.CursorVisibleIndex()
	if cur < 0 {
		cur = 0
	}
	for i := 1; i <= n; i++ {
		j := ((cur+delta*i)%n + n) % n
		if m.matchesSearch(v, vis[j]) {
			v.Select(vis[j].Key)
			return
		}
	}
	m.minibuffer = "no match for " + m.search
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.minibuffer = ""

	if m.sortPending {
		m.sortPending = false
		if v := m.activeItems(); v != nil {
			switch msg.String() {
			case "t":
				m.report(v.SortChildren(treeview.SortByText))
			case "u":
				m.report(v.SortChildren(treeview.SortByPriority))
			case "c":
				m.report(v.SortChildren(treeview.SortByCompleted))
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.persist()
		return m, tea.Quit
	case "ctrl+s":
		m.persist()
		m.minibuffer = "saved"
		return m, nil
	case "tab":
		if m.pane == paneWorkspaces {
			if cur, ok := m.wsView.Cursor(); ok {
				m.active = cur.Key
			}
			m.pane = paneItems
		} else {
			m.pane = paneWorkspaces
		}
		return m, nil
	}

	if m.pane == paneWorkspaces {
		return m.updateWorkspaceKeys(msg)
	}
	return m.updateItemKeys(msg)
}

func (m appModel) updateWorkspaceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.wsView
	switch msg.String() {
	case "j", "down":
		m.report(v.Navigate(1))
	case "k", "up":
		m.report(v.Navigate(-1))
	case "J":
		m.report(v.MoveWorkspace(1))
	case "K":
		m.report(v.MoveWorkspace(-1))
	case "h":
		if cur, ok := v.Cursor(); ok {
			if info, err := v.Info(cur); err == nil && !info.Collapsed {
				m.report(v.ToggleCollapse())
			}
		}
	case "l":
		if cur, ok := v.Cursor(); ok {
			if info, err := v.Info(cur); err == nil && info.Collapsed {
				m.report(v.ToggleCollapse())
			}
		}
	case "enter":
		if cur, ok := v.Cursor(); ok {
			m.active = cur.Key
			m.pane = paneItems
		}
	case "a":
		if _, err := v.AddSibling(""); err != nil {
			m.report(err)
			return m, nil
		}
		return m, m.startEdit("")
	case "A":
		if _, err := v.AddChild(""); err != nil {
			m.report(err)
			return m, nil
		}
		return m, m.startEdit("")
	case "i":
		if cur, ok := v.Cursor(); ok {
			info, err := v.Info(cur)
			if err != nil {
				m.report(err)
				return m, nil
			}
			return m, m.startEdit(info.Title)
		}
		m.report(treeview.ErrEmptySelection)
	case "x":
		m.report(v.Cut())
	case "p":
		m.report(v.PasteSibling())
	case "P":
		m.report(v.PasteChild())
	case "d":
		m.report(v.Delete())
	}
	return m, nil
}

func (m appModel) updateItemKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.activeItems()
	if v == nil {
		m.minibuffer = "no workspace; Tab to the workspace pane and add one with a"
		return m, nil
	}
	switch msg.String() {
	case "j", "down":
		m.report(v.Navigate(1))
	case "k", "up":
		m.report(v.Navigate(-1))
	case "J":
		m.report(v.MoveItem(1))
	case "K":
		m.report(v.MoveItem(-1))
	case "h":
		if cur, ok := v.Cursor(); ok {
			if info, err := v.Info(cur); err == nil && !info.Collapsed {
				m.report(v.ToggleCollapse())
			}
		}
	case "l":
		if cur, ok := v.Cursor(); ok {
			if info, err := v.Info(cur); err == nil && info.Collapsed {
				m.report(v.ToggleCollapse())
			}
		}
	case "a":
		if _, err := v.AddSibling(""); err != nil {
			m.report(err)
			return m, nil
		}
		return m, m.startEdit("")
	case "A":
		if _, err := v.AddChild(""); err != nil {
			m.report(err)
			return m, nil
		}
		return m, m.startEdit("")
	case "i":
		if cur, ok := v.Cursor(); ok {
			info, err := v.Info(cur)
			if err != nil {
				m.report(err)
				return m, nil
			}
			return m, m.startEdit(info.Text)
		}
		m.report(treeview.ErrEmptySelection)
	case "c", " ":
		m.report(v.ToggleCompleted())
	case "+", "=":
		m.report(v.SetPriority(1))
	case "-":
		m.report(v.SetPriority(-1))
	case "/":
		return m, m.startSearch()
	case "n":
		m.cycleMatch(v, 1)
	case "N":
		m.cycleMatch(v, -1)
	case "s":
		m.sortPending = true
		m.minibuffer = "sort children by: t text, u urgency, c completed"
	case "x":
		m.report(v.Cut())
	case "p":
		m.report(v.PasteSibling())
	case "P":
		m.report(v.PasteChild())
	case "d":
		m.report(v.Delete())
	}
	return m, nil
}

func (m appModel) View() string {
	w := m.width
	if w < 60 {
		w = 60
	}
	h := m.height
	if h < 12 {
		h = 12
	}
	bodyHeight := h - 4

	leftWidth := w / 3
	if leftWidth < 24 {
		leftWidth = 24
	}
	rightWidth := w - leftWidth - 4

	left := m.renderWorkspacePane(leftWidth-2, bodyHeight-2)
	right := m.renderItemPane(rightWidth-2, bodyHeight-2)

	leftBox := m.paneStyle(paneWorkspaces).Width(leftWidth).Height(bodyHeight).Render(left)
	rightBox := m.paneStyle(paneItems).Width(rightWidth).Height(bodyHeight).Render(right)

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)

	footer := m.styles.footer.Render("j/k move  J/K reorder  h/l fold  a/A add  i edit  c done  +/- priority  x cut  p/P paste  d delete  / search  s sort  tab pane  q quit")
	if m.searching {
		footer = m.styles.minibuffer.Render(m.input.View())
	} else if m.minibuffer != "" {
		footer = m.styles.minibuffer.Render(m.minibuffer)
	}
	return body + "\n" + footer
}

func (m appModel) paneStyle(p pane) lipgloss.Style {
	if m.pane == p {
		return m.styles.activePane
	}
	return m.styles.inactivePane
}

func (m appModel) renderWorkspacePane(w, h int) string {
	title := m.styles.paneTitle.Render("Workspaces")
	rows := m.wsView.Rows()
	cursorIdx := m.wsView.CursorVisibleIndex()

	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		info, err := m.wsView.Info(r)
		if err != nil {
			continue
		}
		selected := i == cursorIdx
		text := info.Title
		if m.editing && m.pane == paneWorkspaces && selected {
			text = m.input.View()
		}
		line := renderWorkspaceRow(info, text, w)
		if selected {
			line = m.styles.cursor.Render(line)
		} else {
			line = m.styles.text.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{m.styles.faded.Render("no workspaces; press a")}
	}
	return title + "\n" + strings.Join(window(lines, cursorIdx, h-1), "\n")
}

func (m appModel) renderItemPane(w, h int) string {
	name := "Todos"
	if !m.active.IsZero() {
		if ws, err := m.arena.Workspace(m.active); err == nil && strings.TrimSpace(ws.Title) != "" {
			name = ws.Title
		}
	}
	title := m.styles.paneTitle.Render(name)

	v := m.activeItems()
	if v == nil {
		return title + "\n" + m.styles.faded.Render("no workspace selected")
	}
	rows := v.Rows()
	cursorIdx := v.CursorVisibleIndex()

	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		info, err := v.Info(r)
		if err != nil {
			continue
		}
		selected := i == cursorIdx && m.pane == paneItems
		text := info.Text
		if m.editing && m.pane == paneItems && selected {
			text = m.input.View()
		}
		line := renderItemRow(info, text, w)
		switch {
		case selected:
			line = m.styles.cursor.Render(line)
		case m.matchesSearch(v, r):
			line = m.styles.match.Render(line)
		case info.Completed:
			line = m.styles.completed.Render(line)
		default:
			line = m.styles.text.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{m.styles.faded.Render("empty; press a to add a todo")}
	}
	return title + "\n" + strings.Join(window(lines, cursorIdx, h-1), "\n")
}

// window slices lines so the cursor stays on screen.
func window(lines []string, cursor, h int) []string {
	if h <= 0 || len(lines) <= h {
		return lines
	}
	if cursor < 0 {
		cursor = 0
	}
	start := cursor - h/2
	if start < 0 {
		start = 0
	}
	if start+h > len(lines) {
		start = len(lines) - h
	}
	return lines[start : start+h]
}

func fmtCookie(done, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf(" [%d/%d]", done, total)
}
