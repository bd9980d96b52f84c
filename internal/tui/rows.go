package tui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"doneit-cli/internal/treeview"
)

func twisty(hasChildren, collapsed bool) string {
	switch {
	case !hasChildren:
		return "  "
	case collapsed:
		return "▸ "
	default:
		return "▾ "
	}
}

func renderItemRow(info treeview.RowInfo, text string, w int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", info.Depth))
	sb.WriteString(twisty(info.HasChildren, info.Collapsed))
	if info.Completed {
		sb.WriteString("[x] ")
	} else {
		sb.WriteString("[ ] ")
	}
	sb.WriteString(text)
	if info.Priority > 0 {
		sb.WriteString(fmt.Sprintf(" !%d", info.Priority))
	}
	sb.WriteString(fmtCookie(info.DoneChildren, info.TotalChildren))
	return truncate(sb.String(), w)
}

func renderWorkspaceRow(info treeview.WorkspaceRowInfo, text string, w int) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", info.Depth))
	sb.WriteString(twisty(info.HasChildren, info.Collapsed))
	sb.WriteString(text)
	if info.ItemCount > 0 {
		sb.WriteString(fmt.Sprintf(" (%d)", info.ItemCount))
	}
	return truncate(sb.String(), w)
}

func truncate(s string, w int) string {
	if w <= 0 || xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return xansi.Cut(s, 0, w-1) + "…"
}
