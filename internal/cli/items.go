package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"doneit-cli/internal/arena"
	"doneit-cli/internal/treeview"
)

type itemRowOut struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Depth     int        `json:"depth"`
	Completed bool       `json:"completed"`
	Priority  int        `json:"priority"`
	Effort    int        `json:"effort,omitempty"`
	Due       *time.Time `json:"due,omitempty"`
}

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Todo item commands",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsDoneCmd(app))
	cmd.AddCommand(newItemsRemoveCmd(app))
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var workspaceID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a workspace's items in tree order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ar := arena.FromPersisted(db.Workspaces)
			k, ok := ar.FindWorkspaceByID(workspaceID)
			if !ok {
				return writeErr(cmd, errNotFound("workspace", workspaceID))
			}
			v, err := treeview.NewItemView(ar, k, treeview.NewClipboard(ar))
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []itemRowOut{}
			for _, r := range v.AllRows() {
				info, err := v.Info(r)
				if err != nil {
					return writeErr(cmd, err)
				}
				out = append(out, itemRowOut{
					ID:        itemID(ar, r.Key),
					Text:      info.Text,
					Depth:     r.Depth,
					Completed: info.Completed,
					Priority:  info.Priority,
					Effort:    info.Effort,
					Due:       info.Due,
				})
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace id")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var workspaceID string
	var parentID string
	var text string
	var priority int
	var effort int
	var due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			ar := arena.FromPersisted(db.Workspaces)

			var parent arena.ItemParent
			if strings.TrimSpace(parentID) != "" {
				pk, ok := ar.FindItemByID(parentID)
				if !ok {
					return writeErr(cmd, errNotFound("item", parentID))
				}
				parent = arena.UnderItem(pk)
			} else {
				wk, ok := ar.FindWorkspaceByID(workspaceID)
				if !ok {
					return writeErr(cmd, errNotFound("workspace", workspaceID))
				}
				parent = arena.InWorkspace(wk)
			}

			k, err := ar.InsertItem(parent, -1, strings.TrimSpace(text))
			if err != nil {
				return writeErr(cmd, err)
			}
			it, err := ar.Item(k)
			if err != nil {
				return writeErr(cmd, err)
			}
			it.Priority = priority
			it.Effort = effort
			if strings.TrimSpace(due) != "" {
				d, err := time.Parse(time.RFC3339, due)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("parse --due: %w", err))
				}
				it.Due = &d
			}
			db.Workspaces = ar.ToPersisted()
			if err := s.Save(context.Background(), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"id": itemID(ar, k)})
		},
	}
	cmd.Flags().StringVar(&workspaceID, "workspace", "", "Workspace id (ignored when --parent is set)")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent item id (default: workspace root list)")
	cmd.Flags().StringVar(&text, "text", "", "Todo text")
	cmd.Flags().IntVar(&priority, "priority", 0, "Priority (higher = more urgent)")
	cmd.Flags().IntVar(&effort, "effort", 0, "Effort estimate")
	cmd.Flags().StringVar(&due, "due", "", "Due timestamp (RFC 3339)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newItemsDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <item-id>",
		Short: "Toggle a todo's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			ar := arena.FromPersisted(db.Workspaces)
			k, ok := ar.FindItemByID(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("item", args[0]))
			}
			it, err := ar.Item(k)
			if err != nil {
				return writeErr(cmd, err)
			}
			it.Completed = !it.Completed
			db.Workspaces = ar.ToPersisted()
			if err := s.Save(context.Background(), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "completed": it.Completed})
		},
	}
}

func newItemsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove a todo and its subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			ar := arena.FromPersisted(db.Workspaces)
			k, ok := ar.FindItemByID(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("item", args[0]))
			}
			if err := ar.RemoveItem(k); err != nil {
				return writeErr(cmd, err)
			}
			db.Workspaces = ar.ToPersisted()
			if err := s.Save(context.Background(), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"removed": args[0]})
		},
	}
}

func itemID(ar *arena.Store, k arena.ItemKey) string {
	it, err := ar.Item(k)
	if err != nil {
		return ""
	}
	return it.ID
}
