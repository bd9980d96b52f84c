package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"doneit-cli/internal/arena"
	"doneit-cli/internal/treeview"
)

type workspaceRowOut struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Depth int    `json:"depth"`
	Items int    `json:"items"`
}

func newWorkspacesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspaces",
		Short: "Workspace commands",
	}
	cmd.AddCommand(newWorkspacesListCmd(app))
	cmd.AddCommand(newWorkspacesAddCmd(app))
	cmd.AddCommand(newWorkspacesRemoveCmd(app))
	return cmd
}

func newWorkspacesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workspaces in tree order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ar := arena.FromPersisted(db.Workspaces)
			v := treeview.NewWorkspaceView(ar, treeview.NewWorkspaceClipboard(ar))

			out := []workspaceRowOut{}
			for _, r := range v.AllRows() {
				info, err := v.Info(r)
				if err != nil {
					return writeErr(cmd, err)
				}
				out = append(out, workspaceRowOut{
					ID:    workspaceID(ar, r.Key),
					Title: info.Title,
					Depth: r.Depth,
					Items: info.ItemCount,
				})
			}
			return writeOut(cmd, app, out)
		},
	}
}

func newWorkspacesAddCmd(app *App) *cobra.Command {
	var title string
	var parentID string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			ar := arena.FromPersisted(db.Workspaces)

			parent := arena.WorkspaceKey{}
			if strings.TrimSpace(parentID) != "" {
				k, ok := ar.FindWorkspaceByID(parentID)
				if !ok {
					return writeErr(cmd, errNotFound("workspace", parentID))
				}
				parent = k
			}
			k, err := ar.InsertWorkspace(parent, -1, strings.TrimSpace(title))
			if err != nil {
				return writeErr(cmd, err)
			}
			db.Workspaces = ar.ToPersisted()
			if err := s.Save(context.Background(), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]string{"id": workspaceID(ar, k)})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Workspace title")
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent workspace id (default: top level)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newWorkspacesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <workspace-id>",
		Short: "Remove a workspace and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			ar := arena.FromPersisted(db.Workspaces)
			k, ok := ar.FindWorkspaceByID(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("workspace", args[0]))
			}
			if err := ar.RemoveWorkspace(k); err != nil {
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

func workspaceID(ar *arena.Store, k arena.WorkspaceKey) string {
	ws, err := ar.Workspace(k)
	if err != nil {
		return ""
	}
	return ws.ID
}
