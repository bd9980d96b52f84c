package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			if err := s.Save(context.Background(), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"dir":        s.Dir,
				"workspaces": len(db.Workspaces),
			})
		},
	}
}
