package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"doneit-cli/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the full store to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, db)
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import workspaces from an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var in store.DB
			if err := json.Unmarshal(b, &in); err != nil {
				return writeErr(cmd, err)
			}

			db, s, release, err := loadDBLocked(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer release()
			if replace {
				db.Workspaces = in.Workspaces
			} else {
				db.Workspaces = append(db.Workspaces, in.Workspaces...)
			}
			if err := s.Save(context.Background(), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]int{"workspaces": len(db.Workspaces)})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the current store instead of appending")
	return cmd
}
