package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"doneit-cli/internal/model"
)

const (
	legacyFileName = "doneit.json"
	sqliteFileName = "index.sqlite"
)

// DB is the persisted form of everything: the forest of workspaces with
// their nested item trees.
type DB struct {
	Version    int               `json:"version"`
	Workspaces []model.Workspace `json:"workspaces"`
}

type Store struct {
	Dir string
}

// DefaultDir resolves the data directory: DONEIT_DIR wins, then the
// config file's data_dir, then ~/.doneit.
func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("DONEIT_DIR")); v != "" {
		return v, nil
	}
	if cfg, err := LoadConfig(); err == nil && strings.TrimSpace(cfg.DataDir) != "" {
		return cfg.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".doneit"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) legacyPath() string {
	return filepath.Join(s.Dir, legacyFileName)
}

// Load reads the full state. SQLite is the source of truth; LoadSQLite
// imports a legacy doneit.json once if the db is still empty.
func (s Store) Load(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(ctx)
}

func (s Store) Save(ctx context.Context, db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(ctx, db)
}
