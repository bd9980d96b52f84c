package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme holds the hex colors used by the TUI. Values are plain "#rrggbb"
// strings so this package stays free of terminal deps.
type Theme struct {
	Text          string `yaml:"text"`
	TextDark      string `yaml:"text_dark"`
	TextCompleted string `yaml:"text_completed"`
	ItemHighlight string `yaml:"item_highlight"`

	ActiveHighlight        string `yaml:"active_highlight"`
	InactiveHighlight      string `yaml:"inactive_highlight"`
	HighlightTextSecondary string `yaml:"highlight_text_secondary"`
}

func DefaultTheme() Theme {
	return Theme{
		Text:          "#cad3f5",
		TextDark:      "#494d64",
		TextCompleted: "#6e738d",
		ItemHighlight: "#b7bdf8",

		ActiveHighlight:        "#b7bdf8",
		InactiveHighlight:      "#6e738d",
		HighlightTextSecondary: "#24273a",
	}
}

// LoadTheme reads theme.yaml from path, or from the config dir when path is
// empty. A missing file is not an error; defaults apply.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if strings.TrimSpace(path) == "" {
		dir, err := ConfigDir()
		if err != nil {
			return theme, err
		}
		path = filepath.Join(dir, "theme.yaml")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return theme, nil
		}
		return theme, err
	}
	var cfg Theme
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return theme, err
	}
	// Unset keys keep their defaults.
	merge := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	merge(&theme.Text, cfg.Text)
	merge(&theme.TextDark, cfg.TextDark)
	merge(&theme.TextCompleted, cfg.TextCompleted)
	merge(&theme.ItemHighlight, cfg.ItemHighlight)
	merge(&theme.ActiveHighlight, cfg.ActiveHighlight)
	merge(&theme.InactiveHighlight, cfg.InactiveHighlight)
	merge(&theme.HighlightTextSecondary, cfg.HighlightTextSecondary)
	return theme, nil
}
