package tui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

type storeChangedMsg struct{}

// watchStore blocks until index.sqlite changes on disk, so edits made by CLI
// commands in another terminal show up without restarting the TUI. The cmd is
// re-issued after every storeChangedMsg.
func watchStore(dir string) tea.Cmd {
	return func() tea.Msg {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil
		}
		defer w.Close()
		if err := w.Add(dir); err != nil {
			return nil
		}
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Base(ev.Name) == "index.sqlite" {
					return storeChangedMsg{}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}
