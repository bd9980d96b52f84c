package treeview

import "errors"

var (
	// ErrEmptySelection means a cursor-targeted operation ran with no live
	// selection.
	ErrEmptySelection = errors.New("empty selection")
	// ErrClipboardEmpty means paste ran with nothing cut.
	ErrClipboardEmpty = errors.New("clipboard empty")
)
