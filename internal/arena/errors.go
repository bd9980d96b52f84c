package arena

import "errors"

// All arena failures are local, recoverable conditions. Callers surface them
// to the UI for messaging; none are fatal.
var (
	// ErrUnknownKey means a key was never minted or has been retired.
	ErrUnknownKey = errors.New("unknown key")
	// ErrInvalidParent means an insert or reparent named a dead parent.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrCycleDetected means a reparent would make a node its own descendant.
	ErrCycleDetected = errors.New("cycle detected")
)
