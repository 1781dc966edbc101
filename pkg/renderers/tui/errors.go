package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoBuilder is returned by Render when no form builder is configured.
	ErrNoBuilder = errors.New("tui: form builder is required")
)
