package group

import "errors"

var (
	// ErrStaleReference means an operation targeted a window the group no
	// longer tracks, or one the window manager no longer knows.
	ErrStaleReference = errors.New("stale window reference")
	// ErrLaunchFailed wraps launcher failures. The user-visible effect is
	// only that no new window appears.
	ErrLaunchFailed = errors.New("launch failed")
	// ErrUnmounting is reported when a mutation arrives after teardown began.
	ErrUnmounting = errors.New("group is unmounting")
)
