package canopy

import (
	"errors"
	"fmt"
)

// ErrInvalidState is the parent of every error reported synchronously by a
// container operation that was called at the wrong time. No state is
// mutated when one of these is returned, so the call is safe to retry.
var ErrInvalidState = errors.New("canopy: invalid state")

// InvalidState errors.
var (
	ErrInTransition   = fmt.Errorf("%w: container is in transition", ErrInvalidState)
	ErrAlreadyActive  = fmt.Errorf("%w: screen is already active", ErrInvalidState)
	ErrNoActiveScreen = fmt.Errorf("%w: no active screen", ErrInvalidState)
	ErrScreenNotFound = fmt.Errorf("%w: screen not registered", ErrInvalidState)
	ErrNotReady       = fmt.Errorf("%w: screen has not finished initializing", ErrInvalidState)
	ErrDuplicateID    = fmt.Errorf("%w: screen id already registered", ErrInvalidState)
	ErrWrongKind      = fmt.Errorf("%w: operation not supported by this container kind", ErrInvalidState)
	ErrDisposed       = fmt.Errorf("%w: container is disposed", ErrInvalidState)
)

// ErrTickLimit is returned by Scheduler.RunUntil when the task is still
// running after the allowed number of ticks.
var ErrTickLimit = errors.New("canopy: tick limit reached")

// LoadError reports a failed asset load during Register. The registration
// is rolled back entirely when one of these is returned.
type LoadError struct {
	Key string // asset key passed to Register
	Err error  // the loader's error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("canopy: load %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("canopy: load %q failed", e.Key)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// HookError reports an error returned by a lifecycle hook. It indicates a
// defect in the hook implementation; the container that ran the hook is
// left faulted until Recover is called.
type HookError struct {
	Hook     Hook
	ScreenID string
	Err      error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("canopy: %s hook on screen %q: %v", e.Hook, e.ScreenID, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// IsInvalidState reports whether err is an InvalidState error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsLoadFailure reports whether err carries a LoadError.
func IsLoadFailure(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// IsHookFailure reports whether err carries a HookError.
func IsHookFailure(err error) bool {
	var hookErr *HookError
	return errors.As(err, &hookErr)
}
