package canopy

import "reflect"

// Hook names one lifecycle phase of a Screen.
type Hook uint8

const (
	HookInitialize Hook = iota
	HookWillEnter
	HookDidEnter
	HookWillExit
	HookDidExit
	HookCleanup
)

func (h Hook) String() string {
	switch h {
	case HookInitialize:
		return "Initialize"
	case HookWillEnter:
		return "WillEnter"
	case HookDidEnter:
		return "DidEnter"
	case HookWillExit:
		return "WillExit"
	case HookDidExit:
		return "DidExit"
	case HookCleanup:
		return "Cleanup"
	default:
		return "Unknown"
	}
}

// LifecycleEvent receives a Screen's lifecycle hooks. Each hook returns a
// Routine that the dispatcher runs to completion before moving on; a nil
// Routine means the hook finished immediately. partner is the other screen
// in the transition, or nil.
//
// Embed LifecycleHooks to implement only the hooks you need.
type LifecycleEvent interface {
	Initialize() Routine
	WillEnter(partner *Screen) Routine
	DidEnter(partner *Screen) Routine
	WillExit(partner *Screen) Routine
	DidExit(partner *Screen) Routine
	Cleanup() Routine
}

// LifecycleHooks implements every LifecycleEvent hook as a no-op.
type LifecycleHooks struct{}

func (LifecycleHooks) Initialize() Routine        { return nil }
func (LifecycleHooks) WillEnter(*Screen) Routine { return nil }
func (LifecycleHooks) DidEnter(*Screen) Routine  { return nil }
func (LifecycleHooks) WillExit(*Screen) Routine  { return nil }
func (LifecycleHooks) DidExit(*Screen) Routine   { return nil }
func (LifecycleHooks) Cleanup() Routine          { return nil }

// LifecycleFuncs adapts optional functions to LifecycleEvent. Nil fields
// are no-ops. Use it by pointer so it can be removed from a dispatcher.
type LifecycleFuncs struct {
	OnInitialize func() Routine
	OnWillEnter  func(partner *Screen) Routine
	OnDidEnter   func(partner *Screen) Routine
	OnWillExit   func(partner *Screen) Routine
	OnDidExit    func(partner *Screen) Routine
	OnCleanup    func() Routine
}

func (f *LifecycleFuncs) Initialize() Routine {
	if f.OnInitialize == nil {
		return nil
	}
	return f.OnInitialize()
}

func (f *LifecycleFuncs) WillEnter(partner *Screen) Routine {
	if f.OnWillEnter == nil {
		return nil
	}
	return f.OnWillEnter(partner)
}

func (f *LifecycleFuncs) DidEnter(partner *Screen) Routine {
	if f.OnDidEnter == nil {
		return nil
	}
	return f.OnDidEnter(partner)
}

func (f *LifecycleFuncs) WillExit(partner *Screen) Routine {
	if f.OnWillExit == nil {
		return nil
	}
	return f.OnWillExit(partner)
}

func (f *LifecycleFuncs) DidExit(partner *Screen) Routine {
	if f.OnDidExit == nil {
		return nil
	}
	return f.OnDidExit(partner)
}

func (f *LifecycleFuncs) Cleanup() Routine {
	if f.OnCleanup == nil {
		return nil
	}
	return f.OnCleanup()
}

// invoke calls the hook method on ev.
func (h Hook) invoke(ev LifecycleEvent, partner *Screen) Routine {
	switch h {
	case HookInitialize:
		return ev.Initialize()
	case HookWillEnter:
		return ev.WillEnter(partner)
	case HookDidEnter:
		return ev.DidEnter(partner)
	case HookWillExit:
		return ev.WillExit(partner)
	case HookDidExit:
		return ev.DidExit(partner)
	case HookCleanup:
		return ev.Cleanup()
	default:
		return nil
	}
}

type lifecycleEntry struct {
	event    LifecycleEvent
	priority int
}

// LifecycleDispatcher runs one Screen's lifecycle events in ascending
// priority order. Events with equal priority run in the order they were
// added.
type LifecycleDispatcher struct {
	screenID string
	entries  []lifecycleEntry
}

// NewLifecycleDispatcher creates an empty dispatcher. screenID labels
// HookErrors.
func NewLifecycleDispatcher(screenID string) *LifecycleDispatcher {
	return &LifecycleDispatcher{screenID: screenID}
}

// AddEvent registers ev at the given priority.
func (d *LifecycleDispatcher) AddEvent(ev LifecycleEvent, priority int) {
	i := len(d.entries)
	for i > 0 && d.entries[i-1].priority > priority {
		i--
	}
	d.entries = append(d.entries, lifecycleEntry{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = lifecycleEntry{event: ev, priority: priority}
}

// RemoveEvent unregisters the first registration of ev and reports whether
// one was found. Events are matched by identity, so register by pointer to
// be able to remove; values of non-comparable types are never found.
func (d *LifecycleDispatcher) RemoveEvent(ev LifecycleEvent) bool {
	if !isComparable(ev) {
		return false
	}
	for i, e := range d.entries {
		if e.event == ev {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered events.
func (d *LifecycleDispatcher) Len() int {
	return len(d.entries)
}

// RunSequentially returns a Routine that calls hook on every event in
// priority order, each one running to completion before the next is
// invoked. Events added or removed after the call do not affect the run.
// An error from any event stops the sequence and is returned as a
// *HookError.
func (d *LifecycleDispatcher) RunSequentially(hook Hook, partner *Screen) Routine {
	if len(d.entries) == 0 {
		return nil
	}
	snapshot := make([]LifecycleEvent, len(d.entries))
	for i, e := range d.entries {
		snapshot[i] = e.event
	}
	steps := make([]func() Routine, len(snapshot))
	for i, ev := range snapshot {
		steps[i] = func() Routine {
			return hook.invoke(ev, partner)
		}
	}
	inner := Seq(steps...)
	return RoutineFunc(func(dt float64) (bool, error) {
		done, err := inner.Step(dt)
		if err != nil {
			return true, &HookError{Hook: hook, ScreenID: d.screenID, Err: err}
		}
		return done, nil
	})
}

// isComparable reports whether v can be compared with == without panicking.
func isComparable(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Comparable()
}
