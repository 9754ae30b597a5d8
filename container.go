package canopy

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// CallbackReceiver observes container transitions. BeforeTransition runs
// when an operation starts, before any lifecycle hook; AfterTransition runs
// after the new active state is committed and the screens have settled.
type CallbackReceiver interface {
	BeforeTransition(tr Transition)
	AfterTransition(tr Transition)
}

// TransitionAborter is an optional CallbackReceiver extension. It is told
// about transitions that received BeforeTransition but will never reach
// AfterTransition: a failed transition cleared by Recover, or one
// abandoned by Dispose. err is the fault, or ErrDisposed.
type TransitionAborter interface {
	TransitionAborted(tr Transition, err error)
}

// CallbackFuncs adapts optional functions to CallbackReceiver and
// TransitionAborter. Use it by pointer so it can be removed again.
type CallbackFuncs struct {
	OnBefore  func(Transition)
	OnAfter   func(Transition)
	OnAborted func(Transition, error)
}

func (f *CallbackFuncs) BeforeTransition(tr Transition) {
	if f.OnBefore != nil {
		f.OnBefore(tr)
	}
}

func (f *CallbackFuncs) AfterTransition(tr Transition) {
	if f.OnAfter != nil {
		f.OnAfter(tr)
	}
}

func (f *CallbackFuncs) TransitionAborted(tr Transition, err error) {
	if f.OnAborted != nil {
		f.OnAborted(tr, err)
	}
}

// ContainerConfig configures a new Container.
type ContainerConfig struct {
	Name string
	Kind ContainerKind

	// Parent is the node the container's root is attached to. Defaults to
	// the scene root.
	Parent *Node

	// EnterAnimation and ExitAnimation are used when a screen has no
	// matching animation entry. Nil falls back to Settings.DefaultAnimation.
	EnterAnimation AnimationFactory
	ExitAnimation  AnimationFactory
}

// RegisterOptions configures Container.Register.
type RegisterOptions struct {
	// ID is the screen id. Empty generates a unique one.
	ID string
	// Sync loads with AssetLoader.Load instead of LoadAsync.
	Sync bool
	// OnLoad runs after the screen is created and stored, before its
	// Initialize hooks, so callers can configure it first.
	OnLoad func(id string, s *Screen)
}

// Registration is the Task of a Register call together with the id the
// screen is registered under once the task succeeds.
type Registration struct {
	*Task
	ID string
}

// Container owns a set of Screens and runs the transitions between them.
// At most one transition runs per container at a time.
type Container struct {
	name   string
	kind   ContainerKind
	scene  *Scene
	root   *Node
	logger *slog.Logger

	screens map[string]*Screen
	handles map[string]*AssetHandle
	loading map[string]struct{}
	stack   []string

	inTransition atomic.Bool
	current      *Transition
	fault        error
	disposed     bool

	receivers []CallbackReceiver
	backdrop  *backdrop

	defaultEnter AnimationFactory
	defaultExit  AnimationFactory
}

// NewContainer creates a container, attaches its root node and adds it to
// the scene's registry. Names must be unique within the scene.
func (s *Scene) NewContainer(cfg ContainerConfig) (*Container, error) {
	if cfg.Name == "" {
		return nil, errors.New("canopy: container name is required")
	}
	c := &Container{
		name:         cfg.Name,
		kind:         cfg.Kind,
		scene:        s,
		root:         NewNode(cfg.Name),
		logger:       s.logger.With("container", cfg.Name, "kind", cfg.Kind.String()),
		screens:      make(map[string]*Screen),
		handles:      make(map[string]*AssetHandle),
		loading:      make(map[string]struct{}),
		defaultEnter: cfg.EnterAnimation,
		defaultExit:  cfg.ExitAnimation,
	}
	if err := s.registry.add(c); err != nil {
		return nil, err
	}
	if cfg.Kind == KindPopup {
		c.backdrop = newBackdrop(c)
	}
	parent := cfg.Parent
	if parent == nil {
		parent = s.root
	}
	parent.AddChild(c.root)
	c.logger.Debug("container created")
	return c, nil
}

// Name returns the container name.
func (c *Container) Name() string { return c.name }

// Kind returns the container kind.
func (c *Container) Kind() ContainerKind { return c.kind }

// Root returns the node screens are attached under.
func (c *Container) Root() *Node { return c.root }

// Scene returns the owning scene.
func (c *Container) Scene() *Scene { return c.scene }

// IsInTransition reports whether a transition is running. Safe to call
// from any goroutine.
func (c *Container) IsInTransition() bool { return c.inTransition.Load() }

// Interactable reports whether the container accepts input.
func (c *Container) Interactable() bool { return c.root.Interactable }

// SetInteractable enables or disables input for the container.
func (c *Container) SetInteractable(v bool) { c.root.Interactable = v }

// Faulted returns the error that stranded the container mid-transition,
// or nil.
func (c *Container) Faulted() error { return c.fault }

// IsDisposed reports whether Dispose has been called.
func (c *Container) IsDisposed() bool { return c.disposed }

// Screen returns the registered screen with the given id.
func (c *Container) Screen(id string) (*Screen, bool) {
	s, ok := c.screens[id]
	return s, ok
}

// Screens returns the ids of every registered screen, sorted.
func (c *Container) Screens() []string {
	ids := make([]string, 0, len(c.screens))
	for id := range c.screens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ActiveID returns the id of the active screen (the top of the stack for
// page and popup containers).
func (c *Container) ActiveID() (string, bool) {
	if len(c.stack) == 0 {
		return "", false
	}
	return c.stack[len(c.stack)-1], true
}

// ActiveScreen returns the active screen, or nil.
func (c *Container) ActiveScreen() *Screen {
	id, ok := c.ActiveID()
	if !ok {
		return nil
	}
	return c.screens[id]
}

// Stack returns the active ids from bottom to top.
func (c *Container) Stack() []string {
	return slices.Clone(c.stack)
}

// AddCallbackReceiver registers r for transition notifications.
func (c *Container) AddCallbackReceiver(r CallbackReceiver) {
	c.receivers = append(c.receivers, r)
}

// RemoveCallbackReceiver unregisters r. Receivers are matched by identity,
// so register by pointer to be able to remove.
func (c *Container) RemoveCallbackReceiver(r CallbackReceiver) {
	if !isComparable(r) {
		return
	}
	for i, o := range c.receivers {
		if o == r {
			c.receivers = append(c.receivers[:i], c.receivers[i+1:]...)
			return
		}
	}
}

// --- Registration ---

// Register loads the asset under key and adds a Screen built from it. The
// returned Registration finishes once the screen's Initialize hooks have
// run. A failed load finishes it with a *LoadError and leaves the
// container unchanged.
func (c *Container) Register(key string, opts RegisterOptions) (*Registration, error) {
	if c.disposed {
		return nil, ErrDisposed
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	} else if c.idTaken(id) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	c.loading[id] = struct{}{}

	loader := c.scene.loader
	var h *AssetHandle
	routine := Seq(
		func() Routine {
			if opts.Sync {
				h = loader.Load(key)
			} else {
				h = loader.LoadAsync(key)
			}
			return Wait(h.IsDone)
		},
		func() Routine {
			delete(c.loading, id)
			if c.disposed {
				loader.Release(h)
				return Fail(ErrDisposed)
			}
			if h.Status() != AssetSucceeded || h.Result() == nil {
				loader.Release(h)
				return Fail(&LoadError{Key: key, Err: h.Err()})
			}
			node := h.Result().Instantiate()
			if node == nil {
				loader.Release(h)
				return Fail(&LoadError{Key: key, Err: errors.New("prefab produced no node")})
			}
			if node.Name == "" {
				node.Name = id
			}
			s := newScreen(id, node, c)
			c.screens[id] = s
			c.handles[id] = h
			c.logger.Debug("screen loaded", "screen", id, "key", key)
			if opts.OnLoad != nil {
				opts.OnLoad(id, s)
			}
			return s.afterLoad(c.root)
		},
	)
	task := c.scene.scheduler.Start(c.name+".Register("+id+")", routine)
	return &Registration{Task: task, ID: id}, nil
}

func (c *Container) idTaken(id string) bool {
	if _, ok := c.screens[id]; ok {
		return true
	}
	_, ok := c.loading[id]
	return ok
}

// Unregister removes one screen that is not on the active stack.
func (c *Container) Unregister(id string) error {
	if c.disposed {
		return ErrDisposed
	}
	if c.IsInTransition() {
		return ErrInTransition
	}
	s, ok := c.screens[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrScreenNotFound, id)
	}
	if slices.Contains(c.stack, id) {
		return fmt.Errorf("%w: %q is on the active stack", ErrAlreadyActive, id)
	}
	c.release(s)
	return nil
}

// UnregisterAll removes every screen and clears the active stack.
func (c *Container) UnregisterAll() error {
	if c.IsInTransition() {
		return ErrInTransition
	}
	c.teardown()
	return nil
}

func (c *Container) teardown() {
	for _, id := range c.Screens() {
		c.release(c.screens[id])
	}
	clear(c.screens)
	clear(c.handles)
	c.stack = c.stack[:0]
	if c.backdrop != nil {
		c.backdrop.release()
	}
}

// release runs Cleanup if configured, destroys the screen and returns its
// asset handle.
func (c *Container) release(s *Screen) {
	if c.scene.settings.CallCleanupOnDestroy {
		s.beforeRelease()
	}
	s.node.Dispose()
	s.state = StateDisposed
	if h, ok := c.handles[s.id]; ok {
		c.scene.loader.Release(h)
	}
	delete(c.screens, s.id)
	delete(c.handles, s.id)
	c.logger.Debug("screen released", "screen", s.id)
}

// Dispose tears down every screen, detaches the container and removes it
// from the registry. A running transition is abandoned.
func (c *Container) Dispose() {
	if c.disposed {
		return
	}
	c.teardown()
	c.disposed = true
	c.inTransition.Store(false)
	c.abort(ErrDisposed)
	c.scene.registry.remove(c)
	c.root.Dispose()
	c.scene.interaction.end(c)
	c.logger.Debug("container disposed")
}

// Recover clears a fault left by a failed lifecycle hook. Screens caught
// entering are hidden, screens caught exiting return to active, the lock
// is released and interaction restored. It returns the cleared fault.
func (c *Container) Recover() error {
	fault := c.fault
	if fault == nil {
		return nil
	}
	for _, s := range c.screens {
		switch s.state {
		case StateEntering:
			s.settle(0)
			s.node.Visible = false
			s.state = StateInactive
		case StateExiting:
			s.settle(1)
			s.state = StateActive
		}
	}
	if c.backdrop != nil {
		if top := c.ActiveScreen(); top != nil {
			c.backdrop.place(top.node)
		} else {
			c.backdrop.release()
		}
	}
	c.fault = nil
	c.inTransition.Store(false)
	c.abort(fault)
	c.scene.interaction.end(c)
	c.logger.Warn("recovered from faulted transition", "error", fault)
	return fault
}

// checkIdle reports why no new transition may start, or nil.
func (c *Container) checkIdle() error {
	if c.disposed {
		return ErrDisposed
	}
	if c.IsInTransition() {
		return ErrInTransition
	}
	return nil
}

// lookupReady returns a registered screen whose Initialize hooks have run.
func (c *Container) lookupReady(id string) (*Screen, error) {
	s, ok := c.screens[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrScreenNotFound, id)
	}
	if !s.initialized {
		return nil, fmt.Errorf("%w: %q", ErrNotReady, id)
	}
	return s, nil
}

// animationFor picks the screen's animation for partner, falling back to
// the container default and then to Settings.
func (c *Container) animationFor(s *Screen, entering bool, partner *Screen) TransitionAnimation {
	set, def := &s.ExitAnimations, c.defaultExit
	if entering {
		set, def = &s.EnterAnimations, c.defaultEnter
	}
	if f := set.Lookup(s.partnerID(partner)); f != nil {
		return f()
	}
	if def != nil {
		return def()
	}
	st := c.scene.settings
	f, err := NamedAnimation(st.DefaultAnimation, entering, st.DefaultAnimationDuration)
	if err != nil || f == nil {
		return nil
	}
	return f()
}

// --- Transition engine ---

// runTransition locks the container, notifies receivers and starts the
// routine that drives tr.Exit and tr.Enter through both barriers. commit
// records the new active state between the animation barrier and the
// postprocess callbacks.
func (c *Container) runTransition(tr Transition, commit func()) *Task {
	c.inTransition.Store(true)
	c.current = &tr
	c.scene.interaction.begin(c)
	for _, r := range slices.Clone(c.receivers) {
		r.BeforeTransition(tr)
	}

	enter, exit := tr.Enter, tr.Exit
	startTick := c.scene.scheduler.Tick()
	routine := Seq(
		func() Routine {
			c.debugPhase(tr, "lifecycle", startTick)
			var rs []Routine
			if exit != nil {
				rs = append(rs, exit.beforeExit(enter))
			}
			if enter != nil {
				rs = append(rs, enter.beforeEnter(exit))
			}
			return All(rs...)
		},
		func() Routine {
			c.debugPhase(tr, "animation", startTick)
			var rs []Routine
			if exit != nil {
				rs = append(rs, exit.exit(tr.PlayAnimation, enter))
			}
			if enter != nil {
				rs = append(rs, enter.enter(tr.PlayAnimation, exit))
			}
			return All(rs...)
		},
		func() Routine {
			if c.disposed {
				return nil
			}
			commit()
			c.inTransition.Store(false)
			c.current = nil
			if exit != nil {
				exit.afterExit(enter)
			}
			if enter != nil {
				enter.afterEnter(exit)
			}
			for _, r := range slices.Clone(c.receivers) {
				r.AfterTransition(tr)
			}
			c.scene.interaction.end(c)
			c.debugPhase(tr, "done", startTick)
			return nil
		},
	)
	task := c.scene.scheduler.Start(c.name+"."+tr.Op.String(), routine)
	task.Then(func(t *Task) {
		if t.Err() != nil {
			c.fault = t.Err()
			c.logger.Error("transition failed; container stays locked until Recover",
				"op", tr.Op.String(), "error", t.Err())
		}
	})
	return task
}

// abort tells TransitionAborter receivers that the current transition
// will not complete.
func (c *Container) abort(err error) {
	tr := c.current
	c.current = nil
	if tr == nil {
		return
	}
	for _, r := range slices.Clone(c.receivers) {
		if a, ok := r.(TransitionAborter); ok {
			a.TransitionAborted(*tr, err)
		}
	}
}

func (c *Container) debugPhase(tr Transition, phase string, startTick uint64) {
	if !c.scene.debug {
		return
	}
	c.logger.Debug("transition phase",
		"op", tr.Op.String(),
		"phase", phase,
		"enter", screenID(tr.Enter),
		"exit", screenID(tr.Exit),
		"ticks", c.scene.scheduler.Tick()-startTick,
	)
}

func screenID(s *Screen) string {
	if s == nil {
		return ""
	}
	return s.id
}
