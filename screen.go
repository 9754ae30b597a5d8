package canopy

// Screen is one displayable unit (sheet, page or popup) owned by a
// Container. Its transition methods are driven only by the owning
// Container.
type Screen struct {
	id         string
	order      int
	node       *Node
	container  *Container
	dispatcher *LifecycleDispatcher

	// EnterAnimations and ExitAnimations are keyed by the partner screen's id.
	EnterAnimations AnimationSet
	ExitAnimations  AnimationSet

	state       ScreenState
	initialized bool
	progress    float64

	restX, restY   float64
	restSX, restSY float64

	// OnProgress, if set, receives transition progress in [0, 1] while the
	// screen animates.
	OnProgress func(progress float64)
}

func newScreen(id string, node *Node, c *Container) *Screen {
	s := &Screen{
		id:         id,
		node:       node,
		container:  c,
		dispatcher: NewLifecycleDispatcher(id),
		state:      StateLoaded,
	}
	node.screen = s
	if ev, ok := node.UserData.(LifecycleEvent); ok {
		s.dispatcher.AddEvent(ev, 0)
	}
	return s
}

// ID returns the screen id, unique within its container.
func (s *Screen) ID() string { return s.id }

// Node returns the screen's root node.
func (s *Screen) Node() *Node { return s.node }

// Container returns the owning container.
func (s *Screen) Container() *Container { return s.container }

// State returns the current lifecycle state.
func (s *Screen) State() ScreenState { return s.state }

// Progress returns the progress of the current or last transition in [0, 1].
func (s *Screen) Progress() float64 { return s.progress }

// Order returns the sibling ordering key.
func (s *Screen) Order() int { return s.order }

// SetOrder sets the sibling ordering key. It only affects placement when
// called before the screen is attached (for example from an OnLoad callback).
func (s *Screen) SetOrder(order int) { s.order = order }

// Initialized reports whether the Initialize hooks have finished.
func (s *Screen) Initialized() bool { return s.initialized }

// AddLifecycleEvent registers ev with the given priority. Lower priorities
// run first.
func (s *Screen) AddLifecycleEvent(ev LifecycleEvent, priority int) {
	s.dispatcher.AddEvent(ev, priority)
}

// RemoveLifecycleEvent unregisters ev.
func (s *Screen) RemoveLifecycleEvent(ev LifecycleEvent) bool {
	return s.dispatcher.RemoveEvent(ev)
}

// Dispatcher returns the screen's lifecycle dispatcher.
func (s *Screen) Dispatcher() *LifecycleDispatcher { return s.dispatcher }

func (s *Screen) partnerID(partner *Screen) string {
	if partner == nil {
		return ""
	}
	return partner.id
}

func (s *Screen) setProgress(p float64) {
	s.progress = p
	if s.OnProgress != nil {
		s.OnProgress(p)
	}
}

// --- Container-driven lifecycle ---

// afterLoad attaches the screen under parent ahead of the first sibling
// screen with a greater order, hides it, and runs Initialize.
func (s *Screen) afterLoad(parent *Node) Routine {
	index := parent.NumChildren()
	for i, child := range parent.Children() {
		if child.screen != nil && child.screen.order > s.order {
			index = i
			break
		}
	}
	parent.AddChildAt(s.node, index)
	s.restX, s.restY = s.node.X, s.node.Y
	s.restSX, s.restSY = s.node.ScaleX, s.node.ScaleY
	s.node.Visible = false
	return Seq(
		func() Routine { return s.dispatcher.RunSequentially(HookInitialize, nil) },
		func() Routine {
			s.initialized = true
			return nil
		},
	)
}

func (s *Screen) beforeEnter(partner *Screen) Routine {
	s.state = StateEntering
	s.node.Visible = true
	s.node.Alpha = 0
	s.setProgress(0)
	return s.dispatcher.RunSequentially(HookWillEnter, partner)
}

// enter makes the screen opaque before animating, so readiness is decided
// by the WillEnter hooks rather than the animation. The final pose is
// always written, even when no animation runs.
func (s *Screen) enter(playAnimation bool, partner *Screen) Routine {
	s.node.Alpha = 1
	var anim TransitionAnimation
	if playAnimation {
		anim = s.container.animationFor(s, true, partner)
	}
	if anim == nil || anim.Duration() <= 0 {
		s.settle(1)
		return nil
	}
	s.restoreLayout()
	anim.Setup(s.node)
	anim.SetPartner(partnerNode(partner))
	play := anim.Play(s.setProgress)
	return Seq(
		func() Routine { return play },
		func() Routine {
			s.settle(1)
			return nil
		},
	)
}

func (s *Screen) afterEnter(partner *Screen) {
	s.state = StateActive
	s.container.scene.scheduler.Start(s.id+".DidEnter", s.dispatcher.RunSequentially(HookDidEnter, partner))
}

func (s *Screen) beforeExit(partner *Screen) Routine {
	s.state = StateExiting
	s.node.Visible = true
	s.node.Alpha = 1
	s.setProgress(0)
	return s.dispatcher.RunSequentially(HookWillExit, partner)
}

func (s *Screen) exit(playAnimation bool, partner *Screen) Routine {
	var anim TransitionAnimation
	if playAnimation {
		anim = s.container.animationFor(s, false, partner)
	}
	if anim == nil || anim.Duration() <= 0 {
		s.settle(0)
		return nil
	}
	s.restoreLayout()
	anim.Setup(s.node)
	anim.SetPartner(partnerNode(partner))
	play := anim.Play(s.setProgress)
	return Seq(
		func() Routine { return play },
		func() Routine {
			s.settle(0)
			return nil
		},
	)
}

func (s *Screen) afterExit(partner *Screen) {
	s.container.scene.scheduler.Start(s.id+".DidExit", s.dispatcher.RunSequentially(HookDidExit, partner))
	s.node.Visible = false
	s.state = StateInactive
}

// beforeRelease starts the Cleanup hooks without waiting for them.
func (s *Screen) beforeRelease() {
	s.container.scene.scheduler.Start(s.id+".Cleanup", s.dispatcher.RunSequentially(HookCleanup, nil))
}

// settle snaps the node to its resting layout at the given opacity and
// marks the transition complete.
func (s *Screen) settle(alpha float64) {
	s.restoreLayout()
	s.node.Alpha = alpha
	s.setProgress(1)
}

func (s *Screen) restoreLayout() {
	s.node.X, s.node.Y = s.restX, s.restY
	s.node.ScaleX, s.node.ScaleY = s.restSX, s.restSY
}

func partnerNode(partner *Screen) *Node {
	if partner == nil {
		return nil
	}
	return partner.node
}
