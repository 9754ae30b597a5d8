package canopy

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestScene(t *testing.T, mutate func(*Settings)) (*Scene, *MemoryLoader) {
	t.Helper()
	st := DefaultSettings()
	if mutate != nil {
		mutate(&st)
	}
	loader := NewMemoryLoader()
	s := NewScene(SceneConfig{
		Settings: &st,
		Loader:   loader,
		Logger:   slog.New(slog.DiscardHandler),
	})
	return s, loader
}

func newTestContainer(t *testing.T, s *Scene, name string, kind ContainerKind) *Container {
	t.Helper()
	c, err := s.NewContainer(ContainerConfig{Name: name, Kind: kind})
	require.NoError(t, err)
	return c
}

// addScreen registers a plain node under id and waits for it to be ready.
func addScreen(t *testing.T, c *Container, loader *MemoryLoader, id string, events ...LifecycleEvent) *Screen {
	t.Helper()
	loader.Add(id, PrefabFunc(func() *Node { return NewNode(id) }))
	reg, err := c.Register(id, RegisterOptions{
		ID:   id,
		Sync: true,
		OnLoad: func(_ string, s *Screen) {
			for _, ev := range events {
				s.AddLifecycleEvent(ev, 0)
			}
		},
	})
	require.NoError(t, err)
	require.NoError(t, c.Scene().Scheduler().RunUntil(reg.Task, 0.1, 50))
	s, ok := c.Screen(id)
	require.True(t, ok)
	return s
}

// hookLog collects lifecycle calls across screens in call order.
type hookLog struct {
	entries []string
}

func (l *hookLog) add(format string, args ...any) {
	l.entries = append(l.entries, fmt.Sprintf(format, args...))
}

// recorder is a LifecycleEvent that logs every hook as "name.Hook:partner".
// Hooks listed in delays take that many seconds and log "name.Hook end"
// when they finish; hooks listed in fail return the error.
type recorder struct {
	name   string
	log    *hookLog
	delays map[Hook]float64
	fail   map[Hook]error
}

func newRecorder(name string, log *hookLog) *recorder {
	return &recorder{name: name, log: log, delays: map[Hook]float64{}, fail: map[Hook]error{}}
}

func (r *recorder) record(h Hook, partner *Screen) Routine {
	r.log.add("%s.%s:%s", r.name, h, screenID(partner))
	if err, ok := r.fail[h]; ok {
		return Fail(err)
	}
	d, ok := r.delays[h]
	if !ok {
		return nil
	}
	return Seq(
		func() Routine { return Delay(d) },
		func() Routine {
			r.log.add("%s.%s end", r.name, h)
			return nil
		},
	)
}

func (r *recorder) Initialize() Routine         { return r.record(HookInitialize, nil) }
func (r *recorder) WillEnter(p *Screen) Routine { return r.record(HookWillEnter, p) }
func (r *recorder) DidEnter(p *Screen) Routine  { return r.record(HookDidEnter, p) }
func (r *recorder) WillExit(p *Screen) Routine  { return r.record(HookWillExit, p) }
func (r *recorder) DidExit(p *Screen) Routine   { return r.record(HookDidExit, p) }
func (r *recorder) Cleanup() Routine            { return r.record(HookCleanup, nil) }

// transitionLog is a CallbackReceiver and TransitionAborter that records
// every notification.
type transitionLog struct {
	before    []Transition
	after     []Transition
	aborted   []Transition
	abortErrs []error
}

func (l *transitionLog) BeforeTransition(tr Transition) { l.before = append(l.before, tr) }
func (l *transitionLog) AfterTransition(tr Transition)  { l.after = append(l.after, tr) }
func (l *transitionLog) TransitionAborted(tr Transition, err error) {
	l.aborted = append(l.aborted, tr)
	l.abortErrs = append(l.abortErrs, err)
}
