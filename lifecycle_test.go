package canopy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoutine(t *testing.T, r Routine, dt float64, max int) error {
	t.Helper()
	for i := 0; i < max; i++ {
		done, err := r.Step(dt)
		if err != nil || done {
			return err
		}
	}
	t.Fatalf("routine did not finish in %d steps", max)
	return nil
}

func TestDispatcherPriorityOrder(t *testing.T) {
	log := &hookLog{}
	d := NewLifecycleDispatcher("home")
	d.AddEvent(newRecorder("late", log), 10)
	d.AddEvent(newRecorder("first", log), -5)
	d.AddEvent(newRecorder("mid-a", log), 0)
	d.AddEvent(newRecorder("mid-b", log), 0)

	require.NoError(t, runRoutine(t, d.RunSequentially(HookWillEnter, nil), 0, 1))
	assert.Equal(t, []string{
		"first.WillEnter:",
		"mid-a.WillEnter:",
		"mid-b.WillEnter:",
		"late.WillEnter:",
	}, log.entries)
}

func TestDispatcherWaitsForEachEvent(t *testing.T) {
	log := &hookLog{}
	slow := newRecorder("slow", log)
	slow.delays[HookWillExit] = 0.2
	d := NewLifecycleDispatcher("home")
	d.AddEvent(slow, 0)
	d.AddEvent(newRecorder("next", log), 1)

	r := d.RunSequentially(HookWillExit, nil)
	done, err := r.Step(0)
	require.NoError(t, err)
	require.False(t, done)
	assert.Equal(t, []string{"slow.WillExit:"}, log.entries)

	require.NoError(t, runRoutine(t, r, 0.1, 5))
	assert.Equal(t, []string{"slow.WillExit:", "slow.WillExit end", "next.WillExit:"}, log.entries)
}

func TestDispatcherPassesPartner(t *testing.T) {
	s, loader := newTestScene(t, nil)
	c := newTestContainer(t, s, "sheets", KindSheet)
	partner := addScreen(t, c, loader, "settings")

	log := &hookLog{}
	d := NewLifecycleDispatcher("home")
	d.AddEvent(newRecorder("home", log), 0)
	require.NoError(t, runRoutine(t, d.RunSequentially(HookDidExit, partner), 0, 1))
	assert.Equal(t, []string{"home.DidExit:settings"}, log.entries)
}

func TestDispatcherRemoveEvent(t *testing.T) {
	log := &hookLog{}
	a, b := newRecorder("a", log), newRecorder("b", log)
	d := NewLifecycleDispatcher("home")
	d.AddEvent(a, 0)
	d.AddEvent(b, 0)

	assert.True(t, d.RemoveEvent(a))
	assert.False(t, d.RemoveEvent(a))
	assert.Equal(t, 1, d.Len())

	require.NoError(t, runRoutine(t, d.RunSequentially(HookCleanup, nil), 0, 1))
	assert.Equal(t, []string{"b.Cleanup:"}, log.entries)
}

// taggedHooks is a value-type event whose slice field makes it
// non-comparable.
type taggedHooks struct {
	LifecycleHooks
	tags []string
}

func TestDispatcherRemoveNonComparableValue(t *testing.T) {
	d := NewLifecycleDispatcher("home")
	d.AddEvent(taggedHooks{tags: []string{"a"}}, 0)
	d.AddEvent(taggedHooks{tags: []string{"b"}}, 0)

	assert.NotPanics(t, func() {
		assert.False(t, d.RemoveEvent(taggedHooks{tags: []string{"a"}}))
	})
	assert.Equal(t, 2, d.Len())

	p := &taggedHooks{tags: []string{"c"}}
	d.AddEvent(p, 0)
	assert.True(t, d.RemoveEvent(p))
	assert.Equal(t, 2, d.Len())
}

func TestDispatcherEmptyIsNil(t *testing.T) {
	d := NewLifecycleDispatcher("home")
	assert.Nil(t, d.RunSequentially(HookInitialize, nil))
}

func TestDispatcherSnapshot(t *testing.T) {
	log := &hookLog{}
	d := NewLifecycleDispatcher("home")
	late := newRecorder("late", log)
	d.AddEvent(&LifecycleFuncs{
		OnWillEnter: func(*Screen) Routine {
			d.AddEvent(late, 0)
			return nil
		},
	}, 0)

	require.NoError(t, runRoutine(t, d.RunSequentially(HookWillEnter, nil), 0, 1))
	assert.Empty(t, log.entries)
	assert.Equal(t, 2, d.Len())
}

func TestDispatcherWrapsErrors(t *testing.T) {
	boom := errors.New("boom")
	log := &hookLog{}
	bad := newRecorder("bad", log)
	bad.fail[HookInitialize] = boom
	d := NewLifecycleDispatcher("home")
	d.AddEvent(bad, 0)
	d.AddEvent(newRecorder("after", log), 1)

	err := runRoutine(t, d.RunSequentially(HookInitialize, nil), 0, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, IsHookFailure(err))

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, HookInitialize, hookErr.Hook)
	assert.Equal(t, "home", hookErr.ScreenID)
	assert.Equal(t, []string{"bad.Initialize:"}, log.entries)
}

type onlyDidEnter struct {
	LifecycleHooks
	calls int
}

func (o *onlyDidEnter) DidEnter(*Screen) Routine {
	o.calls++
	return nil
}

func TestLifecycleHooksEmbedding(t *testing.T) {
	ev := &onlyDidEnter{}
	d := NewLifecycleDispatcher("home")
	d.AddEvent(ev, 0)
	for _, h := range []Hook{HookInitialize, HookWillEnter, HookDidEnter, HookWillExit, HookDidExit, HookCleanup} {
		require.NoError(t, runRoutine(t, d.RunSequentially(h, nil), 0, 1))
	}
	assert.Equal(t, 1, ev.calls)
}

func TestHookString(t *testing.T) {
	assert.Equal(t, "WillEnter", HookWillEnter.String())
	assert.Equal(t, "Cleanup", HookCleanup.String())
	assert.Equal(t, "Unknown", Hook(99).String())
}
