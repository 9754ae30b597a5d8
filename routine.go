package canopy

import (
	"fmt"
	"log/slog"
)

// Routine is a resumable unit of cooperative work. Step advances it by one
// tick of dt seconds and reports whether it has finished. A Routine is never
// stepped again after it reports done or returns an error.
type Routine interface {
	Step(dt float64) (done bool, err error)
}

// RoutineFunc adapts a function to the Routine interface.
type RoutineFunc func(dt float64) (bool, error)

// Step calls f(dt).
func (f RoutineFunc) Step(dt float64) (bool, error) {
	return f(dt)
}

// Do returns a Routine that runs fn once and finishes on its first step.
func Do(fn func() error) Routine {
	return RoutineFunc(func(float64) (bool, error) {
		return true, fn()
	})
}

// Fail returns a Routine that finishes with err on its first step.
func Fail(err error) Routine {
	return RoutineFunc(func(float64) (bool, error) {
		return true, err
	})
}

// Wait returns a Routine that finishes on the first step where cond is true.
func Wait(cond func() bool) Routine {
	return RoutineFunc(func(float64) (bool, error) {
		return cond(), nil
	})
}

// Delay returns a Routine that finishes once seconds of tick time have passed.
func Delay(seconds float64) Routine {
	var elapsed float64
	return RoutineFunc(func(dt float64) (bool, error) {
		elapsed += dt
		return elapsed >= seconds, nil
	})
}

// Seq runs the routines produced by steps one after another. Each step
// function is called only when its predecessor has finished, so state read
// while building a routine reflects everything that ran before it. A nil
// routine counts as already finished, and a routine that finishes hands
// over to its successor within the same tick. The successor's first step
// gets dt = 0; the tick's time was spent by its predecessor.
func Seq(steps ...func() Routine) Routine {
	return &sequence{steps: steps}
}

type sequence struct {
	steps []func() Routine
	next  int
	cur   Routine
}

func (s *sequence) Step(dt float64) (bool, error) {
	stepped := false
	for {
		if s.cur == nil {
			if s.next >= len(s.steps) {
				return true, nil
			}
			s.cur = s.steps[s.next]()
			s.next++
			if s.cur == nil {
				continue
			}
		}
		if stepped {
			dt = 0
		}
		done, err := s.cur.Step(dt)
		stepped = true
		if err != nil {
			return true, err
		}
		if !done {
			return false, nil
		}
		s.cur = nil
	}
}

// All is a barrier: every tick it steps each unfinished routine once and it
// finishes when all of them have finished. The first error aborts the
// barrier; routines still running are abandoned. Nil routines are ignored.
func All(routines ...Routine) Routine {
	b := &barrier{}
	for _, r := range routines {
		if r != nil {
			b.routines = append(b.routines, r)
		}
	}
	b.done = make([]bool, len(b.routines))
	return b
}

type barrier struct {
	routines []Routine
	done     []bool
}

func (b *barrier) Step(dt float64) (bool, error) {
	all := true
	for i, r := range b.routines {
		if b.done[i] {
			continue
		}
		done, err := r.Step(dt)
		if err != nil {
			return true, err
		}
		b.done[i] = done
		if !done {
			all = false
		}
	}
	return all, nil
}

// --- Tasks ---

// Task is a Routine that has been started on a Scheduler.
type Task struct {
	name    string
	routine Routine
	done    bool
	err     error
	started uint64
	ended   uint64
	then    []func(*Task)
}

// Name returns the label the task was started with.
func (t *Task) Name() string { return t.name }

// Done reports whether the task has finished, successfully or not.
func (t *Task) Done() bool { return t.done }

// Err returns the error the task finished with, if any.
func (t *Task) Err() error { return t.err }

// Ticks returns how many scheduler ticks the task has spent running.
func (t *Task) Ticks() uint64 { return t.ended - t.started }

// Then registers fn to run when the task finishes. If the task is already
// done, fn runs immediately.
func (t *Task) Then(fn func(*Task)) {
	if t.done {
		fn(t)
		return
	}
	t.then = append(t.then, fn)
}

func (t *Task) finish(tick uint64, err error) {
	t.done = true
	t.err = err
	t.ended = tick
	t.routine = nil
	callbacks := t.then
	t.then = nil
	for _, fn := range callbacks {
		fn(t)
	}
}

// completedTask returns a Task that has already finished with err.
func completedTask(name string, err error) *Task {
	return &Task{name: name, done: true, err: err}
}

// Scheduler advances started routines once per tick. It is not safe for
// concurrent use; everything runs on the goroutine that calls Update.
type Scheduler struct {
	tasks  []*Task
	buf    []*Task
	tick   uint64
	logger *slog.Logger
}

// NewScheduler creates an empty scheduler. A nil logger discards output.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{logger: logger}
}

// Start begins running r. The routine is stepped once immediately with
// dt = 0, so a routine that never suspends is already done when Start
// returns. Otherwise it is stepped once per Update until it finishes.
func (s *Scheduler) Start(name string, r Routine) *Task {
	t := &Task{name: name, routine: r, started: s.tick}
	if r == nil {
		t.finish(s.tick, nil)
		return t
	}
	if s.step(t, 0) {
		return t
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Update advances every running task by one tick of dt seconds. Tasks
// started during this Update are not stepped again until the next one.
func (s *Scheduler) Update(dt float64) {
	s.tick++
	s.buf = append(s.buf[:0], s.tasks...)
	for _, t := range s.buf {
		if !t.done {
			s.step(t, dt)
		}
	}
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.done {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
	clear(s.buf)
}

// step advances t once and reports whether it finished.
func (s *Scheduler) step(t *Task, dt float64) bool {
	done, err := t.routine.Step(dt)
	if err == nil && !done {
		return false
	}
	switch {
	case err == nil:
	case IsLoadFailure(err):
		s.logger.Warn("task failed", "task", t.name, "tick", s.tick, "error", err)
	default:
		s.logger.Error("task failed", "task", t.name, "tick", s.tick, "error", err)
	}
	t.finish(s.tick, err)
	return true
}

// Tick returns the number of Update calls so far.
func (s *Scheduler) Tick() uint64 { return s.tick }

// Len returns the number of running tasks.
func (s *Scheduler) Len() int { return len(s.tasks) }

// RunUntil calls Update with dt until t is done, at most maxTicks times.
// It returns the task's error, or ErrTickLimit if t did not finish.
func (s *Scheduler) RunUntil(t *Task, dt float64, maxTicks int) error {
	for i := 0; i < maxTicks && !t.done; i++ {
		s.Update(dt)
	}
	if !t.done {
		return fmt.Errorf("%w: task %q after %d ticks", ErrTickLimit, t.name, maxTicks)
	}
	return t.err
}
