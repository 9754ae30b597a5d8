package canopy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// scriptStep is a single action in a script.
type scriptStep struct {
	Action    string `yaml:"action"`
	Container string `yaml:"container,omitempty"`
	Screen    string `yaml:"screen,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Animate   *bool  `yaml:"animate,omitempty"`
	Sync      bool   `yaml:"sync,omitempty"`
	Frames    int    `yaml:"frames,omitempty"`
}

func (st scriptStep) animate() bool {
	return st.Animate == nil || *st.Animate
}

// script is the top-level structure of a script document.
type script struct {
	Steps []scriptStep `yaml:"steps"`
}

// ScriptRunner plays container operations across ticks. Each step waits
// for the previous step's task to finish. Attach it with Scene.SetScript.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	pending   *Task
	done      bool
	err       error
}

// LoadScript parses a YAML or JSON script:
//
//	steps:
//	  - {action: register, container: sheets, screen: home, key: home.png}
//	  - {action: show, container: sheets, screen: home, animate: false}
//	  - {action: wait, frames: 30}
//	  - {action: push, container: pages, screen: settings}
//	  - {action: pop, container: pages}
func LoadScript(data []byte) (*ScriptRunner, error) {
	var sc script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse script: step %d: %w", i+1, err)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

func (st scriptStep) validate() error {
	switch st.Action {
	case "wait":
		if st.Frames < 0 {
			return fmt.Errorf("wait frames must be >= 0")
		}
		return nil
	case "register":
		if st.Key == "" {
			return fmt.Errorf("register needs a key")
		}
	case "show", "push":
		if st.Screen == "" {
			return fmt.Errorf("%s needs a screen", st.Action)
		}
	case "hide", "pop", "unregister":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	if st.Container == "" {
		return fmt.Errorf("%s needs a container", st.Action)
	}
	return nil
}

// SetScript attaches a runner; it is stepped at the start of every Tick.
func (s *Scene) SetScript(runner *ScriptRunner) {
	s.script = runner
}

// Done reports whether every step has run and finished.
func (r *ScriptRunner) Done() bool { return r.done }

// Err returns the error that stopped the runner, if any.
func (r *ScriptRunner) Err() error { return r.err }

// Len returns the number of steps.
func (r *ScriptRunner) Len() int { return len(r.steps) }

// Actions returns the action of every step, in order.
func (r *ScriptRunner) Actions() []string {
	out := make([]string, len(r.steps))
	for i, st := range r.steps {
		out[i] = st.Action
	}
	return out
}

// step advances the runner by one tick. Called from Scene.Tick.
func (r *ScriptRunner) step(s *Scene) error {
	if r.done {
		return r.err
	}
	if r.pending != nil {
		if !r.pending.Done() {
			return nil
		}
		err := r.pending.Err()
		r.pending = nil
		if err != nil {
			return r.fail(r.cursor-1, err)
		}
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++
	task, err := r.exec(s, st)
	if err != nil {
		return r.fail(r.cursor-1, err)
	}
	if task != nil {
		if task.Done() {
			if err := task.Err(); err != nil {
				return r.fail(r.cursor-1, err)
			}
		} else {
			r.pending = task
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && r.pending == nil {
		r.done = true
	}
	return nil
}

func (r *ScriptRunner) fail(index int, err error) error {
	r.done = true
	r.err = fmt.Errorf("script step %d (%s): %w", index+1, r.steps[index].Action, err)
	return r.err
}

func (r *ScriptRunner) exec(s *Scene, st scriptStep) (*Task, error) {
	if st.Action == "wait" {
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
		return nil, nil
	}
	c, ok := s.registry.Lookup(st.Container)
	if !ok {
		return nil, fmt.Errorf("no container %q", st.Container)
	}
	switch st.Action {
	case "register":
		reg, err := c.Register(st.Key, RegisterOptions{ID: st.Screen, Sync: st.Sync})
		if err != nil {
			return nil, err
		}
		return reg.Task, nil
	case "show":
		return c.Show(st.Screen, st.animate())
	case "hide":
		return c.Hide(st.animate())
	case "push":
		return c.Push(st.Screen, st.animate())
	case "pop":
		return c.Pop(st.animate())
	case "unregister":
		if st.Screen == "" {
			return nil, c.UnregisterAll()
		}
		return nil, c.Unregister(st.Screen)
	}
	return nil, fmt.Errorf("unknown action %q", st.Action)
}
