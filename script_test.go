package canopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScript = `
steps:
  - {action: register, container: sheets, screen: home, key: home, sync: true}
  - {action: register, container: pages, screen: a, key: a}
  - {action: register, container: pages, screen: b, key: b}
  - {action: show, container: sheets, screen: home, animate: false}
  - {action: wait, frames: 2}
  - {action: push, container: pages, screen: a}
  - {action: push, container: pages, screen: b}
  - {action: pop, container: pages}
  - {action: unregister, container: pages, screen: b}
`

func scriptScene(t *testing.T) (*Scene, *Container, *Container) {
	t.Helper()
	s, loader := newTestScene(t, nil)
	sheets := newTestContainer(t, s, "sheets", KindSheet)
	pages := newTestContainer(t, s, "pages", KindPage)
	for _, key := range []string{"home", "a", "b"} {
		loader.Add(key, PrefabFunc(func() *Node { return NewNode(key) }))
	}
	return s, sheets, pages
}

func runScript(t *testing.T, s *Scene, runner *ScriptRunner, maxTicks int) error {
	t.Helper()
	s.SetScript(runner)
	for i := 0; i < maxTicks && !runner.Done(); i++ {
		if err := s.Tick(0.1); err != nil {
			return err
		}
	}
	require.True(t, runner.Done(), "script did not finish")
	return runner.Err()
}

func TestScriptRun(t *testing.T) {
	s, sheets, pages := scriptScene(t)
	runner, err := LoadScript([]byte(testScript))
	require.NoError(t, err)
	assert.Equal(t, 9, runner.Len())
	assert.Equal(t, []string{"register", "register", "register", "show", "wait", "push", "push", "pop", "unregister"}, runner.Actions())

	require.NoError(t, runScript(t, s, runner, 100))
	id, ok := sheets.ActiveID()
	assert.True(t, ok)
	assert.Equal(t, "home", id)
	assert.Equal(t, []string{"a"}, pages.Stack())
	assert.Equal(t, []string{"a"}, pages.Screens())
}

func TestScriptJSON(t *testing.T) {
	s, sheets, _ := scriptScene(t)
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "register", "container": "sheets", "screen": "home", "key": "home"},
		{"action": "show", "container": "sheets", "screen": "home"},
		{"action": "hide", "container": "sheets"}
	]}`))
	require.NoError(t, err)
	require.NoError(t, runScript(t, s, runner, 100))
	_, ok := sheets.ActiveID()
	assert.False(t, ok)
}

func TestScriptStepFailure(t *testing.T) {
	s, _, _ := scriptScene(t)
	runner, err := LoadScript([]byte(`
steps:
  - {action: register, container: sheets, screen: home, key: home}
  - {action: show, container: sheets, screen: ghost}
`))
	require.NoError(t, err)

	err = runScript(t, s, runner, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrScreenNotFound)
	assert.Contains(t, err.Error(), "script step 2 (show)")
	assert.ErrorIs(t, runner.Err(), ErrScreenNotFound)
}

func TestScriptTaskFailure(t *testing.T) {
	s, _, _ := scriptScene(t)
	runner, err := LoadScript([]byte(`
steps:
  - {action: register, container: sheets, screen: x, key: missing}
`))
	require.NoError(t, err)
	err = runScript(t, s, runner, 10)
	require.Error(t, err)
	assert.True(t, IsLoadFailure(err))
	assert.Contains(t, err.Error(), "script step 1 (register)")
}

func TestScriptUnknownContainer(t *testing.T) {
	s, _, _ := scriptScene(t)
	runner, err := LoadScript([]byte(`steps: [{action: pop, container: nope}]`))
	require.NoError(t, err)
	assert.ErrorContains(t, runScript(t, s, runner, 10), `no container "nope"`)
}

func TestLoadScriptValidation(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{"syntax", `steps: [`},
		{"empty", `steps: []`},
		{"unknown action", `steps: [{action: fly, container: sheets}]`},
		{"register without key", `steps: [{action: register, container: sheets}]`},
		{"show without screen", `steps: [{action: show, container: sheets}]`},
		{"pop without container", `steps: [{action: pop}]`},
		{"negative wait", `steps: [{action: wait, frames: -1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.script))
			assert.Error(t, err)
		})
	}
}
