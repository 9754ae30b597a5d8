package canopy

import "fmt"

// Show makes the sheet id active, exiting the current sheet if there is
// one. It fails synchronously, without side effects, when the container is
// transitioning or id is already active.
func (c *Container) Show(id string, playAnimation bool) (*Task, error) {
	if c.kind != KindSheet {
		return nil, fmt.Errorf("%w: Show on %s container %q", ErrWrongKind, c.kind, c.name)
	}
	if err := c.checkIdle(); err != nil {
		return nil, err
	}
	enter, err := c.lookupReady(id)
	if err != nil {
		return nil, err
	}
	if active, ok := c.ActiveID(); ok && active == id {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyActive, id)
	}
	tr := Transition{
		Op:            OpShow,
		Container:     c,
		Enter:         enter,
		Exit:          c.ActiveScreen(),
		PlayAnimation: playAnimation,
	}
	return c.runTransition(tr, func() {
		c.stack = append(c.stack[:0], id)
	}), nil
}

// Hide exits the active sheet, leaving none active.
func (c *Container) Hide(playAnimation bool) (*Task, error) {
	if c.kind != KindSheet {
		return nil, fmt.Errorf("%w: Hide on %s container %q", ErrWrongKind, c.kind, c.name)
	}
	if err := c.checkIdle(); err != nil {
		return nil, err
	}
	exit := c.ActiveScreen()
	if exit == nil {
		return nil, ErrNoActiveScreen
	}
	tr := Transition{
		Op:            OpHide,
		Container:     c,
		Exit:          exit,
		PlayAnimation: playAnimation,
	}
	return c.runTransition(tr, func() {
		c.stack = c.stack[:0]
	}), nil
}
