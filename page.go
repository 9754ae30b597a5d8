package canopy

import (
	"fmt"
	"slices"
)

// Push makes id the top of the stack.
//
// In a page container the previous top page exits. In a popup container
// the lower popups stay active and the shared backdrop moves beneath the
// new top.
func (c *Container) Push(id string, playAnimation bool) (*Task, error) {
	if c.kind == KindSheet {
		return nil, fmt.Errorf("%w: Push on sheet container %q", ErrWrongKind, c.name)
	}
	if err := c.checkIdle(); err != nil {
		return nil, err
	}
	enter, err := c.lookupReady(id)
	if err != nil {
		return nil, err
	}
	if slices.Contains(c.stack, id) {
		return nil, fmt.Errorf("%w: %q is already on the stack", ErrAlreadyActive, id)
	}
	tr := Transition{
		Op:            OpPush,
		Container:     c,
		Enter:         enter,
		PlayAnimation: playAnimation,
	}
	if c.kind == KindPage {
		tr.Exit = c.ActiveScreen()
	}
	c.root.SetChildIndex(enter.node, c.root.NumChildren()-1)
	if c.backdrop != nil {
		c.backdrop.place(enter.node)
	}
	return c.runTransition(tr, func() {
		c.stack = append(c.stack, id)
	}), nil
}

// Pop exits the top of the stack.
//
// In a page container the page below re-enters; it is the same Screen
// instance that was pushed earlier. In a popup container only the top
// popup exits, and the backdrop moves under the new top or is released
// when the stack empties.
func (c *Container) Pop(playAnimation bool) (*Task, error) {
	if c.kind == KindSheet {
		return nil, fmt.Errorf("%w: Pop on sheet container %q", ErrWrongKind, c.name)
	}
	if err := c.checkIdle(); err != nil {
		return nil, err
	}
	exit := c.ActiveScreen()
	if exit == nil {
		return nil, ErrNoActiveScreen
	}
	tr := Transition{
		Op:            OpPop,
		Container:     c,
		Exit:          exit,
		PlayAnimation: playAnimation,
	}
	var below *Screen
	if n := len(c.stack); n > 1 {
		below = c.screens[c.stack[n-2]]
	}
	if c.kind == KindPage {
		tr.Enter = below
	}
	return c.runTransition(tr, func() {
		c.stack = c.stack[:len(c.stack)-1]
		if c.backdrop == nil {
			return
		}
		if below != nil {
			c.backdrop.place(below.node)
		} else {
			c.backdrop.release()
		}
	}), nil
}
