package canopy

// backdropState is the popup backdrop's ownership state.
type backdropState uint8

const (
	backdropNone  backdropState = iota // not attached
	backdropOwned                      // attached directly beneath one popup
)

// backdrop is the single dimming layer a popup container reuses for every
// popup. It moves from None to Owned(index) when the first popup is pushed,
// follows the top popup while the stack changes, and returns to None when
// the last popup is popped.
type backdrop struct {
	c     *Container
	node  *Node
	state backdropState
	owner *Node
}

// backdropSize covers any reasonable window; the backdrop is a solid rect.
const backdropSize = 1 << 14

func newBackdrop(c *Container) *backdrop {
	return &backdrop{c: c}
}

// place attaches the backdrop directly beneath popup.
func (b *backdrop) place(popup *Node) {
	if b.node == nil || b.node.IsDisposed() {
		b.node = NewRect(b.c.name+".backdrop", backdropSize, backdropSize, ColorBlack)
		b.node.X, b.node.Y = -backdropSize/2, -backdropSize/2
	}
	b.node.Alpha = b.c.scene.settings.BackdropAlpha
	root := b.c.root
	if b.node.Parent == root {
		root.RemoveChild(b.node)
	}
	root.AddChildAt(b.node, root.ChildIndex(popup))
	b.owner = popup
	b.state = backdropOwned
}

// release detaches the backdrop.
func (b *backdrop) release() {
	if b.node != nil {
		b.node.RemoveFromParent()
	}
	b.owner = nil
	b.state = backdropNone
}

// index returns the backdrop's sibling index while owned.
func (b *backdrop) index() (int, bool) {
	if b.state != backdropOwned {
		return -1, false
	}
	return b.c.root.ChildIndex(b.node), true
}

// BackdropIndex returns the sibling index of the popup backdrop, or false
// when no popup is showing (or the container is not a popup container).
func (c *Container) BackdropIndex() (int, bool) {
	if c.backdrop == nil {
		return -1, false
	}
	return c.backdrop.index()
}
