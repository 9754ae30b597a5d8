package canopy

import "github.com/hajimehoshi/ebiten/v2"

// whitePixel backs solid-color nodes. Created on first draw so importing
// the package does not touch the graphics driver.
var whitePixel *ebiten.Image

func solidImage() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(ColorWhite.toRGBA())
	}
	return whitePixel
}

// drawState is the accumulated parent pose during traversal.
type drawState struct {
	x, y   float64
	sx, sy float64
	alpha  float64
}

// traverse walks the node tree depth-first and draws every visible node
// that has an image or a solid color. Invisible nodes hide their subtree.
func (s *Scene) traverse(target *ebiten.Image, n *Node, parent drawState) {
	if !n.Visible {
		return
	}
	cur := drawState{
		x:     parent.x + n.X*parent.sx,
		y:     parent.y + n.Y*parent.sy,
		sx:    parent.sx * n.ScaleX,
		sy:    parent.sy * n.ScaleY,
		alpha: parent.alpha * n.Alpha,
	}
	if cur.alpha > 0 {
		s.drawNode(target, n, cur)
	}
	for _, child := range n.children {
		s.traverse(target, child, cur)
	}
}

func (s *Scene) drawNode(target *ebiten.Image, n *Node, st drawState) {
	img := n.Image
	tint := n.Color
	if img == nil {
		if tint.A == 0 {
			return
		}
		img = solidImage()
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(st.sx, st.sy)
	op.GeoM.Translate(st.x, st.y)
	op.ColorScale.Scale(float32(tint.R), float32(tint.G), float32(tint.B), float32(tint.A))
	op.ColorScale.ScaleAlpha(float32(st.alpha))
	target.DrawImage(img, &op)
}
