package canopy

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is used for the popup backdrop.
var ColorBlack = Color{0, 0, 0, 1}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// Vec2 is a 2D vector used for offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// ContainerKind selects how a Container stacks its screens.
type ContainerKind uint8

const (
	KindSheet ContainerKind = iota // one active screen, Show/Hide
	KindPage                       // push/pop history, the previous page re-enters on Pop
	KindPopup                      // push/pop overlay, lower popups stay active behind a backdrop
)

func (k ContainerKind) String() string {
	switch k {
	case KindSheet:
		return "sheet"
	case KindPage:
		return "page"
	case KindPopup:
		return "popup"
	default:
		return "unknown"
	}
}

// ScreenState is the position of a Screen in its lifecycle.
type ScreenState uint8

const (
	StateLoaded   ScreenState = iota // registered, never shown
	StateEntering                    // between BeforeEnter and AfterEnter
	StateActive                      // fully shown
	StateExiting                     // between BeforeExit and AfterExit
	StateInactive                    // hidden after having been shown
	StateDisposed                    // unregistered
)

func (s ScreenState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateEntering:
		return "entering"
	case StateActive:
		return "active"
	case StateExiting:
		return "exiting"
	case StateInactive:
		return "inactive"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// TransitionOp names the container operation a Transition came from.
type TransitionOp uint8

const (
	OpShow TransitionOp = iota
	OpHide
	OpPush
	OpPop
)

func (o TransitionOp) String() string {
	switch o {
	case OpShow:
		return "show"
	case OpHide:
		return "hide"
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	default:
		return "unknown"
	}
}

// Transition describes one container operation to callback receivers.
// Enter or Exit is nil when that side of the transition is absent.
type Transition struct {
	Op            TransitionOp
	Container     *Container
	Enter         *Screen
	Exit          *Screen
	PlayAnimation bool
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
