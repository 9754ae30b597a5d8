package canopy

import (
	"fmt"
	"regexp"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransitionAnimation moves a Screen's node during Enter or Exit.
type TransitionAnimation interface {
	// Duration is the length of the animation in seconds. Zero skips it.
	Duration() float64
	// Setup binds the animation to the node it moves.
	Setup(target *Node)
	// SetPartner binds the other screen's node, or nil when there is none.
	SetPartner(partner *Node)
	// Play returns a Routine that advances the animation each tick and
	// reports progress in [0, 1] until complete.
	Play(progress func(float64)) Routine
}

// AnimationFactory builds a fresh TransitionAnimation for one transition.
type AnimationFactory func() TransitionAnimation

// TweenState is a node pose relative to its resting layout.
type TweenState struct {
	Alpha   float64
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// restState is the resting pose: opaque, in place, unscaled.
var restState = TweenState{Alpha: 1, Scale: 1}

// TweenAnimation interpolates a node from one TweenState to another using
// gween. The node's layout at Setup time is treated as its resting layout.
type TweenAnimation struct {
	From, To TweenState
	Length   float64
	Ease     ease.TweenFunc

	target  *Node
	partner *Node
	baseX   float64
	baseY   float64
	baseSX  float64
	baseSY  float64
}

// Duration returns the animation length in seconds.
func (a *TweenAnimation) Duration() float64 { return a.Length }

// Setup records target and its resting layout.
func (a *TweenAnimation) Setup(target *Node) {
	a.target = target
	a.baseX, a.baseY = target.X, target.Y
	a.baseSX, a.baseSY = target.ScaleX, target.ScaleY
}

// SetPartner records the partner node. TweenAnimation does not move it.
func (a *TweenAnimation) SetPartner(partner *Node) { a.partner = partner }

// Partner returns the node passed to SetPartner.
func (a *TweenAnimation) Partner() *Node { return a.partner }

// Play returns a Routine that drives the tweens. The final pose is written
// exactly on the last step regardless of easing rounding.
func (a *TweenAnimation) Play(progress func(float64)) Routine {
	fn := a.Ease
	if fn == nil {
		fn = ease.Linear
	}
	d := float32(a.Length)
	tweens := [4]*gween.Tween{
		gween.New(float32(a.From.Alpha), float32(a.To.Alpha), d, fn),
		gween.New(float32(a.From.OffsetX), float32(a.To.OffsetX), d, fn),
		gween.New(float32(a.From.OffsetY), float32(a.To.OffsetY), d, fn),
		gween.New(float32(a.From.Scale), float32(a.To.Scale), d, fn),
	}
	var elapsed float64
	a.apply(a.From)
	return RoutineFunc(func(dt float64) (bool, error) {
		if a.target == nil || a.target.IsDisposed() {
			return true, nil
		}
		elapsed += dt
		if elapsed >= a.Length {
			a.apply(a.To)
			if progress != nil {
				progress(1)
			}
			return true, nil
		}
		var vals [4]float32
		for i, tw := range tweens {
			vals[i], _ = tw.Update(float32(dt))
		}
		a.apply(TweenState{
			Alpha:   float64(vals[0]),
			OffsetX: float64(vals[1]),
			OffsetY: float64(vals[2]),
			Scale:   float64(vals[3]),
		})
		if progress != nil {
			progress(clamp01(elapsed / a.Length))
		}
		return false, nil
	})
}

func (a *TweenAnimation) apply(s TweenState) {
	if a.target == nil {
		return
	}
	a.target.Alpha = s.Alpha
	a.target.X = a.baseX + s.OffsetX
	a.target.Y = a.baseY + s.OffsetY
	a.target.ScaleX = a.baseSX * s.Scale
	a.target.ScaleY = a.baseSY * s.Scale
}

// FadeIn fades a node from transparent to opaque.
func FadeIn(duration float64) AnimationFactory {
	return tweenFactory(TweenState{Alpha: 0, Scale: 1}, restState, duration, ease.OutQuad)
}

// FadeOut fades a node from opaque to transparent.
func FadeOut(duration float64) AnimationFactory {
	return tweenFactory(restState, TweenState{Alpha: 0, Scale: 1}, duration, ease.InQuad)
}

// SlideIn moves a node from offset to its resting position.
func SlideIn(offset Vec2, duration float64) AnimationFactory {
	return tweenFactory(TweenState{Alpha: 1, OffsetX: offset.X, OffsetY: offset.Y, Scale: 1}, restState, duration, ease.OutCubic)
}

// SlideOut moves a node from its resting position to offset.
func SlideOut(offset Vec2, duration float64) AnimationFactory {
	return tweenFactory(restState, TweenState{Alpha: 1, OffsetX: offset.X, OffsetY: offset.Y, Scale: 1}, duration, ease.InCubic)
}

// ScaleIn grows a node from half size while fading it in.
func ScaleIn(duration float64) AnimationFactory {
	return tweenFactory(TweenState{Alpha: 0, Scale: 0.5}, restState, duration, ease.OutBack)
}

// ScaleOut shrinks a node to half size while fading it out.
func ScaleOut(duration float64) AnimationFactory {
	return tweenFactory(restState, TweenState{Alpha: 0, Scale: 0.5}, duration, ease.InQuad)
}

func tweenFactory(from, to TweenState, duration float64, fn ease.TweenFunc) AnimationFactory {
	return func() TransitionAnimation {
		return &TweenAnimation{From: from, To: to, Length: duration, Ease: fn}
	}
}

// slideDistance is the offset used by the named slide animations.
const slideDistance = 640

// NamedAnimation resolves an animation name from Settings. It returns nil
// for "none" and "". Entering animations move toward the resting pose,
// exiting ones away from it.
func NamedAnimation(name string, entering bool, duration float64) (AnimationFactory, error) {
	var off Vec2
	switch name {
	case "", "none":
		return nil, nil
	case "fade":
		if entering {
			return FadeIn(duration), nil
		}
		return FadeOut(duration), nil
	case "scale":
		if entering {
			return ScaleIn(duration), nil
		}
		return ScaleOut(duration), nil
	case "slide-left":
		off = Vec2{X: -slideDistance}
	case "slide-right":
		off = Vec2{X: slideDistance}
	case "slide-up":
		off = Vec2{Y: -slideDistance}
	case "slide-down":
		off = Vec2{Y: slideDistance}
	default:
		return nil, fmt.Errorf("canopy: unknown animation %q", name)
	}
	// Entering screens come in from the opposite side they leave to.
	if entering {
		return SlideIn(Vec2{X: -off.X, Y: -off.Y}, duration), nil
	}
	return SlideOut(off, duration), nil
}

// --- Animation sets ---

type animationEntry struct {
	pattern string
	re      *regexp.Regexp
	factory AnimationFactory
}

// AnimationSet is an ordered list of animations keyed by a partner-id
// pattern. The first entry whose pattern matches wins.
type AnimationSet struct {
	entries []animationEntry
}

// Add appends an entry. pattern is a regular expression matched against
// the partner screen's id; an empty pattern matches every partner,
// including none.
func (s *AnimationSet) Add(pattern string, factory AnimationFactory) error {
	e := animationEntry{pattern: pattern, factory: factory}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("canopy: animation pattern %q: %w", pattern, err)
		}
		e.re = re
	}
	s.entries = append(s.entries, e)
	return nil
}

// MustAdd is like Add but panics on an invalid pattern.
func (s *AnimationSet) MustAdd(pattern string, factory AnimationFactory) {
	if err := s.Add(pattern, factory); err != nil {
		panic(err)
	}
}

// Len returns the number of entries.
func (s *AnimationSet) Len() int { return len(s.entries) }

// Lookup returns the factory of the first entry matching partnerID, or nil.
func (s *AnimationSet) Lookup(partnerID string) AnimationFactory {
	for _, e := range s.entries {
		if e.re == nil || e.re.MatchString(partnerID) {
			return e.factory
		}
	}
	return nil
}
