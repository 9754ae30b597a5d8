package canopy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFadeInReachesRest(t *testing.T) {
	n := NewNode("n")
	anim := FadeIn(0.3)()
	anim.Setup(n)
	var progress []float64
	r := anim.Play(func(p float64) { progress = append(progress, p) })

	assert.Equal(t, 0.0, n.Alpha, "From pose applied on Play")

	done, err := r.Step(0.1)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Greater(t, n.Alpha, 0.0)
	assert.Less(t, n.Alpha, 1.0)

	require.NoError(t, runRoutine(t, r, 0.1, 5))
	assert.Equal(t, 1.0, n.Alpha)
	require.NotEmpty(t, progress)
	assert.Equal(t, 1.0, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
}

func TestSlideInMovesRelativeToRest(t *testing.T) {
	n := NewNode("n")
	n.X, n.Y = 10, 20
	anim := SlideIn(Vec2{X: 100}, 0.2)()
	anim.Setup(n)
	r := anim.Play(nil)
	assert.Equal(t, 110.0, n.X)
	assert.Equal(t, 20.0, n.Y)

	require.NoError(t, runRoutine(t, r, 0.1, 5))
	assert.Equal(t, 10.0, n.X)
	assert.Equal(t, 20.0, n.Y)
}

func TestScaleOutKeepsBaseScale(t *testing.T) {
	n := NewNode("n")
	n.ScaleX, n.ScaleY = 2, 4
	anim := ScaleOut(0.1)()
	anim.Setup(n)
	require.NoError(t, runRoutine(t, anim.Play(nil), 0.1, 3))
	assert.Equal(t, 1.0, n.ScaleX)
	assert.Equal(t, 2.0, n.ScaleY)
	assert.Equal(t, 0.0, n.Alpha)
}

func TestTweenAnimationStopsOnDisposedTarget(t *testing.T) {
	n := NewNode("n")
	anim := FadeIn(10)()
	anim.Setup(n)
	r := anim.Play(nil)
	n.Dispose()
	done, err := r.Step(0.1)
	assert.NoError(t, err)
	assert.True(t, done)
}

func TestTweenAnimationPartner(t *testing.T) {
	partner := NewNode("p")
	anim := &TweenAnimation{Length: 1}
	anim.SetPartner(partner)
	assert.Same(t, partner, anim.Partner())
	assert.Equal(t, 1.0, anim.Duration())
}

func TestNamedAnimation(t *testing.T) {
	f, err := NamedAnimation("none", true, 1)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = NamedAnimation("", false, 1)
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = NamedAnimation("spin", true, 1)
	assert.Error(t, err)

	for _, name := range []string{"fade", "scale", "slide-left", "slide-right", "slide-up", "slide-down"} {
		for _, entering := range []bool{true, false} {
			f, err := NamedAnimation(name, entering, 0.5)
			require.NoError(t, err, name)
			require.NotNil(t, f, name)
			assert.Equal(t, 0.5, f().Duration(), name)
		}
	}
}

func TestNamedSlideDirections(t *testing.T) {
	in, err := NamedAnimation("slide-left", true, 1)
	require.NoError(t, err)
	n := NewNode("in")
	a := in()
	a.Setup(n)
	a.Play(nil)
	assert.Equal(t, float64(slideDistance), n.X, "entering screen comes from the right")

	out, err := NamedAnimation("slide-left", false, 1)
	require.NoError(t, err)
	m := NewNode("out")
	b := out()
	b.Setup(m)
	require.NoError(t, runRoutine(t, b.Play(nil), 1, 2))
	assert.Equal(t, -float64(slideDistance), m.X)
}

func TestAnimationSetLookup(t *testing.T) {
	var set AnimationSet
	fast, slow, fallback := FadeIn(0.1), FadeIn(0.5), FadeIn(1)
	set.MustAdd("^settings$", fast)
	set.MustAdd("^shop", slow)
	set.MustAdd("", fallback)
	assert.Equal(t, 3, set.Len())

	assert.Equal(t, 0.1, set.Lookup("settings")().Duration())
	assert.Equal(t, 0.5, set.Lookup("shop-items")().Duration())
	assert.Equal(t, 1.0, set.Lookup("home")().Duration())
	assert.Equal(t, 1.0, set.Lookup("")().Duration(), "empty pattern matches no partner")
}

func TestAnimationSetNoMatch(t *testing.T) {
	var set AnimationSet
	require.NoError(t, set.Add("^a$", FadeIn(1)))
	assert.Nil(t, set.Lookup("b"))
	assert.Nil(t, set.Lookup(""))
}

func TestAnimationSetInvalidPattern(t *testing.T) {
	var set AnimationSet
	assert.Error(t, set.Add("(", FadeIn(1)))
	assert.Equal(t, 0, set.Len())
	assert.Panics(t, func() { set.MustAdd("[", FadeIn(1)) })
}
