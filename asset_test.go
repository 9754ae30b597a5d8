package canopy

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetHandleCompleteOnce(t *testing.T) {
	h := NewAssetHandle("k")
	assert.False(t, h.IsDone())
	assert.Equal(t, AssetPending, h.Status())

	h.SetPercent(1.5)
	assert.Equal(t, 1.0, h.PercentComplete())
	h.SetPercent(0.25)
	assert.Equal(t, 0.25, h.PercentComplete())

	prefab := PrefabFunc(func() *Node { return NewNode("k") })
	h.Complete(prefab)
	h.Fail(errors.New("late"))

	assert.True(t, h.IsDone())
	assert.Equal(t, AssetSucceeded, h.Status())
	assert.NoError(t, h.Err())
	assert.NotNil(t, h.Result())
	assert.Equal(t, 1.0, h.PercentComplete())
}

func TestAssetHandleFailDefaultsError(t *testing.T) {
	h := NewAssetHandle("k")
	h.Fail(nil)
	assert.Equal(t, AssetFailed, h.Status())
	assert.Error(t, h.Err())
	assert.Nil(t, h.Result())
	assert.Equal(t, "failed", h.Status().String())
}

func TestMemoryLoader(t *testing.T) {
	l := NewMemoryLoader()
	l.Add("home", PrefabFunc(func() *Node { return NewNode("home") }))
	boom := errors.New("boom")
	l.FailWith("broken", boom)

	h := l.Load("home")
	require.True(t, h.IsDone())
	assert.Equal(t, AssetSucceeded, h.Status())

	h = l.LoadAsync("broken")
	require.True(t, h.IsDone())
	assert.ErrorIs(t, h.Err(), boom)

	h = l.Load("missing")
	assert.ErrorIs(t, h.Err(), fs.ErrNotExist)

	assert.Equal(t, 1, l.Loads("home"))
	l.Release(h)
	l.Release(nil)
	assert.Equal(t, 1, l.Released("missing"))
}

func TestMemoryLoaderHold(t *testing.T) {
	l := NewMemoryLoader()
	l.Add("slow", PrefabFunc(func() *Node { return NewNode("slow") }))
	l.Hold("slow")

	h := l.LoadAsync("slow")
	assert.False(t, h.IsDone())
	assert.True(t, l.Load("slow").IsDone(), "sync loads are never held")

	l.Resolve("slow")
	assert.True(t, h.IsDone())
	assert.Equal(t, AssetSucceeded, h.Status())
	assert.True(t, l.LoadAsync("slow").IsDone())
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFSLoaderLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"screens/home.png": {Data: testPNG(t, 4, 3)},
		"screens/bad.png":  {Data: []byte("not a png")},
	}
	l := NewFSLoader(fsys)

	h := l.Load("screens/home.png")
	require.True(t, h.IsDone())
	require.Equal(t, AssetSucceeded, h.Status())
	prefab, ok := h.Result().(*ImagePrefab)
	require.True(t, ok)
	assert.Equal(t, "screens/home.png", prefab.Name)
	assert.Equal(t, image.Rect(0, 0, 4, 3), prefab.Source.Bounds())

	h = l.Load("screens/bad.png")
	assert.Equal(t, AssetFailed, h.Status())
	assert.ErrorContains(t, h.Err(), "decode screens/bad.png")

	h = l.Load("screens/missing.png")
	assert.ErrorIs(t, h.Err(), fs.ErrNotExist)

	assert.Equal(t, 3, l.Live())
	l.Release(h)
	assert.Equal(t, 2, l.Live())
}

func TestFSLoaderLoadAsync(t *testing.T) {
	l := NewFSLoader(fstest.MapFS{"home.png": {Data: testPNG(t, 2, 2)}})
	h := l.LoadAsync("home.png")
	require.Eventually(t, h.IsDone, time.Second, time.Millisecond)
	assert.Equal(t, AssetSucceeded, h.Status())
	assert.Equal(t, 1.0, h.PercentComplete())
}
