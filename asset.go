package canopy

import (
	"errors"
	"fmt"
	"image"
	_ "image/png" // screen art is PNG
	"io/fs"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/atomic"
)

// Prefab is the loaded form of a screen asset. Instantiate builds a fresh
// node tree for one Screen. If the returned root's UserData implements
// LifecycleEvent, it is attached to the Screen at priority 0.
type Prefab interface {
	Instantiate() *Node
}

// PrefabFunc adapts a function to the Prefab interface.
type PrefabFunc func() *Node

// Instantiate calls f.
func (f PrefabFunc) Instantiate() *Node { return f() }

// AssetStatus is the outcome of an asset load.
type AssetStatus uint8

const (
	AssetPending AssetStatus = iota
	AssetSucceeded
	AssetFailed
)

func (s AssetStatus) String() string {
	switch s {
	case AssetPending:
		return "pending"
	case AssetSucceeded:
		return "succeeded"
	case AssetFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AssetHandle tracks one asset load. Loaders may complete it from any
// goroutine; readers poll IsDone from the update goroutine.
type AssetHandle struct {
	key  string
	done atomic.Bool

	mu      sync.Mutex
	status  AssetStatus
	result  Prefab
	err     error
	percent float64
}

// NewAssetHandle creates a pending handle for key.
func NewAssetHandle(key string) *AssetHandle {
	return &AssetHandle{key: key}
}

// Key returns the asset key.
func (h *AssetHandle) Key() string { return h.key }

// IsDone reports whether the load has finished.
func (h *AssetHandle) IsDone() bool { return h.done.Load() }

// Status returns the load status.
func (h *AssetHandle) Status() AssetStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Result returns the loaded prefab, or nil.
func (h *AssetHandle) Result() Prefab {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// Err returns the error a failed load finished with.
func (h *AssetHandle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// PercentComplete returns load progress in [0, 1].
func (h *AssetHandle) PercentComplete() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.percent
}

// SetPercent updates load progress.
func (h *AssetHandle) SetPercent(p float64) {
	h.mu.Lock()
	h.percent = clamp01(p)
	h.mu.Unlock()
}

// Complete finishes the load successfully. Later calls are ignored.
func (h *AssetHandle) Complete(result Prefab) {
	h.mu.Lock()
	if h.done.Load() {
		h.mu.Unlock()
		return
	}
	h.status = AssetSucceeded
	h.result = result
	h.percent = 1
	h.done.Store(true)
	h.mu.Unlock()
}

// Fail finishes the load with err. Later calls are ignored.
func (h *AssetHandle) Fail(err error) {
	h.mu.Lock()
	if h.done.Load() {
		h.mu.Unlock()
		return
	}
	if err == nil {
		err = errors.New("asset load failed")
	}
	h.status = AssetFailed
	h.err = err
	h.done.Store(true)
	h.mu.Unlock()
}

// AssetLoader fetches screen prefabs. It is owned outside the containers
// that use it.
type AssetLoader interface {
	// Load blocks until the asset is loaded; the handle is done on return.
	Load(key string) *AssetHandle
	// LoadAsync starts a load and returns a handle to poll.
	LoadAsync(key string) *AssetHandle
	// Release gives a handle back to the loader.
	Release(h *AssetHandle)
}

// --- MemoryLoader ---

// MemoryLoader serves prefabs from an in-memory table. Async loads of keys
// marked with Hold stay pending until Resolve is called.
type MemoryLoader struct {
	mu       sync.Mutex
	prefabs  map[string]Prefab
	failures map[string]error
	held     map[string][]*AssetHandle
	holdKeys map[string]bool
	released map[string]int
	loads    map[string]int
}

// NewMemoryLoader creates an empty MemoryLoader.
func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{
		prefabs:  make(map[string]Prefab),
		failures: make(map[string]error),
		held:     make(map[string][]*AssetHandle),
		holdKeys: make(map[string]bool),
		released: make(map[string]int),
		loads:    make(map[string]int),
	}
}

// Add registers prefab under key.
func (l *MemoryLoader) Add(key string, prefab Prefab) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefabs[key] = prefab
}

// FailWith makes every load of key fail with err.
func (l *MemoryLoader) FailWith(key string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[key] = err
}

// Hold keeps async loads of key pending until Resolve.
func (l *MemoryLoader) Hold(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holdKeys[key] = true
}

// Resolve completes every held async load of key and stops holding it.
func (l *MemoryLoader) Resolve(key string) {
	l.mu.Lock()
	handles := l.held[key]
	delete(l.held, key)
	delete(l.holdKeys, key)
	l.mu.Unlock()
	for _, h := range handles {
		l.finish(h)
	}
}

// Released returns how many handles for key have been released.
func (l *MemoryLoader) Released(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released[key]
}

// Loads returns how many loads of key have been started.
func (l *MemoryLoader) Loads(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[key]
}

// Load implements AssetLoader.
func (l *MemoryLoader) Load(key string) *AssetHandle {
	h := NewAssetHandle(key)
	l.mu.Lock()
	l.loads[key]++
	l.mu.Unlock()
	l.finish(h)
	return h
}

// LoadAsync implements AssetLoader.
func (l *MemoryLoader) LoadAsync(key string) *AssetHandle {
	h := NewAssetHandle(key)
	l.mu.Lock()
	l.loads[key]++
	if l.holdKeys[key] {
		l.held[key] = append(l.held[key], h)
		l.mu.Unlock()
		return h
	}
	l.mu.Unlock()
	l.finish(h)
	return h
}

// Release implements AssetLoader.
func (l *MemoryLoader) Release(h *AssetHandle) {
	if h == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released[h.key]++
}

func (l *MemoryLoader) finish(h *AssetHandle) {
	l.mu.Lock()
	err, failed := l.failures[h.key]
	prefab, ok := l.prefabs[h.key]
	l.mu.Unlock()
	switch {
	case failed:
		h.Fail(err)
	case !ok:
		h.Fail(fmt.Errorf("%w: %s", fs.ErrNotExist, h.key))
	default:
		h.Complete(prefab)
	}
}

// --- FSLoader ---

// FSLoader loads PNG screen art from a file system. Each key names a file;
// the prefab is a sprite node showing the image.
type FSLoader struct {
	fsys fs.FS

	mu   sync.Mutex
	live int
}

// NewFSLoader creates a loader reading from fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Load implements AssetLoader.
func (l *FSLoader) Load(key string) *AssetHandle {
	h := NewAssetHandle(key)
	l.retain()
	l.decode(h)
	return h
}

// LoadAsync implements AssetLoader. Decoding runs on its own goroutine.
func (l *FSLoader) LoadAsync(key string) *AssetHandle {
	h := NewAssetHandle(key)
	l.retain()
	go l.decode(h)
	return h
}

// Release implements AssetLoader.
func (l *FSLoader) Release(h *AssetHandle) {
	if h == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live > 0 {
		l.live--
	}
}

// Live returns the number of handles not yet released.
func (l *FSLoader) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live
}

func (l *FSLoader) retain() {
	l.mu.Lock()
	l.live++
	l.mu.Unlock()
}

func (l *FSLoader) decode(h *AssetHandle) {
	f, err := l.fsys.Open(h.key)
	if err != nil {
		h.Fail(err)
		return
	}
	defer f.Close()
	h.SetPercent(0.5)
	img, _, err := image.Decode(f)
	if err != nil {
		h.Fail(fmt.Errorf("decode %s: %w", h.key, err))
		return
	}
	h.Complete(&ImagePrefab{Name: h.key, Source: img})
}

// ImagePrefab instantiates a sprite node for a decoded image. The ebiten
// image is created on first Instantiate, on the update goroutine.
type ImagePrefab struct {
	Name   string
	Source image.Image

	img *ebiten.Image
}

// Instantiate implements Prefab.
func (p *ImagePrefab) Instantiate() *Node {
	if p.img == nil {
		p.img = ebiten.NewImageFromImage(p.Source)
	}
	return NewSprite(p.Name, p.img)
}
