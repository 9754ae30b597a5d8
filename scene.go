package canopy

import (
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneConfig configures a new Scene.
type SceneConfig struct {
	// Settings defaults to DefaultSettings().
	Settings *Settings
	// Loader defaults to an empty MemoryLoader.
	Loader AssetLoader
	// Logger defaults to a text handler on stderr at info level.
	Logger *slog.Logger
}

// Scene is the composition root: it owns the root node, the scheduler that
// drives every transition, the container registry, the interaction
// coordinator, the settings and the asset loader.
type Scene struct {
	root        *Node
	scheduler   *Scheduler
	registry    *Registry
	interaction *InteractionCoordinator
	settings    *Settings
	loader      AssetLoader
	logger      *slog.Logger
	level       *slog.LevelVar
	debug       bool

	// ClearColor fills the screen before drawing when its alpha is non-zero.
	ClearColor Color

	script     *ScriptRunner
	updateFunc func() error
}

// NewScene creates a scene with a pre-created root node.
func NewScene(cfg SceneConfig) *Scene {
	settings := DefaultSettings()
	if cfg.Settings != nil {
		settings = *cfg.Settings
	}
	s := &Scene{
		root:     NewNode("root"),
		settings: &settings,
		loader:   cfg.Loader,
		logger:   cfg.Logger,
	}
	if s.loader == nil {
		s.loader = NewMemoryLoader()
	}
	if s.logger == nil {
		s.level = &slog.LevelVar{}
		s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: s.level}))
	}
	s.logger = s.logger.With("component", "canopy")
	s.scheduler = NewScheduler(s.logger)
	s.registry = newRegistry()
	s.interaction = newInteractionCoordinator(s.registry, s.settings)
	return s
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node { return s.root }

// Scheduler returns the scheduler that runs container operations.
func (s *Scene) Scheduler() *Scheduler { return s.scheduler }

// Registry returns the container registry.
func (s *Scene) Registry() *Registry { return s.registry }

// Interaction returns the interaction coordinator.
func (s *Scene) Interaction() *InteractionCoordinator { return s.interaction }

// Settings returns the scene settings. Containers read them on every
// operation, so changes apply to the next transition.
func (s *Scene) Settings() *Settings { return s.settings }

// Loader returns the asset loader.
func (s *Scene) Loader() AssetLoader { return s.loader }

// Logger returns the scene logger.
func (s *Scene) Logger() *slog.Logger { return s.logger }

// Container returns the container registered under name.
func (s *Scene) Container(name string) (*Container, bool) {
	return s.registry.Lookup(name)
}

// SetUpdateFunc sets a callback run at the start of every Update.
func (s *Scene) SetUpdateFunc(fn func() error) {
	s.updateFunc = fn
}

// Update advances the scene by one tick at the ebiten tick rate.
func (s *Scene) Update() error {
	return s.Tick(1.0 / float64(ebiten.TPS()))
}

// Tick advances the scene by dt seconds: the update callback, the attached
// script, then every running task.
func (s *Scene) Tick(dt float64) error {
	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}
	if s.script != nil {
		if err := s.script.step(s); err != nil {
			return err
		}
	}
	s.scheduler.Update(dt)
	return nil
}

// Draw renders every visible node onto screen.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.traverse(screen, s.root, drawState{sx: 1, sy: 1, alpha: 1})
}

// RunConfig configures Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
}

type game struct {
	scene *Scene
	w, h  int
}

func (g *game) Update() error              { return g.scene.Update() }
func (g *game) Draw(screen *ebiten.Image)  { g.scene.Draw(screen) }
func (g *game) Layout(_, _ int) (int, int) { return g.w, g.h }

// Run opens a window and runs scene until the window closes or Update
// returns an error.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&game{scene: scene, w: cfg.Width, h: cfg.Height})
}
