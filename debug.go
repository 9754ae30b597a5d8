package canopy

import (
	"fmt"
	"log/slog"
)

// SetDebugMode enables or disables debug mode. When enabled, tree
// operations on disposed nodes panic and per-phase transition timings are
// logged at debug level. The level switch only applies to the scene's
// default logger; a logger passed in SceneConfig keeps its own level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	if s.level == nil {
		return
	}
	if enabled {
		s.level.Set(slog.LevelDebug)
	} else {
		s.level.Set(slog.LevelInfo)
	}
}

// DebugMode reports whether debug mode is on.
func (s *Scene) DebugMode() bool { return s.debug }

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("canopy debug: %s on disposed node %q", op, n.Name))
	}
}

// DebugSummary describes every container for logs and the CLI.
func (s *Scene) DebugSummary() []string {
	var lines []string
	for _, c := range s.registry.order {
		active, _ := c.ActiveID()
		lines = append(lines, fmt.Sprintf("%s (%s): screens=%d stack=%v active=%q transitioning=%t interactable=%t",
			c.name, c.kind, len(c.screens), c.stack, active, c.IsInTransition(), c.Interactable()))
	}
	return lines
}
