package canopy

import "fmt"

// Registry maps container names to the containers of one Scene. Containers
// add themselves on creation and remove themselves on Dispose.
type Registry struct {
	byName map[string]*Container
	order  []*Container
}

func newRegistry() *Registry {
	return &Registry{byName: make(map[string]*Container)}
}

func (r *Registry) add(c *Container) error {
	if _, ok := r.byName[c.name]; ok {
		return fmt.Errorf("%w: container %q already exists", ErrInvalidState, c.name)
	}
	r.byName[c.name] = c
	r.order = append(r.order, c)
	return nil
}

func (r *Registry) remove(c *Container) {
	if r.byName[c.name] != c {
		return
	}
	delete(r.byName, c.name)
	for i, o := range r.order {
		if o == c {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the container registered under name.
func (r *Registry) Lookup(name string) (*Container, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Containers returns every registered container in creation order.
func (r *Registry) Containers() []*Container {
	out := make([]*Container, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered containers.
func (r *Registry) Len() int { return len(r.order) }

// InteractionCoordinator disables input while containers transition and
// restores it once the last participating container has finished.
//
// With ControlInteractionAllContainerKinds the scope is every container in
// the registry; otherwise each container only controls itself. Restores
// poll the whole scope rather than counting, and are idempotent.
type InteractionCoordinator struct {
	registry *Registry
	settings *Settings
}

func newInteractionCoordinator(registry *Registry, settings *Settings) *InteractionCoordinator {
	return &InteractionCoordinator{registry: registry, settings: settings}
}

func (ic *InteractionCoordinator) scope(c *Container) []*Container {
	if ic.settings.ControlInteractionAllContainerKinds {
		return ic.registry.order
	}
	return []*Container{c}
}

// begin disables interaction for c's scope.
func (ic *InteractionCoordinator) begin(c *Container) {
	if ic.settings.EnableInteractionInTransition {
		return
	}
	for _, o := range ic.scope(c) {
		o.root.Interactable = false
	}
}

// end re-enables interaction for c's scope if nothing in it is still
// transitioning, and reports whether it did.
func (ic *InteractionCoordinator) end(c *Container) bool {
	if ic.settings.EnableInteractionInTransition {
		return false
	}
	scope := ic.scope(c)
	for _, o := range scope {
		if o.IsInTransition() {
			return false
		}
	}
	for _, o := range scope {
		o.root.Interactable = true
	}
	return true
}

// AllClear reports whether no container in the registry is transitioning.
func (ic *InteractionCoordinator) AllClear() bool {
	for _, c := range ic.registry.order {
		if c.IsInTransition() {
			return false
		}
	}
	return true
}

// InTransition returns the names of transitioning containers.
func (ic *InteractionCoordinator) InTransition() []string {
	var names []string
	for _, c := range ic.registry.order {
		if c.IsInTransition() {
			names = append(names, c.name)
		}
	}
	return names
}
