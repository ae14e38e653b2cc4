package container

// Manual and materialized singleton instances. The instance store backs both
// the "manually supplied instance" names (registered here without a
// definition) and singletons cached by an external materializer. The ordered
// manual-singleton set follows the same copy-on-write discipline as the
// registration-order list.

// RegisterSingleton supplies a ready-made instance under name, with no
// definition backing it. Fails with InvalidStateError if an instance is
// already bound to name. A nil instance is a valid explicit placeholder.
func (r *Registry) RegisterSingleton(name string, instance any) error {
	if name == "" {
		return ValidationError{Name: name, Reason: "empty singleton name"}
	}
	// A name is never both an alias and an instance name.
	if r.IsAlias(name) {
		if !r.allowOverriding.Load() {
			return InvalidStateError{Reason: "cannot register singleton " + name + ": an alias with that name exists"}
		}
		_ = r.AliasRegistry.RemoveAlias(name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instances.Load(name); exists {
		return InvalidStateError{Reason: "singleton " + name + " already registered"}
	}
	r.instances.Store(name, instance)
	if !r.ContainsDefinition(name) {
		r.addManualSingletonLocked(name)
	}
	r.clearTypeIndex()
	return nil
}

// CacheSingleton stores a materialized singleton for a definition-backed
// name. Unlike RegisterSingleton it is idempotent and does not touch the
// manual-singleton set; materializers call it after building an instance.
func (r *Registry) CacheSingleton(name string, instance any) {
	r.mu.Lock()
	r.instances.Store(name, instance)
	r.clearTypeIndex()
	r.mu.Unlock()
}

// ContainsSingleton reports whether a materialized instance exists for name.
func (r *Registry) ContainsSingleton(name string) bool {
	return r.containsSingletonInstance(name)
}

// Singleton returns the materialized instance bound to name, if any.
func (r *Registry) Singleton(name string) (any, bool) {
	return r.instances.Load(name)
}

// DestroySingleton drops the instance bound to name and evicts it from the
// manual-singleton set. Unknown names are ignored.
func (r *Registry) DestroySingleton(name string) {
	r.mu.Lock()
	r.destroySingletonLocked(name)
	r.clearTypeIndex()
	r.mu.Unlock()
}

// DestroySingletons drops every materialized instance and empties the
// manual-singleton set.
func (r *Registry) DestroySingletons() {
	r.mu.Lock()
	r.instances.Clear()
	empty := make([]string, 0)
	r.manualSingletons.Store(&empty)
	r.clearTypeIndex()
	r.mu.Unlock()
}

// ManualSingletonNames returns the names carrying a manually supplied
// instance, in registration order.
func (r *Registry) ManualSingletonNames() []string {
	out := *r.manualSingletons.Load()
	return out[:len(out):len(out)]
}

func (r *Registry) containsSingletonInstance(name string) bool {
	_, ok := r.instances.Load(name)
	return ok
}

func (r *Registry) destroySingletonLocked(name string) {
	r.instances.Delete(name)
	r.removeManualSingletonLocked(name)
}

func (r *Registry) addManualSingletonLocked(name string) {
	current := *r.manualSingletons.Load()
	for _, n := range current {
		if n == name {
			return
		}
	}
	if r.creationStarted.Load() {
		updated := make([]string, 0, len(current)+1)
		updated = append(updated, current...)
		updated = append(updated, name)
		r.manualSingletons.Store(&updated)
		return
	}
	grown := append(current, name)
	r.manualSingletons.Store(&grown)
}

func (r *Registry) removeManualSingletonLocked(name string) {
	current := *r.manualSingletons.Load()
	found := false
	for _, n := range current {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return
	}
	updated := make([]string, 0, len(current)-1)
	for _, n := range current {
		if n != name {
			updated = append(updated, n)
		}
	}
	r.manualSingletons.Store(&updated)
}
