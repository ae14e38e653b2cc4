package container

import (
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ResetObserver is notified after a definition's cached state has been reset
// (override, removal, or a cascading parent reset).
type ResetObserver func(name string)

// Registry is the definition table at the center of the container: named
// definitions in registration order, manually supplied singleton instances,
// alias resolution, and the type-indexed lookup cache.
//
// Name and definition reads are lock-free against the underlying concurrent
// maps. Mutations serialize on one mutex and switch to copy-on-write for the
// ordered name collections once object creation has started, so goroutines
// iterating a previously obtained snapshot never observe structural changes.
type Registry struct {
	*AliasRegistry

	definitions sync.Map // name -> *Definition
	merged      sync.Map // name -> *Definition, parent chains flattened
	instances   sync.Map // name -> materialized singleton instance (may be nil)

	// mu serializes every mutation of the ordered collections and flags.
	mu sync.Mutex

	names            atomic.Pointer[[]string]
	manualSingletons atomic.Pointer[[]string]
	frozenNames      atomic.Pointer[[]string]

	frozen          atomic.Bool
	creationStarted atomic.Bool
	allowOverriding atomic.Bool

	allByType        sync.Map // reflect.Type -> []string
	singletonsByType sync.Map // reflect.Type -> []string

	observers []ResetObserver

	serializationID string

	parent       *Registry
	materializer Materializer
	log          *zap.Logger
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithLogger routes registry diagnostics to l instead of discarding them.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithMaterializer installs the external instance-creation collaborator.
func WithMaterializer(m Materializer) Option {
	return func(r *Registry) { r.materializer = m }
}

// WithParent links an outer registry consulted for inherited primary flags.
func WithParent(p *Registry) Option {
	return func(r *Registry) { r.parent = p }
}

// WithOverriding sets whether re-registering an existing name replaces it
// (the default) or fails with OverrideNotAllowedError.
func WithOverriding(allow bool) Option {
	return func(r *Registry) { r.allowOverriding.Store(allow) }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		AliasRegistry: NewAliasRegistry(),
		log:           zap.NewNop(),
	}
	r.allowOverriding.Store(true)
	names := make([]string, 0, 16)
	r.names.Store(&names)
	manual := make([]string, 0, 4)
	r.manualSingletons.Store(&manual)
	for _, opt := range opts {
		opt(r)
	}
	r.AliasRegistry.log = r.log
	// Alias re-targeting follows the definition override policy.
	r.AliasRegistry.overridable = r.allowOverriding.Load()
	return r
}

// SetAllowOverriding flips the override policy for definitions and aliases.
func (r *Registry) SetAllowOverriding(allow bool) {
	r.allowOverriding.Store(allow)
	r.AliasRegistry.mu.Lock()
	r.AliasRegistry.overridable = allow
	r.AliasRegistry.mu.Unlock()
}

// Register records def under name.
//
// An existing definition for name is replaced when overriding is allowed,
// resetting cached state for name and every definition inheriting from it;
// otherwise registration fails with OverrideNotAllowedError. A name that was
// an alias stops being one (same policy). Fresh names join the registration
// order; any manual singleton under the name is evicted from the manual set.
func (r *Registry) Register(name string, def *Definition) error {
	if name == "" {
		return ValidationError{Name: name, Reason: "empty definition name"}
	}
	if def == nil {
		return ValidationError{Name: name, Reason: "nil definition"}
	}
	if err := def.Validate(name); err != nil {
		return err
	}
	// A name is never both an alias and a definition.
	if r.IsAlias(name) {
		if !r.allowOverriding.Load() {
			return OverrideNotAllowedError{Name: name}
		}
		_ = r.AliasRegistry.RemoveAlias(name)
	}

	r.mu.Lock()
	existingAny, hadExisting := r.definitions.Load(name)
	if hadExisting {
		if !r.allowOverriding.Load() {
			r.mu.Unlock()
			return OverrideNotAllowedError{Name: name}
		}
		existing := existingAny.(*Definition)
		if existing.Role < def.Role {
			r.log.Info("overriding user-declared definition with a more internal one",
				zap.String("name", name))
		} else {
			r.log.Debug("overriding definition", zap.String("name", name))
		}
		r.definitions.Store(name, def)
	} else {
		r.definitions.Store(name, def)
		r.appendNameLocked(name)
		r.removeManualSingletonLocked(name)
	}
	r.frozenNames.Store(nil)
	r.clearTypeIndex()

	var resets []string
	if hadExisting || r.containsSingletonInstance(name) {
		r.resetDefinitionLocked(name, &resets)
	}
	r.mu.Unlock()

	r.notifyReset(resets)
	r.log.Debug("definition registered", zap.String("name", name))
	return nil
}

// Remove deletes the definition for name, failing with NotFoundError when
// absent, and resets all state derived from it.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, ok := r.definitions.LoadAndDelete(name); !ok {
		r.mu.Unlock()
		return NotFoundError{Name: name}
	}
	r.removeNameLocked(name)
	r.frozenNames.Store(nil)
	r.clearTypeIndex()

	var resets []string
	r.resetDefinitionLocked(name, &resets)
	r.mu.Unlock()

	r.notifyReset(resets)
	return nil
}

// Definition returns the definition registered under name (not merged with
// its parent chain), or NotFoundError.
func (r *Registry) Definition(name string) (*Definition, error) {
	if def, ok := r.definitions.Load(name); ok {
		return def.(*Definition), nil
	}
	return nil, NotFoundError{Name: name}
}

// ContainsDefinition reports whether a definition is registered under name.
func (r *Registry) ContainsDefinition(name string) bool {
	_, ok := r.definitions.Load(name)
	return ok
}

// DefinitionCount returns the number of registered definitions.
func (r *Registry) DefinitionCount() int {
	return len(*r.names.Load())
}

// DefinitionNames returns the definition names in registration order.
// While the registry is frozen the cached snapshot is returned without
// copying; otherwise a fresh copy is made.
func (r *Registry) DefinitionNames() []string {
	if fn := r.frozenNames.Load(); fn != nil {
		return *fn
	}
	return slices.Clone(*r.names.Load())
}

// Freeze snapshots the registration order as immutable. Any later mutation
// clears the snapshot implicitly.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.frozenNames.Store(r.names.Load())
	r.mu.Unlock()
}

// IsFrozen reports whether Freeze has been called.
func (r *Registry) IsFrozen() bool { return r.frozen.Load() }

// MarkCreationStarted switches the ordered collections to copy-on-write.
// The resolver flips this before the first materialization; external
// construction engines should do the same.
func (r *Registry) MarkCreationStarted() { r.creationStarted.Store(true) }

// HasCreationStarted reports whether any materialization may have begun.
func (r *Registry) HasCreationStarted() bool { return r.creationStarted.Load() }

// AddResetObserver registers fn to run after every definition reset.
func (r *Registry) AddResetObserver(fn ResetObserver) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

// ClearMetadataCache drops all cached merged definitions. Definitions and
// singleton instances are untouched.
func (r *Registry) ClearMetadataCache() {
	r.merged.Clear()
}

// mergedDefinition flattens name's parent chain into one derived record,
// caching the result until the definition (or an ancestor) is reset.
// Parent names are canonicalized through the alias registry. Cycles in
// parent chains are a caller error and are not detected here.
func (r *Registry) mergedDefinition(name string) (*Definition, error) {
	if m, ok := r.merged.Load(name); ok {
		return m.(*Definition), nil
	}
	defAny, ok := r.definitions.Load(name)
	if !ok {
		return nil, NotFoundError{Name: name}
	}
	def := defAny.(*Definition)
	merged := def
	if def.Parent != "" {
		parentMerged, err := r.mergedDefinition(r.CanonicalName(def.Parent))
		if err != nil {
			return nil, err
		}
		merged = mergeDefinitions(parentMerged, def)
	}
	r.merged.Store(name, merged)
	return merged, nil
}

// resetDefinitionLocked drops name's merged record, destroys its singleton,
// records the reset, and recurses into every definition whose parent is
// name. Callers hold r.mu; observers run after the lock is released.
func (r *Registry) resetDefinitionLocked(name string, resets *[]string) {
	r.merged.Delete(name)
	r.destroySingletonLocked(name)
	*resets = append(*resets, name)

	for _, other := range *r.names.Load() {
		if other == name {
			continue
		}
		if defAny, ok := r.definitions.Load(other); ok && defAny.(*Definition).Parent == name {
			r.resetDefinitionLocked(other, resets)
		}
	}
}

func (r *Registry) notifyReset(names []string) {
	if len(names) == 0 {
		return
	}
	r.mu.Lock()
	observers := slices.Clone(r.observers)
	r.mu.Unlock()
	for _, name := range names {
		for _, fn := range observers {
			fn(name)
		}
		r.log.Debug("definition reset", zap.String("name", name))
	}
}

// appendNameLocked adds a fresh name to the registration order. Before
// creation starts the live slice grows in place; afterward the whole list is
// copied so in-flight iterations stay stable.
func (r *Registry) appendNameLocked(name string) {
	current := r.names.Load()
	if r.creationStarted.Load() {
		updated := make([]string, 0, len(*current)+1)
		updated = append(updated, *current...)
		updated = append(updated, name)
		r.names.Store(&updated)
		return
	}
	grown := append(*current, name)
	r.names.Store(&grown)
}

func (r *Registry) removeNameLocked(name string) {
	current := *r.names.Load()
	updated := make([]string, 0, len(current))
	for _, n := range current {
		if n != name {
			updated = append(updated, n)
		}
	}
	r.names.Store(&updated)
}

// RegisterAlias records alias for name, first evicting any definition or
// manual singleton registered under alias (subject to the override policy)
// so that a name is never both.
func (r *Registry) RegisterAlias(name, alias string) error {
	if alias != name && r.ContainsDefinition(alias) {
		if !r.allowOverriding.Load() {
			return InvalidStateError{Reason: "cannot alias " + alias + ": a definition with that name exists"}
		}
		if err := r.Remove(alias); err != nil {
			return err
		}
	}
	if alias != name && r.containsSingletonInstance(alias) {
		if !r.allowOverriding.Load() {
			return InvalidStateError{Reason: "cannot alias " + alias + ": a singleton instance with that name exists"}
		}
		r.DestroySingleton(alias)
	}
	return r.AliasRegistry.RegisterAlias(name, alias)
}
