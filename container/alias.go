package container

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// AliasRegistry maps alternate names to canonical registration names.
//
// Aliases may chain (a -> b -> c); CanonicalName follows the chain to the
// end. Cycles are rejected at registration time, so chain walks always
// terminate. Reads go straight to the underlying concurrent map; compound
// mutations serialize on an internal mutex.
type AliasRegistry struct {
	// aliases maps alias -> target name. Values are always strings.
	aliases sync.Map

	mu          sync.Mutex
	overridable bool
	log         *zap.Logger
}

// NewAliasRegistry returns an empty registry that allows alias re-targeting.
func NewAliasRegistry() *AliasRegistry {
	return &AliasRegistry{overridable: true, log: zap.NewNop()}
}

// RegisterAlias records alias as an alternate name for name.
//
// Rules:
//   - alias == name removes any existing mapping for alias (a self-alias
//     carries no information).
//   - re-registering the same (alias, name) pair is a no-op.
//   - re-targeting an existing alias fails with InvalidStateError when
//     overriding is disabled.
//   - a mapping that would close a cycle fails with CircularReferenceError
//     before any state changes.
func (r *AliasRegistry) RegisterAlias(name, alias string) error {
	if name == "" || alias == "" {
		return ValidationError{Name: alias, Reason: "alias and name must not be empty"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if alias == name {
		r.aliases.Delete(alias)
		r.log.Debug("alias ignored since it points to same name", zap.String("alias", alias))
		return nil
	}
	if registered, ok := r.aliases.Load(alias); ok {
		if registered.(string) == name {
			return nil
		}
		if !r.overridable {
			return InvalidStateError{Reason: "cannot alias " + alias + " to " + name +
				": already registered for " + registered.(string)}
		}
		r.log.Debug("re-targeting alias",
			zap.String("alias", alias),
			zap.String("from", registered.(string)),
			zap.String("to", name))
	}
	if hasAliasIn(r.snapshotLocked(), alias, name) {
		return CircularReferenceError{Name: name, Alias: alias}
	}
	r.aliases.Store(alias, name)
	return nil
}

// RemoveAlias deletes the mapping for alias, failing with NotFoundError if
// no such alias exists.
func (r *AliasRegistry) RemoveAlias(alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aliases.LoadAndDelete(alias); !ok {
		return NotFoundError{Name: alias}
	}
	return nil
}

// IsAlias reports whether name is registered as an alias.
func (r *AliasRegistry) IsAlias(name string) bool {
	_, ok := r.aliases.Load(name)
	return ok
}

// Aliases returns every alias that resolves, directly or transitively, to
// name, depth-first with each level's direct aliases in sorted order.
func (r *AliasRegistry) Aliases(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []string
	retrieveAliases(r.snapshotLocked(), name, &result)
	return result
}

// CanonicalName follows the alias chain from name until a name with no
// further mapping is reached. Names that were never aliased come back
// unchanged.
func (r *AliasRegistry) CanonicalName(name string) string {
	canonical := name
	for {
		resolved, ok := r.aliases.Load(canonical)
		if !ok {
			return canonical
		}
		canonical = resolved.(string)
	}
}

// ResolveAliases rewrites every alias and target through transform as one
// batch. Entries whose alias and target collapse to the same string are
// dropped. A rewrite that collides with a differently-targeted existing
// alias fails with InvalidStateError; one that would close a cycle fails
// with CircularReferenceError. On error nothing is applied.
func (r *AliasRegistry) ResolveAliases(transform func(string) string) error {
	if transform == nil {
		return ValidationError{Reason: "nil alias transform"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	working := r.snapshotLocked()
	for alias, registered := range r.snapshotLocked() {
		resolvedAlias := transform(alias)
		resolvedName := transform(registered)
		switch {
		case resolvedAlias == "" || resolvedName == "" || resolvedAlias == resolvedName:
			delete(working, alias)
		case resolvedAlias != alias:
			if existing, ok := working[resolvedAlias]; ok {
				if existing == resolvedName {
					// Rewrite points at an existing equivalent alias: drop the old entry.
					delete(working, alias)
					continue
				}
				return InvalidStateError{Reason: "cannot register resolved alias " + resolvedAlias +
					" (original: " + alias + ") for name " + resolvedName +
					": already registered for " + existing}
			}
			if hasAliasIn(working, resolvedAlias, resolvedName) {
				return CircularReferenceError{Name: resolvedName, Alias: resolvedAlias}
			}
			delete(working, alias)
			working[resolvedAlias] = resolvedName
		case registered != resolvedName:
			working[alias] = resolvedName
		}
	}

	// Validation passed for the whole batch: swap the live map contents.
	r.aliases.Range(func(alias, _ any) bool {
		if _, keep := working[alias.(string)]; !keep {
			r.aliases.Delete(alias)
		}
		return true
	})
	for alias, name := range working {
		r.aliases.Store(alias, name)
	}
	return nil
}

// snapshotLocked copies the alias map. Callers must hold r.mu.
func (r *AliasRegistry) snapshotLocked() map[string]string {
	out := make(map[string]string)
	r.aliases.Range(func(k, v any) bool {
		out[k.(string)] = v.(string)
		return true
	})
	return out
}

// hasAliasIn reports whether name is already a direct or transitive alias
// for alias within m, i.e. whether adding alias -> name would close a cycle.
func hasAliasIn(m map[string]string, alias, name string) bool {
	for registeredAlias, registeredName := range m {
		if registeredName == alias {
			if registeredAlias == name || hasAliasIn(m, registeredAlias, name) {
				return true
			}
		}
	}
	return false
}

// retrieveAliases appends every alias pointing at name, then recurses into
// aliases of those aliases. Direct aliases are visited in sorted order so the
// walk is deterministic. Bounded by the cycle-free invariant.
func retrieveAliases(m map[string]string, name string, result *[]string) {
	var direct []string
	for alias, registered := range m {
		if registered == name {
			direct = append(direct, alias)
		}
	}
	sort.Strings(direct)
	for _, alias := range direct {
		*result = append(*result, alias)
		retrieveAliases(m, alias, result)
	}
}
