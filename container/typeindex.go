package container

import (
	"reflect"

	"go.uber.org/zap"
)

// Type-indexed candidate lookup with invalidation-on-mutation caching.
// Results are memoized per (type, includeNonSingletons) only while the
// configuration is frozen, the type is known, and eager init is allowed;
// every definition or singleton mutation clears both caches wholesale.

// NamesForType returns the names whose definitions (or manually supplied
// instances) can satisfy a request for t, in registration order followed by
// manual-singleton order.
//
// includeNonSingletons admits prototype-scoped definitions. allowEagerInit
// permits type checks that may require materializing other objects (factory
// owners); when it is false, definitions whose type cannot be determined
// cheaply are skipped and prediction failures are swallowed rather than
// propagated.
func (r *Registry) NamesForType(t reflect.Type, includeNonSingletons, allowEagerInit bool) ([]string, error) {
	if !r.IsFrozen() || t == nil || !allowEagerInit {
		return r.namesForTypeUncached(t, includeNonSingletons, allowEagerInit)
	}
	cache := &r.allByType
	if !includeNonSingletons {
		cache = &r.singletonsByType
	}
	if cached, ok := cache.Load(t); ok {
		return cached.([]string), nil
	}
	names, err := r.namesForTypeUncached(t, includeNonSingletons, true)
	if err != nil {
		return nil, err
	}
	cache.Store(t, names)
	return names, nil
}

func (r *Registry) namesForTypeUncached(t reflect.Type, includeNonSingletons, allowEagerInit bool) ([]string, error) {
	var result []string

	for _, name := range *r.names.Load() {
		// A name shadowed by an alias entry is never a candidate itself.
		if r.IsAlias(name) {
			continue
		}
		def, err := r.mergedDefinition(name)
		if err != nil {
			if allowEagerInit {
				return nil, err
			}
			r.log.Debug("ignoring definition with unresolvable parent chain",
				zap.String("name", name), zap.Error(err))
			continue
		}
		if def.Abstract {
			continue
		}
		// Only consider the definition when its type is determinable within
		// the allowed effort.
		if !allowEagerInit && ((def.Type == nil && def.Lazy) || r.requiresEagerInit(def.FactoryOwner)) {
			continue
		}
		isFactory := r.isFactoryStyle(name, def)
		matched := false
		if (allowEagerInit || !isFactory || r.containsSingletonInstance(name)) &&
			(includeNonSingletons || r.isSingletonName(name, def)) {
			ok, err := r.producedTypeMatches(name, def, t)
			if err != nil {
				if allowEagerInit {
					return nil, err
				}
				r.log.Debug("ignoring type prediction failure during scan",
					zap.String("name", name), zap.Error(err))
				continue
			}
			matched = ok
		}
		if !matched && isFactory && allowEagerInit {
			// The produced type did not match: try the factory object itself.
			matched = (includeNonSingletons || def.Singleton()) && assignable(def.Type, t)
		}
		if matched {
			result = append(result, name)
		}
	}

	// Manually supplied instances are checked by direct inspection, produced
	// type first when the instance is itself a factory.
	for _, name := range *r.manualSingletons.Load() {
		instance, ok := r.instances.Load(name)
		if !ok || instance == nil {
			continue
		}
		if factory, isFactory := instance.(Factory); isFactory {
			if assignable(factory.ObjectType(), t) {
				result = append(result, name)
				continue
			}
		}
		if assignable(reflect.TypeOf(instance), t) {
			result = append(result, name)
		}
	}

	return result, nil
}

// producedTypeMatches predicts the object type the definition yields and
// checks assignability to t.
func (r *Registry) producedTypeMatches(name string, def *Definition, t reflect.Type) (bool, error) {
	predicted, err := r.predictType(name, def)
	if err != nil {
		return false, err
	}
	return assignable(predicted, t), nil
}

// requiresEagerInit reports whether determining a definition's type would
// force materializing its factory owner first.
func (r *Registry) requiresEagerInit(factoryOwner string) bool {
	if factoryOwner == "" {
		return false
	}
	ownerDef, err := r.mergedDefinition(factoryOwner)
	if err != nil {
		return false
	}
	return r.isFactoryStyle(factoryOwner, ownerDef) && !r.containsSingletonInstance(factoryOwner)
}

func (r *Registry) isSingletonName(name string, def *Definition) bool {
	if r.containsSingletonInstance(name) {
		return true
	}
	return def.Singleton()
}

// clearTypeIndex drops every by-type assumption. Coarse on purpose: any
// definition or singleton mutation invalidates the whole index.
func (r *Registry) clearTypeIndex() {
	r.allByType.Clear()
	r.singletonsByType.Clear()
}
