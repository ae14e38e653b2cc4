package container

import (
	"reflect"
	"slices"
	"sort"

	"go.uber.org/zap"
)

// Resolver turns typed dependency requests into instances backed by a
// Registry. It owns the shortcut value table and the optional ordering
// comparator; the registry owns definitions, aliases, and singletons.
//
// A Resolver is safe for concurrent use as long as its ValueRegistry is not
// mutated concurrently with resolution.
type Resolver struct {
	reg    *Registry
	values *ValueRegistry
	cmp    *OrderComparator
	log    *zap.Logger
}

// ResolverOption customizes a Resolver at construction time.
type ResolverOption func(*Resolver)

// WithValues replaces the resolver's shortcut value table.
func WithValues(v *ValueRegistry) ResolverOption {
	return func(rs *Resolver) { rs.values = v }
}

// WithComparator enables ordering of aggregate results and priority-based
// disambiguation. A nil comparator leaves both off.
func WithComparator(c *OrderComparator) ResolverOption {
	return func(rs *Resolver) { rs.cmp = c }
}

// WithResolverLogger overrides the logger inherited from the registry.
func WithResolverLogger(l *zap.Logger) ResolverOption {
	return func(rs *Resolver) { rs.log = l }
}

func NewResolver(reg *Registry, opts ...ResolverOption) *Resolver {
	rs := &Resolver{
		reg:    reg,
		values: NewValueRegistry(),
		log:    reg.log,
	}
	for _, opt := range opts {
		opt(rs)
	}
	if rs.log == nil {
		rs.log = zap.NewNop()
	}
	return rs
}

// Values exposes the shortcut value table so callers can pre-register
// framework-level objects that resolve by type without a definition.
func (rs *Resolver) Values() *ValueRegistry { return rs.values }

// Resolve satisfies one dependency request on behalf of requestingName
// (empty for external callers). Plural descriptors collect every candidate;
// scalar descriptors disambiguate down to one. A nil result with a nil error
// means the dependency was optional and absent.
func (rs *Resolver) Resolve(requestingName string, d Descriptor) (any, error) {
	if d.Type == nil {
		return nil, ValidationError{Name: requestingName, Reason: "descriptor has no required type"}
	}
	d = d.withShape()

	if d.plural() {
		return rs.resolveAggregate(requestingName, d)
	}

	candidates, err := rs.findCandidates(requestingName, d.Type, d)
	if err != nil {
		return nil, err
	}
	if candidates.len() == 0 {
		if d.Required {
			return nil, NotFoundError{Type: d.Type}
		}
		return nil, nil
	}

	var winner string
	var candidate any
	if candidates.len() > 1 {
		winner, err = rs.determineCandidate(candidates, d)
		if err != nil {
			return nil, err
		}
		if winner == "" {
			if d.Required || d.nonUniqueFails {
				return nil, AmbiguousResolutionError{
					Type:       d.Type,
					Candidates: candidates.names,
					Reason:     "no primary, priority, or name match among candidates",
				}
			}
			return nil, nil
		}
		candidate = candidates.get(winner)
	} else {
		winner, candidate = candidates.first()
	}

	if _, deferred := candidate.(reflect.Type); deferred {
		instance, err := rs.materialize(winner)
		if err != nil {
			return nil, err
		}
		candidate = instance
	}
	if candidate == nil {
		if d.Required {
			return nil, NotFoundError{Name: winner, Type: d.Type}
		}
		return nil, nil
	}
	if !assignable(reflect.TypeOf(candidate), d.Type) {
		return nil, TypeMismatchError{Name: winner, Required: d.Type, Actual: reflect.TypeOf(candidate)}
	}
	rs.log.Debug("resolved dependency",
		zap.String("name", winner),
		zap.String("type", d.Type.String()))
	return candidate, nil
}

// resolveAggregate handles slice- and map-shaped descriptors by resolving
// against the element type with eager materialization, then assembling the
// aggregate. Slices are ordered by the comparator when one is configured;
// maps preserve candidate names as keys.
func (rs *Resolver) resolveAggregate(requestingName string, d Descriptor) (any, error) {
	elem := d.Type.Elem()
	candidates, err := rs.findCandidates(requestingName, elem, d.forElement(elem))
	if err != nil {
		return nil, err
	}
	if candidates.len() == 0 {
		if d.Required {
			return nil, NotFoundError{Type: d.Type}
		}
		return nil, nil
	}

	switch d.Shape() {
	case ShapeMap:
		out := reflect.MakeMapWithSize(d.Type, candidates.len())
		for _, name := range candidates.names {
			rv, err := aggregateElement(candidates.values[name], name, elem)
			if err != nil {
				return nil, err
			}
			out.SetMapIndex(reflect.ValueOf(name), rv)
		}
		return out.Interface(), nil
	default:
		instances := candidates.orderedValues()
		if rs.cmp != nil {
			sort.SliceStable(instances, func(i, j int) bool {
				return rs.cmp.Less(instances[i], instances[j])
			})
		}
		out := reflect.MakeSlice(d.Type, 0, len(instances))
		for _, instance := range instances {
			rv, err := aggregateElement(instance, "", elem)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, rv)
		}
		return out.Interface(), nil
	}
}

func aggregateElement(instance any, name string, elem reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(instance)
	if rv.Type().AssignableTo(elem) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(elem) {
		return rv.Convert(elem), nil
	}
	return reflect.Value{}, TypeMismatchError{Name: name, Required: elem, Actual: rv.Type()}
}

// materialize obtains the instance behind a name. Any materialization marks
// the registry as having started creation so the registration path switches
// to copy-on-write. No registry locks are held across the call, so a
// materializer may re-enter the registry freely.
func (rs *Resolver) materialize(name string) (any, error) {
	rs.reg.MarkCreationStarted()
	if rs.reg.materializer != nil {
		return rs.reg.materializer.Materialize(name)
	}
	if instance, ok := rs.reg.Singleton(name); ok {
		return instance, nil
	}
	return nil, ErrNoMaterializer
}

// CandidateNames returns the names resolution would consider for the
// descriptor, in discovery order, deferring materialization wherever the
// scalar path would. Plural descriptors probe by their element type.
func (rs *Resolver) CandidateNames(requestingName string, d Descriptor) ([]string, error) {
	if d.Type == nil {
		return nil, ValidationError{Name: requestingName, Reason: "descriptor has no required type"}
	}
	d = d.withShape()
	if d.plural() {
		d.Type = d.Type.Elem()
		d = d.withShape()
	}
	candidates, err := rs.findCandidates(requestingName, d.Type, d)
	if err != nil {
		return nil, err
	}
	return slices.Clone(candidates.names), nil
}

// Instance pairs a materialized object with the name it resolved under.
type Instance struct {
	Name  string
	Value any
}

// InstancesOf materializes every candidate for the given type into a
// name-and-instance listing, in registration order (comparator order when
// one is configured). Intended for container warm-up and diagnostics rather
// than per-request resolution.
func (rs *Resolver) InstancesOf(t reflect.Type) ([]Instance, error) {
	names, err := rs.reg.NamesForType(t, true, true)
	if err != nil {
		return nil, err
	}
	instances := make([]Instance, 0, len(names))
	for _, name := range names {
		value, err := rs.materialize(name)
		if err != nil {
			return nil, err
		}
		if value != nil {
			instances = append(instances, Instance{Name: name, Value: value})
		}
	}
	if rs.cmp != nil {
		sort.SliceStable(instances, func(i, j int) bool {
			return rs.cmp.Less(instances[i].Value, instances[j].Value)
		})
	}
	return instances, nil
}
