package container

import (
	"reflect"
	"slices"
)

// Scope controls how many instances a definition may produce.
type Scope int

const (
	// ScopeSingleton definitions materialize at most one shared instance.
	ScopeSingleton Scope = iota
	// ScopePrototype definitions materialize a fresh instance per request.
	ScopePrototype
)

// Role orders definitions by origin for override precedence logging.
// Higher values are more framework-internal.
type Role int

const (
	// RoleApplication marks user-declared definitions.
	RoleApplication Role = iota
	// RoleSupport marks definitions supporting some outer composition.
	RoleSupport
	// RoleInfrastructure marks purely internal definitions.
	RoleInfrastructure
)

// Definition is the declarative blueprint for one constructible object,
// addressed by the name it is registered under.
//
// Type may stay nil until a Materializer can predict it; TypeName carries
// the unresolved type descriptor in the meantime. Parent names another
// definition this one inherits unset attributes from; parent chains form a
// DAG by name and are flattened on demand (see mergedDefinition).
type Definition struct {
	Type     reflect.Type
	TypeName string

	Scope Scope
	Role  Role

	// Lazy definitions are not eagerly materialized by callers that
	// pre-instantiate; the registry itself never materializes.
	Lazy bool

	// Primary marks the preferred winner among same-type candidates.
	Primary bool

	// AutowireCandidate gates participation in typed dependency lookup.
	// NewDefinition sets it; zero-valued literals opt out.
	AutowireCandidate bool

	// FactoryOwner names the registration whose factory produces this
	// object, used for self-reference detection.
	FactoryOwner string

	// Parent names the definition this one inherits from.
	Parent string

	// Abstract definitions exist only to be inherited from; they are never
	// candidates and never materialized.
	Abstract bool

	// Qualifiers are free-form disambiguation tags matched against a
	// descriptor's qualifiers.
	Qualifiers []string
}

// NewDefinition returns a singleton, autowire-eligible definition of t.
func NewDefinition(t reflect.Type) *Definition {
	return &Definition{Type: t, AutowireCandidate: true}
}

// Clone returns a copy sharing no mutable state with d.
func (d *Definition) Clone() *Definition {
	cp := *d
	cp.Qualifiers = slices.Clone(d.Qualifiers)
	return &cp
}

// Singleton reports whether the definition is singleton-scoped.
func (d *Definition) Singleton() bool { return d.Scope == ScopeSingleton }

// Validate checks the definition for structural problems under the given
// registration name. It never mutates registry state.
func (d *Definition) Validate(name string) error {
	if d.Scope != ScopeSingleton && d.Scope != ScopePrototype {
		return ValidationError{Name: name, Reason: "unknown scope"}
	}
	if d.Role < RoleApplication || d.Role > RoleInfrastructure {
		return ValidationError{Name: name, Reason: "unknown role"}
	}
	if d.Parent == name && name != "" {
		return ValidationError{Name: name, Reason: "definition cannot be its own parent"}
	}
	return nil
}

// mergeDefinitions overlays child on a fully-merged parent, producing a
// derived record. The child wins for everything it declares; Type, TypeName,
// FactoryOwner and Qualifiers fall back to the parent when unset. Flags,
// Scope and Role always come from the child: a concrete child of an abstract
// parent must not inherit abstractness.
func mergeDefinitions(parent, child *Definition) *Definition {
	merged := child.Clone()
	merged.Parent = ""
	if merged.Type == nil {
		merged.Type = parent.Type
	}
	if merged.TypeName == "" {
		merged.TypeName = parent.TypeName
	}
	if merged.FactoryOwner == "" {
		merged.FactoryOwner = parent.FactoryOwner
	}
	if len(merged.Qualifiers) == 0 {
		merged.Qualifiers = slices.Clone(parent.Qualifiers)
	}
	return merged
}
