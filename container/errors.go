package container

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// ErrNoMaterializer is returned when resolution needs to materialize an
// instance but the registry was built without a Materializer.
var ErrNoMaterializer = errors.New("container: no materializer configured")

// NotFoundError reports an unknown name, alias, or an unsatisfiable required
// dependency. Exactly one of Name and Type is set: Name for name-addressed
// lookups (definitions, aliases, singletons), Type for typed requests that
// matched no candidate.
type NotFoundError struct {
	Name string
	Type reflect.Type
}

// Error implements the error interface.
func (e NotFoundError) Error() string {
	if e.Name != "" {
		// Example: container: no registration named "db"
		return "container: no registration named " + strconv.Quote(e.Name)
	}
	if e.Type != nil {
		return "container: no candidate of type " + e.Type.String()
	}
	return "container: registration not found"
}

// ValidationError reports a structurally invalid definition or request.
// Registration is aborted with no state change.
type ValidationError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	// Example: container: invalid definition "db": empty scope
	return "container: invalid definition " + strconv.Quote(e.Name) + ": " + e.Reason
}

// OverrideNotAllowedError is returned when a registration would replace an
// existing one and the registry's override policy forbids it.
type OverrideNotAllowedError struct {
	Name string
}

// Error implements the error interface.
func (e OverrideNotAllowedError) Error() string {
	// Example: container: definition "db" already registered and overriding is disabled
	return "container: definition " + strconv.Quote(e.Name) +
		" already registered and overriding is disabled"
}

// CircularReferenceError is returned when registering an alias would close a
// name cycle. The alias map is left unchanged.
type CircularReferenceError struct {
	Name  string
	Alias string
}

// Error implements the error interface.
func (e CircularReferenceError) Error() string {
	// Example: container: cannot alias "a" to "c": "c" already resolves to "a"
	return "container: cannot alias " + strconv.Quote(e.Alias) + " to " + strconv.Quote(e.Name) +
		": " + strconv.Quote(e.Name) + " already resolves to " + strconv.Quote(e.Alias)
}

// InvalidStateError reports a mutation that conflicts with existing
// registrations (for example re-targeting an alias when overriding is
// disabled). The registry is left unchanged.
type InvalidStateError struct {
	Reason string
}

// Error implements the error interface.
func (e InvalidStateError) Error() string {
	return "container: " + e.Reason
}

// AmbiguousResolutionError is returned when a request matches several
// candidates and the disambiguation protocol cannot pick a single winner.
type AmbiguousResolutionError struct {
	Type       reflect.Type
	Candidates []string
	Reason     string
}

// Error implements the error interface.
func (e AmbiguousResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("container: ambiguous candidates")
	if e.Type != nil {
		b.WriteString(" for type ")
		b.WriteString(e.Type.String())
	}
	if len(e.Candidates) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Candidates, ", "))
		b.WriteString("]")
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// TypeMismatchError is returned when a resolved instance is not assignable to
// the type the caller required.
type TypeMismatchError struct {
	Name     string
	Required reflect.Type
	Actual   reflect.Type
}

// Error implements the error interface.
func (e TypeMismatchError) Error() string {
	// Example: container: candidate "db" is *sql.DB, not assignable to io.Reader
	msg := "container: candidate " + strconv.Quote(e.Name)
	if e.Actual != nil {
		msg += " is " + e.Actual.String()
	}
	if e.Required != nil {
		msg += ", not assignable to " + e.Required.String()
	}
	return msg
}
