package container

import (
	"reflect"
	"slices"
)

// Shape is the closed set of dependency request shapes. It is computed once
// per descriptor from the requested type, never re-derived mid-resolution.
type Shape int

const (
	// ShapeScalar requests exactly one object.
	ShapeScalar Shape = iota
	// ShapeSlice requests every matching object, ordered.
	ShapeSlice
	// ShapeMap requests every matching object keyed by name. Only maps with
	// a string key qualify.
	ShapeMap
)

// Descriptor describes one dependency request: the required type, an
// optional requested-name hint (a field or parameter name used as a natural
// disambiguator), qualifiers, and the required/eager flags.
//
// The zero Required/Eager values mean optional and lazy; NewDescriptor
// returns the common required+eager form.
type Descriptor struct {
	Type       reflect.Type
	Name       string
	Required   bool
	Eager      bool
	Qualifiers []string

	shape        Shape
	shaped       bool
	fallback     bool
	multiElement bool

	// nonUniqueFails makes unresolved ambiguity an error even for optional
	// requests. Provider.GetIfAvailable sets it; GetIfUnique does not.
	nonUniqueFails bool
}

// NewDescriptor returns a required, eager descriptor for t.
func NewDescriptor(t reflect.Type) Descriptor {
	d := Descriptor{Type: t, Required: true, Eager: true}
	return d.withShape()
}

// Shape returns the request shape derived from the descriptor type.
func (d Descriptor) Shape() Shape {
	if d.shaped {
		return d.shape
	}
	return shapeOf(d.Type)
}

func (d Descriptor) withShape() Descriptor {
	d.shape = shapeOf(d.Type)
	d.shaped = true
	return d
}

// plural reports whether the descriptor itself requests an aggregate.
func (d Descriptor) plural() bool { return d.Shape() != ShapeScalar }

func (d Descriptor) hasQualifiers() bool { return len(d.Qualifiers) > 0 }

// forFallback marks the descriptor for the relaxed second candidate pass.
func (d Descriptor) forFallback() Descriptor {
	d.fallback = true
	return d
}

// forElement derives the descriptor used to resolve one element of an
// aggregate request. Elements are always materialized eagerly.
func (d Descriptor) forElement(elem reflect.Type) Descriptor {
	e := d
	e.Type = elem
	e.Qualifiers = slices.Clone(d.Qualifiers)
	e.multiElement = true
	return e.withShape()
}

// shapeOf classifies a requested type. Anything that is not a slice or a
// string-keyed map (including fixed-size arrays and maps with other key
// types) is a scalar request for an object of that exact type.
func shapeOf(t reflect.Type) Shape {
	if t == nil {
		return ShapeScalar
	}
	switch t.Kind() {
	case reflect.Slice:
		return ShapeSlice
	case reflect.Map:
		// Exactly the string type: named string kinds do not qualify.
		if t.Key() == reflect.TypeOf("") {
			return ShapeMap
		}
	}
	return ShapeScalar
}
