package container

import "reflect"

// Materializer is the external instance-creation collaborator. The registry
// and resolver never construct objects themselves; they call back into the
// materializer lazily, holding no locks, so Materialize may re-enter the
// resolver while building an instance's own dependencies.
type Materializer interface {
	// Materialize builds (or returns the already-built singleton) instance
	// for name. A nil instance with a nil error is a valid "explicit null"
	// placeholder.
	Materialize(name string) (any, error)

	// PredictType reports the runtime type the named definition would
	// produce, without materializing it. For factory-style definitions this
	// is the produced object's type. An error stands for a type that cannot
	// be determined (the moral equivalent of a class-loading failure).
	PredictType(name string, def *Definition) (reflect.Type, error)

	// IsFactoryStyle reports whether the named definition describes an
	// object that itself produces the instance of interest.
	IsFactoryStyle(name string, def *Definition) bool
}

// Factory is implemented by registered instances that produce another
// object. Type matching checks the produced type first and falls back to the
// factory's own type.
type Factory interface {
	ObjectType() reflect.Type
}

// predictType asks the materializer, when present, for name's runtime type;
// otherwise the declared type is the best available answer.
func (r *Registry) predictType(name string, def *Definition) (reflect.Type, error) {
	if r.materializer != nil {
		return r.materializer.PredictType(name, def)
	}
	return def.Type, nil
}

func (r *Registry) isFactoryStyle(name string, def *Definition) bool {
	return r.materializer != nil && r.materializer.IsFactoryStyle(name, def)
}

// predictedTypeOf resolves name's merged definition and predicts its type.
func (r *Registry) predictedTypeOf(name string) (reflect.Type, error) {
	def, err := r.mergedDefinition(name)
	if err != nil {
		return nil, err
	}
	return r.predictType(name, def)
}

// assignable reports whether a value of type src satisfies target, checking
// the pointer receiver set as well when src itself does not implement a
// target interface.
func assignable(src, target reflect.Type) bool {
	if src == nil || target == nil {
		return false
	}
	if src.AssignableTo(target) {
		return true
	}
	return target.Kind() == reflect.Interface && src.Kind() != reflect.Pointer &&
		reflect.PointerTo(src).Implements(target)
}
