package container

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type ringer interface{ Ring() string }

type bell struct{ tone string }

func (b *bell) Ring() string { return b.tone }

// chime implements ringer on the pointer receiver only.
type chime struct{ note string }

func (c *chime) Ring() string { return c.note }

var ringerType = reflect.TypeOf((*ringer)(nil)).Elem()

//
// -----------------------------------------------------------------------------
// NamesForType: matching
// -----------------------------------------------------------------------------

// TestNamesForType_ConcreteAndInterface verifies matches by exact type and by
// interface satisfaction, in registration order.
func TestNamesForType_ConcreteAndInterface(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register("bell", NewDefinition(reflect.TypeOf(&bell{}))))
	require.NoError(t, r.Register("plain", widgetDef()))
	require.NoError(t, r.Register("chime", NewDefinition(reflect.TypeOf(&chime{}))))

	byIface, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"bell", "chime"}, byIface)

	byConcrete, err := r.NamesForType(reflect.TypeOf(&widget{}), true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"plain"}, byConcrete)
}

// TestNamesForType_PointerReceiverSet verifies a definition declared with a
// non-pointer type still matches an interface implemented on the pointer
// receiver.
func TestNamesForType_PointerReceiverSet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register("bell", NewDefinition(reflect.TypeOf(bell{}))))

	names, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"bell"}, names)
}

// TestNamesForType_SkipsAbstractAndAliases verifies abstract definitions and
// alias-shadowed names never become candidates.
func TestNamesForType_SkipsAbstractAndAliases(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	abstract := NewDefinition(reflect.TypeOf(&bell{}))
	abstract.Abstract = true
	require.NoError(t, r.Register("base", abstract))
	require.NoError(t, r.Register("real", NewDefinition(reflect.TypeOf(&bell{}))))
	require.NoError(t, r.Register("shadowed", NewDefinition(reflect.TypeOf(&bell{}))))
	// Shadow a registered name directly at the alias level.
	require.NoError(t, r.AliasRegistry.RegisterAlias("real", "shadowed"))

	names, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, names)
}

// TestNamesForType_SingletonsOnly verifies includeNonSingletons=false drops
// prototype definitions unless an instance is already cached for them.
func TestNamesForType_SingletonsOnly(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	proto := NewDefinition(reflect.TypeOf(&bell{}))
	proto.Scope = ScopePrototype
	require.NoError(t, r.Register("proto", proto))
	require.NoError(t, r.Register("single", NewDefinition(reflect.TypeOf(&bell{}))))

	names, err := r.NamesForType(ringerType, false, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"single"}, names)

	r.CacheSingleton("proto", &bell{})
	names, err = r.NamesForType(ringerType, false, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"proto", "single"}, names)
}

// TestNamesForType_ManualSingletonsAppended verifies manually supplied
// instances are matched by direct inspection after definition names, with a
// Factory instance matched by its produced type first.
func TestNamesForType_ManualSingletonsAppended(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register("defined", NewDefinition(reflect.TypeOf(&bell{}))))
	require.NoError(t, r.RegisterSingleton("manual", &chime{note: "ding"}))
	require.NoError(t, r.RegisterSingleton("producer", bellFactory{}))
	require.NoError(t, r.RegisterSingleton("unrelated", &widget{}))

	names, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"defined", "manual", "producer"}, names)
}

// bellFactory is a manual instance that produces *bell values.
type bellFactory struct{}

func (bellFactory) ObjectType() reflect.Type { return reflect.TypeOf(&bell{}) }

//
// -----------------------------------------------------------------------------
// NamesForType: eager-init gating and failures
// -----------------------------------------------------------------------------

// TestNamesForType_LazyUnknownTypeSkippedWithoutEagerInit verifies a lazy
// definition with no determinable type is ignored under allowEagerInit=false
// yet considered once eager checks are allowed.
func TestNamesForType_LazyUnknownTypeSkippedWithoutEagerInit(t *testing.T) {
	t.Parallel()

	m := &fakeMaterializer{types: map[string]reflect.Type{"lazy": reflect.TypeOf(&bell{})}}
	r := NewRegistry(WithMaterializer(m))
	lazy := &Definition{Lazy: true, AutowireCandidate: true, TypeName: "bell"}
	require.NoError(t, r.Register("lazy", lazy))

	cheap, err := r.NamesForType(ringerType, true, false)
	require.NoError(t, err)
	assert.Empty(t, cheap)

	eager, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"lazy"}, eager)
}

// TestNamesForType_FactoryOwnTypeFallback verifies a factory-style definition
// whose produced type does not match still matches through the factory
// object's own type, but only when eager init is allowed.
func TestNamesForType_FactoryOwnTypeFallback(t *testing.T) {
	t.Parallel()

	m := &fakeMaterializer{
		factory: map[string]bool{"fac": true},
		types:   map[string]reflect.Type{"fac": reflect.TypeOf(&gadget{})},
	}
	r := NewRegistry(WithMaterializer(m))
	require.NoError(t, r.Register("fac", NewDefinition(reflect.TypeOf(&bell{}))))

	eager, err := r.NamesForType(reflect.TypeOf(&bell{}), true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"fac"}, eager)

	cheap, err := r.NamesForType(reflect.TypeOf(&bell{}), true, false)
	require.NoError(t, err)
	assert.Empty(t, cheap)
}

// TestNamesForType_PredictionFailure verifies a type-prediction failure
// propagates under eager init and is suppressed otherwise.
func TestNamesForType_PredictionFailure(t *testing.T) {
	t.Parallel()

	m := &fakeMaterializer{predictErr: map[string]error{"broken": assert.AnError}}
	r := NewRegistry(WithMaterializer(m))
	require.NoError(t, r.Register("broken", NewDefinition(reflect.TypeOf(&bell{}))))
	require.NoError(t, r.Register("fine", NewDefinition(reflect.TypeOf(&bell{}))))

	_, err := r.NamesForType(ringerType, true, true)
	require.Error(t, err)

	names, err := r.NamesForType(ringerType, true, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"fine"}, names)
}

//
// -----------------------------------------------------------------------------
// Caching
// -----------------------------------------------------------------------------

// TestNamesForType_CachedOnlyWhenFrozen verifies memoization kicks in after
// Freeze and is invalidated by the next mutation.
func TestNamesForType_CachedOnlyWhenFrozen(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register("bell", NewDefinition(reflect.TypeOf(&bell{}))))
	r.Freeze()

	first, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	second, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	require.Len(t, first, 1)
	// Cached: the exact same backing slice comes back.
	assert.Same(t, &first[0], &second[0])

	require.NoError(t, r.Register("chime", NewDefinition(reflect.TypeOf(&chime{}))))
	after, err := r.NamesForType(ringerType, true, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"bell", "chime"}, after)
}

// TestNamesForType_NotCachedWithoutEagerInit verifies the cheap-scan variant
// bypasses the cache even while frozen.
func TestNamesForType_NotCachedWithoutEagerInit(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Register("bell", NewDefinition(reflect.TypeOf(&bell{}))))
	r.Freeze()

	first, err := r.NamesForType(ringerType, true, false)
	require.NoError(t, err)
	second, err := r.NamesForType(ringerType, true, false)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.NotSame(t, &first[0], &second[0])
}

// TestNamesForType_PropertyCacheCoherent verifies across random definition
// sets that frozen cached lookups agree exactly with a fresh scan and that
// every reported name actually satisfies the requested type.
func TestNamesForType_PropertyCacheCoherent(t *testing.T) {
	t.Parallel()

	types := []reflect.Type{
		reflect.TypeOf(&bell{}),
		reflect.TypeOf(&chime{}),
		reflect.TypeOf(&widget{}),
	}
	rapid.Check(t, func(rt *rapid.T) {
		r := NewRegistry()
		n := rapid.IntRange(0, 10).Draw(rt, "defs")
		for i := 0; i < n; i++ {
			def := NewDefinition(rapid.SampledFrom(types).Draw(rt, "type"))
			def.Abstract = rapid.Bool().Draw(rt, "abstract")
			if err := r.Register("d"+strconv.Itoa(i), def); err != nil {
				rt.Fatalf("register: %v", err)
			}
		}
		r.Freeze()

		fresh, err := r.namesForTypeUncached(ringerType, true, true)
		if err != nil {
			rt.Fatalf("uncached scan: %v", err)
		}
		cached, err := r.NamesForType(ringerType, true, true)
		if err != nil {
			rt.Fatalf("cached scan: %v", err)
		}
		if !reflect.DeepEqual(fresh, cached) {
			rt.Fatalf("cache diverged: fresh %v cached %v", fresh, cached)
		}
		for _, name := range cached {
			def, err := r.Definition(name)
			if err != nil {
				rt.Fatalf("candidate %q has no definition", name)
			}
			if !assignable(def.Type, ringerType) {
				rt.Fatalf("candidate %q of type %v does not satisfy %v", name, def.Type, ringerType)
			}
		}
	})
}
