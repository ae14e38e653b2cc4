package container

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Provider
// -----------------------------------------------------------------------------

// TestProvider_GetForcesRequired verifies Get fails on a missing dependency
// even when the captured descriptor was optional.
func TestProvider_GetForcesRequired(t *testing.T) {
	t.Parallel()

	r, _ := newBellRegistry(t)
	rs := NewResolver(r)

	d := NewDescriptor(ringerType)
	d.Required = false
	p := rs.ProviderFor("", d)

	_, err := p.Get()
	require.Error(t, err)
	assert.IsType(t, NotFoundError{}, err)
}

// TestProvider_GetResolvesLate verifies the lookup runs against the registry
// state at call time, not construction time.
func TestProvider_GetResolvesLate(t *testing.T) {
	t.Parallel()

	r, m := newBellRegistry(t)
	rs := NewResolver(r)
	p := rs.ProviderFor("", NewDescriptor(ringerType))

	_, err := p.Get()
	require.Error(t, err)

	require.NoError(t, r.Register("late", NewDefinition(reflect.TypeOf(&bell{}))))
	m.build["late"] = bellBuilder("late")

	got, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, "late", got.(*bell).tone)
}

// TestProvider_GetIfAvailable verifies absence comes back as nil, presence
// as the instance.
func TestProvider_GetIfAvailable(t *testing.T) {
	t.Parallel()

	r, _ := newBellRegistry(t)
	rs := NewResolver(r)
	p := rs.ProviderFor("", NewDescriptor(ringerType))

	got, err := p.GetIfAvailable()
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestProvider_GetIfAvailableAmbiguous verifies availability does not absorb
// ambiguity: two undifferentiated candidates fail GetIfAvailable while
// GetIfUnique maps the same set to nil.
func TestProvider_GetIfAvailableAmbiguous(t *testing.T) {
	t.Parallel()

	r, _ := newBellRegistry(t, "one", "two")
	rs := NewResolver(r)
	p := rs.ProviderFor("", NewDescriptor(ringerType))

	_, err := p.GetIfAvailable()
	require.Error(t, err)
	assert.IsType(t, AmbiguousResolutionError{}, err)

	got, err := p.GetIfUnique()
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestProvider_GetIfUnique verifies crowded candidate sets come back nil
// while conflicting primaries still fail.
func TestProvider_GetIfUnique(t *testing.T) {
	t.Parallel()

	r, _ := newBellRegistry(t, "one", "two")
	rs := NewResolver(r)
	p := rs.ProviderFor("", NewDescriptor(ringerType))

	got, err := p.GetIfUnique()
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, name := range []string{"one", "two"} {
		def, err := r.Definition(name)
		require.NoError(t, err)
		def.Primary = true
	}
	_, err = p.GetIfUnique()
	require.Error(t, err)
	assert.IsType(t, AmbiguousResolutionError{}, err)
}

// TestProvider_GetUnique verifies a single candidate resolves through every
// accessor.
func TestProvider_GetUnique(t *testing.T) {
	t.Parallel()

	r, _ := newBellRegistry(t, "solo")
	rs := NewResolver(r)
	p := rs.ProviderFor("", NewDescriptor(ringerType))

	fromGet, err := p.Get()
	require.NoError(t, err)
	fromUnique, err := p.GetIfUnique()
	require.NoError(t, err)

	assert.Equal(t, "solo", fromGet.(*bell).tone)
	assert.Equal(t, "solo", fromUnique.(*bell).tone)
}
