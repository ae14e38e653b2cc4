package container

// Provider defers a dependency lookup: construction captures the descriptor,
// each call re-runs resolution against the live registry. Useful for
// breaking construction cycles and for optional lookups decided at use time.
type Provider struct {
	rs         *Resolver
	requesting string
	d          Descriptor
}

// ProviderFor builds a Provider for the given descriptor on behalf of
// requestingName (empty for external callers).
func (rs *Resolver) ProviderFor(requestingName string, d Descriptor) *Provider {
	return &Provider{rs: rs, requesting: requestingName, d: d.withShape()}
}

// Get resolves the dependency, failing when it is absent regardless of the
// descriptor's own Required flag.
func (p *Provider) Get() (any, error) {
	d := p.d
	d.Required = true
	result, err := p.rs.Resolve(p.requesting, d)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, NotFoundError{Name: p.d.Name, Type: p.d.Type}
	}
	return result, nil
}

// GetIfAvailable resolves the dependency, returning nil when absent. Several
// candidates that cannot be disambiguated still fail: availability tolerates
// a missing dependency, not an ambiguous one.
func (p *Provider) GetIfAvailable() (any, error) {
	d := p.d
	d.Required = false
	d.nonUniqueFails = true
	return p.rs.Resolve(p.requesting, d)
}

// GetIfUnique resolves the dependency, returning nil when absent or when
// several candidates remain ambiguous. Conflicting primary or priority
// declarations still fail, since those indicate misconfiguration rather
// than a merely crowded candidate set.
func (p *Provider) GetIfUnique() (any, error) {
	d := p.d
	d.Required = false
	return p.rs.Resolve(p.requesting, d)
}
