package container

import (
	"reflect"
	"slices"
)

// candidateMap is an insertion-ordered mapping from candidate name to either
// an already-materialized instance, an explicit nil placeholder, or a
// not-yet-resolved reflect.Type token. Never deduplicated by value.
type candidateMap struct {
	names  []string
	values map[string]any
}

func newCandidateMap() *candidateMap {
	return &candidateMap{values: map[string]any{}}
}

func (m *candidateMap) add(name string, v any) {
	if _, exists := m.values[name]; !exists {
		m.names = append(m.names, name)
	}
	m.values[name] = v
}

func (m *candidateMap) len() int { return len(m.names) }

func (m *candidateMap) get(name string) any { return m.values[name] }

func (m *candidateMap) first() (string, any) {
	name := m.names[0]
	return name, m.values[name]
}

// orderedValues returns the candidate values in discovery order.
func (m *candidateMap) orderedValues() []any {
	out := make([]any, 0, len(m.names))
	for _, name := range m.names {
		out = append(out, m.values[name])
	}
	return out
}

// findCandidates builds the candidate map for one typed request.
//
// Shortcut values win outright. The first pass scans type-index matches,
// excluding self-references and names that are not autowire-eligible for the
// descriptor. If it comes up empty, a fallback pass relaxes the eligibility
// flag; when the required type is itself aggregate-shaped the fallback only
// admits candidates for descriptors carrying qualifiers. A final pass admits
// self-references for non-aggregate required types, though never the very
// object being assembled into its own aggregate.
func (rs *Resolver) findCandidates(requestingName string, requiredType reflect.Type, d Descriptor) (*candidateMap, error) {
	result := newCandidateMap()

	if rs.values != nil {
		name, val, ok, err := rs.values.Resolve(requiredType)
		if err != nil {
			return nil, err
		}
		if ok {
			result.add(name, val)
			return result, nil
		}
	}

	names, err := rs.reg.NamesForType(requiredType, true, d.Eager)
	if err != nil {
		return nil, err
	}
	for _, candidate := range names {
		if rs.reg.isSelfReference(requestingName, candidate) || !rs.isAutowireCandidate(candidate, d) {
			continue
		}
		if err := rs.addCandidateEntry(result, candidate, d); err != nil {
			return nil, err
		}
	}
	if result.len() > 0 {
		return result, nil
	}

	multiple := shapeOf(requiredType) != ShapeScalar
	fallback := d.forFallback()
	for _, candidate := range names {
		if rs.reg.isSelfReference(requestingName, candidate) || !rs.isAutowireCandidate(candidate, fallback) {
			continue
		}
		if multiple && !d.hasQualifiers() {
			continue
		}
		if err := rs.addCandidateEntry(result, candidate, d); err != nil {
			return nil, err
		}
	}
	if result.len() == 0 && !multiple {
		for _, candidate := range names {
			if !rs.reg.isSelfReference(requestingName, candidate) {
				continue
			}
			if d.multiElement && candidate == requestingName {
				continue
			}
			if !rs.isAutowireCandidate(candidate, fallback) {
				continue
			}
			if err := rs.addCandidateEntry(result, candidate, d); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// addCandidateEntry records one candidate. Elements of aggregates are always
// materialized eagerly; otherwise materialization happens only for names
// that already hold a singleton instance, and everything else defers as a
// type token so creation order is not forced ahead of disambiguation.
func (rs *Resolver) addCandidateEntry(m *candidateMap, name string, d Descriptor) error {
	if d.multiElement {
		instance, err := rs.materialize(name)
		if err != nil {
			return err
		}
		if instance != nil {
			m.add(name, instance)
		}
		return nil
	}
	if rs.reg.ContainsSingleton(name) {
		instance, err := rs.materialize(name)
		if err != nil {
			return err
		}
		m.add(name, instance)
		return nil
	}
	predicted, err := rs.reg.predictedTypeOf(name)
	if err != nil {
		return err
	}
	if predicted == nil {
		m.add(name, nil)
		return nil
	}
	m.add(name, predicted)
	return nil
}

// isAutowireCandidate applies the eligibility filter: the definition's
// autowire-eligible flag (skipped for fallback descriptors) and qualifier
// matching. Names without a definition behind them (manually supplied
// instances) are eligible by default.
func (rs *Resolver) isAutowireCandidate(name string, d Descriptor) bool {
	canonical := rs.reg.CanonicalName(name)
	def, err := rs.reg.mergedDefinition(canonical)
	if err != nil {
		return rs.qualifiersMatch(name, nil, d)
	}
	if !d.fallback && !def.AutowireCandidate {
		return false
	}
	return rs.qualifiersMatch(name, def, d)
}

// qualifiersMatch requires every descriptor qualifier to appear among the
// definition's qualifiers, the candidate name, or one of its aliases.
func (rs *Resolver) qualifiersMatch(name string, def *Definition, d Descriptor) bool {
	if !d.hasQualifiers() {
		return true
	}
	for _, q := range d.Qualifiers {
		if q == name {
			continue
		}
		if def != nil && slices.Contains(def.Qualifiers, q) {
			continue
		}
		if slices.Contains(rs.reg.Aliases(name), q) {
			continue
		}
		return false
	}
	return true
}

// isSelfReference reports whether candidate points back at the requesting
// bean: the same name, or a definition produced by a factory on it.
func (r *Registry) isSelfReference(requesting, candidate string) bool {
	if requesting == "" || candidate == "" {
		return false
	}
	if requesting == candidate {
		return true
	}
	if def, err := r.mergedDefinition(candidate); err == nil {
		return def.FactoryOwner == requesting
	}
	return false
}
