package container

import (
	"reflect"
	"slices"
)

// determineCandidate picks one winner out of several candidates: a single
// primary definition wins first, then the highest-priority instance, then a
// candidate matching the requested name or registered as a shortcut value.
// An empty winner with a nil error means genuinely ambiguous; the caller
// decides whether that is fatal.
func (rs *Resolver) determineCandidate(candidates *candidateMap, d Descriptor) (string, error) {
	primary, err := rs.primaryCandidate(candidates, d.Type)
	if err != nil {
		return "", err
	}
	if primary != "" {
		return primary, nil
	}
	preferred, err := rs.highestPriorityCandidate(candidates, d.Type)
	if err != nil {
		return "", err
	}
	if preferred != "" {
		return preferred, nil
	}
	for _, name := range candidates.names {
		value := candidates.values[name]
		if value != nil && rs.values != nil && rs.values.ContainsValue(value) {
			return name, nil
		}
		if rs.matchesRequestedName(name, d.Name) {
			return name, nil
		}
	}
	return "", nil
}

// primaryCandidate scans for definitions flagged primary. Two primaries in
// the local registry conflict; a local primary silently beats one inherited
// from an ancestor.
func (rs *Resolver) primaryCandidate(candidates *candidateMap, requiredType reflect.Type) (string, error) {
	primaryName := ""
	for _, candidate := range candidates.names {
		if !rs.reg.isPrimary(candidate) {
			continue
		}
		if primaryName != "" {
			candidateLocal := rs.reg.ContainsDefinition(rs.reg.CanonicalName(candidate))
			primaryLocal := rs.reg.ContainsDefinition(rs.reg.CanonicalName(primaryName))
			if candidateLocal && primaryLocal {
				return "", AmbiguousResolutionError{
					Type:       requiredType,
					Candidates: []string{primaryName, candidate},
					Reason:     "more than one primary candidate",
				}
			}
			if candidateLocal {
				primaryName = candidate
			}
			continue
		}
		primaryName = candidate
	}
	return primaryName, nil
}

// isPrimary resolves the name to its canonical form and consults the merged
// definition, walking up to the parent registry for inherited definitions.
func (r *Registry) isPrimary(name string) bool {
	canonical := r.CanonicalName(name)
	if r.ContainsDefinition(canonical) {
		def, err := r.mergedDefinition(canonical)
		return err == nil && def.Primary
	}
	if r.parent != nil {
		return r.parent.isPrimary(canonical)
	}
	return false
}

// highestPriorityCandidate compares already-materialized instances through
// the configured comparator; lower values win. Deferred type tokens and nil
// placeholders carry no priority and are skipped. Two instances sharing the
// winning priority conflict.
func (rs *Resolver) highestPriorityCandidate(candidates *candidateMap, requiredType reflect.Type) (string, error) {
	if rs.cmp == nil {
		return "", nil
	}
	var (
		bestName string
		best     int
		haveBest bool
	)
	for _, name := range candidates.names {
		instance := candidates.values[name]
		if instance == nil {
			continue
		}
		if _, deferred := instance.(reflect.Type); deferred {
			continue
		}
		p, ok := rs.cmp.PriorityOf(instance)
		if !ok {
			continue
		}
		switch {
		case !haveBest:
			bestName, best, haveBest = name, p, true
		case p == best:
			return "", AmbiguousResolutionError{
				Type:       requiredType,
				Candidates: []string{bestName, name},
				Reason:     "multiple candidates share the same priority",
			}
		case p < best:
			bestName, best = name, p
		}
	}
	return bestName, nil
}

// matchesRequestedName reports whether the candidate's name or any of its
// aliases equals the descriptor's name hint.
func (rs *Resolver) matchesRequestedName(candidate, hint string) bool {
	if hint == "" {
		return false
	}
	if candidate == hint {
		return true
	}
	return slices.Contains(rs.reg.Aliases(candidate), hint)
}
