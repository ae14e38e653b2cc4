package container

import "math"

// Ordered is implemented by instances that want a place in assembled
// aggregates. Lower values sort first.
type Ordered interface {
	Order() int
}

// Prioritized is implemented by instances carrying an explicit priority rank
// for disambiguation. Lower values outrank higher ones.
type Prioritized interface {
	Priority() int
}

// OrderComparator ranks instances by their Ordered value, leaving everything
// else at the lowest precedence, and exposes Prioritized ranks for the
// disambiguation protocol. A nil *OrderComparator means "no ordering
// configured": aggregates keep discovery order and the priority stage is
// skipped.
type OrderComparator struct{}

// Less reports whether a sorts before b.
func (OrderComparator) Less(a, b any) bool {
	return orderOf(a) < orderOf(b)
}

// PriorityOf returns the explicit priority of v, if it declares one.
func (OrderComparator) PriorityOf(v any) (int, bool) {
	if p, ok := v.(Prioritized); ok {
		return p.Priority(), true
	}
	return 0, false
}

func orderOf(v any) int {
	if o, ok := v.(Ordered); ok {
		return o.Order()
	}
	return math.MaxInt
}
