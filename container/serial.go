package container

import (
	"sync"
	"weak"

	"github.com/google/uuid"
)

// serialRegistries maps serialization IDs to weak registry references so
// looking a registry up by ID never keeps it alive.
var serialRegistries sync.Map // string -> weak.Pointer[Registry]

// NewSerializationID returns a fresh unique registry ID.
func NewSerializationID() string { return uuid.NewString() }

// SetSerializationID assigns the registry's ID and publishes it in the
// process-wide lookup table. An empty ID unpublishes the registry.
func (r *Registry) SetSerializationID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.serializationID != "" {
		serialRegistries.Delete(r.serializationID)
	}
	r.serializationID = id
	if id != "" {
		serialRegistries.Store(id, weak.Make(r))
	}
}

func (r *Registry) SerializationID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.serializationID
}

// RegistryByID resolves a serialization ID back to its live registry.
// Entries whose registry has been collected are purged on access.
func RegistryByID(id string) (*Registry, bool) {
	v, ok := serialRegistries.Load(id)
	if !ok {
		return nil, false
	}
	ptr := v.(weak.Pointer[Registry])
	reg := ptr.Value()
	if reg == nil {
		serialRegistries.Delete(id)
		return nil, false
	}
	return reg, true
}
