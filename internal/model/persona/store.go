package persona

// Store exposes persona retrieval for HTTP handlers.
type Store interface {
	List() []Persona
	ListByRole(role Role) []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns every persona.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// ListByRole returns the personas playing the given role.
func (s *MemoryStore) ListByRole(role Role) []Persona {
	var out []Persona
	for _, item := range s.items {
		if item.Role == role {
			out = append(out, item)
		}
	}
	return out
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}
