package entity

// Registry tracks every live entity across the resident segments.
// Iteration follows registration order so runs replay deterministically.
type Registry struct {
	entities map[ID]*Spawnable
	order    []ID
	nextID   ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[ID]*Spawnable),
		nextID:   1,
	}
}

// Add assigns an ID to e and registers it.
func (r *Registry) Add(e *Spawnable) ID {
	e.ID = r.nextID
	r.nextID++
	r.entities[e.ID] = e
	r.order = append(r.order, e.ID)
	return e.ID
}

// Remove unregisters an entity and marks it dead.
func (r *Registry) Remove(id ID) {
	e, ok := r.entities[id]
	if !ok {
		return
	}
	e.Alive = false
	delete(r.entities, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Get returns an entity by ID.
func (r *Registry) Get(id ID) *Spawnable {
	return r.entities[id]
}

// All returns a snapshot of all entities, safe to mutate the registry while
// iterating it.
func (r *Registry) All() []*Spawnable {
	result := make([]*Spawnable, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entities[id])
	}
	return result
}

// BySegment returns the entities owned by one segment.
func (r *Registry) BySegment(segment int) []*Spawnable {
	var result []*Spawnable
	for _, id := range r.order {
		if e := r.entities[id]; e.Segment == segment {
			result = append(result, e)
		}
	}
	return result
}

// Count returns the total number of entities.
func (r *Registry) Count() int {
	return len(r.entities)
}

// CountByKind returns the number of entities of a specific kind.
func (r *Registry) CountByKind(kind Kind) int {
	count := 0
	for _, e := range r.entities {
		if e.Kind == kind {
			count++
		}
	}
	return count
}

// Clear removes every entity.
func (r *Registry) Clear() {
	for _, e := range r.entities {
		e.Alive = false
	}
	r.entities = make(map[ID]*Spawnable)
	r.order = nil
}
