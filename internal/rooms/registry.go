package rooms

// Registry maps room codes to live rooms. It is the only owner of room lifetime.
//
// Registry is not safe for concurrent use; the gateway serializes every access
// under its own lock.
type Registry struct {
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Create registers room under its code. It fails with ErrCodeTaken when the code
// is already used by a live room.
func (r *Registry) Create(room *Room) error {
	if _, exists := r.rooms[room.Code()]; exists {
		return ErrCodeTaken
	}
	r.rooms[room.Code()] = room
	return nil
}

// Get returns the room for code, normalizing the code first.
func (r *Registry) Get(code string) (*Room, bool) {
	room, ok := r.rooms[NormalizeCode(code)]
	return room, ok
}

// Delete removes the room for code. Deleting an unknown code is a no-op.
func (r *Registry) Delete(code string) {
	delete(r.rooms, NormalizeCode(code))
}

// ForEach calls fn for every live room. fn must not create or delete rooms.
func (r *Registry) ForEach(fn func(*Room)) {
	for _, room := range r.rooms {
		fn(room)
	}
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	return len(r.rooms)
}
