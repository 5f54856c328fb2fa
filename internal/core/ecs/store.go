package ecs

// Removable is implemented by every store so World.Destroy can drop an
// entity's data everywhere at once.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed map of entity data. No reflect, no interface{}.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 32)}
}

func (s *Store[T]) Set(id EntityID, c *T) { s.data[id] = c }

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) { delete(s.data, id) }

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.data) }

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// Collect returns the IDs whose data satisfies keep.
func (s *Store[T]) Collect(keep func(*T) bool) []EntityID {
	var out []EntityID
	for id, c := range s.data {
		if keep(c) {
			out = append(out, id)
		}
	}
	return out
}
