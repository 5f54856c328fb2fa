package ecs

// World owns an entity pool and the stores registered against it. Unlike a
// deferred destroy queue, Destroy takes effect immediately: callers that
// remove a body or node expect it gone when the call returns.
type World struct {
	pool   *EntityPool
	stores []Removable
}

func NewWorld() *World {
	return &World{
		pool:   NewEntityPool(),
		stores: make([]Removable, 0, 4),
	}
}

// Register adds a store whose entries are dropped on Destroy.
func (w *World) Register(s Removable) {
	w.stores = append(w.stores, s)
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

func (w *World) Live() int { return w.pool.Live() }

// Destroy clears id from every registered store and invalidates it.
// Returns false when id was already dead.
func (w *World) Destroy(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(id)
	}
	return w.pool.Destroy(id)
}
