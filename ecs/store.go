package ecs

// store is the type-erased view the world keeps of each component table.
type store interface {
	remove(id entityID) bool
	has(id entityID) bool
}

// sparseStore keeps components densely packed and indexed by entity slot.
type sparseStore[T any] struct {
	dense    []*T
	entities []Entity
	sparse   []int
}

func newSparseStore[T any]() *sparseStore[T] {
	return &sparseStore[T]{}
}

func (s *sparseStore[T]) index(id entityID) (int, bool) {
	if id == 0 || int(id) >= len(s.sparse) {
		return 0, false
	}
	idx := s.sparse[id]
	if idx < 0 || idx >= len(s.entities) || s.entities[idx].id() != id {
		return 0, false
	}
	return idx, true
}

func (s *sparseStore[T]) has(id entityID) bool {
	_, ok := s.index(id)
	return ok
}

func (s *sparseStore[T]) get(id entityID) (*T, bool) {
	idx, ok := s.index(id)
	if !ok {
		return nil, false
	}
	return s.dense[idx], true
}

func (s *sparseStore[T]) set(e Entity, v *T) {
	id := e.id()
	if idx, ok := s.index(id); ok {
		s.dense[idx] = v
		s.entities[idx] = e
		return
	}
	for int(id) >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	s.sparse[id] = len(s.dense)
	s.dense = append(s.dense, v)
	s.entities = append(s.entities, e)
}

func (s *sparseStore[T]) remove(id entityID) bool {
	idx, ok := s.index(id)
	if !ok {
		return false
	}
	last := len(s.dense) - 1
	moved := s.entities[last]

	s.dense[idx] = s.dense[last]
	s.entities[idx] = moved
	s.sparse[moved.id()] = idx

	s.dense[last] = nil
	s.dense = s.dense[:last]
	s.entities = s.entities[:last]
	s.sparse[id] = -1
	return true
}

func (s *sparseStore[T]) len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}
