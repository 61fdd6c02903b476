package ecs

import "strconv"

// Entity packs a slot index in the low 32 bits and a generation in the high
// 32 bits. Slot indices start at 1 so the zero Entity is never valid.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}

// ID returns a stable numeric identifier for external systems such as the
// physics space. It is unique among live entities.
func (e Entity) ID() uint64 {
	return uint64(e)
}
