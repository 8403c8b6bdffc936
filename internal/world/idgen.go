package world

import (
	"sync"

	"github.com/forgeward/realmcore/internal/model"
)

// IDGenerator hands out monotonic per-kind low ids (the low 32 bits of a
// GUID) for one WorldInstance. Grounded on
// internal/world/objectid.go's ObjectIDGenerator (three hardcoded
// atomic.Uint32 counters), generalized to an arbitrary set of ObjectKinds
// behind a single map instead of one field per kind.
type IDGenerator struct {
	mu       sync.Mutex
	counters map[model.ObjectKind]uint32
}

// NewIDGenerator allocates a generator with every counter starting at 1 —
// 0 is reserved so GUID(0) stays "none" even for entry=0 objects.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counters: make(map[model.ObjectKind]uint32)}
}

// Next issues the next low id for kind.
func (g *IDGenerator) Next(kind model.ObjectKind) uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters[kind]++
	return g.counters[kind]
}
