package world

import (
	"sync"
	"time"

	"github.com/forgeward/realmcore/internal/model"
)

// InstanceId identifies a WorldInstance within a World Instance Manager
// (C10).
type InstanceId uint32

// TickHooks are the per-step callbacks a WorldInstance's Tick invokes.
// They are injected rather than imported directly — internal/combat and
// internal/game register their own AI/combat logic here, the way the
// teacher's game/skill/cast_manager.go takes sendPacketFunc/broadcastFunc
// fields to avoid an import cycle with the session package.
type TickHooks struct {
	ExpireTimers func(now time.Time)
	Regen        func(dt time.Duration)
	AI           func(dt time.Duration)
	Movement     func(dt time.Duration)
	Combat       func(dt time.Duration)
}

// entityLocation is what the instance needs to place an entity in the
// grid: its base Object (identity + replicated fields) and current tile.
type entityLocation struct {
	obj   *model.Object
	coord TileCoord
}

// WorldInstance owns a set of objects, their spatial index, monotonic id
// generators, and the per-tick update loop (C5). Grounded on
// internal/world/world.go's object table/id-generator pattern and
// internal/world/visibility_manager.go's ticker-driven loop shape,
// generalized from one global grid to one grid per instance.
type WorldInstance struct {
	ID    InstanceId
	MapID uint32

	Grid *Grid
	ids  *IDGenerator

	mu      sync.RWMutex
	objects map[model.GUID]*entityLocation
	pending []model.GUID // deferred despawns

	Hooks TickHooks
}

// NewWorldInstance allocates an empty instance with its own grid and id
// generator.
func NewWorldInstance(id InstanceId, mapID uint32, tileSize float32, sightRadius int) *WorldInstance {
	return &WorldInstance{
		ID:      id,
		MapID:   mapID,
		Grid:    NewGrid(tileSize, sightRadius),
		ids:     NewIDGenerator(),
		objects: make(map[model.GUID]*entityLocation),
	}
}

// NextLow issues the next monotonic low id for the given object kind.
func (w *WorldInstance) NextLow(kind model.ObjectKind) uint32 {
	return w.ids.Next(kind)
}

// AddObject spawns obj into the instance's object table and grid tile.
func (w *WorldInstance) AddObject(obj *model.Object, coord TileCoord) {
	w.mu.Lock()
	w.objects[obj.GUID()] = &entityLocation{obj: obj, coord: coord}
	w.mu.Unlock()
	w.Grid.SpawnObject(obj, coord)
}

// RemoveObject despawns guid from the instance's object table and grid
// tile immediately. Use DeferDespawn from within a tick to despawn at the
// end of the current tick instead (step vi).
func (w *WorldInstance) RemoveObject(guid model.GUID) {
	w.mu.Lock()
	loc, ok := w.objects[guid]
	if ok {
		delete(w.objects, guid)
	}
	w.mu.Unlock()
	if ok {
		w.Grid.DespawnObject(loc.obj, loc.coord)
	}
}

// MoveObject relocates guid to a new tile coordinate, firing C3's
// tile-change signal via the grid.
func (w *WorldInstance) MoveObject(guid model.GUID, newCoord TileCoord) {
	w.mu.Lock()
	loc, ok := w.objects[guid]
	if ok {
		old := loc.coord
		loc.coord = newCoord
		w.mu.Unlock()
		w.Grid.MoveObject(loc.obj, old, newCoord)
		return
	}
	w.mu.Unlock()
}

// GetObject resolves a GUID to its base Object, if present (C5's
// "resolve GUID→object").
func (w *WorldInstance) GetObject(guid model.GUID) (*model.Object, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, ok := w.objects[guid]
	if !ok {
		return nil, false
	}
	return loc.obj, true
}

// DeferDespawn queues guid for removal at the end of the current tick
// (step vi of the tick contract).
func (w *WorldInstance) DeferDespawn(guid model.GUID) {
	w.mu.Lock()
	w.pending = append(w.pending, guid)
	w.mu.Unlock()
}

// Tick runs the single-threaded per-instance update contract (C5): expiring
// timers, per-unit regen, AI, movement integration, combat resolution,
// deferred despawns, then a field-delta flush broadcasting every dirtied
// object to its tile's watchers.
func (w *WorldInstance) Tick(now time.Time, dt time.Duration) {
	if w.Hooks.ExpireTimers != nil {
		w.Hooks.ExpireTimers(now)
	}
	if w.Hooks.Regen != nil {
		w.Hooks.Regen(dt)
	}
	if w.Hooks.AI != nil {
		w.Hooks.AI(dt)
	}
	if w.Hooks.Movement != nil {
		w.Hooks.Movement(dt)
	}
	if w.Hooks.Combat != nil {
		w.Hooks.Combat(dt)
	}
	w.flushDeferredDespawns()
	w.flushFieldDeltas()
}

func (w *WorldInstance) flushDeferredDespawns() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, guid := range pending {
		w.RemoveObject(guid)
	}
}

// flushFieldDeltas serializes each dirtied object's delta block and
// broadcasts an update notification to its tile's watchers, then clears
// the object's dirty bits (C1/C8).
func (w *WorldInstance) flushFieldDeltas() {
	w.mu.RLock()
	snapshot := make([]*entityLocation, 0, len(w.objects))
	for _, loc := range w.objects {
		snapshot = append(snapshot, loc)
	}
	w.mu.RUnlock()

	for _, loc := range snapshot {
		if !anyDirty(loc.obj) {
			continue
		}
		w.Grid.ForEachTileInSight(loc.coord, func(t *Tile) {
			t.ForEachWatcher(func(sub Subscriber) {
				sub.NotifyObjectsUpdated([]*model.Object{loc.obj})
			})
		})
		loc.obj.Fields.ClearChanges()
	}
}

func anyDirty(obj *model.Object) bool {
	for i := 0; i < obj.Fields.Len(); i++ {
		if obj.Fields.IsDirty(i) {
			return true
		}
	}
	return false
}

// ObjectCount reports how many objects the instance currently owns.
func (w *WorldInstance) ObjectCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}
