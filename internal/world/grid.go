package world

import (
	"sync"

	"github.com/forgeward/realmcore/internal/model"
)

// DefaultSightRadius is the design default sight radius (C3): a (2R+1)²
// window around a watcher's tile is visible.
const DefaultSightRadius = 2

// Grid is the square lattice of Tiles sized to the world (C3). Grounded on
// the teacher's region lattice (internal/world/grid.go, region.go) —
// generalized from the teacher's fixed 2048-unit/3×3-window design to a
// parametrizable tile size and (2R+1)² window.
type Grid struct {
	mu          sync.RWMutex
	tileSize    float32
	sightRadius int32
	tiles       map[TileCoord]*Tile
}

// NewGrid allocates an empty Grid. Tiles are created on demand by
// RequireTile.
func NewGrid(tileSize float32, sightRadius int) *Grid {
	if sightRadius <= 0 {
		sightRadius = DefaultSightRadius
	}
	return &Grid{
		tileSize:    tileSize,
		sightRadius: int32(sightRadius),
		tiles:       make(map[TileCoord]*Tile),
	}
}

// GetTilePosition floors a world position to its lattice coordinate.
func (g *Grid) GetTilePosition(pos model.Vector3) TileCoord {
	return TileCoord{
		X: floorDiv(pos.X, g.tileSize),
		Z: floorDiv(pos.Z, g.tileSize),
	}
}

func floorDiv(v, size float32) int32 {
	q := v / size
	i := int32(q)
	if q < 0 && float32(i) != q {
		i--
	}
	return i
}

// RequireTile returns the tile at (ix,iz), creating it on first access.
func (g *Grid) RequireTile(ix, iz int32) *Tile {
	coord := TileCoord{X: ix, Z: iz}
	g.mu.RLock()
	t, ok := g.tiles[coord]
	g.mu.RUnlock()
	if ok {
		return t
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tiles[coord]; ok {
		return t
	}
	t = newTile(coord)
	g.tiles[coord] = t
	return t
}

// ForEachTileInSight visits the (2R+1)² window of tiles around center,
// creating tiles on demand.
func (g *Grid) ForEachTileInSight(center TileCoord, f func(*Tile)) {
	r := g.sightRadius
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			f(g.RequireTile(center.X+dx, center.Z+dz))
		}
	}
}

// ForEachTileInSightWithout visits tiles visible from a but not from b —
// used on tile-change to compute spawn/despawn deltas (C3).
func (g *Grid) ForEachTileInSightWithout(a, b TileCoord, f func(*Tile)) {
	r := g.sightRadius
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			coord := TileCoord{X: a.X + dx, Z: a.Z + dz}
			if inWindow(coord, b, r) {
				continue
			}
			f(g.RequireTile(coord.X, coord.Z))
		}
	}
}

func inWindow(coord, center TileCoord, r int32) bool {
	dx := coord.X - center.X
	if dx < 0 {
		dx = -dx
	}
	dz := coord.Z - center.Z
	if dz < 0 {
		dz = -dz
	}
	return dx <= r && dz <= r
}

// SpawnObject registers obj in the tile at coord and notifies every
// watcher in its sight window.
func (g *Grid) SpawnObject(obj *model.Object, coord TileCoord) {
	g.RequireTile(coord.X, coord.Z).addObject(obj)
	g.ForEachTileInSight(coord, func(t *Tile) {
		t.ForEachWatcher(func(w Subscriber) {
			w.NotifyObjectsSpawned([]*model.Object{obj})
		})
	})
}

// DespawnObject removes obj from the tile at coord and notifies every
// watcher in its sight window.
func (g *Grid) DespawnObject(obj *model.Object, coord TileCoord) {
	g.RequireTile(coord.X, coord.Z).removeObject(obj.GUID())
	g.ForEachTileInSight(coord, func(t *Tile) {
		t.ForEachWatcher(func(w Subscriber) {
			w.NotifyObjectsDespawned([]model.GUID{obj.GUID()})
		})
	})
}

// MoveObject atomically relocates obj from old to new tile coordinates and
// fires the C3 tile-change signal: watchers who can see old but not new are
// told the object despawned; watchers who can see new but not old are told
// it spawned. Watchers who can see both get nothing here — their periodic
// field-delta flush (C8) carries the position update.
func (g *Grid) MoveObject(obj *model.Object, old, new TileCoord) {
	if old == new {
		return
	}
	g.RequireTile(old.X, old.Z).removeObject(obj.GUID())
	g.RequireTile(new.X, new.Z).addObject(obj)

	g.ForEachTileInSightWithout(old, new, func(t *Tile) {
		t.ForEachWatcher(func(w Subscriber) {
			w.NotifyObjectsDespawned([]model.GUID{obj.GUID()})
		})
	})
	g.ForEachTileInSightWithout(new, old, func(t *Tile) {
		t.ForEachWatcher(func(w Subscriber) {
			w.NotifyObjectsSpawned([]*model.Object{obj})
		})
	})
}

// RegisterWatcher adds sub as a watcher of coord's tile and sends it an
// initial spawn batch for everything already visible.
func (g *Grid) RegisterWatcher(sub Subscriber, coord TileCoord) {
	g.RequireTile(coord.X, coord.Z).watchers.Add(sub)

	var initial []*model.Object
	g.ForEachTileInSight(coord, func(t *Tile) {
		t.ForEachObject(func(o *model.Object) {
			initial = append(initial, o)
		})
	})
	if len(initial) > 0 {
		sub.NotifyObjectsSpawned(initial)
	}
}

// UnregisterWatcher removes sub from coord's tile watcher set.
func (g *Grid) UnregisterWatcher(sub Subscriber, coord TileCoord) {
	g.RequireTile(coord.X, coord.Z).watchers.Remove(sub.WatcherGUID())
}

// MoveWatcher relocates a watcher's own tile membership, computing the
// symmetric-difference spawn/despawn batch for the objects now entering or
// leaving its sight window (C3/C8).
func (g *Grid) MoveWatcher(sub Subscriber, old, new TileCoord) {
	if old == new {
		return
	}
	g.RequireTile(old.X, old.Z).watchers.Remove(sub.WatcherGUID())
	g.RequireTile(new.X, new.Z).watchers.Add(sub)

	var despawn []model.GUID
	g.ForEachTileInSightWithout(old, new, func(t *Tile) {
		t.ForEachObject(func(o *model.Object) {
			despawn = append(despawn, o.GUID())
		})
	})
	var spawn []*model.Object
	g.ForEachTileInSightWithout(new, old, func(t *Tile) {
		t.ForEachObject(func(o *model.Object) {
			spawn = append(spawn, o)
		})
	})
	if len(despawn) > 0 {
		sub.NotifyObjectsDespawned(despawn)
	}
	if len(spawn) > 0 {
		sub.NotifyObjectsSpawned(spawn)
	}
}

// TileCount reports how many tiles have been materialized (test/metrics
// helper).
func (g *Grid) TileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tiles)
}
