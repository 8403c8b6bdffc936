// Package world implements the Visibility Grid (C3), World Instance (C5),
// Tile Subscriber/Replication grid side (C8), and World Instance Manager
// (C10) — the server-side tick loop, spatial index, and per-instance object
// table the realm proxy (internal/proxy, internal/realm) drives.
package world

import (
	"github.com/forgeward/realmcore/internal/model"
)

// TileCoord is a tile's integer lattice coordinate.
type TileCoord struct {
	X, Z int32
}

// Subscriber is a C8 tile watcher — a Player's session, in practice. The
// grid calls these when an object enters, changes, or leaves the
// subscriber's visible neighborhood.
type Subscriber interface {
	WatcherGUID() model.GUID
	NotifyObjectsSpawned(objs []*model.Object)
	NotifyObjectsUpdated(objs []*model.Object)
	NotifyObjectsDespawned(guids []model.GUID)
	SendPacket(data []byte) error
}

// guidSet is an insertion-ordered set of GUIDs with O(1) membership and
// removal, satisfying C3's "watcher membership is an ordered set" invariant
// — a plain map alone does not preserve order, and the teacher's sync.Map
// equivalent (internal/world/region.go's visibleObjects) is explicitly
// unordered, so this is a deliberate departure from the teacher's
// concurrency primitive to satisfy the spec invariant.
type guidSet struct {
	order []model.GUID
	index map[model.GUID]int
}

func newGUIDSet() *guidSet {
	return &guidSet{index: make(map[model.GUID]int)}
}

func (s *guidSet) Add(g model.GUID) bool {
	if _, ok := s.index[g]; ok {
		return false
	}
	s.index[g] = len(s.order)
	s.order = append(s.order, g)
	return true
}

func (s *guidSet) Remove(g model.GUID) bool {
	i, ok := s.index[g]
	if !ok {
		return false
	}
	last := len(s.order) - 1
	moved := s.order[last]
	s.order[i] = moved
	s.index[moved] = i
	s.order = s.order[:last]
	delete(s.index, g)
	return true
}

func (s *guidSet) Contains(g model.GUID) bool {
	_, ok := s.index[g]
	return ok
}

func (s *guidSet) Len() int { return len(s.order) }

func (s *guidSet) ForEach(f func(model.GUID)) {
	for _, g := range s.order {
		f(g)
	}
}

// watcherSet is the ordered-set analog for Subscribers, keyed by watcher
// GUID.
type watcherSet struct {
	order []Subscriber
	index map[model.GUID]int
}

func newWatcherSet() *watcherSet {
	return &watcherSet{index: make(map[model.GUID]int)}
}

func (s *watcherSet) Add(w Subscriber) bool {
	g := w.WatcherGUID()
	if _, ok := s.index[g]; ok {
		return false
	}
	s.index[g] = len(s.order)
	s.order = append(s.order, w)
	return true
}

func (s *watcherSet) Remove(g model.GUID) bool {
	i, ok := s.index[g]
	if !ok {
		return false
	}
	last := len(s.order) - 1
	moved := s.order[last]
	s.order[i] = moved
	s.index[moved.WatcherGUID()] = i
	s.order = s.order[:last]
	delete(s.index, g)
	return true
}

func (s *watcherSet) Len() int { return len(s.order) }

func (s *watcherSet) ForEach(f func(Subscriber)) {
	for _, w := range s.order {
		f(w)
	}
}

// Tile is a Visibility Tile (C3): a lattice cell holding the set of objects
// currently located in it and the ordered set of subscribers watching it.
type Tile struct {
	Coord    TileCoord
	objects  map[model.GUID]*model.Object
	watchers *watcherSet
}

func newTile(coord TileCoord) *Tile {
	return &Tile{
		Coord:    coord,
		objects:  make(map[model.GUID]*model.Object),
		watchers: newWatcherSet(),
	}
}

func (t *Tile) addObject(obj *model.Object) {
	t.objects[obj.GUID()] = obj
}

func (t *Tile) removeObject(guid model.GUID) {
	delete(t.objects, guid)
}

// ForEachObject visits every object currently located in the tile.
func (t *Tile) ForEachObject(f func(*model.Object)) {
	for _, o := range t.objects {
		f(o)
	}
}

// ForEachWatcher visits every subscriber currently watching the tile, in
// registration order.
func (t *Tile) ForEachWatcher(f func(Subscriber)) {
	t.watchers.ForEach(f)
}

func (t *Tile) WatcherCount() int { return t.watchers.Len() }
