package model

import (
	"sync/atomic"

	"github.com/forgeward/realmcore/internal/fieldmap"
)

// Base Object field ids (C2): every variant's FieldMap starts with this
// layout. Field ids are monotonic and append-only — a later revision may
// add cells after baseFieldCount but must never renumber an existing id.
const (
	FieldGuid  = 0 // uint64, cells 0-1
	FieldEntry = 2
	FieldScale = 3 // float32
	FieldType  = 4 // ObjectKind type tag

	baseFieldCount = 5
)

// DespawnObserver is notified once, idempotently, when an Object despawns.
// The owning collection (C5's object table, a tile, an inventory) registers
// itself here instead of the object reaching back into a global singleton.
type DespawnObserver interface {
	OnDespawn(guid GUID)
}

// Object is the base of every Game Object variant (C2). Variants embed it
// and size its FieldMap for their own field table instead of inheriting
// fields — the tagged-variant composition called for in place of the
// teacher's (absent here) inheritance chain.
type Object struct {
	Fields *fieldmap.FieldMap

	despawned atomic.Bool
	observers []DespawnObserver
}

// NewObject allocates the base Object and stamps its identity cells.
func NewObject(guid GUID, kind ObjectKind, scale float32, cellCount int) Object {
	o := Object{Fields: fieldmap.NewFieldMap(cellCount)}
	o.Fields.SetUint64(FieldGuid, uint64(guid))
	o.Fields.SetUint32(FieldEntry, guid.Entry())
	o.Fields.SetFloat32(FieldScale, scale)
	o.Fields.SetUint32(FieldType, uint32(kind))
	return o
}

// GUID reads the object's identity.
func (o *Object) GUID() GUID {
	return GUID(o.Fields.GetUint64(FieldGuid))
}

// Kind reads the object's type tag.
func (o *Object) Kind() ObjectKind {
	return ObjectKind(o.Fields.GetUint32(FieldType))
}

// Scale reads the object's render/collision scale.
func (o *Object) Scale() float32 {
	return o.Fields.GetFloat32(FieldScale)
}

// SetScale writes the object's scale, dirtying the field for replication.
func (o *Object) SetScale(s float32) {
	o.Fields.SetFloat32(FieldScale, s)
}

// OnDespawned registers an observer to be notified exactly once when this
// object despawns. Registering after despawn fires immediately.
func (o *Object) OnDespawned(obs DespawnObserver) {
	if o.despawned.Load() {
		obs.OnDespawn(o.GUID())
		return
	}
	o.observers = append(o.observers, obs)
}

// Despawn marks the object despawned and notifies every registered
// observer exactly once. Safe to call multiple times; only the first call
// has any effect.
func (o *Object) Despawn() {
	if !o.despawned.CompareAndSwap(false, true) {
		return
	}
	guid := o.GUID()
	for _, obs := range o.observers {
		obs.OnDespawn(guid)
	}
}

// IsDespawned reports whether Despawn has already run.
func (o *Object) IsDespawned() bool {
	return o.despawned.Load()
}
