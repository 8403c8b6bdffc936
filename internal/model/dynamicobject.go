package model

// DynamicObject field ids, appended after the base Object layout (C2).
const (
	FieldCaster   = baseFieldCount + 0 // uint64, cells +0,+1
	FieldDuration = baseFieldCount + 2

	dynamicObjectFieldCount = baseFieldCount + 3
)

// DynamicObject represents a transient world effect — a ground-targeted
// area, a persistent visual, anything spawned by a spell effect that is
// neither a Unit nor an Item (C2).
type DynamicObject struct {
	Object
}

// NewDynamicObject allocates a transient effect owned by caster, lasting
// durationMs milliseconds.
func NewDynamicObject(low uint32, entry uint32, caster GUID, durationMs uint32) *DynamicObject {
	guid := NewGUID(KindDynamicObject, entry, low)
	d := &DynamicObject{Object: NewObject(guid, KindDynamicObject, 1.0, dynamicObjectFieldCount)}
	d.Fields.SetUint64(FieldCaster, uint64(caster))
	d.Fields.SetUint32(FieldDuration, durationMs)
	return d
}

func (d *DynamicObject) Caster() GUID      { return GUID(d.Fields.GetUint64(FieldCaster)) }
func (d *DynamicObject) Duration() uint32  { return d.Fields.GetUint32(FieldDuration) }
func (d *DynamicObject) SetDuration(v uint32) { d.Fields.SetUint32(FieldDuration, v) }
