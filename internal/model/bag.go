package model

// Bag field ids, appended after Item (C2).
const (
	FieldNumSlots = itemFieldCount + 0

	bagFieldCount = itemFieldCount + 1
)

// Bag is an Item with a slot array and NumSlots (C2). The slot array itself
// is a Go-level slice rather than FieldMap cells — a variable-length
// collection does not fit the fixed-cell-per-id contract C1 guarantees for
// scalar fields, so Bag keeps its capacity in FieldNumSlots and the GUID
// held in each sub-slot in that slice.
type Bag struct {
	Item

	slots []GUID
}

// NewBag allocates a Bag with numSlots sub-slots, owned by owner.
func NewBag(low uint32, entry uint32, owner GUID, numSlots int) *Bag {
	guid := NewGUID(KindBag, entry, low)
	b := &Bag{Item: Item{Object: NewObject(guid, KindBag, 1.0, bagFieldCount)}}
	b.Fields.SetUint32(FieldNumSlots, uint32(numSlots))
	b.Fields.SetUint64(FieldItemOwner, uint64(owner))
	b.Fields.SetInt32(FieldStackCount, 1)
	b.slots = make([]GUID, numSlots)
	return b
}

func (b *Bag) NumSlots() int { return int(b.Fields.GetUint32(FieldNumSlots)) }

// SlotItem returns the GUID occupying sub-slot idx, or GUID(0) if empty.
func (b *Bag) SlotItem(idx int) GUID {
	if idx < 0 || idx >= len(b.slots) {
		return GUID(0)
	}
	return b.slots[idx]
}

// SetSlotItem places (or clears, with GUID(0)) an item GUID at sub-slot idx.
func (b *Bag) SetSlotItem(idx int, g GUID) {
	if idx < 0 || idx >= len(b.slots) {
		return
	}
	b.slots[idx] = g
}

// IsEmpty reports whether every sub-slot is unoccupied — a Bag may only be
// moved (C6 swap rule) while this holds, except when swapping with another
// empty bag.
func (b *Bag) IsEmpty() bool {
	for _, g := range b.slots {
		if !g.IsNone() {
			return false
		}
	}
	return true
}
