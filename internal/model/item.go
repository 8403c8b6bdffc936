package model

// Item field ids, appended after the base Object layout (C2). Item extends
// Object directly — items are not Units, they have no health or movement.
const (
	FieldStackCount = baseFieldCount + 0
	FieldDurability = baseFieldCount + 1
	FieldItemOwner  = baseFieldCount + 2 // uint64, cells +2,+3
	FieldContained  = baseFieldCount + 4 // uint64, cells +4,+5
	FieldItemFlags  = baseFieldCount + 6
	FieldInvType    = baseFieldCount + 7 // ItemInventoryType, denormalized at equip time

	itemFieldCount = baseFieldCount + 8
)

// Item flag bits stored in FieldItemFlags.
const (
	ItemFlagBound uint32 = 1 << iota
)

// Item adds stack count, durability, owner, container, and bound-flag state
// on top of Object (C2).
type Item struct {
	Object
}

// NewItem allocates an Item for the given template entry and low id, owned
// by owner and not yet placed in any container.
func NewItem(low uint32, entry uint32, owner GUID) *Item {
	guid := NewGUID(KindItem, entry, low)
	it := &Item{Object: NewObject(guid, KindItem, 1.0, itemFieldCount)}
	it.Fields.SetUint32(FieldStackCount, 1)
	it.Fields.SetUint64(FieldItemOwner, uint64(owner))
	return it
}

func (i *Item) StackCount() int32    { return i.Fields.GetInt32(FieldStackCount) }
func (i *Item) SetStackCount(v int32) {
	if v < 0 {
		v = 0
	}
	i.Fields.SetInt32(FieldStackCount, v)
}
func (i *Item) AddStackCount(delta int32) { i.SetStackCount(i.StackCount() + delta) }

func (i *Item) Durability() int32     { return i.Fields.GetInt32(FieldDurability) }
func (i *Item) SetDurability(v int32) { i.Fields.SetInt32(FieldDurability, v) }

func (i *Item) Owner() GUID       { return GUID(i.Fields.GetUint64(FieldItemOwner)) }
func (i *Item) SetOwner(g GUID)   { i.Fields.SetUint64(FieldItemOwner, uint64(g)) }

// Contained is the GUID of the Bag this item sits in, or 0 if it sits
// directly in the player's inventory.
func (i *Item) Contained() GUID     { return GUID(i.Fields.GetUint64(FieldContained)) }
func (i *Item) SetContained(g GUID) { i.Fields.SetUint64(FieldContained, uint64(g)) }

// InvType is the template's inventory-type tag, cached on the item itself
// so equip-slot validation can inspect an already-equipped item without a
// template lookup (see Inventory.IsValidSlot's main-hand/off-hand checks).
func (i *Item) InvType() ItemInventoryType {
	return ItemInventoryType(i.Fields.GetInt32(FieldInvType))
}
func (i *Item) SetInvType(t ItemInventoryType) { i.Fields.SetInt32(FieldInvType, int32(t)) }

func (i *Item) IsBound() bool { return i.Fields.HasFlag(FieldItemFlags, ItemFlagBound) }
func (i *Item) SetBound(v bool) {
	if v {
		i.Fields.AddFlag(FieldItemFlags, ItemFlagBound)
	} else {
		i.Fields.RemoveFlag(FieldItemFlags, ItemFlagBound)
	}
}
