package model

// Creature field ids, appended after Unit (C2).
const (
	FieldLootTableID = unitFieldCount + 0

	creatureFieldCount = unitFieldCount + 1
)

// AIStateHandle is an opaque reference into the AI subsystem's state table;
// model does not interpret it, only carries it alongside the creature.
type AIStateHandle uint32

// Creature adds a template reference, loot table reference, and AI state
// handle on top of Unit (C2). The template reference reuses the base
// Object's Entry field — creature templates and item templates share the
// same 24-bit entry catalog per the GUID layout.
type Creature struct {
	Unit

	aiState AIStateHandle
}

// NewCreature allocates a Creature-sized Unit for the given template entry.
func NewCreature(low uint32, entry uint32, scale float32) *Creature {
	guid := NewGUID(KindCreature, entry, low)
	return &Creature{Unit: NewUnit(guid, scale, creatureFieldCount)}
}

func (c *Creature) LootTableID() uint32     { return c.Fields.GetUint32(FieldLootTableID) }
func (c *Creature) SetLootTableID(v uint32) { c.Fields.SetUint32(FieldLootTableID, v) }

func (c *Creature) AIState() AIStateHandle     { return c.aiState }
func (c *Creature) SetAIState(h AIStateHandle) { c.aiState = h }
