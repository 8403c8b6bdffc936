package model

import "sync"

// Unit field ids, appended after the base Object layout (C2).
const (
	FieldHealth          = baseFieldCount + 0
	FieldMaxHealth       = baseFieldCount + 1
	FieldPower           = baseFieldCount + 2
	FieldMaxPower        = baseFieldCount + 3
	FieldLevel           = baseFieldCount + 4
	FieldFactionTemplate = baseFieldCount + 5
	FieldMovementFlags   = baseFieldCount + 6
	FieldTargetGuid      = baseFieldCount + 7 // uint64, cells +7,+8
	FieldStatStrength    = baseFieldCount + 9
	FieldStatAgility     = baseFieldCount + 10
	FieldStatStamina     = baseFieldCount + 11
	FieldStatIntellect   = baseFieldCount + 12
	FieldStatSpirit      = baseFieldCount + 13
	FieldCombatState     = baseFieldCount + 14

	unitFieldCount = baseFieldCount + 15
)

// CombatState flag bits stored in FieldCombatState.
const (
	CombatStateInCombat uint32 = 1 << iota
	CombatStateDead
)

// Unit adds health, power, level, faction, movement state, and combat
// state on top of Object (C2). Player and Creature embed Unit.
type Unit struct {
	Object

	mu       sync.RWMutex
	movement MovementInfo
	pending  *pendingQueue
}

// NewUnit allocates a Unit-sized FieldMap stamped with the given identity;
// all stat cells start at zero. cellCount lets a Player/Creature reserve extra cells
// for its own fields appended after unitFieldCount.
func NewUnit(guid GUID, scale float32, cellCount int) Unit {
	u := Unit{
		Object:  NewObject(guid, guid.Kind(), scale, cellCount),
		pending: newPendingQueue(),
	}
	return u
}

func (u *Unit) Health() int32    { return u.Fields.GetInt32(FieldHealth) }
func (u *Unit) MaxHealth() int32 { return u.Fields.GetInt32(FieldMaxHealth) }
func (u *Unit) Power() int32     { return u.Fields.GetInt32(FieldPower) }
func (u *Unit) MaxPower() int32  { return u.Fields.GetInt32(FieldMaxPower) }
func (u *Unit) Level() uint32    { return u.Fields.GetUint32(FieldLevel) }

func (u *Unit) SetMaxHealth(v int32) { u.Fields.SetInt32(FieldMaxHealth, v) }
func (u *Unit) SetMaxPower(v int32)  { u.Fields.SetInt32(FieldMaxPower, v) }
func (u *Unit) SetLevel(v uint32)    { u.Fields.SetUint32(FieldLevel, v) }

// SetHealth clamps to [0, MaxHealth] and flips the dead combat-state bit.
func (u *Unit) SetHealth(v int32) {
	if v < 0 {
		v = 0
	}
	if max := u.MaxHealth(); v > max {
		v = max
	}
	u.Fields.SetInt32(FieldHealth, v)
	if v == 0 {
		u.Fields.AddFlag(FieldCombatState, CombatStateDead)
	} else {
		u.Fields.RemoveFlag(FieldCombatState, CombatStateDead)
	}
}

// ApplyDamage subtracts amount from Health with underflow clamp, returning
// the actual amount absorbed by health (never more than current Health).
func (u *Unit) ApplyDamage(amount int32) int32 {
	if amount < 0 {
		amount = 0
	}
	cur := u.Health()
	dealt := amount
	if dealt > cur {
		dealt = cur
	}
	u.SetHealth(cur - dealt)
	return dealt
}

func (u *Unit) IsAlive() bool {
	return !u.Fields.HasFlag(FieldCombatState, CombatStateDead)
}

func (u *Unit) IsInCombat() bool {
	return u.Fields.HasFlag(FieldCombatState, CombatStateInCombat)
}

func (u *Unit) SetInCombat(v bool) {
	if v {
		u.Fields.AddFlag(FieldCombatState, CombatStateInCombat)
	} else {
		u.Fields.RemoveFlag(FieldCombatState, CombatStateInCombat)
	}
}

func (u *Unit) FactionTemplate() uint32     { return u.Fields.GetUint32(FieldFactionTemplate) }
func (u *Unit) SetFactionTemplate(v uint32) { u.Fields.SetUint32(FieldFactionTemplate, v) }

func (u *Unit) Target() GUID { return GUID(u.Fields.GetUint64(FieldTargetGuid)) }
func (u *Unit) SetTarget(g GUID) {
	u.Fields.SetUint64(FieldTargetGuid, uint64(g))
}
func (u *Unit) ClearTarget() { u.SetTarget(GUID(0)) }

// StatBlock is a snapshot of the five primary stats.
type StatBlock struct {
	Strength, Agility, Stamina, Intellect, Spirit int32
}

func (u *Unit) Stats() StatBlock {
	return StatBlock{
		Strength:  u.Fields.GetInt32(FieldStatStrength),
		Agility:   u.Fields.GetInt32(FieldStatAgility),
		Stamina:   u.Fields.GetInt32(FieldStatStamina),
		Intellect: u.Fields.GetInt32(FieldStatIntellect),
		Spirit:    u.Fields.GetInt32(FieldStatSpirit),
	}
}

func (u *Unit) SetStats(s StatBlock) {
	u.Fields.SetInt32(FieldStatStrength, s.Strength)
	u.Fields.SetInt32(FieldStatAgility, s.Agility)
	u.Fields.SetInt32(FieldStatStamina, s.Stamina)
	u.Fields.SetInt32(FieldStatIntellect, s.Intellect)
	u.Fields.SetInt32(FieldStatSpirit, s.Spirit)
}
