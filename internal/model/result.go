package model

// Result is a domain-failure result code (C6/C4 error taxonomy, spec §7).
// Result values are never converted to/from other enums — callers compare
// against the named constants.
type Result int32

const (
	ResultOk Result = iota
	ResultCantCarryMore
	ResultInventoryFull
	ResultItemNotFound
	ResultInvalidSlot
	ResultBagNotEmpty
	ResultWrongItemType
	ResultSlotOccupied
	ResultDualWieldRequired
	ResultQuiverAlreadyEquipped
	ResultOwnerNotAlive
	ResultEquipChangeDuringCombat
	ResultOutOfRange
	ResultWrongFacing
	ResultNoLineOfSight
	ResultNoTarget
	ResultCasterBusy
	ResultOnCooldown
	ResultInsufficientResource
	ResultImmune
)

func (r Result) String() string {
	switch r {
	case ResultOk:
		return "Ok"
	case ResultCantCarryMore:
		return "CantCarryMore"
	case ResultInventoryFull:
		return "InventoryFull"
	case ResultItemNotFound:
		return "ItemNotFound"
	case ResultInvalidSlot:
		return "InvalidSlot"
	case ResultBagNotEmpty:
		return "BagNotEmpty"
	case ResultWrongItemType:
		return "WrongItemType"
	case ResultSlotOccupied:
		return "SlotOccupied"
	case ResultDualWieldRequired:
		return "DualWieldRequired"
	case ResultQuiverAlreadyEquipped:
		return "QuiverAlreadyEquipped"
	case ResultOwnerNotAlive:
		return "OwnerNotAlive"
	case ResultEquipChangeDuringCombat:
		return "EquipChangeDuringCombat"
	case ResultOutOfRange:
		return "OutOfRange"
	case ResultWrongFacing:
		return "WrongFacing"
	case ResultNoLineOfSight:
		return "NoLineOfSight"
	case ResultNoTarget:
		return "NoTarget"
	case ResultCasterBusy:
		return "CasterBusy"
	case ResultOnCooldown:
		return "OnCooldown"
	case ResultInsufficientResource:
		return "InsufficientResource"
	case ResultImmune:
		return "Immune"
	default:
		return "Result(unknown)"
	}
}
