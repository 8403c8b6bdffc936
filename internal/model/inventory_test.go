package model

import (
	"testing"
	"time"
)

func newLowGen() func() uint32 {
	var n uint32
	return func() uint32 {
		n++
		return n
	}
}

func TestCreateItemsFillsEmptySlotsThenNewStacks(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 57, MaxStack: 100, MaxCount: 0}

	created, res := inv.CreateItems(tmpl, 250, newLowGen())
	if res != ResultOk {
		t.Fatalf("CreateItems result = %v, want Ok", res)
	}
	if len(created) != 3 {
		t.Fatalf("created %d items, want 3 (100+100+50)", len(created))
	}
	if inv.EntryCount(57) != 250 {
		t.Fatalf("EntryCount = %d, want 250", inv.EntryCount(57))
	}
}

func TestCreateItemsTopsUpExistingStackBeforeNewSlots(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 57, MaxStack: 100, MaxCount: 0}
	gen := newLowGen()

	inv.CreateItems(tmpl, 40, gen)
	freeBefore := inv.FreeSlots()

	created, res := inv.CreateItems(tmpl, 30, gen)
	if res != ResultOk {
		t.Fatalf("CreateItems result = %v, want Ok", res)
	}
	if len(created) != 0 {
		t.Fatalf("created %d new items, want 0 (should top up existing stack)", len(created))
	}
	if inv.FreeSlots() != freeBefore {
		t.Fatalf("FreeSlots changed from %d to %d; top-up must not consume a slot", freeBefore, inv.FreeSlots())
	}
	if inv.EntryCount(57) != 70 {
		t.Fatalf("EntryCount = %d, want 70", inv.EntryCount(57))
	}
}

func TestCreateItemsRejectsOverMaxCount(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 1, MaxStack: 20, MaxCount: 20}

	_, res := inv.CreateItems(tmpl, 21, newLowGen())
	if res != ResultCantCarryMore {
		t.Fatalf("result = %v, want CantCarryMore", res)
	}
}

func TestCreateItemsRejectsWhenPackFull(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 1, MaxStack: 1, MaxCount: 0}
	gen := newLowGen()

	capacity := int32(PackEnd - PackStart)
	if _, res := inv.CreateItems(tmpl, capacity, gen); res != ResultOk {
		t.Fatalf("filling exactly to capacity: result = %v, want Ok", res)
	}
	if _, res := inv.CreateItems(tmpl, 1, gen); res != ResultInventoryFull {
		t.Fatalf("over-capacity result = %v, want InventoryFull", res)
	}
}

func TestCreateItemsBindsOnPickup(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 1, MaxStack: 10, BindOnPickup: true}

	created, _ := inv.CreateItems(tmpl, 5, newLowGen())
	if len(created) != 1 || !created[0].IsBound() {
		t.Fatalf("bind-on-pickup item should be bound at creation")
	}
}

func TestRemoveAllStacksClearsSlot(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 1, MaxStack: 10}
	inv.CreateItems(tmpl, 5, newLowGen())

	addr := NewSlotAddress(BodyBag, PackStart)
	if res := inv.Remove(addr, 0, false, time.Now()); res != ResultOk {
		t.Fatalf("Remove result = %v, want Ok", res)
	}
	if inv.GetItem(addr) != nil {
		t.Fatalf("slot should be empty after removing all stacks")
	}
	if inv.EntryCount(1) != 0 {
		t.Fatalf("EntryCount = %d, want 0", inv.EntryCount(1))
	}
}

func TestRemoveSoldPushesBuybackRing(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 1, MaxStack: 10}
	inv.CreateItems(tmpl, 5, newLowGen())

	addr := NewSlotAddress(BodyBag, PackStart)
	now := time.Now()
	if res := inv.Remove(addr, 0, true, now); res != ResultOk {
		t.Fatalf("Remove result = %v, want Ok", res)
	}
	entry := inv.Buyback(0)
	if entry == nil || entry.Item.GUID().Entry() != 1 {
		t.Fatalf("buyback ring head should hold the sold item")
	}
}

func TestSwapMergesStacksOfSameEntry(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	tmpl := &ItemTemplate{Entry: 1, MaxStack: 10}
	gen := newLowGen()

	addrA := NewSlotAddress(BodyBag, PackStart)
	addrB := NewSlotAddress(BodyBag, PackStart+1)

	inv.CreateItems(tmpl, 3, gen)
	itemA := inv.GetItem(addrA)

	// Recreate a controlled scenario directly.
	inv.body[PackStart] = itemA
	itemB := NewItem(gen(), 1, inv.owner)
	itemB.SetStackCount(8)
	inv.body[PackStart+1] = itemB

	res := inv.Swap(addrA, addrB, tmpl, tmpl, true, false)
	if res != ResultOk {
		t.Fatalf("Swap result = %v, want Ok", res)
	}
	if left := inv.GetItem(addrA); left == nil || left.StackCount() != 1 {
		t.Fatalf("source slot should keep the 1 unit that did not fit under MaxStack")
	}
	if inv.GetItem(addrB).StackCount() != 10 {
		t.Fatalf("dest stack = %d, want 10 (capped at MaxStack)", inv.GetItem(addrB).StackCount())
	}
}

func TestSwapRejectsWhenOwnerDead(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	addrA := NewSlotAddress(BodyBag, PackStart)
	addrB := NewSlotAddress(BodyBag, PackStart+1)

	if res := inv.Swap(addrA, addrB, nil, nil, false, false); res != ResultOwnerNotAlive {
		t.Fatalf("result = %v, want OwnerNotAlive", res)
	}
}

func TestIsValidSlotEnforcesEquipmentType(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	helm := &ItemTemplate{Entry: 1, InvType: InvTypeHead}
	sword := &ItemTemplate{Entry: 2, InvType: InvTypeWeaponMainHand}

	if res := inv.IsValidSlot(NewSlotAddress(BodyBag, SlotHead), helm); res != ResultOk {
		t.Fatalf("helm in head slot: result = %v, want Ok", res)
	}
	if res := inv.IsValidSlot(NewSlotAddress(BodyBag, SlotHead), sword); res != ResultWrongItemType {
		t.Fatalf("sword in head slot: result = %v, want WrongItemType", res)
	}
}

func TestNewInventoryFreeSlotsExcludesEquipmentAndBagBar(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	want := PackEnd - PackStart
	if got := inv.FreeSlots(); got != want {
		t.Fatalf("FreeSlots = %d, want %d (pack only, equipment and bag-bar excluded)", got, want)
	}
}

// TestSwapEquipsTwoHandedDisplacesOffhand covers spec scenario "Main=1H
// sword, Off=shield ... Equip 2H axe ... shield stored in pack": equipping a
// two-handed weapon to the main hand must move an occupied off-hand item
// into a free pack slot rather than reject or clobber it.
func TestSwapEquipsTwoHandedDisplacesOffhand(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	gen := newLowGen()

	shield := NewItem(gen(), 10, inv.owner)
	shield.SetInvType(InvTypeShield)
	inv.body[SlotOffHand] = shield

	axeTmpl := &ItemTemplate{Entry: 20, InvType: InvTypeWeaponTwoHand, MaxStack: 1}
	created, res := inv.CreateItems(axeTmpl, 1, gen)
	if res != ResultOk || len(created) != 1 {
		t.Fatalf("CreateItems result = %v, want Ok with 1 item", res)
	}
	axe := created[0]
	axeAddr := NewSlotAddress(BodyBag, PackStart)
	freeBefore := inv.FreeSlots()

	res = inv.Swap(axeAddr, NewSlotAddress(BodyBag, SlotMainHand), nil, axeTmpl, true, false)
	if res != ResultOk {
		t.Fatalf("Swap result = %v, want Ok", res)
	}
	if inv.body[SlotMainHand] != axe {
		t.Fatalf("axe should now occupy the main hand")
	}
	if inv.body[SlotOffHand] != nil {
		t.Fatalf("off hand should be empty after a two-handed weapon displaces it")
	}
	if inv.body[PackStart+1] != shield {
		t.Fatalf("displaced shield should land in the freed pack slot")
	}
	if inv.FreeSlots() != freeBefore {
		t.Fatalf("FreeSlots = %d, want %d (axe leaving the pack offsets the shield entering it)", inv.FreeSlots(), freeBefore)
	}
}

// TestSwapEquipsTwoHandedFailsWhenPackFull covers the boundary case
// "Two-handed equip with non-empty offhand and full pack => InventoryFull".
func TestSwapEquipsTwoHandedFailsWhenPackFull(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	gen := newLowGen()

	shield := NewItem(gen(), 10, inv.owner)
	shield.SetInvType(InvTypeShield)
	inv.body[SlotOffHand] = shield

	for slot := PackStart; slot < PackEnd; slot++ {
		inv.body[slot] = NewItem(gen(), 1, inv.owner)
	}
	inv.freeSlots = 0

	axeTmpl := &ItemTemplate{Entry: 20, InvType: InvTypeWeaponTwoHand}
	axe := NewItem(gen(), 20, inv.owner)
	addrA := NewSlotAddress(BodyBag, KeyRingStart)
	inv.body[KeyRingStart] = axe

	res := inv.Swap(addrA, NewSlotAddress(BodyBag, SlotMainHand), nil, axeTmpl, true, false)
	if res != ResultInventoryFull {
		t.Fatalf("Swap result = %v, want InventoryFull", res)
	}
	if inv.body[SlotMainHand] != nil {
		t.Fatalf("main hand should remain empty when the offhand can't be displaced")
	}
}

func TestIsValidSlotOffhandRequiresDualWieldOrShield(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))

	plainOffhand := &ItemTemplate{Entry: 1, InvType: InvTypeWeaponOffHand}
	if res := inv.IsValidSlot(NewSlotAddress(BodyBag, SlotOffHand), plainOffhand); res != ResultDualWieldRequired {
		t.Fatalf("non-dual-wieldable offhand weapon: result = %v, want DualWieldRequired", res)
	}

	dualWieldable := &ItemTemplate{Entry: 2, InvType: InvTypeWeaponOffHand, DualWieldable: true}
	if res := inv.IsValidSlot(NewSlotAddress(BodyBag, SlotOffHand), dualWieldable); res != ResultOk {
		t.Fatalf("dual-wieldable offhand weapon: result = %v, want Ok", res)
	}

	shield := &ItemTemplate{Entry: 3, InvType: InvTypeShield}
	if res := inv.IsValidSlot(NewSlotAddress(BodyBag, SlotOffHand), shield); res != ResultOk {
		t.Fatalf("shield in offhand: result = %v, want Ok", res)
	}
}

func TestIsValidSlotOffhandBlockedByTwoHandedMainHand(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	axe := NewItem(newLowGen()(), 20, inv.owner)
	axe.SetInvType(InvTypeWeaponTwoHand)
	inv.body[SlotMainHand] = axe

	shield := &ItemTemplate{Entry: 3, InvType: InvTypeShield}
	if res := inv.IsValidSlot(NewSlotAddress(BodyBag, SlotOffHand), shield); res != ResultDualWieldRequired {
		t.Fatalf("offhand with two-handed main hand: result = %v, want DualWieldRequired", res)
	}
}

func TestEquipBagRejectsOccupiedBar(t *testing.T) {
	inv := NewInventory(NewGUID(KindPlayer, 0, 1))
	bagA := NewBag(1, 100, inv.owner, 8)
	bagB := NewBag(2, 101, inv.owner, 8)

	if res := inv.EquipBag(0, bagA, false); res != ResultOk {
		t.Fatalf("first EquipBag result = %v, want Ok", res)
	}
	if res := inv.EquipBag(0, bagB, false); res != ResultSlotOccupied {
		t.Fatalf("second EquipBag on same bar: result = %v, want SlotOccupied", res)
	}
}
