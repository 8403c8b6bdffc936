package model

import "sync"

// Player field ids, appended after Unit (C2).
const (
	FieldXP         = unitFieldCount + 0
	FieldNextLvlXP  = unitFieldCount + 1
	FieldClass      = unitFieldCount + 2
	FieldRace       = unitFieldCount + 3
	FieldGender     = unitFieldCount + 4

	playerFieldCount = unitFieldCount + 5
)

// BuybackSlotCount is the number of buyback ring entries a Player carries
// (C6's buyback ring).
const BuybackSlotCount = 12

// Player adds XP/next-level XP, class/race/gender, an inventory attachment,
// known spells, and buyback slots on top of Unit (C2).
type Player struct {
	Unit

	mu        sync.RWMutex
	name      string
	Inventory *Inventory
	spells    map[uint32]struct{}
}

// NewPlayer allocates a Player-sized Unit for the given character low id
// and name. The caller attaches an Inventory afterward (C6 construction
// needs the Player's GUID as owner).
func NewPlayer(low uint32, name string, class, race, gender uint32) *Player {
	guid := NewGUID(KindPlayer, 0, low)
	p := &Player{
		Unit:   NewUnit(guid, 1.0, playerFieldCount),
		name:   name,
		spells: make(map[uint32]struct{}),
	}
	p.Fields.SetUint32(FieldClass, class)
	p.Fields.SetUint32(FieldRace, race)
	p.Fields.SetUint32(FieldGender, gender)
	return p
}

func (p *Player) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

func (p *Player) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

func (p *Player) XP() uint32        { return p.Fields.GetUint32(FieldXP) }
func (p *Player) NextLevelXP() uint32 { return p.Fields.GetUint32(FieldNextLvlXP) }
func (p *Player) SetNextLevelXP(v uint32) { p.Fields.SetUint32(FieldNextLvlXP, v) }

// AddXP credits amount XP, returning the number of level-ups it produced.
// Overflow past NextLevelXP rolls into the new level's budget, matching the
// teacher's kill-credit-then-level-check ordering in game/combat.
func (p *Player) AddXP(amount uint32, nextLevelXPFor func(level uint32) uint32) (levelsGained int) {
	xp := p.XP() + amount
	next := p.NextLevelXP()
	for next > 0 && xp >= next {
		xp -= next
		p.SetLevel(p.Level() + 1)
		levelsGained++
		next = nextLevelXPFor(p.Level())
		p.SetNextLevelXP(next)
	}
	p.Fields.SetUint32(FieldXP, xp)
	return levelsGained
}

func (p *Player) Class() uint32  { return p.Fields.GetUint32(FieldClass) }
func (p *Player) Race() uint32   { return p.Fields.GetUint32(FieldRace) }
func (p *Player) Gender() uint32 { return p.Fields.GetUint32(FieldGender) }

// KnowsSpell reports whether entry is in the player's known-spell set.
func (p *Player) KnowsSpell(entry uint32) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.spells[entry]
	return ok
}

// LearnSpell adds entry to the known-spell set, returning false if already
// known.
func (p *Player) LearnSpell(entry uint32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.spells[entry]; ok {
		return false
	}
	p.spells[entry] = struct{}{}
	return true
}

// Spells returns a snapshot of every known spell entry.
func (p *Player) Spells() []uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]uint32, 0, len(p.spells))
	for entry := range p.spells {
		out = append(out, entry)
	}
	return out
}
