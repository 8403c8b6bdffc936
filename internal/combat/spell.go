// Package combat implements C7: the cast pipeline, damage application, the
// attack-swing loop, and XP-on-kill-credit. Hooks are injected rather than
// imported directly, the way internal/world's TickHooks and the teacher's
// game/skill/cast_manager.go take sendPacketFunc/broadcastFunc fields, to
// avoid an import cycle with the realm session package.
package combat

import "time"

// DefaultMeleeRange is the fallback attack range for a unit with no ranged
// weapon modeled, grounded on the teacher's DefaultMeleeRange constant.
const DefaultMeleeRange float32 = 40

// FacingTolerance is the maximum angular difference, in radians, between a
// caster's facing and the bearing to its target that still counts as
// "facing" the target for a facing-gated spell.
const FacingTolerance = 1.3 // ~75 degrees either side

// EffectKind names what a SpellEffect does when a cast finishes.
type EffectKind int

const (
	EffectDamage EffectKind = iota
	EffectHeal
	EffectApplyAura
	EffectLearnSpell
)

// SpellEffect is one entry in a SpellTemplate's effect list, applied in
// order when a scheduled cast fires.
type SpellEffect struct {
	Kind   EffectKind
	Amount int32  // EffectDamage/EffectHeal magnitude
	AuraID uint32 // EffectApplyAura
	Spell  uint32 // EffectLearnSpell entry
}

// SpellTemplate is the static data a cast is resolved against: the range,
// facing/line-of-sight requirements, resource cost, cooldown, and the
// effects a successful cast eventually applies.
type SpellTemplate struct {
	Entry          uint32
	Range          float32
	RequiresFacing bool
	RequiresLOS    bool
	ResourceCost   int32
	Cooldown       time.Duration
	Effects        []SpellEffect
}
