package combat

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/forgeward/realmcore/internal/model"
)

// Hooks are the callbacks Manager invokes instead of reaching into the
// realm/world packages directly. Any hook left nil is simply skipped.
type Hooks struct {
	// NonSpellDamageLog fires after melee damage is applied.
	NonSpellDamageLog func(attacker, victim model.GUID, amount int32)
	// SpellDamageLog fires after a spell's damage effect is applied.
	SpellDamageLog func(caster, victim model.GUID, entry uint32, amount int32)
	// XPLog fires once a kill is credited to a player.
	XPLog func(killer *model.Player, victim *model.Unit, awardedXP uint32)
	// ApplyAura is invoked for EffectApplyAura; aura bookkeeping itself is
	// out of scope here, the same way C7 only names "apply aura" as an
	// effect kind without specifying an aura subsystem.
	ApplyAura func(target *model.Unit, auraID uint32)
	// LineOfSight reports whether to is visible from from. Nil means every
	// cast passes the LOS gate — no geometry/raycasting subsystem is in
	// scope, so LOS is a pass-through hook a world package can wire to a
	// real occlusion check later.
	LineOfSight func(from, to model.Vector3) bool
	// BaseXPFor returns the XP a killer should be credited for killing
	// victim. Nil means kills award no XP.
	BaseXPFor func(victim *model.Unit) uint32
	// NextLevelXPFor returns the XP needed to advance past level, used by
	// Player.AddXP's level-up loop.
	NextLevelXPFor func(level uint32) uint32
	// ResolvePlayer resolves a killer Unit's GUID back to its owning
	// Player, since kill credit only applies to player killers. Nil means
	// no kills are ever credited (e.g. a creature-only test instance).
	ResolvePlayer func(model.GUID) (*model.Player, bool)
	// ResolveUnit resolves any combatant's GUID back to its live Unit, used
	// by the attack-swing loop to look up attacker/victim each tick.
	ResolveUnit func(model.GUID) (*model.Unit, bool)
	// SwingEvent fires when an attack swing cannot land a hit (out of
	// range, wrong facing, victim not alive). Consecutive identical events
	// for the same attacker are suppressed by Manager.
	SwingEvent func(attacker, victim model.GUID, kind SwingEventKind)
	// DamageFor computes a melee hit's damage. Nil uses DefaultDamageFormula.
	DamageFor func(attacker, victim *model.Unit) int32
}

type pendingCast struct {
	caster       *model.Unit
	casterPlayer *model.Player // non-nil when the caster is a player (EffectLearnSpell needs this)
	target       *model.Unit
	entry        uint32
	tmpl         *SpellTemplate
	fireAt       time.Time
}

// Manager runs the cast pipeline (validation + scheduling), the attack-swing
// loop, and damage/XP application for a single World Instance. It is driven
// by the instance's Tick via ExpireTimers, keeping cast resolution on the
// same single-threaded step as field-delta flush (C5).
type Manager struct {
	hooks Hooks

	mu        sync.Mutex
	cooldowns map[string]time.Time
	pending   []pendingCast

	attackers map[model.GUID]*attackState
}

// NewManager builds a Manager with the given injected hooks.
func NewManager(hooks Hooks) *Manager {
	return &Manager{
		hooks:     hooks,
		cooldowns: make(map[string]time.Time),
		attackers: make(map[model.GUID]*attackState),
	}
}

func cooldownKey(caster model.GUID, entry uint32) string {
	return fmt.Sprintf("%d_%d", caster, entry)
}

// CastSpell validates a cast attempt against tmpl and, on success, schedules
// its effects to fire castTime after now. Returns a Result describing the
// outcome; ResultOk means the cast was accepted and scheduled. casterPlayer
// is nil when a creature (not a player) is casting; it is only consulted
// for EffectLearnSpell, which only makes sense for players.
func (m *Manager) CastSpell(caster *model.Unit, casterPlayer *model.Player, target *model.Unit, tmpl *SpellTemplate, castTime time.Duration, now time.Time) model.Result {
	if !caster.IsAlive() {
		return model.ResultOwnerNotAlive
	}

	m.mu.Lock()
	if expiry, ok := m.cooldowns[cooldownKey(caster.GUID(), tmpl.Entry)]; ok && now.Before(expiry) {
		m.mu.Unlock()
		return model.ResultOnCooldown
	}
	for _, p := range m.pending {
		if p.caster.GUID() == caster.GUID() {
			m.mu.Unlock()
			return model.ResultCasterBusy
		}
	}
	m.mu.Unlock()

	needsTarget := tmpl.Range > 0 || tmpl.RequiresFacing || tmpl.RequiresLOS
	if needsTarget && target == nil {
		return model.ResultNoTarget
	}

	if target != nil {
		casterPos := caster.Movement().Position
		targetPos := target.Movement().Position

		if tmpl.Range > 0 && distanceSquared(casterPos, targetPos) > float64(tmpl.Range)*float64(tmpl.Range) {
			return model.ResultOutOfRange
		}
		if tmpl.RequiresFacing && !isFacing(casterPos, targetPos, caster.Movement().Facing) {
			return model.ResultWrongFacing
		}
		if tmpl.RequiresLOS && m.hooks.LineOfSight != nil && !m.hooks.LineOfSight(casterPos, targetPos) {
			return model.ResultNoLineOfSight
		}
	}

	if tmpl.ResourceCost > 0 && caster.Power() < tmpl.ResourceCost {
		return model.ResultInsufficientResource
	}

	if tmpl.ResourceCost > 0 {
		caster.Fields.SetInt32(model.FieldPower, caster.Power()-tmpl.ResourceCost)
	}
	if tmpl.Cooldown > 0 {
		m.mu.Lock()
		m.cooldowns[cooldownKey(caster.GUID(), tmpl.Entry)] = now.Add(tmpl.Cooldown)
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.pending = append(m.pending, pendingCast{
		caster:       caster,
		casterPlayer: casterPlayer,
		target:       target,
		entry:        tmpl.Entry,
		tmpl:         tmpl,
		fireAt:       now.Add(castTime),
	})
	m.mu.Unlock()

	return model.ResultOk
}

// ExpireTimers fires every scheduled cast whose fireAt has elapsed. Wired as
// a WorldInstance's TickHooks.ExpireTimers.
func (m *Manager) ExpireTimers(now time.Time) {
	m.mu.Lock()
	due := m.pending[:0:0]
	remaining := m.pending[:0]
	for _, p := range m.pending {
		if !now.Before(p.fireAt) {
			due = append(due, p)
		} else {
			remaining = append(remaining, p)
		}
	}
	m.pending = remaining
	m.mu.Unlock()

	for _, p := range due {
		m.applyEffects(p)
	}
}

// applyEffects runs a finished cast's effect list in order. A caster that
// died mid-cast still has its effects suppressed, matching the teacher's
// finishCast dead-check.
func (m *Manager) applyEffects(p pendingCast) {
	if !p.caster.IsAlive() {
		return
	}

	for _, effect := range p.tmpl.Effects {
		switch effect.Kind {
		case EffectDamage:
			if p.target == nil {
				continue
			}
			m.applySpellDamage(p.caster, p.target, p.entry, effect.Amount)
		case EffectHeal:
			target := p.target
			if target == nil {
				target = p.caster
			}
			target.SetHealth(target.Health() + effect.Amount)
		case EffectApplyAura:
			target := p.target
			if target == nil {
				target = p.caster
			}
			if m.hooks.ApplyAura != nil {
				m.hooks.ApplyAura(target, effect.AuraID)
			}
		case EffectLearnSpell:
			if p.casterPlayer != nil {
				p.casterPlayer.LearnSpell(effect.Spell)
			}
		}
	}
}

func distanceSquared(a, b model.Vector3) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	dz := float64(a.Z - b.Z)
	return dx*dx + dy*dy + dz*dz
}

// isFacing reports whether a unit standing at from, facing the given
// heading (radians), has target within FacingTolerance of its front arc.
func isFacing(from, target model.Vector3, facing float32) bool {
	bearing := math.Atan2(float64(target.Y-from.Y), float64(target.X-from.X))
	diff := bearing - float64(facing)
	for diff > math.Pi {
		diff -= 2 * math.Pi
	}
	for diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return math.Abs(diff) <= FacingTolerance
}
