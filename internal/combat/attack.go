package combat

import (
	"math"
	"math/rand"
	"time"

	"github.com/forgeward/realmcore/internal/model"
)

// SwingEventKind names why an attack swing failed to land a hit.
type SwingEventKind int

const (
	SwingOutOfRange SwingEventKind = iota
	SwingWrongFacing
	SwingNotAlive
)

// DefaultBaseAttackTimer is the fallback swing interval for a unit with no
// weapon-speed stat modeled.
const DefaultBaseAttackTimer = 1200 * time.Millisecond

type attackState struct {
	victim       model.GUID
	interval     time.Duration
	nextSwingAt  time.Time
	lastEvent    SwingEventKind
	hasLastEvent bool
}

// StartAttacking sets attacker's victim, arming the attack-swing loop.
// While the victim is set, TickAttacks fires a swing every interval.
func (m *Manager) StartAttacking(attacker model.GUID, victim model.GUID, interval time.Duration, now time.Time) {
	if interval <= 0 {
		interval = DefaultBaseAttackTimer
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attackers[attacker] = &attackState{
		victim:      victim,
		interval:    interval,
		nextSwingAt: now.Add(interval),
	}
}

// StopAttacking clears attacker's victim, disarming the attack-swing loop —
// the C7 "while a victim is set" condition going false.
func (m *Manager) StopAttacking(attacker model.GUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attackers, attacker)
}

// IsAttacking reports whether attacker currently has a victim set.
func (m *Manager) IsAttacking(attacker model.GUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.attackers[attacker]
	return ok
}

// TickAttacks runs one step of the attack-swing loop for every armed
// attacker whose swing timer has elapsed: evaluate range/facing/alive and
// either resolve a hit or emit a (de-duplicated) SwingEvent. Wired as a
// WorldInstance's TickHooks.Combat.
func (m *Manager) TickAttacks(now time.Time) {
	if m.hooks.ResolveUnit == nil {
		return
	}

	m.mu.Lock()
	due := make([]model.GUID, 0)
	for guid, st := range m.attackers {
		if !now.Before(st.nextSwingAt) {
			due = append(due, guid)
		}
	}
	m.mu.Unlock()

	for _, guid := range due {
		m.swing(guid, now)
	}
}

func (m *Manager) swing(attackerGUID model.GUID, now time.Time) {
	m.mu.Lock()
	st, ok := m.attackers[attackerGUID]
	if !ok {
		m.mu.Unlock()
		return
	}
	victimGUID := st.victim
	interval := st.interval
	st.nextSwingAt = now.Add(interval)
	m.mu.Unlock()

	attacker, ok := m.hooks.ResolveUnit(attackerGUID)
	if !ok || !attacker.IsAlive() {
		m.StopAttacking(attackerGUID)
		return
	}
	victim, ok := m.hooks.ResolveUnit(victimGUID)
	if !ok {
		m.StopAttacking(attackerGUID)
		return
	}

	attackerPos := attacker.Movement().Position
	victimPos := victim.Movement().Position

	switch {
	case !victim.IsAlive():
		m.emitSwingEvent(attackerGUID, victimGUID, st, SwingNotAlive)
	case distanceSquared(attackerPos, victimPos) > float64(DefaultMeleeRange)*float64(DefaultMeleeRange):
		m.emitSwingEvent(attackerGUID, victimGUID, st, SwingOutOfRange)
	case !isFacing(attackerPos, victimPos, attacker.Movement().Facing):
		m.emitSwingEvent(attackerGUID, victimGUID, st, SwingWrongFacing)
	default:
		m.mu.Lock()
		st.hasLastEvent = false
		m.mu.Unlock()
		damageFor := m.hooks.DamageFor
		if damageFor == nil {
			damageFor = DefaultDamageFormula
		}
		m.ApplyMeleeDamage(attacker, victim, damageFor(attacker, victim))
	}
}

// emitSwingEvent fires SwingEvent unless it is identical to the attacker's
// last emitted event — the C7 "consecutive identical events are suppressed"
// rule.
func (m *Manager) emitSwingEvent(attacker, victim model.GUID, st *attackState, kind SwingEventKind) {
	m.mu.Lock()
	suppress := st.hasLastEvent && st.lastEvent == kind
	st.lastEvent = kind
	st.hasLastEvent = true
	m.mu.Unlock()

	if suppress || m.hooks.SwingEvent == nil {
		return
	}
	m.hooks.SwingEvent(attacker, victim, kind)
}

// DefaultDamageFormula derives a melee hit's damage from the attacker's
// Strength and the victim's Stamina, grounded on the teacher's
// CalcPhysicalDamage/getRandomDamageMultiplier shape: a base ratio, random
// variance, and a floor of 1.
func DefaultDamageFormula(attacker, victim *model.Unit) int32 {
	atk := float64(attacker.Stats().Strength + 10)
	def := float64(victim.Stats().Stamina + 10)

	base := 10.0 * atk / def

	level := attacker.Level()
	variance := 5 + int(math.Sqrt(float64(level)))
	random := float64(rand.Intn(2*variance))/100.0 + 1.0 - float64(variance)/100.0
	base *= random

	if base < 1 {
		base = 1
	}
	return int32(base)
}
