package combat

import "github.com/forgeward/realmcore/internal/model"

// ApplyMeleeDamage applies a non-spell damage instance (an attack-swing hit)
// to victim, firing NonSpellDamageLog and crediting a kill if the hit drops
// victim to 0 health. attacker may be nil for environmental damage.
func (m *Manager) ApplyMeleeDamage(attacker, victim *model.Unit, amount int32) int32 {
	dealt := victim.ApplyDamage(amount)

	var attackerGUID model.GUID
	if attacker != nil {
		attackerGUID = attacker.GUID()
	}
	if m.hooks.NonSpellDamageLog != nil {
		m.hooks.NonSpellDamageLog(attackerGUID, victim.GUID(), dealt)
	}

	m.creditKillIfDead(attacker, victim)
	return dealt
}

// applySpellDamage applies a spell's damage effect to target, firing
// SpellDamageLog and crediting a kill if the hit drops target to 0 health.
func (m *Manager) applySpellDamage(caster, target *model.Unit, entry uint32, amount int32) int32 {
	dealt := target.ApplyDamage(amount)

	if m.hooks.SpellDamageLog != nil {
		m.hooks.SpellDamageLog(caster.GUID(), target.GUID(), entry, dealt)
	}

	m.creditKillIfDead(caster, target)
	return dealt
}

// creditKillIfDead awards XP to killer when killer is a player and victim
// was just killed by this hit.
func (m *Manager) creditKillIfDead(killer, victim *model.Unit) {
	if killer == nil || victim.IsAlive() {
		return
	}
	m.creditKill(killer, victim)
}
