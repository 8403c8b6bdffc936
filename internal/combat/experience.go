package combat

import "github.com/forgeward/realmcore/internal/model"

// creditKill awards XP to killer's owning player once victim has been
// killed, mirroring the teacher's RewardExpAndSp/checkLevelUp kill-credit
// flow: resolve the killer to a player, award XP (rolling any level-ups),
// and fire XPLog for whatever subscriber bridge wants to announce it.
func (m *Manager) creditKill(killer, victim *model.Unit) {
	if m.hooks.ResolvePlayer == nil {
		return
	}
	player, ok := m.hooks.ResolvePlayer(killer.GUID())
	if !ok {
		return
	}

	var awarded uint32
	if m.hooks.BaseXPFor != nil {
		awarded = m.hooks.BaseXPFor(victim)
	}
	if awarded == 0 {
		return
	}

	nextLevelFor := m.hooks.NextLevelXPFor
	if nextLevelFor == nil {
		nextLevelFor = func(uint32) uint32 { return 0 }
	}
	player.AddXP(awarded, nextLevelFor)

	if m.hooks.XPLog != nil {
		m.hooks.XPLog(player, victim, awarded)
	}
}
