package combat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeward/realmcore/internal/model"
)

func TestAttackSwingLoopHitsInRange(t *testing.T) {
	attacker := newTestCaster()
	victim := newTestTarget()
	setPosition(&attacker.Unit, model.Vector3{}, 0)
	setPosition(&victim.Unit, model.Vector3{X: 10}, 0)

	units := map[model.GUID]*model.Unit{
		attacker.GUID(): &attacker.Unit,
		victim.GUID():   &victim.Unit,
	}
	m := NewManager(Hooks{
		ResolveUnit: func(g model.GUID) (*model.Unit, bool) {
			u, ok := units[g]
			return u, ok
		},
		DamageFor: func(a, v *model.Unit) int32 { return 15 },
	})

	now := time.Now()
	m.StartAttacking(attacker.GUID(), victim.GUID(), 100*time.Millisecond, now)
	m.TickAttacks(now)
	assert.Equal(t, int32(100), victim.Health(), "swing not due yet")

	m.TickAttacks(now.Add(200 * time.Millisecond))
	assert.Equal(t, int32(85), victim.Health())
}

func TestAttackSwingLoopSuppressesDuplicateEvents(t *testing.T) {
	attacker := newTestCaster()
	victim := newTestTarget()
	setPosition(&attacker.Unit, model.Vector3{}, 0)
	setPosition(&victim.Unit, model.Vector3{X: 5000}, 0) // far out of range

	units := map[model.GUID]*model.Unit{
		attacker.GUID(): &attacker.Unit,
		victim.GUID():   &victim.Unit,
	}
	var events int
	m := NewManager(Hooks{
		ResolveUnit: func(g model.GUID) (*model.Unit, bool) {
			u, ok := units[g]
			return u, ok
		},
		SwingEvent: func(a, v model.GUID, kind SwingEventKind) {
			events++
			assert.Equal(t, SwingOutOfRange, kind)
		},
	})

	now := time.Now()
	m.StartAttacking(attacker.GUID(), victim.GUID(), 10*time.Millisecond, now)
	m.TickAttacks(now.Add(20 * time.Millisecond))
	m.TickAttacks(now.Add(40 * time.Millisecond))
	m.TickAttacks(now.Add(60 * time.Millisecond))

	assert.Equal(t, 1, events, "consecutive identical swing events must be suppressed")
}

func TestAttackSwingLoopStopsWhenVictimDead(t *testing.T) {
	attacker := newTestCaster()
	victim := newTestTarget()
	victim.SetHealth(0)
	setPosition(&attacker.Unit, model.Vector3{}, 0)
	setPosition(&victim.Unit, model.Vector3{}, 0)

	units := map[model.GUID]*model.Unit{
		attacker.GUID(): &attacker.Unit,
		victim.GUID():   &victim.Unit,
	}
	var gotEvent SwingEventKind
	m := NewManager(Hooks{
		ResolveUnit: func(g model.GUID) (*model.Unit, bool) {
			u, ok := units[g]
			return u, ok
		},
		SwingEvent: func(a, v model.GUID, kind SwingEventKind) { gotEvent = kind },
	})

	now := time.Now()
	m.StartAttacking(attacker.GUID(), victim.GUID(), 10*time.Millisecond, now)
	m.TickAttacks(now.Add(20 * time.Millisecond))

	assert.Equal(t, SwingNotAlive, gotEvent)
}

func TestStopAttackingDisarmsLoop(t *testing.T) {
	m := NewManager(Hooks{})
	guid := model.NewGUID(model.KindCreature, 1, 1)
	m.StartAttacking(guid, model.NewGUID(model.KindCreature, 2, 2), time.Millisecond, time.Now())
	require.True(t, m.IsAttacking(guid))
	m.StopAttacking(guid)
	assert.False(t, m.IsAttacking(guid))
}
