package realm

import (
	"fmt"

	"github.com/forgeward/realmcore/internal/model"
)

// Anti-cheat thresholds gating client-submitted movement before it ever
// reaches a Unit's authoritative state machine (C4). Squared where the
// comparison is a distance, to avoid a sqrt on the hot path.
const (
	MinZCoordinate float32 = -20000
	MaxZCoordinate float32 = 20000

	MaxMoveDistanceSquared float32 = 9900 * 9900
	MinMoveDistanceSquared float32 = 17 * 17

	DesyncWarningSquared float32 = 500 * 500
)

// ValidateMoveTarget rejects a client's requested destination before any
// authoritative movement state changes: out-of-bounds Z, teleport-sized
// jumps, and zero-effort spam are all anti-cheat violations here rather
// than protocol violations — the connection is not necessarily at fault,
// but the move must not be applied.
func ValidateMoveTarget(from model.Vector3, to model.Vector3) error {
	if to.Z < MinZCoordinate || to.Z > MaxZCoordinate {
		return fmt.Errorf("realm: invalid Z coordinate %v (allowed %v..%v)", to.Z, MinZCoordinate, MaxZCoordinate)
	}

	dx := float64(to.X - from.X)
	dy := float64(to.Y - from.Y)
	distSq := dx*dx + dy*dy

	if distSq > float64(MaxMoveDistanceSquared) {
		return fmt.Errorf("realm: movement distance too large: %.0f (max %.0f)", distSq, MaxMoveDistanceSquared)
	}
	if distSq > 0 && distSq < float64(MinMoveDistanceSquared) {
		return fmt.Errorf("realm: movement distance too small: %.0f (min %.0f)", distSq, MinMoveDistanceSquared)
	}
	return nil
}

// PositionDesync reports whether a client-reported position has drifted
// from the unit's authoritative position by more than the warning
// threshold, and by how much (squared), for logging.
func PositionDesync(serverPos, clientPos model.Vector3) (needsCorrection bool, diffSquared float64) {
	dx := float64(clientPos.X - serverPos.X)
	dy := float64(clientPos.Y - serverPos.Y)
	diffSq := dx*dx + dy*dy
	return diffSq > float64(DesyncWarningSquared), diffSq
}
