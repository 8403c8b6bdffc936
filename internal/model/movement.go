package model

import (
	"errors"
	"sync/atomic"
	"time"
)

// HeartbeatInterval is the maximum gap allowed between movement heartbeats
// before the server silently drops a unit back to stopped (C4 design
// default).
const HeartbeatInterval = 500 * time.Millisecond

// AckTimeout is how long a PendingMovementChange may sit unacknowledged
// before the owning session is kicked (C4 design default).
const AckTimeout = 10 * time.Second

// MovementFlag is a bit in a Unit's authoritative movement state.
type MovementFlag uint32

const (
	MoveFlagForward MovementFlag = 1 << iota
	MoveFlagBackward
	MoveFlagStrafeLeft
	MoveFlagStrafeRight
	MoveFlagTurnLeft
	MoveFlagTurnRight
	MoveFlagFalling
	MoveFlagFallingFar
	MoveFlagSwimming
)

// positionalFlags are the flags whose presence means the unit's position is
// expected to change tick over tick; MovementInfo.PositionChanging is
// derived from whether any of them is set.
const positionalFlags = MoveFlagForward | MoveFlagBackward | MoveFlagStrafeLeft |
	MoveFlagStrafeRight | MoveFlagFalling | MoveFlagFallingFar | MoveFlagSwimming

// Vector3 is a position or direction in world space.
type Vector3 struct {
	X, Y, Z float32
}

// MovementInfo is a Unit's authoritative movement state (C4). It is not a
// FieldMap cell block — it travels over dedicated movement packets, not the
// C1/C8 field-delta channel — except for the flag byte mirrored into
// FieldMovementFlags for replication to watchers.
type MovementInfo struct {
	Timestamp     uint32
	Flags         MovementFlag
	Position      Vector3
	Facing        float32 // radians
	Pitch         float32 // radians
	FallTime      uint32
	JumpVelocity  float32
	JumpXZSpeed   float32
	Transport     GUID
	lastHeartbeat time.Time
}

// PositionChanging reports the derived bit: any positional flag set.
func (m MovementInfo) PositionChanging() bool {
	return m.Flags&positionalFlags != 0
}

var (
	ErrMovementFlagAlreadySet = errors.New("model: start requested for a flag already set")
	ErrMovementFlagNotSet     = errors.New("model: stop requested for a flag that is not set")
	ErrPositionDesync         = errors.New("model: position changed while no positional flag is set")
	ErrAckQueueEmpty          = errors.New("model: speed-change ack with nothing pending")
	ErrAckNotFront            = errors.New("model: speed-change ack does not match queue front")
	ErrAckMismatch            = errors.New("model: speed-change ack counter or value mismatch")
	ErrAckTimeout             = errors.New("model: speed-change ack arrived after AckTimeout")
)

// Movement returns a copy of the current authoritative movement state.
func (u *Unit) Movement() MovementInfo {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.movement
}

func (u *Unit) syncMovementFlagsField() {
	// Mirrors the low byte of the flag set into the replicated field.
	// MoveFlagSwimming is bit 8, outside that byte, so it is not replicated.
	u.Fields.SetUint32(FieldMovementFlags, uint32(u.movement.Flags)&0xFF)
}

// StartMoving accepts a client start-moving packet for the given directional
// flag. The flag must currently be unset. Position is accepted unvalidated
// here — callers apply anti-cheat distance checks before calling this, the
// way the teacher's movement_validator.go gates ValidateMoveToLocation
// before ever touching authoritative state.
func (u *Unit) StartMoving(flag MovementFlag, pos Vector3, facing float32, timestamp uint32) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.movement.Flags&flag != 0 {
		return ErrMovementFlagAlreadySet
	}
	u.movement.Flags |= flag
	u.movement.Position = pos
	u.movement.Facing = facing
	u.movement.Timestamp = timestamp
	u.movement.lastHeartbeat = timeFromMillis(timestamp)
	u.syncMovementFlagsField()
	return nil
}

// StopMoving accepts a client stop-moving packet. The flag must currently
// be set.
func (u *Unit) StopMoving(flag MovementFlag, pos Vector3, facing float32, timestamp uint32) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.movement.Flags&flag == 0 {
		return ErrMovementFlagNotSet
	}
	u.movement.Flags &^= flag
	u.movement.Position = pos
	u.movement.Facing = facing
	u.movement.Timestamp = timestamp
	u.syncMovementFlagsField()
	return nil
}

// Heartbeat accepts a periodic movement heartbeat. Position mutations are
// only accepted while a positional flag is set; otherwise the reported
// position must equal the last known position, or the heartbeat is an
// anti-cheat violation.
func (u *Unit) Heartbeat(pos Vector3, facing float32, timestamp uint32) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.movement.PositionChanging() && pos != u.movement.Position {
		return ErrPositionDesync
	}
	u.movement.Position = pos
	u.movement.Facing = facing
	u.movement.Timestamp = timestamp
	u.movement.lastHeartbeat = timeFromMillis(timestamp)
	return nil
}

// SetFacing updates facing/pitch only, permitted at any time while alive.
func (u *Unit) SetFacing(facing, pitch float32) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.movement.Facing = facing
	u.movement.Pitch = pitch
}

// CheckHeartbeatTimeout drops the unit to stopped if no heartbeat has been
// seen for HeartbeatInterval while a positional flag is set. Absence of a
// heartbeat is not fatal — it silently clears movement, per C4.
func (u *Unit) CheckHeartbeatTimeout(now time.Time) (dropped bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.movement.PositionChanging() {
		return false
	}
	if now.Sub(u.movement.lastHeartbeat) < HeartbeatInterval {
		return false
	}
	u.movement.Flags &^= positionalFlags
	u.syncMovementFlagsField()
	return true
}

func timeFromMillis(ms uint32) time.Time {
	return time.Unix(0, int64(ms)*int64(time.Millisecond))
}

// ChangeKind names the attribute a PendingMovementChange is adjusting.
type ChangeKind uint8

const (
	ChangeKindRunSpeed ChangeKind = iota
	ChangeKindSwimSpeed
	ChangeKindFlySpeed
	ChangeKindWalkSpeed
	ChangeKindTurnSpeed
)

// PendingMovementChange is a server-initiated speed change awaiting client
// acknowledgement (C4).
type PendingMovementChange struct {
	Counter   uint32
	Kind      ChangeKind
	Requested float32
	IssuedAt  time.Time
}

// pendingQueue is the FIFO queue of PendingMovementChange entries. Only the
// front entry may ever be acknowledged; a non-front ack is a protocol
// violation.
type pendingQueue struct {
	entries []PendingMovementChange
	counter atomic.Uint32
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{}
}

// EnqueueSpeedChange issues a new PendingMovementChange with a fresh
// monotonic counter and appends it to the FIFO. The caller is responsible
// for sending the corresponding force-speed packet carrying the counter.
func (u *Unit) EnqueueSpeedChange(kind ChangeKind, requested float32, now time.Time) PendingMovementChange {
	u.mu.Lock()
	defer u.mu.Unlock()

	c := u.pending.counter.Add(1)
	change := PendingMovementChange{Counter: c, Kind: kind, Requested: requested, IssuedAt: now}
	u.pending.entries = append(u.pending.entries, change)
	return change
}

// AckSpeedChange validates a client's speed-change acknowledgement against
// the FIFO front: wrong-front, counter/value mismatch, and timeout are all
// anti-cheat violations the caller should treat as kick-worthy. On success
// the entry is popped and removed from the queue.
func (u *Unit) AckSpeedChange(counter uint32, value float32, now time.Time) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.pending.entries) == 0 {
		return ErrAckQueueEmpty
	}
	front := u.pending.entries[0]
	if front.Counter != counter {
		return ErrAckNotFront
	}
	if front.Requested != value {
		return ErrAckMismatch
	}
	if now.Sub(front.IssuedAt) >= AckTimeout {
		return ErrAckTimeout
	}
	u.pending.entries = u.pending.entries[1:]
	return nil
}

// PendingCount reports how many speed changes are awaiting acknowledgement.
func (u *Unit) PendingCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.pending.entries)
}

// ClearPendingOnDeath clears the queued speed changes and zeroes movement
// inputs, per C4's death-cancellation rule. A tile-change must NOT call
// this — pending changes survive tile transitions.
func (u *Unit) ClearPendingOnDeath() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending.entries = nil
	u.movement.Flags = 0
	u.syncMovementFlagsField()
}
