package realm

import (
	"bytes"

	"github.com/forgeward/realmcore/internal/model"
	"github.com/forgeward/realmcore/internal/packet"
)

// Server→client opcodes for the C8 replication channel a Session pushes
// over. These are this repo's own minimal wire shape for spawn/update/
// despawn notices — the teacher's equivalent (serverpackets/*) is an L2J
// content-specific catalog of hundreds of opcodes with no SPEC_FULL.md
// home; this package only needs the three C8 delta kinds.
const (
	OpcodeObjectsSpawned   byte = 0x01
	OpcodeObjectsUpdated   byte = 0x02
	OpcodeObjectsDespawned byte = 0x03
	OpcodeMoveToLocation   byte = 0x10
	OpcodeValidateLocation byte = 0x11
)

// EncodeObjectsSpawned writes the initial FieldMap snapshot for each
// object, per C8's "spawn delta carries the full initial snapshot" rule.
func EncodeObjectsSpawned(objs []*model.Object) []byte {
	w := packet.NewWriter(64 + len(objs)*64)
	w.WriteByte(OpcodeObjectsSpawned)
	w.WriteShort(int16(len(objs)))
	for _, obj := range objs {
		w.WriteLong(int64(obj.GUID()))
		var buf bytes.Buffer
		obj.Fields.SerializeInitial(&buf)
		w.WriteBytes(buf.Bytes())
	}
	return w.Bytes()
}

// EncodeObjectsUpdated writes only the dirty cells of each object, per C8's
// delta-replication rule.
func EncodeObjectsUpdated(objs []*model.Object) []byte {
	w := packet.NewWriter(64 + len(objs)*32)
	w.WriteByte(OpcodeObjectsUpdated)
	w.WriteShort(int16(len(objs)))
	for _, obj := range objs {
		w.WriteLong(int64(obj.GUID()))
		var buf bytes.Buffer
		obj.Fields.SerializeDelta(&buf)
		w.WriteBytes(buf.Bytes())
	}
	return w.Bytes()
}

// EncodeObjectsDespawned writes just the GUID list leaving a subscriber's
// watch window.
func EncodeObjectsDespawned(guids []model.GUID) []byte {
	w := packet.NewWriter(16 + len(guids)*8)
	w.WriteByte(OpcodeObjectsDespawned)
	w.WriteShort(int16(len(guids)))
	for _, g := range guids {
		w.WriteLong(int64(g))
	}
	return w.Bytes()
}
