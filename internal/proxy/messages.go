package proxy

import (
	"fmt"

	"github.com/forgeward/realmcore/internal/model"
	"github.com/forgeward/realmcore/internal/packet"
)

// Opcode identifies the first byte of every realm↔world link payload.
type Opcode byte

const (
	OpcodeBlowfishKey    Opcode = 0x00 // realm -> world: RSA-wrapped Blowfish key
	OpcodeRealmAuth      Opcode = 0x01 // realm -> world: realm identity + shared secret
	OpcodeAuthResponse   Opcode = 0x02 // world -> realm: handshake result
	OpcodeCharacterJoin  Opcode = 0x10 // realm -> world: a character is entering this instance
	OpcodeCharacterLeave Opcode = 0x11 // realm -> world: a character disconnected from the realm
	OpcodeCharacterSave  Opcode = 0x12 // world -> realm: character snapshot for persistence
	OpcodeProxyPacket    Opcode = 0x20 // bidirectional: opaque game packet for one character
)

// ProxyPacket carries one client↔world game packet tagged with the
// character it belongs to, so a single realm↔world link can multiplex
// traffic for every character the realm is relaying.
type ProxyPacket struct {
	CharGUID model.GUID
	Bytes    []byte // opaque client-protocol payload, opcode included
}

func (p ProxyPacket) Encode(w *packet.Writer) {
	w.WriteByte(byte(OpcodeProxyPacket))
	w.WriteLong(int64(p.CharGUID))
	w.WriteShort(int16(len(p.Bytes)))
	w.WriteBytes(p.Bytes)
}

func DecodeProxyPacket(r *packet.Reader) (ProxyPacket, error) {
	guid, err := r.ReadLong()
	if err != nil {
		return ProxyPacket{}, fmt.Errorf("decoding ProxyPacket char guid: %w", err)
	}
	n, err := r.ReadShort()
	if err != nil {
		return ProxyPacket{}, fmt.Errorf("decoding ProxyPacket length: %w", err)
	}
	body, err := r.ReadBytes(int(n))
	if err != nil {
		return ProxyPacket{}, fmt.Errorf("decoding ProxyPacket body: %w", err)
	}
	return ProxyPacket{CharGUID: model.GUID(guid), Bytes: body}, nil
}

// CharacterJoin tells the world instance a character is entering, carrying
// the account-scoped data needed to spawn it (serialized character snapshot,
// already validated by the realm).
type CharacterJoin struct {
	CharGUID model.GUID
	Account  string
	Data     []byte // serialized character snapshot (see internal/db)
}

func (m CharacterJoin) Encode(w *packet.Writer) {
	w.WriteByte(byte(OpcodeCharacterJoin))
	w.WriteLong(int64(m.CharGUID))
	w.WriteString(m.Account)
	w.WriteInt(int32(len(m.Data)))
	w.WriteBytes(m.Data)
}

func DecodeCharacterJoin(r *packet.Reader) (CharacterJoin, error) {
	guid, err := r.ReadLong()
	if err != nil {
		return CharacterJoin{}, fmt.Errorf("decoding CharacterJoin char guid: %w", err)
	}
	account, err := r.ReadString()
	if err != nil {
		return CharacterJoin{}, fmt.Errorf("decoding CharacterJoin account: %w", err)
	}
	n, err := r.ReadInt()
	if err != nil {
		return CharacterJoin{}, fmt.Errorf("decoding CharacterJoin data length: %w", err)
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return CharacterJoin{}, fmt.Errorf("decoding CharacterJoin data: %w", err)
	}
	return CharacterJoin{CharGUID: model.GUID(guid), Account: account, Data: data}, nil
}

// CharacterLeave tells the world instance the realm has lost the client
// connection and the character should be despawned and saved.
type CharacterLeave struct {
	CharGUID model.GUID
}

func (m CharacterLeave) Encode(w *packet.Writer) {
	w.WriteByte(byte(OpcodeCharacterLeave))
	w.WriteLong(int64(m.CharGUID))
}

func DecodeCharacterLeave(r *packet.Reader) (CharacterLeave, error) {
	guid, err := r.ReadLong()
	if err != nil {
		return CharacterLeave{}, fmt.Errorf("decoding CharacterLeave char guid: %w", err)
	}
	return CharacterLeave{CharGUID: model.GUID(guid)}, nil
}

// CharacterSave carries a character snapshot from the world back to the
// realm (or directly to storage), sent periodically and on leave.
type CharacterSave struct {
	CharGUID model.GUID
	Data     []byte
}

func (m CharacterSave) Encode(w *packet.Writer) {
	w.WriteByte(byte(OpcodeCharacterSave))
	w.WriteLong(int64(m.CharGUID))
	w.WriteInt(int32(len(m.Data)))
	w.WriteBytes(m.Data)
}

func DecodeCharacterSave(r *packet.Reader) (CharacterSave, error) {
	guid, err := r.ReadLong()
	if err != nil {
		return CharacterSave{}, fmt.Errorf("decoding CharacterSave char guid: %w", err)
	}
	n, err := r.ReadInt()
	if err != nil {
		return CharacterSave{}, fmt.Errorf("decoding CharacterSave data length: %w", err)
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return CharacterSave{}, fmt.Errorf("decoding CharacterSave data: %w", err)
	}
	return CharacterSave{CharGUID: model.GUID(guid), Data: data}, nil
}
