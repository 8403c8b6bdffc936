package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeward/realmcore/internal/model"
	"github.com/forgeward/realmcore/internal/packet"
)

func TestProxyPacketRoundTrip(t *testing.T) {
	guid := model.NewGUID(model.KindPlayer, 0, 3)
	msg := ProxyPacket{CharGUID: guid, Bytes: []byte{0x01, 0x02, 0x03}}

	w := packet.NewWriter(64)
	msg.Encode(w)

	r := packet.NewReader(w.Bytes())
	opcode, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(OpcodeProxyPacket), opcode)

	got, err := DecodeProxyPacket(r)
	require.NoError(t, err)
	assert.Equal(t, guid, got.CharGUID)
	assert.Equal(t, msg.Bytes, got.Bytes)
}

func TestCharacterJoinRoundTrip(t *testing.T) {
	guid := model.NewGUID(model.KindPlayer, 0, 5)
	msg := CharacterJoin{CharGUID: guid, Account: "tester", Data: []byte{1, 2, 3, 4}}

	w := packet.NewWriter(64)
	msg.Encode(w)

	r := packet.NewReader(w.Bytes())
	_, err := r.ReadByte()
	require.NoError(t, err)

	got, err := DecodeCharacterJoin(r)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCharacterLeaveRoundTrip(t *testing.T) {
	guid := model.NewGUID(model.KindPlayer, 0, 9)
	msg := CharacterLeave{CharGUID: guid}

	w := packet.NewWriter(16)
	msg.Encode(w)

	r := packet.NewReader(w.Bytes())
	_, err := r.ReadByte()
	require.NoError(t, err)

	got, err := DecodeCharacterLeave(r)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestCharacterSaveRoundTrip(t *testing.T) {
	guid := model.NewGUID(model.KindPlayer, 0, 11)
	msg := CharacterSave{CharGUID: guid, Data: []byte{9, 8, 7}}

	w := packet.NewWriter(32)
	msg.Encode(w)

	r := packet.NewReader(w.Bytes())
	_, err := r.ReadByte()
	require.NoError(t, err)

	got, err := DecodeCharacterSave(r)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}
