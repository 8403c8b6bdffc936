package proxy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/forgeward/realmcore/internal/crypto"
	"github.com/forgeward/realmcore/internal/packet"
)

// Hooks lets the world side react to link events without importing the
// world package here (instance lookup, spawn/despawn, packet routing all
// live on the caller's side of this boundary).
type Hooks struct {
	OnCharacterJoin  func(ctx context.Context, msg CharacterJoin) error
	OnCharacterLeave func(ctx context.Context, msg CharacterLeave) error
	OnProxyPacket    func(ctx context.Context, msg ProxyPacket) error
}

// Handler dispatches inbound realm↔world link payloads by (state, opcode).
type Handler struct {
	hooks Hooks
}

func NewHandler(hooks Hooks) *Handler {
	return &Handler{hooks: hooks}
}

// HandlePacket decodes and dispatches one payload. Writes a response into
// buf when the opcode expects one. Returns n (bytes written, 0 = nothing to
// send) and ok (false = close the link after sending).
func (h *Handler) HandlePacket(ctx context.Context, conn *Conn, data, buf []byte) (int, bool, error) {
	if len(data) == 0 {
		return 0, false, fmt.Errorf("empty packet")
	}

	opcode := Opcode(data[0])
	body := data[1:]
	state := conn.State()

	switch state {
	case StateConnected:
		switch opcode {
		case OpcodeBlowfishKey:
			return h.handleBlowfishKey(conn, body)
		default:
			return 0, true, fmt.Errorf("invalid opcode 0x%02x for state %v", opcode, state)
		}

	case StateKeyExchanged:
		switch opcode {
		case OpcodeRealmAuth:
			return h.handleRealmAuth(conn, body, buf)
		default:
			return 0, true, fmt.Errorf("invalid opcode 0x%02x for state %v", opcode, state)
		}

	case StateAuthenticated:
		switch opcode {
		case OpcodeCharacterJoin:
			return h.handleCharacterJoin(ctx, conn, body)
		case OpcodeCharacterLeave:
			return h.handleCharacterLeave(ctx, conn, body)
		case OpcodeProxyPacket:
			return h.handleProxyPacket(ctx, conn, body)
		default:
			return 0, false, fmt.Errorf("unknown opcode 0x%02x", opcode)
		}

	default:
		return 0, true, fmt.Errorf("invalid connection state: %v", state)
	}
}

func (h *Handler) handleBlowfishKey(conn *Conn, body []byte) (int, bool, error) {
	rsaKeyPair := conn.RSAKeyPair()
	decrypted, err := crypto.RSADecryptNoPadding(rsaKeyPair.PrivateKey, body)
	if err != nil {
		return 0, false, fmt.Errorf("RSA decrypt failed: %w", err)
	}

	const blowfishKeySize = 40
	if len(decrypted) < blowfishKeySize {
		return 0, false, fmt.Errorf("decrypted block too short: got %d, want at least %d", len(decrypted), blowfishKeySize)
	}
	key := decrypted[len(decrypted)-blowfishKeySize:]

	newCipher, err := crypto.NewBlowfishCipher(key)
	if err != nil {
		return 0, false, fmt.Errorf("creating Blowfish cipher: %w", err)
	}
	conn.SetBlowfishCipher(newCipher)
	conn.SetState(StateKeyExchanged)

	slog.Info("realm link key exchanged", "ip", conn.IP())
	return 0, true, nil
}

func (h *Handler) handleRealmAuth(conn *Conn, body []byte, buf []byte) (int, bool, error) {
	r := packet.NewReader(body)
	id, err := r.ReadInt()
	if err != nil {
		return 0, false, fmt.Errorf("decoding realm id: %w", err)
	}
	name, err := r.ReadString()
	if err != nil {
		return 0, false, fmt.Errorf("decoding realm name: %w", err)
	}

	conn.AttachRealmInfo(&RealmInfo{ID: int(id), Name: name})
	conn.SetState(StateAuthenticated)

	w := packet.NewWriter(64)
	w.WriteByte(byte(OpcodeAuthResponse))
	w.WriteByte(1) // accepted
	n := copy(buf, w.Bytes())

	slog.Info("realm authenticated", "realm_id", id, "realm_name", name, "ip", conn.IP())
	return n, true, nil
}

func (h *Handler) handleCharacterJoin(ctx context.Context, conn *Conn, body []byte) (int, bool, error) {
	msg, err := DecodeCharacterJoin(packet.NewReader(body))
	if err != nil {
		return 0, false, err
	}
	conn.AddCharacter(msg.CharGUID)
	if h.hooks.OnCharacterJoin != nil {
		if err := h.hooks.OnCharacterJoin(ctx, msg); err != nil {
			return 0, true, fmt.Errorf("handling CharacterJoin: %w", err)
		}
	}
	return 0, true, nil
}

func (h *Handler) handleCharacterLeave(ctx context.Context, conn *Conn, body []byte) (int, bool, error) {
	msg, err := DecodeCharacterLeave(packet.NewReader(body))
	if err != nil {
		return 0, false, err
	}
	conn.RemoveCharacter(msg.CharGUID)
	if h.hooks.OnCharacterLeave != nil {
		if err := h.hooks.OnCharacterLeave(ctx, msg); err != nil {
			return 0, true, fmt.Errorf("handling CharacterLeave: %w", err)
		}
	}
	return 0, true, nil
}

func (h *Handler) handleProxyPacket(ctx context.Context, conn *Conn, body []byte) (int, bool, error) {
	msg, err := DecodeProxyPacket(packet.NewReader(body))
	if err != nil {
		return 0, false, err
	}
	if !conn.HasCharacter(msg.CharGUID) {
		return 0, true, fmt.Errorf("proxy packet for unjoined character %s", msg.CharGUID)
	}
	if h.hooks.OnProxyPacket != nil {
		if err := h.hooks.OnProxyPacket(ctx, msg); err != nil {
			return 0, true, fmt.Errorf("handling ProxyPacket: %w", err)
		}
	}
	return 0, true, nil
}
