// Package proxy implements the realm↔world link: the persistent connection
// a realm-frontend process opens to a world instance host to relay
// character traffic and lifecycle events. Framing, the connection state
// machine, and the (state, opcode) dispatch table mirror the GS↔LS link
// this repo used to carry between a login server and its game servers,
// retargeted from account/server registration to character join/leave/save.
package proxy

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/forgeward/realmcore/internal/constants"
	"github.com/forgeward/realmcore/internal/crypto"
)

// WritePacket encrypts payload in-place and writes the packet to w.
// Precondition: payload lives at buf[constants.PacketHeaderSize : constants.PacketHeaderSize+payloadLen].
// buf must have enough room for header + payload + checksum + padding.
//
// Realm↔World link format:
// - constants.PacketHeaderSize-byte length header (LE)
// - encrypted payload (payload + checksum + padding to multiple of constants.PacketPaddingAlign)
func WritePacket(w io.Writer, cipher *crypto.BlowfishCipher, buf []byte, payloadLen int) error {
	minBufSize := constants.PacketHeaderSize + constants.PacketBufferPadding
	if payloadLen < 0 || payloadLen > len(buf)-minBufSize {
		return fmt.Errorf("invalid payload length: %d", payloadLen)
	}

	dataSize := payloadLen + constants.PacketChecksumSize
	padding := (constants.PacketPaddingAlign - (dataSize % constants.PacketPaddingAlign)) % constants.PacketPaddingAlign
	encryptedSize := dataSize + padding

	crypto.AppendChecksum(buf, constants.PacketHeaderSize, encryptedSize)
	if err := cipher.Encrypt(buf, constants.PacketHeaderSize, encryptedSize); err != nil {
		return fmt.Errorf("encrypting payload: %w", err)
	}

	totalSize := constants.PacketHeaderSize + encryptedSize
	binary.LittleEndian.PutUint16(buf[0:constants.PacketHeaderSize], uint16(totalSize))

	if _, err := w.Write(buf[0:totalSize]); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

// ReadPacket reads one packet from r into buf and returns the decrypted
// payload (checksum and padding stripped).
func ReadPacket(r io.Reader, cipher *crypto.BlowfishCipher, buf []byte) ([]byte, error) {
	var header [constants.PacketHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading packet header: %w", err)
	}

	totalLen := binary.LittleEndian.Uint16(header[:])
	if totalLen < constants.PacketHeaderSize {
		return nil, fmt.Errorf("invalid packet length: %d", totalLen)
	}

	encryptedSize := int(totalLen) - constants.PacketHeaderSize
	if encryptedSize > len(buf) {
		return nil, fmt.Errorf("packet too large: %d bytes (buffer: %d)", encryptedSize, len(buf))
	}

	payload := buf[0:encryptedSize]
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading encrypted payload: %w", err)
	}

	if err := cipher.Decrypt(buf, 0, encryptedSize); err != nil {
		return nil, fmt.Errorf("decrypting payload: %w", err)
	}
	if !crypto.VerifyChecksum(buf, 0, encryptedSize) {
		return nil, fmt.Errorf("checksum verification failed")
	}

	payloadLen := encryptedSize - constants.PacketChecksumSize
	return buf[0:payloadLen], nil
}
