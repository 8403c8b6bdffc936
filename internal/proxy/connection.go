package proxy

import (
	"fmt"
	"net"
	"sync"

	"github.com/forgeward/realmcore/internal/crypto"
	"github.com/forgeward/realmcore/internal/model"
)

// ConnState is the realm↔world link's handshake state machine.
type ConnState int32

const (
	StateConnected     ConnState = iota // waiting for the Blowfish key exchange
	StateKeyExchanged                   // Blowfish established, waiting for realm identity
	StateAuthenticated                  // realm identity verified, character traffic flows
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "CONNECTED"
	case StateKeyExchanged:
		return "KEY_EXCHANGED"
	case StateAuthenticated:
		return "AUTHENTICATED"
	default:
		return fmt.Sprintf("ConnState(%d)", s)
	}
}

// RealmInfo identifies the realm-frontend process on the other end of the
// link, attached once the handshake reaches StateAuthenticated.
type RealmInfo struct {
	ID   int
	Name string
}

// Conn is one world-side connection to a realm-frontend process.
type Conn struct {
	conn       net.Conn
	ip         string
	rsaKeyPair *crypto.RSAKeyPair

	mu             sync.Mutex
	state          ConnState
	blowfishCipher *crypto.BlowfishCipher
	realm          *RealmInfo
	characters     map[model.GUID]struct{} // characters currently routed through this link
}

// NewConn wraps an accepted connection with the link's initial (pre-exchange)
// Blowfish cipher and the given RSA key pair for the handshake.
func NewConn(conn net.Conn, rsaKeyPair *crypto.RSAKeyPair) (*Conn, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}

	cipher, err := crypto.NewBlowfishCipher(crypto.DefaultGSBlowfishKey)
	if err != nil {
		return nil, fmt.Errorf("creating initial Blowfish cipher: %w", err)
	}

	return &Conn{
		conn:           conn,
		ip:             host,
		rsaKeyPair:     rsaKeyPair,
		state:          StateConnected,
		blowfishCipher: cipher,
		characters:     make(map[model.GUID]struct{}),
	}, nil
}

func (c *Conn) IP() string { return c.ip }

func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) SetState(s ConnState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Conn) BlowfishCipher() *crypto.BlowfishCipher {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blowfishCipher
}

func (c *Conn) SetBlowfishCipher(cipher *crypto.BlowfishCipher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blowfishCipher = cipher
}

func (c *Conn) RSAKeyPair() *crypto.RSAKeyPair { return c.rsaKeyPair }

func (c *Conn) AttachRealmInfo(info *RealmInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.realm = info
}

func (c *Conn) RealmInfo() *RealmInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.realm
}

// AddCharacter records that guid's traffic now routes through this link.
func (c *Conn) AddCharacter(guid model.GUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.characters[guid] = struct{}{}
}

// RemoveCharacter stops routing guid's traffic through this link.
func (c *Conn) RemoveCharacter(guid model.GUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.characters, guid)
}

// HasCharacter reports whether guid is currently routed through this link.
func (c *Conn) HasCharacter(guid model.GUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.characters[guid]
	return ok
}

// Characters returns a snapshot of the GUIDs routed through this link.
func (c *Conn) Characters() []model.GUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.GUID, 0, len(c.characters))
	for g := range c.characters {
		out = append(out, g)
	}
	return out
}
