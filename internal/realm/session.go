package realm

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/forgeward/realmcore/internal/model"
)

// SessionState mirrors a client connection's lifecycle.
type SessionState int32

const (
	SessionConnected SessionState = iota
	SessionInWorld
	SessionDisconnected
)

func (s SessionState) String() string {
	switch s {
	case SessionConnected:
		return "Connected"
	case SessionInWorld:
		return "InWorld"
	case SessionDisconnected:
		return "Disconnected"
	default:
		return fmt.Sprintf("SessionState(%d)", int32(s))
	}
}

const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
)

// Session is one connected client's realm-side state: the TCP connection,
// its async write queue, and (once joined) the Player it drives. Session
// implements world.Subscriber so the Visibility Grid (C3/C8) can push
// spawn/update/despawn deltas straight into a client's send queue.
type Session struct {
	conn net.Conn
	ip   string

	state atomic.Int32

	mu          sync.Mutex
	accountName string
	player      *model.Player

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	writePool    *BytePool
	writeTimeout time.Duration
}

// NewSession wraps an accepted connection. sendQueueSize/writeTimeout fall
// back to package defaults when <= 0.
func NewSession(conn net.Conn, writePool *BytePool, sendQueueSize int, writeTimeout time.Duration) (*Session, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}
	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	s := &Session{
		conn:         conn,
		ip:           host,
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		writePool:    writePool,
		writeTimeout: writeTimeout,
	}
	s.state.Store(int32(SessionConnected))
	return s, nil
}

func (s *Session) Conn() net.Conn { return s.conn }
func (s *Session) IP() string     { return s.ip }

func (s *Session) State() SessionState { return SessionState(s.state.Load()) }
func (s *Session) SetState(state SessionState) { s.state.Store(int32(state)) }

func (s *Session) AccountName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountName
}

func (s *Session) SetAccountName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountName = name
}

// Player returns the character this session has joined into the world, or
// nil before the join handshake completes.
func (s *Session) Player() *model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

func (s *Session) SetPlayer(p *model.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player = p
}

// WatcherGUID satisfies world.Subscriber.
func (s *Session) WatcherGUID() model.GUID {
	if p := s.Player(); p != nil {
		return p.GUID()
	}
	return model.GUID(0)
}

// NotifyObjectsSpawned satisfies world.Subscriber.
func (s *Session) NotifyObjectsSpawned(objs []*model.Object) {
	if len(objs) == 0 {
		return
	}
	if err := s.SendPacket(EncodeObjectsSpawned(objs)); err != nil {
		slog.Warn("spawn notify failed", "session", s.ip, "error", err)
	}
}

// NotifyObjectsUpdated satisfies world.Subscriber.
func (s *Session) NotifyObjectsUpdated(objs []*model.Object) {
	if len(objs) == 0 {
		return
	}
	if err := s.SendPacket(EncodeObjectsUpdated(objs)); err != nil {
		slog.Warn("update notify failed", "session", s.ip, "error", err)
	}
}

// NotifyObjectsDespawned satisfies world.Subscriber.
func (s *Session) NotifyObjectsDespawned(guids []model.GUID) {
	if len(guids) == 0 {
		return
	}
	if err := s.SendPacket(EncodeObjectsDespawned(guids)); err != nil {
		slog.Warn("despawn notify failed", "session", s.ip, "error", err)
	}
}

// SendPacket queues data for async delivery. Non-blocking: a full queue
// means a slow client, and the session is torn down rather than let an
// unbounded backlog build up.
func (s *Session) SendPacket(data []byte) error {
	select {
	case s.sendCh <- data:
		return nil
	default:
		slog.Warn("send queue full, disconnecting slow client", "session", s.ip)
		s.CloseAsync()
		return fmt.Errorf("realm: send queue full for %s", s.ip)
	}
}

// WritePump drains the send queue onto the connection until closed. Run in
// its own goroutine per session, mirroring the teacher's per-client write
// pump (one goroutine per connection, never per packet).
func (s *Session) WritePump() {
	bufs := make(net.Buffers, 0, 64)
	defer func() {
		for {
			select {
			case pkt := <-s.sendCh:
				s.putBack(pkt)
			default:
				return
			}
		}
	}()

	for {
		select {
		case pkt, ok := <-s.sendCh:
			if !ok {
				return
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
				s.putBack(pkt)
				return
			}

			queued := len(s.sendCh)
			if queued == 0 {
				_, err := s.conn.Write(pkt)
				s.putBack(pkt)
				if err != nil {
					slog.Warn("write failed", "session", s.ip, "error", err)
					return
				}
				continue
			}

			bufs = bufs[:0]
			bufs = append(bufs, pkt)
			batch := []([]byte){pkt}
			for range queued {
				p := <-s.sendCh
				bufs = append(bufs, p)
				batch = append(batch, p)
			}
			_, err := bufs.WriteTo(s.conn)
			for _, b := range batch {
				s.putBack(b)
			}
			if err != nil {
				slog.Warn("batch write failed", "session", s.ip, "error", err)
				return
			}

		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) putBack(b []byte) {
	if s.writePool != nil {
		s.writePool.Put(b)
	}
}

// CloseAsync signals the write pump to stop without blocking the caller.
// Safe to call more than once.
func (s *Session) CloseAsync() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(SessionDisconnected))
		close(s.closeCh)
	})
}

// Close stops the write pump and closes the connection.
func (s *Session) Close() error {
	s.CloseAsync()
	return s.conn.Close()
}
