package proxy

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/forgeward/realmcore/internal/constants"
	"github.com/forgeward/realmcore/internal/crypto"
)

// bufSize is the read/write scratch buffer size for one link connection,
// matching the teacher's gslistener send/receive buffer sizing.
const bufSize = 8192

// Server listens for realm-frontend connections and drives each one through
// Handler's (state, opcode) dispatch — the world-side half of a split-process
// deployment. Grounded on internal/gslistener/server.go's accept loop, with
// login-server account/server-table bookkeeping dropped since this link
// carries character lifecycle traffic, not login registration.
type Server struct {
	addr    string
	handler *Handler
	log     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer wires a world-side listener against the given hooks.
func NewServer(addr string, hooks Hooks, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		addr:    addr,
		handler: NewHandler(hooks),
		log:     log,
	}
}

// Addr returns the listener's bound address once Run has started listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens on addr and serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("world link listening", "addr", ln.Addr())

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				wg.Wait()
				return nil
			default:
				wg.Wait()
				return fmt.Errorf("accepting connection: %w", err)
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

func (s *Server) handleConnection(ctx context.Context, netConn net.Conn) {
	defer netConn.Close()

	rsaKeyPair, err := crypto.GenerateRSAKeyPair512()
	if err != nil {
		s.log.Warn("rejecting link", "remote", netConn.RemoteAddr(), "error", err)
		return
	}

	conn, err := NewConn(netConn, rsaKeyPair)
	if err != nil {
		s.log.Warn("rejecting link", "remote", netConn.RemoteAddr(), "error", err)
		return
	}

	r := bufio.NewReaderSize(netConn, bufSize)
	readBuf := make([]byte, bufSize)
	sendBuf := make([]byte, bufSize)

	for {
		payload, err := ReadPacket(r, conn.BlowfishCipher(), readBuf)
		if err != nil {
			s.log.Debug("world link closed", "ip", conn.IP(), "error", err)
			return
		}

		n, ok, err := s.handler.HandlePacket(ctx, conn, payload, sendBuf[constants.PacketHeaderSize:])
		if err != nil {
			s.log.Warn("dropping world link", "ip", conn.IP(), "error", err)
			return
		}
		if n > 0 {
			if werr := WritePacket(netConn, conn.BlowfishCipher(), sendBuf, n); werr != nil {
				s.log.Warn("writing world link reply", "ip", conn.IP(), "error", werr)
				return
			}
		}
		if !ok {
			return
		}
	}
}
