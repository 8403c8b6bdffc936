package realm

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/forgeward/realmcore/internal/db"
	"github.com/forgeward/realmcore/internal/model"
	"github.com/forgeward/realmcore/internal/packet"
	"github.com/forgeward/realmcore/internal/world"
)

// Server accepts client connections, drives the account/character join
// handshake (C11, C5's load-on-join), and wires each joined character into
// a WorldInstance's Visibility Grid (C3/C8) via a Session subscriber.
type Server struct {
	listenAddr string
	database   *db.DB
	chars      *db.CharacterRepository
	sessions   *SessionManager
	instances  *world.InstanceManager
	writePool  *BytePool

	log *slog.Logger
}

// NewServer wires a realm-side client listener against the given database
// and instance manager.
func NewServer(listenAddr string, database *db.DB, instances *world.InstanceManager, capacity int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		listenAddr: listenAddr,
		database:   database,
		chars:      db.NewCharacterRepository(database.Pool()),
		sessions:   NewSessionManager(capacity),
		instances:  instances,
		writePool:  NewBytePool(4096),
		log:        log,
	}
}

// Sessions exposes the server's SessionManager (C11), e.g. for broadcast or
// admin tooling.
func (s *Server) Sessions() *SessionManager { return s.sessions }

// Run accepts connections until ctx is cancelled, mirroring the teacher's
// accept-loop-plus-errgroup wiring in cmd/gameserver/main.go.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.listenAddr, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("realm listening", "addr", s.listenAddr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accepting connection: %w", err)
			}
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	session, err := NewSession(conn, s.writePool, 0, 0)
	if err != nil {
		s.log.Warn("rejecting connection", "remote", conn.RemoteAddr(), "error", err)
		conn.Close()
		return
	}
	go session.WritePump()
	defer session.Close()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			s.endSession(session)
			return
		}
		if n < 1 {
			continue
		}
		if err := s.dispatch(ctx, session, buf[:n]); err != nil {
			s.log.Warn("dropping connection", "remote", session.IP(), "error", err)
			s.endSession(session)
			return
		}
	}
}

// Client↔realm opcodes this join/leave handshake understands. Character
// selection, inventory manipulation, chat, and the rest of the game-packet
// catalog are out of SPEC_FULL.md's scope (see DESIGN.md) — only the join
// path that exercises C5's load-on-join and the leave-time save is
// implemented here, in-process; the internal/proxy CharacterJoin/
// CharacterLeave/CharacterSave messages are not used on this path.
const (
	OpcodeAccountAuth  byte = 0x20
	OpcodeCharacterJoin byte = 0x21
	OpcodeCharacterLeave byte = 0x22
)

func (s *Server) dispatch(ctx context.Context, session *Session, data []byte) error {
	opcode := data[0]
	body := data[1:]

	switch opcode {
	case OpcodeAccountAuth:
		r := packet.NewReader(body)
		name, err := r.ReadString()
		if err != nil {
			return fmt.Errorf("reading account name: %w", err)
		}
		acc, err := AuthenticateAccount(ctx, s.database, name)
		if err != nil {
			return err
		}
		if err := s.sessions.Register(name, session); err != nil {
			return err
		}
		session.SetAccountName(name)
		s.log.Info("account authenticated", "account", acc.Name, "id", acc.ID)
		return nil

	case OpcodeCharacterJoin:
		r := packet.NewReader(body)
		charGUIDRaw, err := r.ReadLong()
		if err != nil {
			return fmt.Errorf("reading character guid: %w", err)
		}
		return s.joinCharacter(ctx, session, model.GUID(charGUIDRaw))

	case OpcodeCharacterLeave:
		return s.leaveCharacter(ctx, session)

	default:
		return fmt.Errorf("unknown opcode %#x", opcode)
	}
}

// joinCharacter implements C5's load-on-join: fetch the persisted snapshot,
// rebuild the Player and its Inventory, place it in the account's map
// instance, and register the session as a C8 watcher so it starts
// receiving replication deltas immediately.
func (s *Server) joinCharacter(ctx context.Context, session *Session, charGUID model.GUID) error {
	row, ok, err := s.chars.Load(ctx, charGUID)
	if err != nil {
		return fmt.Errorf("loading character %s: %w", charGUID, err)
	}

	inst, ok2 := s.instances.GetInstanceByMap(row.MapID)
	if !ok2 {
		inst = s.instances.CreateInstance(row.MapID)
	}

	player := model.NewPlayer(charGUID.Entry(), session.AccountName(), 0, 0, 0)
	if ok {
		if err := db.DecodeFieldsInto(row.FieldsBlob, player.Fields); err != nil {
			return fmt.Errorf("decoding fields for %s: %w", charGUID, err)
		}
	}
	player.Inventory = model.NewInventory(player.GUID())
	if ok {
		rows, err := db.DecodeInventoryRows(row.ItemsBlob)
		if err != nil {
			return fmt.Errorf("decoding inventory for %s: %w", charGUID, err)
		}
		for _, ir := range rows {
			item := model.NewItem(inst.NextLow(model.KindItem), ir.Entry, player.GUID())
			item.SetStackCount(int32(ir.Stack))
			item.SetDurability(int32(ir.Durability))
			item.SetContained(model.GUID(ir.Contained))
			player.Inventory.RestoreBodyItem(model.SlotAddress(ir.Slot), item)
		}
	}

	pos := model.Vector3{X: row.Pos.X, Y: row.Pos.Y, Z: row.Pos.Z}
	coord := inst.Grid.GetTilePosition(pos)
	inst.AddObject(&player.Unit.Object, coord)
	inst.Grid.RegisterWatcher(session, coord)

	session.SetPlayer(player)
	session.SetState(SessionInWorld)
	s.sessions.RegisterPlayer(player.GUID(), session)

	s.log.Info("character joined", "character", charGUID, "map", inst.MapID)
	return nil
}

// leaveCharacter implements the mirror of joinCharacter: unregister from
// the grid, persist a final snapshot (C9's CharacterSave), and drop the
// session's world association.
func (s *Server) leaveCharacter(ctx context.Context, session *Session) error {
	player := session.Player()
	if player == nil {
		return nil
	}

	inst, ok := s.instances.GetInstanceByMap(0)
	if ok {
		coord := inst.Grid.GetTilePosition(player.Movement().Position)
		inst.Grid.UnregisterWatcher(session, coord)
		inst.RemoveObject(player.GUID())
	}

	acc, err := s.database.GetOrCreateAccount(ctx, session.AccountName())
	if err != nil {
		return fmt.Errorf("resolving account on leave: %w", err)
	}

	fieldsBlob := db.EncodeFields(player.Fields)
	itemsBlob := db.EncodeInventory(player.Inventory)
	mv := player.Movement()
	if err := s.chars.Save(ctx, acc.ID, player.GUID(), 0, mv.Position, fieldsBlob, itemsBlob); err != nil {
		return fmt.Errorf("saving character on leave: %w", err)
	}

	s.sessions.UnregisterPlayer(player.GUID())
	session.SetPlayer(nil)
	session.SetState(SessionConnected)
	return nil
}

func (s *Server) endSession(session *Session) {
	if err := s.leaveCharacter(context.Background(), session); err != nil {
		s.log.Warn("save on disconnect failed", "session", session.IP(), "error", err)
	}
	s.sessions.Unregister(session.AccountName())
}
