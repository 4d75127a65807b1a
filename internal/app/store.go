package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/okrel/parley/internal/core"
	"github.com/okrel/parley/internal/domain"
)

// connection is the registry entry for one live transport session.
type connection struct {
	signal core.SignalConnection
	rooms  map[domain.RoomID]struct{}
}

// Endpoint pairs a session id with its transport so handlers can emit
// after the store lock is released.
type Endpoint struct {
	SID  core.SessionID
	Conn core.SignalConnection
}

// Roster is the full presence view of one room, keyed by session id.
type Roster map[core.SessionID]domain.PeerRecord

// JoinResult carries everything the join broadcast needs: the members
// that were in the room before this join, and the roster including the
// newcomer. Both are snapshots taken under the store lock.
type JoinResult struct {
	Existing []Endpoint
	Roster   Roster
}

// Departure is one room's share of a disconnect cleanup.
type Departure struct {
	Room      domain.RoomID
	Remaining []Endpoint
}

type RoomInfo struct {
	Room        domain.RoomID `json:"room"`
	MemberCount int           `json:"member_count"`
}

// Store holds the three relay state maps: live connections, room
// membership and per-room presence. One mutex guards all three so every
// operation is a single atomic step; for any room R and session C,
// membership in rooms[R], a record in peers[R] and R in the session's
// joined set always change together.
type Store struct {
	mu    sync.Mutex
	conns map[core.SessionID]*connection
	rooms map[domain.RoomID]map[core.SessionID]struct{}
	peers map[domain.RoomID]map[core.SessionID]*domain.PeerRecord
}

func NewStore() *Store {
	return &Store{
		conns: make(map[core.SessionID]*connection),
		rooms: make(map[domain.RoomID]map[core.SessionID]struct{}),
		peers: make(map[domain.RoomID]map[core.SessionID]*domain.PeerRecord),
	}
}

// Register adds a connection with an empty joined set. Peers learn
// nothing until it joins a room.
func (s *Store) Register(sid core.SessionID, conn core.SignalConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[sid] = &connection{
		signal: conn,
		rooms:  make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.store").Str("sid", string(sid)).Msg("connection registered")
}

// Lookup resolves a target session. A miss is not an error: the peer is
// simply no longer present and the caller drops the message.
func (s *Store) Lookup(sid core.SessionID) (core.SignalConnection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[sid]
	if !ok {
		return nil, false
	}
	return c.signal, true
}

// Join adds sid to room with the given presence record. A duplicate
// join reports ok=false and changes nothing.
func (s *Store) Join(sid core.SessionID, room domain.RoomID, rec domain.PeerRecord) (JoinResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns[sid]
	if !ok {
		return JoinResult{}, false
	}
	if _, joined := c.rooms[room]; joined {
		return JoinResult{}, false
	}

	if _, ok := s.rooms[room]; !ok {
		s.rooms[room] = make(map[core.SessionID]struct{})
		s.peers[room] = make(map[core.SessionID]*domain.PeerRecord)
		log.Info().Str("module", "app.store").Str("room", string(room)).Msg("room created")
	}

	res := JoinResult{
		Existing: make([]Endpoint, 0, len(s.rooms[room])),
	}
	for member := range s.rooms[room] {
		res.Existing = append(res.Existing, Endpoint{SID: member, Conn: s.conns[member].signal})
	}

	s.rooms[room][sid] = struct{}{}
	s.peers[room][sid] = &rec
	c.rooms[room] = struct{}{}

	res.Roster = s.rosterLocked(room)
	return res, true
}

// Leave removes sid from room and returns the members left behind. A
// leave for a room the session never joined reports ok=false.
func (s *Store) Leave(sid core.SessionID, room domain.RoomID) ([]Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(sid, room)
}

func (s *Store) leaveLocked(sid core.SessionID, room domain.RoomID) ([]Endpoint, bool) {
	c, ok := s.conns[sid]
	if !ok {
		return nil, false
	}
	if _, joined := c.rooms[room]; !joined {
		return nil, false
	}

	delete(c.rooms, room)
	delete(s.rooms[room], sid)
	delete(s.peers[room], sid)

	remaining := make([]Endpoint, 0, len(s.rooms[room]))
	for member := range s.rooms[room] {
		remaining = append(remaining, Endpoint{SID: member, Conn: s.conns[member].signal})
	}

	if len(s.rooms[room]) == 0 {
		delete(s.rooms, room)
		delete(s.peers, room)
		log.Info().Str("module", "app.store").Str("room", string(room)).Msg("room deleted")
	}
	return remaining, true
}

// Disconnect leaves every joined room and then removes the connection,
// all in one atomic step so the id cannot be reused mid-cleanup. The
// returned departures drive the removePeer broadcasts.
func (s *Store) Disconnect(sid core.SessionID) []Departure {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conns[sid]
	if !ok {
		return nil
	}

	var out []Departure
	for room := range c.rooms {
		remaining, ok := s.leaveLocked(sid, room)
		if !ok {
			continue
		}
		out = append(out, Departure{Room: room, Remaining: remaining})
	}

	delete(s.conns, sid)
	log.Info().Str("module", "app.store").Str("sid", string(sid)).Msg("connection unregistered")
	return out
}

// Rename updates the display name of the first record in room whose
// name equals oldName. Display names carry no uniqueness contract, so
// first-match in iteration order is a documented tie-break, not a
// principled one; a future fix would match by session id instead.
func (s *Store) Rename(room domain.RoomID, oldName, newName string) (core.SessionID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sid, rec := range s.peers[room] {
		if rec.Name == oldName {
			rec.Name = newName
			return sid, true
		}
	}
	return "", false
}

// SetStatus flips the element flag on every record in room whose name
// equals name (all matches, unlike Rename) and reports how many
// matched.
func (s *Store) SetStatus(room domain.RoomID, name string, el domain.StatusElement, status bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := 0
	for _, rec := range s.peers[room] {
		if rec.Name == name {
			rec.SetElement(el, status)
			matched++
		}
	}
	return matched
}

// Peer returns a copy of one presence record.
func (s *Store) Peer(room domain.RoomID, sid core.SessionID) (domain.PeerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.peers[room][sid]
	if !ok {
		return domain.PeerRecord{}, false
	}
	return *rec, true
}

// RoomsOf returns the rooms a session has joined.
func (s *Store) RoomsOf(sid core.SessionID) []domain.RoomID {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(c.rooms))
	for room := range c.rooms {
		out = append(out, room)
	}
	return out
}

// List reports every live room and its member count.
func (s *Store) List() []RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RoomInfo, 0, len(s.rooms))
	for room, members := range s.rooms {
		out = append(out, RoomInfo{Room: room, MemberCount: len(members)})
	}
	return out
}

func (s *Store) rosterLocked(room domain.RoomID) Roster {
	roster := make(Roster, len(s.peers[room]))
	for sid, rec := range s.peers[room] {
		roster[sid] = *rec
	}
	return roster
}
