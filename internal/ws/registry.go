package ws

import (
	"sort"

	"roomloop/internal/auth"
)

// Conn is a live client connection as seen by the hub.
type Conn interface {
	ID() string
	// Send enqueues a frame without blocking.
	Send(frame []byte) error
	Close()
}

type member struct {
	identity auth.Identity
	info     ConnInfo
	rooms    map[string]struct{}
}

// Registry tracks which channels each authenticated connection has joined.
// A channel exists only while it has members. Registry is not safe for
// concurrent use; the hub loop owns it.
type Registry struct {
	conns    map[Conn]*member
	channels map[string]map[Conn]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[Conn]*member),
		channels: make(map[string]map[Conn]struct{}),
	}
}

// Connect records the identity of conn and joins its personal channel.
func (r *Registry) Connect(conn Conn, identity auth.Identity, info ConnInfo) error {
	if _, ok := r.conns[conn]; ok {
		return ErrAlreadyConnected
	}
	r.conns[conn] = &member{identity: identity, info: info, rooms: make(map[string]struct{})}
	r.join(conn, identity.ID)
	return nil
}

// Join adds conn to roomID. Joining twice is a no-op.
func (r *Registry) Join(conn Conn, roomID string) error {
	if _, ok := r.conns[conn]; !ok {
		return ErrUnknownConnection
	}
	r.join(conn, roomID)
	return nil
}

func (r *Registry) join(conn Conn, roomID string) {
	m := r.conns[conn]
	m.rooms[roomID] = struct{}{}

	set, ok := r.channels[roomID]
	if !ok {
		set = make(map[Conn]struct{})
		r.channels[roomID] = set
	}
	set[conn] = struct{}{}
}

// Leave removes conn from roomID. Leaving a room that was never joined is a no-op.
func (r *Registry) Leave(conn Conn, roomID string) {
	m, ok := r.conns[conn]
	if !ok {
		return
	}
	delete(m.rooms, roomID)
	r.removeFromChannel(conn, roomID)
}

func (r *Registry) removeFromChannel(conn Conn, roomID string) {
	set, ok := r.channels[roomID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(r.channels, roomID)
	}
}

// Disconnect drops conn from every channel and forgets it. It returns the
// channels conn belonged to.
func (r *Registry) Disconnect(conn Conn) []string {
	m, ok := r.conns[conn]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(m.rooms))
	for roomID := range m.rooms {
		r.removeFromChannel(conn, roomID)
		rooms = append(rooms, roomID)
	}
	delete(r.conns, conn)
	sort.Strings(rooms)
	return rooms
}

// Identity returns the identity recorded for conn.
func (r *Registry) Identity(conn Conn) (auth.Identity, bool) {
	m, ok := r.conns[conn]
	if !ok {
		return auth.Identity{}, false
	}
	return m.identity, true
}

func (r *Registry) Info(conn Conn) (ConnInfo, bool) {
	m, ok := r.conns[conn]
	if !ok {
		return ConnInfo{}, false
	}
	return m.info, true
}

// Rooms lists the channels conn has joined, sorted.
func (r *Registry) Rooms(conn Conn) []string {
	m, ok := r.conns[conn]
	if !ok {
		return nil
	}
	rooms := make([]string, 0, len(m.rooms))
	for roomID := range m.rooms {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	return rooms
}

// Members returns a snapshot of the connections joined to roomID.
func (r *Registry) Members(roomID string) []Conn {
	set := r.channels[roomID]
	members := make([]Conn, 0, len(set))
	for conn := range set {
		members = append(members, conn)
	}
	return members
}

func (r *Registry) IsMember(conn Conn, roomID string) bool {
	_, ok := r.channels[roomID][conn]
	return ok
}

func (r *Registry) Connections() []Conn {
	conns := make([]Conn, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

func (r *Registry) Len() int {
	return len(r.conns)
}

func (r *Registry) ChannelCount() int {
	return len(r.channels)
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Connections int            `json:"connections"`
	Channels    map[string]int `json:"channels"`
}

func (r *Registry) Stats() Stats {
	channels := make(map[string]int, len(r.channels))
	for roomID, set := range r.channels {
		channels[roomID] = len(set)
	}
	return Stats{Connections: len(r.conns), Channels: channels}
}
