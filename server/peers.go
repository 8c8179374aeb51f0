package server

import (
	"net"

	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/wire"
)

// PeerState enumerates a peer slot's position in the handshake state
// machine (spec.md §4.6).
type PeerState int

const (
	PeerEmpty PeerState = iota
	PeerConnecting
	PeerChecksumming
	PeerChecksummingFinal
	PeerLobby
	PeerInGame
)

// inactivityTimeoutMS is how long a peer may go without a received
// datagram before it is torn down.
const inactivityTimeoutMS = 30_000

// Peer is one of the seven fixed slots (slot 0 reserved for the server).
type Peer struct {
	Slot  int // array index; wire slot is Slot (server's own identity is 0)
	State PeerState

	Addr *net.UDPAddr

	LastRecvMS int64
	ChecksumRound uint8

	OutSeq  uint16 // next outbound reliable sequence
	InSeq   uint16 // expected inbound sequence (informational; no reordering)

	ObjectID int32
	Name     string

	KeepaliveEcho []byte
	SpawnPayload  []byte // cached ObjCreateTeam body, forwarded to late joiners

	Score game.ScoreRecord

	Frag     wire.FragmentBuffer
	Reliable wire.ReliableQueue
	Outbox   wire.Outbox

	Ship *game.ShipState

	// HealthCursor is this ship's own round-robin subsystem index for the
	// periodic health-tick broadcast; only that tick ever advances it.
	HealthCursor int

	// RespawnTimer counts down (in seconds) to ship recreation after a
	// kill; zero or negative means no respawn is pending. RespawnClass
	// and RespawnTeam capture the class/team to recreate from, since Ship
	// itself is cleared to nil on death.
	RespawnTimer float32
	RespawnClass int
	RespawnTeam  uint8

	AntiCheatViolations int
}

// reset clears a slot back to empty, ready for reuse.
func (p *Peer) reset() {
	slot := p.Slot
	*p = Peer{Slot: slot}
}

// PeerTable is the fixed seven-slot array; slot 0 is reserved and never
// matched by address lookup or allocated to an incoming connection.
type PeerTable struct {
	slots [game.MaxPeers]Peer
}

// NewPeerTable returns a table with every slot's index initialized.
func NewPeerTable() *PeerTable {
	t := &PeerTable{}
	for i := range t.slots {
		t.slots[i].Slot = i
	}
	return t
}

// ByAddr does a linear scan for the peer whose address matches addr. Slot 0
// is never returned since it's never assigned an address.
func (t *PeerTable) ByAddr(addr *net.UDPAddr) *Peer {
	for i := 1; i < len(t.slots); i++ {
		p := &t.slots[i]
		if p.State != PeerEmpty && addrEqual(p.Addr, addr) {
			return p
		}
	}
	return nil
}

// ByWireSlot returns the peer at the given wire slot (1..6), or nil if out
// of range or empty.
func (t *PeerTable) ByWireSlot(slot int) *Peer {
	if slot <= 0 || slot >= len(t.slots) {
		return nil
	}
	if t.slots[slot].State == PeerEmpty {
		return nil
	}
	return &t.slots[slot]
}

// ByObjectID resolves the peer owning a given ship object ID, using the
// arithmetic bijection rather than a scan.
func (t *PeerTable) ByObjectID(objID int32) *Peer {
	return t.ByWireSlot(int(game.SlotForObjectID(objID)))
}

// Allocate claims the first empty slot (1..6) for addr, making a defensive
// copy so the stored address cannot be aliased by a reused receive buffer.
func (t *PeerTable) Allocate(addr *net.UDPAddr, nowMS int64) *Peer {
	for i := 1; i < len(t.slots); i++ {
		p := &t.slots[i]
		if p.State != PeerEmpty {
			continue
		}
		p.reset()
		stored := *addr
		p.Addr = &stored
		p.State = PeerConnecting
		p.LastRecvMS = nowMS
		p.ObjectID = game.FirstObjectIDForSlot(int32(i))
		p.Frag.Reset()
		return p
	}
	return nil
}

// Release returns a slot to empty.
func (t *PeerTable) Release(p *Peer) { p.reset() }

// Each calls fn for every non-empty peer, in slot order.
func (t *PeerTable) Each(fn func(p *Peer)) {
	for i := 1; i < len(t.slots); i++ {
		if t.slots[i].State != PeerEmpty {
			fn(&t.slots[i])
		}
	}
}

// Count returns the number of non-empty slots.
func (t *PeerTable) Count() int {
	n := 0
	t.Each(func(*Peer) { n++ })
	return n
}

// InGameCount returns the number of peers that have reached PeerInGame.
func (t *PeerTable) InGameCount() int {
	n := 0
	t.Each(func(p *Peer) {
		if p.State == PeerInGame {
			n++
		}
	})
	return n
}

func addrEqual(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return false
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}
