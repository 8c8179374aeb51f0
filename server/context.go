// Package server implements the connection state machine, opcode
// dispatch, relay, master registration, and event loop that sit on top
// of the wire/protocol/discovery/game packages (spec.md §4.5-§4.10).
package server

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/ghostfleet/bcserver/config"
	"github.com/ghostfleet/bcserver/discovery"
	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/stats"
)

// udpSender adapts *net.UDPConn to discovery.Sender.
type udpSender struct{ conn *net.UDPConn }

func (s udpSender) SendTo(addr *net.UDPAddr, payload []byte) error {
	_, err := s.conn.WriteToUDP(payload, addr)
	return err
}

// Context is the single owning struct for a running server instance. It
// is mutated exclusively by the event loop's functions (see Loop) and
// carries no mutex: spec.md §5 describes a single-threaded cooperative
// scheduler with no suspension points other than the end-of-iteration
// sleep, so nothing here is ever touched concurrently.
type Context struct {
	Cfg *config.Config
	Log zerolog.Logger

	Conn      *net.UDPConn
	DiscConn  *net.UDPConn // optional dedicated discovery-port socket

	Peers *PeerTable

	Classes    []*game.ShipClass
	Torpedoes  []game.Torpedo

	Manifest ManifestValidator

	Masters *discovery.List
	Stats   *stats.Registry

	GameTimeSec float32
	StarSystem  uint8
	TickCount   uint64
	GameEnded   bool

	shutdown bool
}

// NewContext wires up a Context from a parsed configuration. The caller
// is responsible for opening Conn (and DiscConn, if used) and for
// loading Classes from the ship/projectile registry — both external
// collaborators per spec.md §1.
func NewContext(cfg *config.Config, log zerolog.Logger, classes []*game.ShipClass) *Context {
	c := &Context{
		Cfg:       cfg,
		Log:       log,
		Peers:     NewPeerTable(),
		Classes:   classes,
		Torpedoes: make([]game.Torpedo, game.MaxTorpedoes),
		Manifest:  PermissiveValidator{},
		Stats:     stats.NewRegistry(),
	}

	if cfg.ManifestPath != "" && cfg.StrictChecksum {
		c.Manifest = NewStrictManifest()
	}

	if !cfg.NoMasters {
		masters := cfg.Masters
		if len(masters) == 0 {
			masters = discovery.DefaultMasters
		}
		c.Masters = discovery.NewList(masters, uint16(cfg.Port))
	}

	return c
}

// ClassByIndex returns the registry entry for idx, or nil if out of range.
func (c *Context) ClassByIndex(idx int) *game.ShipClass {
	if idx < 0 || idx >= len(c.Classes) {
		return nil
	}
	return c.Classes[idx]
}

// TargetPosition implements game.TargetLookup by resolving an object ID
// to its owning peer's live ship position.
func (c *Context) TargetPosition(objectID int32) (game.Vec3, bool) {
	p := c.Peers.ByObjectID(objectID)
	if p == nil || p.Ship == nil || !p.Ship.Alive {
		return game.Vec3{}, false
	}
	return p.Ship.Position, true
}

// masterSender wraps Conn for discovery.List's heartbeat calls.
func (c *Context) masterSender() discovery.Sender { return udpSender{conn: c.Conn} }
