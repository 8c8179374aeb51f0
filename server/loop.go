package server

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/protocol"
	"github.com/ghostfleet/bcserver/wire"
)

const (
	tickIntervalMS       = int64(game.TickInterval * 1000)
	retransmitEveryTicks = 10
	keepaliveEveryTicks  = 10
	healthEveryTicks     = 5
)

// Run drives the single-threaded cooperative event loop (spec.md §4.10):
// drain both sockets, advance the fixed-order simulation tick, flush
// outboxes, sleep, repeat, until a termination signal arrives.
func (ctx *Context) Run() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	buf := make([]byte, 4096)
	var healthCursor int
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	lastTick := nowMS()

	for !ctx.shutdown {
		select {
		case <-sigCh:
			ctx.gracefulShutdown()
			return
		default:
		}

		ctx.drainSocket(ctx.Conn, buf, true)
		if ctx.DiscConn != nil {
			ctx.drainSocket(ctx.DiscConn, buf, false)
		}

		now := nowMS()
		if now-lastTick >= tickIntervalMS {
			lastTick = now
			ctx.TickCount++
			ctx.advanceSimulation(now, &healthCursor)
		}

		<-ticker.C
	}
}

// nowMS is the loop's only time source, isolated so it can be swapped for
// a fake clock in tests.
func nowMS() int64 { return time.Now().UnixMilli() }

// drainSocket reads every datagram currently queued on conn without
// blocking past the first empty read, routing each to the game or
// discovery dispatcher per isGame.
func (ctx *Context) drainSocket(conn *net.UDPConn, buf []byte, isGame bool) {
	for {
		conn.SetReadDeadline(time.Now())
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		data := append([]byte(nil), buf[:n]...)
		if isGame {
			if len(data) > 0 && data[0] == '\\' {
				ctx.HandleDiscoveryDatagram(ctx.Conn, addr, data)
				continue
			}
			ctx.HandleGameDatagram(addr, data, nowMS())
		} else {
			ctx.HandleDiscoveryDatagram(ctx.DiscConn, addr, data)
		}
	}
}

// advanceSimulation runs one full 100ms tick's fixed sub-phase order
// (spec.md §4.10): retransmission sweep, peer timeout sweep, master
// heartbeat, physics/weapons/damage simulation, health broadcast,
// keepalive, outbox flush.
func (ctx *Context) advanceSimulation(now int64, healthCursor *int) {
	ctx.GameTimeSec += game.TickInterval

	if ctx.TickCount%retransmitEveryTicks == 0 {
		ctx.sweepRetransmits(now)
	}
	ctx.sweepTimeouts(now)

	if ctx.Masters != nil {
		ctx.Masters.Tick(ctx.masterSender(), time.UnixMilli(now))
	}

	ctx.tickShips(now)
	ctx.tickRespawns(now)
	game.TickTorpedoes(ctx.Torpedoes, game.TickInterval, ctx, ctx)

	if ctx.TickCount%healthEveryTicks == 0 {
		ctx.broadcastHealth(healthCursor)
	}
	if ctx.TickCount%keepaliveEveryTicks == 0 {
		ctx.sendKeepalives()
	}

	ctx.flushOutboxes()
}

// sweepRetransmits resends the oldest due reliable message per peer and
// boots any peer that has exhausted its retry budget.
func (ctx *Context) sweepRetransmits(now int64) {
	var toBoot []*Peer
	ctx.Peers.Each(func(p *Peer) {
		if p.Reliable.TimedOut() {
			toBoot = append(toBoot, p)
			return
		}
		if idx := p.Reliable.CheckRetransmit(now); idx >= 0 {
			e := p.Reliable.Entry(idx)
			p.Outbox.Queue(wire.AppendReliable(nil, e.Payload, e.Seq, wire.ReliableFlagNeedsAck))
			ctx.Stats.RecordRetransmit()
		}
	})
	for _, p := range toBoot {
		ctx.scheduleDisconnect(p, now)
	}
}

// sweepTimeouts tears down any peer that has gone inactivityTimeoutMS
// without a received datagram.
func (ctx *Context) sweepTimeouts(now int64) {
	var toDrop []*Peer
	ctx.Peers.Each(func(p *Peer) {
		if now-p.LastRecvMS > inactivityTimeoutMS {
			toDrop = append(toDrop, p)
		}
	})
	for _, p := range toDrop {
		ctx.Stats.RecordTimeout()
		ctx.scheduleDisconnect(p, now)
	}
}

// tickShips advances every live ship's movement, weapon charge, shield
// recharge, cloak, repair, and tractor state for one tick.
func (ctx *Context) tickShips(now int64) {
	ctx.Peers.Each(func(p *Peer) {
		if p.Ship == nil || !p.Ship.Alive {
			return
		}
		class := ctx.ClassByIndex(p.Ship.ClassIndex)
		if class == nil {
			return
		}
		const fullPower = game.PowerLevel(1.0)
		game.TickMovement(p.Ship, class, game.TickInterval)
		game.TickWeaponCharge(p.Ship, class, fullPower, game.TickInterval)
		game.TickTorpedoCooldown(p.Ship, class, game.TickInterval)
		game.TickShieldRecharge(p.Ship, class, fullPower, game.TickInterval)
		game.TickCloak(p.Ship, game.TickInterval)

		if idx, ok := subsystemIndexOf(class, game.SubsystemRepair); ok {
			game.TickRepair(p.Ship, class, idx, game.TickInterval)
		}
		if idx, ok := subsystemIndexOf(class, game.SubsystemTractorBeam); ok && p.Ship.TractorTargetID != 0 {
			if target := ctx.Peers.ByObjectID(p.Ship.TractorTargetID); target != nil && target.Ship != nil {
				game.TickTractor(p.Ship, class, idx, target.Ship, game.TickInterval)
			}
		}
	})
}

// tickRespawns counts down every peer's pending respawn timer and, on
// expiry, recreates its ship from the class/team captured at death and
// re-announces it exactly as the original ObjCreateTeam did (spec.md
// §4.7, §3).
func (ctx *Context) tickRespawns(now int64) {
	ctx.Peers.Each(func(p *Peer) {
		if p.RespawnTimer <= 0 {
			return
		}
		p.RespawnTimer -= game.TickInterval
		if p.RespawnTimer > 0 {
			return
		}
		class := ctx.ClassByIndex(p.RespawnClass)
		if class == nil {
			return
		}
		p.Ship = game.NewShipState(class, p.RespawnClass, p.ObjectID, int32(p.Slot), p.RespawnTeam)
		if p.SpawnPayload != nil {
			ctx.broadcastReliable(nil, p.SpawnPayload, now)
		}
	})
}

// subsystemIndexOf returns the first subsystem of the given type on class.
func subsystemIndexOf(class *game.ShipClass, t game.SubsystemType) (int, bool) {
	for i, sc := range class.Subsystems {
		if sc.Type == t {
			return i, true
		}
	}
	return 0, false
}

// broadcastHealth sends one peer's authoritative StateUpdate (round-robin
// by wire slot) to every other in-game peer, carrying a round-robin batch
// of that ship's subsystem condition bytes (the per-tick rotating subset
// the GLOSSARY names). Only this periodic tick advances a ship's
// HealthCursor; damage-induced immediate updates never do, to avoid
// breaking its cadence (spec.md §4.8).
func (ctx *Context) broadcastHealth(cursor *int) {
	n := ctx.Peers.Count()
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		*cursor = (*cursor + 1) % game.MaxPeers
		p := ctx.Peers.ByWireSlot(*cursor)
		if p == nil || p.State != PeerInGame || p.Ship == nil {
			continue
		}
		class := ctx.ClassByIndex(p.Ship.ClassIndex)
		if class == nil || len(class.Subsystems) == 0 {
			continue
		}
		fields := buildHealthFields(p.Ship, class, p.HealthCursor, healthBatchSize, false)
		p.HealthCursor = (p.HealthCursor + healthBatchSize) % len(class.Subsystems)
		msg := protocol.BuildStateUpdateHeader(p.Ship.ObjectID, ctx.GameTimeSec, protocol.DirtySubsystems, fields)
		ctx.broadcastReliable(p, msg, nowMS())
		return
	}
}

// sendKeepalives echoes each peer's last keepalive payload back to it,
// which is also how the client-side latency clock stays synced.
func (ctx *Context) sendKeepalives() {
	ctx.Peers.Each(func(p *Peer) {
		if p.KeepaliveEcho != nil {
			queueUnreliable(p, p.KeepaliveEcho)
		}
	})
}

// gracefulShutdown notifies every live peer, sends final master
// heartbeats, and flushes before returning.
func (ctx *Context) gracefulShutdown() {
	now := nowMS()
	ctx.broadcastReliable(nil, []byte{protocol.OpEndGame, protocol.EndGameReasonTimeLimit}, now)
	ctx.flushOutboxes()
	if ctx.Masters != nil {
		ctx.Masters.Shutdown(ctx.masterSender())
	}
	ctx.shutdown = true
	ctx.Log.Info().Msg("server shutting down")
}

