package server

import (
	"net"
	"time"

	"github.com/ghostfleet/bcserver/protocol"
	"github.com/ghostfleet/bcserver/wire"
)

// checksumRounds is how many content-hash rounds precede the terminal
// (0xFF) round.
const checksumRounds = 4

// handleConnect processes an inbound CONNECT from addr. If a slot already
// exists for addr, a stale retry is ignored (CONNECT_DATA semantics).
func (ctx *Context) handleConnect(addr *net.UDPAddr, nowMS int64) {
	if ctx.Peers.ByAddr(addr) != nil {
		return
	}
	p := ctx.Peers.Allocate(addr, nowMS)
	if p == nil {
		ctx.Log.Debug().Str("addr", addr.String()).Msg("connect rejected: server full")
		return
	}
	p.State = PeerChecksumming
	p.ChecksumRound = 0

	// CONNECT response: payload is the one-byte wire slot (array index,
	// since array index already equals wire slot by construction).
	p.Outbox.Queue(connectResponseMessage(byte(p.Slot)))
	queueReliable(p, protocol.BuildChecksumRequest(0), nowMS)

	ctx.Log.Info().Str("addr", addr.String()).Int("slot", p.Slot).Msg("peer connecting")
}

// handleChecksumResponse advances the checksum round dialogue. Rounds
// 0..checksumRounds-1 are validated against the manifest; the terminal
// round (0xFF) is parsed only for well-formedness.
func (ctx *Context) handleChecksumResponse(p *Peer, payload []byte, nowMS int64) {
	resp, ok := protocol.ParseChecksumResponse(payload)
	if !ok {
		return
	}

	switch p.State {
	case PeerChecksumming:
		if resp.Round != p.ChecksumRound {
			return
		}
		if !ctx.Manifest.Validate(resp.Round, resp.DirHash, resp.FileCount, resp.SubdirCount) {
			ctx.bootPeer(p, protocol.BootChecksum, nowMS)
			return
		}
		p.ChecksumRound++
		if int(p.ChecksumRound) < checksumRounds {
			queueReliable(p, protocol.BuildChecksumRequest(p.ChecksumRound), nowMS)
			return
		}
		p.State = PeerChecksummingFinal
		queueReliable(p, protocol.BuildChecksumRequest(0xFF), nowMS)

	case PeerChecksummingFinal:
		if resp.Round != 0xFF {
			return
		}
		ctx.enterLobby(p, nowMS)
	}
}

// enterLobby transitions p to the lobby state and emits the fixed
// welcome sequence (spec.md §4.6), batched reliably.
func (ctx *Context) enterLobby(p *Peer, nowMS int64) {
	p.State = PeerLobby

	queueReliable(p, protocol.BuildUnknown28(), nowMS)
	queueReliable(p, protocol.BuildSettings(ctx.GameTimeSec, ctx.Cfg.CollisionDamage, ctx.Cfg.FriendlyFire, uint8(p.Slot), ctx.Cfg.Map), nowMS)
	queueReliable(p, protocol.BuildGameInit(), nowMS)

	ctx.Peers.Each(func(other *Peer) {
		if other == p || other.State != PeerInGame {
			return
		}
		queueReliable(p, protocol.BuildScore(other.ObjectID, other.Score.Kills, other.Score.Deaths, other.Score.Score), nowMS)
		if other.SpawnPayload != nil {
			queueReliable(p, other.SpawnPayload, nowMS)
		}
	})
	ctx.Peers.Each(func(other *Peer) {
		if other == p || other.State == PeerEmpty {
			return
		}
		queueReliable(p, protocol.BuildDeletePlayerUI(uint8(other.Slot)), nowMS)
	})

	ctx.Stats.RecordConnect(p.Name, p.Addr.String(), nowMS)
	ctx.Stats.SetConcurrency(ctx.Peers.Count())
	ctx.notifyMastersStatusChanged(nowMS)
}

// handleNewPlayerInGame replies with MissionInit and promotes p to
// in-game, at which point it becomes visible to the dispatcher and to
// other peers' relays.
func (ctx *Context) handleNewPlayerInGame(p *Peer, nowMS int64) {
	if p.State != PeerLobby {
		return
	}
	p.State = PeerInGame
	queueReliable(p, protocol.BuildMissionInit(ctx.StarSystem, int32(ctx.Cfg.TimeLimit), int32(ctx.Cfg.FragLimit)), nowMS)
}

// scheduleDisconnect tears down p after the rest of its current datagram
// has been processed (the caller is responsible for deferring the call
// until the datagram loop finishes). It broadcasts the standard
// three-message teardown sequence to every remaining peer.
func (ctx *Context) scheduleDisconnect(p *Peer, nowMS int64) {
	if p.State == PeerEmpty {
		return
	}
	ctx.broadcastReliable(p, protocol.BuildDestroyObj(p.ObjectID), nowMS)
	ctx.broadcastReliable(p, protocol.BuildDeletePlayerUI(uint8(p.Slot)), nowMS)
	ctx.broadcastReliable(p, protocol.BuildDeletePlayerAnim(p.Name), nowMS)

	ctx.Stats.RecordDisconnect(p.Addr.String(), nowMS)
	ctx.Log.Info().Str("addr", p.Addr.String()).Int("slot", p.Slot).Msg("peer disconnected")
	ctx.Peers.Release(p)
	ctx.Stats.SetConcurrency(ctx.Peers.Count())
	ctx.notifyMastersStatusChanged(nowMS)
}

// notifyMastersStatusChanged sends the out-of-band status-changed
// heartbeat spec.md §4.9 requires on every player-count change, separate
// from the periodic 60s heartbeat Tick sends.
func (ctx *Context) notifyMastersStatusChanged(nowMS int64) {
	if ctx.Masters != nil {
		ctx.Masters.NotifyStatusChange(ctx.masterSender(), time.UnixMilli(nowMS))
	}
}

// bootPeer sends a BootPlayer with the given reason and immediately tears
// the peer down (no graceful CONNECT_ACK round trip).
func (ctx *Context) bootPeer(p *Peer, reason uint8, nowMS int64) {
	queueReliable(p, protocol.BuildBootPlayer(reason), nowMS)
	ctx.Stats.RecordBoot(bootReasonLabel(reason))
	ctx.scheduleDisconnect(p, nowMS)
}

func bootReasonLabel(reason uint8) string {
	switch reason {
	case protocol.BootChecksum:
		return "checksum_failure"
	case protocol.BootAntiCheat:
		return "anti_cheat"
	default:
		return "server_full"
	}
}

// connectResponseMessage builds the raw CONNECT-type response message
// (no reliability wrapper): a single payload byte, the peer's wire slot.
func connectResponseMessage(wireSlot byte) []byte {
	return wire.AppendTyped(nil, wire.MsgConnect, []byte{wireSlot})
}
