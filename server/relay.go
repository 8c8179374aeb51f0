package server

import "github.com/ghostfleet/bcserver/wire"

// queueReliable appends payload to p's outbox as a reliable message,
// assigning the next outbound sequence and tracking it in the reliable
// queue for retransmission. The low byte of every assigned sequence is
// always zero: an incoming ACK's one-byte counter is defined as "the
// high byte of the acked sequence" (spec.md §4.3), so keeping the low
// byte fixed lets ackSeq (see dispatch.go) reconstruct an exact match.
func queueReliable(p *Peer, payload []byte, nowMS int64) {
	seq := p.OutSeq
	p.OutSeq += 256
	p.Outbox.Queue(wire.AppendReliable(nil, payload, seq, wire.ReliableFlagNeedsAck))
	p.Reliable.Add(payload, seq, nowMS)
}

// queueUnreliable appends payload to p's outbox as unreliable game data.
func queueUnreliable(p *Peer, payload []byte) {
	p.Outbox.Queue(wire.AppendUnreliable(nil, payload))
}

// queueAck appends an ACK to p's outbox; it rides along with the next
// flushed datagram rather than being sent standalone.
func queueAck(p *Peer, counter byte, flags byte) {
	p.Outbox.Queue(wire.AppendAck(nil, counter, flags))
}

// broadcastReliable queues payload, reliably, to every in-game peer other
// than exclude (which may be nil to address everyone).
func (ctx *Context) broadcastReliable(exclude *Peer, payload []byte, nowMS int64) {
	ctx.Peers.Each(func(p *Peer) {
		if p == exclude || p.State != PeerInGame {
			return
		}
		queueReliable(p, payload, nowMS)
	})
}

// broadcastUnreliable queues payload, unreliably, to every in-game peer
// other than exclude.
func (ctx *Context) broadcastUnreliable(exclude *Peer, payload []byte) {
	ctx.Peers.Each(func(p *Peer) {
		if p == exclude || p.State != PeerInGame {
			return
		}
		queueUnreliable(p, payload)
	})
}

// flushOutboxes encrypts and sends every peer's pending outbox as one
// datagram each, in slot order.
func (ctx *Context) flushOutboxes() {
	ctx.Peers.Each(func(p *Peer) {
		if p.Outbox.Empty() {
			return
		}
		datagram := p.Outbox.Flush(wire.ClientDirection(p.Slot))
		wire.EncryptPacket(datagram)
		ctx.Conn.WriteToUDP(datagram, p.Addr)
	})
}
