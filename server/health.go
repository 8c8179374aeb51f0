package server

import (
	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/protocol"
)

// healthBatchSize is how many subsystem condition bytes the round-robin
// health tick reports per ship each time its turn comes up.
const healthBatchSize = 4

// buildHealthFields encodes a batch of subsystem condition bytes starting
// at startIdx (wrapping across class.Subsystems), each expressed as a
// 0-255 ratio of the subsystem's max condition. The remote variant also
// appends a power-allocation byte per subsystem (0 disabled, 255 full);
// a ship's own owner already knows its power allocation, so the owner
// variant omits it (spec.md §4.8).
func buildHealthFields(ship *game.ShipState, class *game.ShipClass, startIdx, count int, includePower bool) []byte {
	n := len(class.Subsystems)
	if n == 0 || count <= 0 {
		return []byte{0, 0}
	}
	if count > n {
		count = n
	}
	perEntry := 1
	if includePower {
		perEntry = 2
	}
	fields := make([]byte, 0, 2+count*perEntry)
	fields = append(fields, byte(startIdx%n), byte(count))
	for i := 0; i < count; i++ {
		idx := (startIdx + i) % n
		var ratio float32
		if class.Subsystems[idx].MaxCondition > 0 {
			ratio = ship.Subsystems[idx].Condition / class.Subsystems[idx].MaxCondition
		}
		fields = append(fields, conditionByte(ratio))
		if includePower {
			power := byte(255)
			if ship.Subsystems[idx].Destroyed {
				power = 0
			}
			fields = append(fields, power)
		}
	}
	return fields
}

func conditionByte(ratio float32) byte {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return byte(ratio * 255)
}

// sendImmediateHealthUpdate reports target's full subsystem condition to
// every peer right after a server-authoritative hit: an owner variant
// (no power-allocation bytes) to target itself, a remote variant (with
// them) to everyone else. No Explosion is broadcast here — clients
// compute their own local hit detection and generate their own visual
// Explosion, so a server-sent one would double the damage
// (original_source/src/server/server_dispatch.c,
// send_health_update_immediate). This never touches HealthCursor; only
// the periodic health tick advances it.
func (ctx *Context) sendImmediateHealthUpdate(target *Peer, class *game.ShipClass, nowMS int64) {
	n := len(class.Subsystems)
	ownerFields := buildHealthFields(target.Ship, class, 0, n, false)
	remoteFields := buildHealthFields(target.Ship, class, 0, n, true)
	ownerMsg := protocol.BuildStateUpdateHeader(target.Ship.ObjectID, ctx.GameTimeSec, protocol.DirtySubsystems, ownerFields)
	remoteMsg := protocol.BuildStateUpdateHeader(target.Ship.ObjectID, ctx.GameTimeSec, protocol.DirtySubsystems, remoteFields)

	if target.State == PeerInGame {
		queueReliable(target, ownerMsg, nowMS)
	}
	ctx.Peers.Each(func(p *Peer) {
		if p == target || p.State != PeerInGame {
			return
		}
		queueReliable(p, remoteMsg, nowMS)
	})
}
