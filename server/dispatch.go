package server

import (
	"net"

	"github.com/ghostfleet/bcserver/game"
	"github.com/ghostfleet/bcserver/protocol"
	"github.com/ghostfleet/bcserver/wire"
)

// rapidFireViolationLimit is how many validated-relay rejections in a
// row trigger an anti-cheat boot (spec.md §4.8: "a threshold (e.g. 5
// rapid-fire violations) triggers a boot").
const rapidFireViolationLimit = 5

// HandleGameDatagram decrypts, parses, and dispatches one datagram
// received on the main game socket. addr is the sender; raw is mutated
// in place by decryption.
func (ctx *Context) HandleGameDatagram(addr *net.UDPAddr, raw []byte, nowMS int64) {
	wire.DecryptPacket(raw)
	pkt, err := wire.ParsePacket(raw)
	if err != nil && len(pkt.Messages) == 0 {
		ctx.Log.Debug().Err(err).Str("addr", addr.String()).Msg("malformed datagram")
		return
	}

	p := ctx.Peers.ByAddr(addr)
	var deferredDisconnect bool

	for _, msg := range pkt.Messages {
		switch msg.Type {
		case wire.MsgConnect:
			if p == nil {
				ctx.handleConnect(addr, nowMS)
				p = ctx.Peers.ByAddr(addr)
			}
		case wire.MsgConnData:
			// Stale retry: no-op once a slot exists; nothing to do
			// without one either.
		default:
			if p == nil {
				continue
			}
			p.LastRecvMS = nowMS
			switch msg.Type {
			case wire.MsgAck:
				p.Reliable.Ack(uint16(msg.Seq) << 8)
			case wire.MsgConnAck:
				queueAck(p, 0, 0)
				deferredDisconnect = true
			case wire.MsgDisconnect:
				deferredDisconnect = true
			case wire.MsgKeepalive:
				ctx.handleKeepalive(p, msg.Payload)
			case wire.MsgReliable:
				ctx.handleReliableMessage(p, msg, nowMS)
			}
		}
	}

	if deferredDisconnect && p != nil {
		ctx.scheduleDisconnect(p, nowMS)
	}
}

// handleKeepalive captures the player's name from the first keepalive and
// caches the echo payload for subsequent ones.
func (ctx *Context) handleKeepalive(p *Peer, payload []byte) {
	if p.Name == "" {
		if name, ok := protocol.KeepaliveName(payload); ok && name != "" {
			p.Name = name
		}
	}
	p.KeepaliveEcho = append(p.KeepaliveEcho[:0], payload...)
}

// handleReliableMessage dispatches one RELIABLE-framed message, handling
// fragmentation and the needs-ack flag before routing the (reassembled)
// game payload to opcode dispatch.
func (ctx *Context) handleReliableMessage(p *Peer, msg wire.Message, nowMS int64) {
	payload := msg.Payload
	if msg.Flags&wire.ReliableFlagFragment != 0 {
		reassembled, done, err := p.Frag.Receive(msg.Payload)
		if err != nil {
			ctx.Log.Debug().Int("slot", p.Slot).Msg("fragment reassembly error")
			return
		}
		if !done {
			return
		}
		payload = reassembled
	}

	if msg.Flags&wire.ReliableFlagNeedsAck != 0 {
		queueAck(p, byte(msg.Seq>>8), 0)
	}

	if len(payload) == 0 {
		return
	}
	ctx.dispatchOpcode(p, payload, nowMS)
}

// dispatchOpcode routes a reassembled game payload by its first byte
// (spec.md §4.8's four outcome categories).
func (ctx *Context) dispatchOpcode(p *Peer, payload []byte, nowMS int64) {
	opcode := payload[0]

	switch opcode {
	case protocol.OpNewPlayerInGame:
		ctx.handleNewPlayerInGame(p, nowMS)
		ctx.Stats.RecordOpcode(opcode, true)

	case protocol.OpObjCreateTeam:
		p.SpawnPayload = append([]byte(nil), payload...)
		team := uint8(0)
		if len(payload) > 2 {
			team = payload[2]
		}
		class := ctx.ClassByIndex(0)
		ok := class != nil
		if ok {
			p.Ship = game.NewShipState(class, 0, p.ObjectID, int32(p.Slot), team)
		}
		ctx.relayValidated(p, opcode, payload, ok, nowMS)

	case protocol.OpTorpedoFire:
		ctx.dispatchTorpedoFire(p, payload, nowMS)

	case protocol.OpBeamFire:
		ctx.dispatchBeamFire(p, payload, nowMS)

	case protocol.OpCollisionEffect:
		ctx.dispatchCollision(p, payload, nowMS)

	case protocol.OpStateUpdate:
		ctx.dispatchStateUpdate(p, payload, nowMS)

	case protocol.OpStartCloak:
		ctx.relayValidated(p, opcode, payload, ctx.tryCloak(p, true), nowMS)

	case protocol.OpStopCloak:
		ctx.relayValidated(p, opcode, payload, ctx.tryCloak(p, false), nowMS)

	default:
		// Pass-through relay: chat, python events, firing start/stop,
		// torpedo-type change, and everything else with no server-side
		// effect gets broadcast unchanged.
		ctx.broadcastReliable(p, payload, nowMS)
		ctx.Stats.RecordOpcode(opcode, true)
	}
}

// tryCloak applies a cloak or decloak request to p's ship, returning false
// if p has no ship or no functioning cloak subsystem.
func (ctx *Context) tryCloak(p *Peer, engage bool) bool {
	if p.Ship == nil {
		return false
	}
	class := ctx.ClassByIndex(p.Ship.ClassIndex)
	if class == nil {
		return false
	}
	if engage {
		return game.StartCloak(p.Ship, class)
	}
	return game.StartDecloak(p.Ship, class)
}

// relayValidated broadcasts payload to every other in-game peer if ok,
// otherwise counts a violation and boots p once the threshold is hit.
func (ctx *Context) relayValidated(p *Peer, opcode byte, payload []byte, ok bool, nowMS int64) {
	ctx.Stats.RecordOpcode(opcode, ok)
	if ok {
		p.AntiCheatViolations = 0
		ctx.broadcastReliable(p, payload, nowMS)
		return
	}
	p.AntiCheatViolations++
	if p.AntiCheatViolations >= rapidFireViolationLimit {
		ctx.bootPeer(p, protocol.BootAntiCheat, nowMS)
	}
}

func (ctx *Context) dispatchTorpedoFire(p *Peer, payload []byte, nowMS int64) {
	tf, ok := protocol.ParseTorpedoFire(payload)
	if !ok || p.Ship == nil {
		ctx.relayValidated(p, protocol.OpTorpedoFire, payload, false, nowMS)
		return
	}
	class := ctx.ClassByIndex(p.Ship.ClassIndex)
	if class == nil || p.Ship.CloakState != game.CloakDecloaked {
		ctx.relayValidated(p, protocol.OpTorpedoFire, payload, false, nowMS)
		return
	}

	dir := game.Vec3{X: tf.VelX, Y: tf.VelY, Z: tf.VelZ}
	_, spawned := game.SpawnTorpedo(ctx.Torpedoes, class, int32(p.Slot), p.Ship.Position, dir, tf.TargetID)
	ctx.relayValidated(p, protocol.OpTorpedoFire, payload, spawned, nowMS)
}

func (ctx *Context) dispatchBeamFire(p *Peer, payload []byte, nowMS int64) {
	bf, ok := protocol.ParseBeamFire(payload)
	if !ok || p.Ship == nil {
		ctx.relayValidated(p, protocol.OpBeamFire, payload, false, nowMS)
		return
	}
	class := ctx.ClassByIndex(p.Ship.ClassIndex)
	if class == nil || p.Ship.CloakState != game.CloakDecloaked {
		ctx.relayValidated(p, protocol.OpBeamFire, payload, false, nowMS)
		return
	}

	// Visual relay always proceeds for a well-formed shot; if it carries
	// a target, the server computes the authoritative consequence too.
	ctx.broadcastReliable(p, payload, nowMS)
	ctx.Stats.RecordOpcode(protocol.OpBeamFire, true)

	if !bf.HasTarget {
		return
	}
	target := ctx.Peers.ByObjectID(bf.TargetID)
	if target == nil || target.Ship == nil || !target.Ship.Alive {
		return
	}
	targetClass := ctx.ClassByIndex(target.Ship.ClassIndex)
	if targetClass == nil {
		return
	}

	damage := beamDamage(class, int(bf.Flags))
	dir := game.Vec3{X: bf.DirX, Y: bf.DirY, Z: bf.DirZ}
	ctx.resolveAuthoritativeHit(p, target, dir, game.Vec3{}, damage, 5, nowMS)
}

// beamDamage resolves the firing subsystem's Damage rating, falling back
// to the first weapon-capable subsystem if the index is out of range.
func beamDamage(class *game.ShipClass, subsysIdx int) float32 {
	if subsysIdx >= 0 && subsysIdx < len(class.Subsystems) {
		return class.Subsystems[subsysIdx].Weapon.Damage
	}
	for _, sc := range class.Subsystems {
		if sc.Weapon.Damage > 0 {
			return sc.Weapon.Damage
		}
	}
	return 0
}

// respawnDelaySec is how long after a kill the victim's ship is recreated
// (spec.md §4.7: "a 5s respawn is scheduled for the victim").
const respawnDelaySec float32 = 5.0

// resolveAuthoritativeHit applies damage to target, reports the
// authoritative health update, and on a kill runs the scoring and
// end-game sequence.
func (ctx *Context) resolveAuthoritativeHit(shooter, target *Peer, impactDir, localImpact game.Vec3, damage, radius float32, nowMS int64) {
	targetClass := ctx.ClassByIndex(target.Ship.ClassIndex)
	if targetClass == nil {
		return
	}
	result := game.ResolveDamage(target.Ship, targetClass, game.DamageDirected, impactDir, localImpact, damage, radius)

	ctx.sendImmediateHealthUpdate(target, targetClass, nowMS)

	if !result.Died {
		return
	}
	ctx.finishKill(shooter, target, nowMS)
}

// finishKill runs the scoring/kill sequence shared by every
// server-authoritative lethal event (beam, torpedo, collision), then
// schedules the victim's respawn unless the game has just ended.
func (ctx *Context) finishKill(shooter, target *Peer, nowMS int64) {
	scores := map[int32]*game.ScoreRecord{
		int32(target.Slot): &target.Score,
	}
	killerSlot := int32(0)
	if shooter != nil && shooter != target {
		killerSlot = int32(shooter.Slot)
		scores[killerSlot] = &shooter.Score
	}

	res := game.ApplyKill(scores, killerSlot, int32(target.Slot), int32(ctx.Cfg.FragLimit), ctx.GameEnded)

	var killerKills, killerScore int32
	if killerRec := scores[killerSlot]; killerSlot != 0 && killerRec != nil {
		killerKills, killerScore = killerRec.Kills, killerRec.Score
	}
	ctx.broadcastReliable(nil, protocol.BuildScoreChange(killerSlot, killerKills, killerScore, int32(target.Slot), target.Score.Deaths), nowMS)
	ctx.broadcastReliable(nil, protocol.BuildDestroyObj(target.Ship.ObjectID), nowMS)

	if res.EndGame {
		ctx.GameEnded = true
		ctx.broadcastReliable(nil, protocol.BuildEndGame(protocol.EndGameReasonFragLimit), nowMS)
		target.Ship = nil
		return
	}

	target.RespawnTimer = respawnDelaySec
	target.RespawnClass = target.Ship.ClassIndex
	target.RespawnTeam = target.Ship.Team
	target.Ship = nil
}

func (ctx *Context) dispatchCollision(p *Peer, payload []byte, nowMS int64) {
	ce, ok := protocol.ParseCollisionEffect(payload)
	if !ok || p.Ship == nil {
		return
	}
	if ce.SourceID != p.Ship.ObjectID && ce.TargetID != p.Ship.ObjectID {
		return // sender must be one of the two participants
	}
	// Dedup: if the sender is the source and the target is a live human
	// player, the target will report its own collision too; skip this one.
	if ce.SourceID == p.Ship.ObjectID {
		if tp := ctx.Peers.ByObjectID(ce.TargetID); tp != nil && tp.Ship != nil && tp.Ship.Alive {
			return
		}
	}

	source := ctx.Peers.ByObjectID(ce.SourceID)
	target := ctx.Peers.ByObjectID(ce.TargetID)
	if target == nil || target.Ship == nil {
		return
	}
	dist := float32(0)
	if source != nil && source.Ship != nil {
		dist = source.Ship.Position.Sub(target.Ship.Position).Length()
	}
	if dist > game.CollisionMaxProximity {
		return
	}

	targetClass := ctx.ClassByIndex(target.Ship.ClassIndex)
	if targetClass == nil {
		return
	}
	damage := game.CollisionDamage(targetClass.HullCapacity, ce.Energy)
	ctx.resolveAuthoritativeHit(source, target, game.Vec3{}, game.Vec3{}, damage, 5, nowMS)

	if source != nil && source.Ship != nil {
		if sourceClass := ctx.ClassByIndex(source.Ship.ClassIndex); sourceClass != nil {
			ctx.resolveAuthoritativeHit(target, source, game.Vec3{}, game.Vec3{}, game.CollisionDamage(sourceClass.HullCapacity, ce.Energy), 5, nowMS)
		}
	}
}

// Hit implements game.HitCallback: a torpedo reaching its target resolves
// as an authoritative hit exactly like a targeted beam.
func (ctx *Context) Hit(shooterSlot int32, targetID int32, damage, blastRadius float32, impact game.Vec3) {
	target := ctx.Peers.ByObjectID(targetID)
	if target == nil || target.Ship == nil || !target.Ship.Alive {
		return
	}
	shooter := ctx.Peers.ByWireSlot(int(shooterSlot))
	impactDir := impact.Sub(target.Ship.Position)
	ctx.resolveAuthoritativeHit(shooter, target, impactDir, game.Vec3{}, damage, blastRadius, nowMS())
}

func (ctx *Context) dispatchStateUpdate(p *Peer, payload []byte, nowMS int64) {
	su, ok := protocol.ParseStateUpdate(payload)
	if !ok {
		return
	}
	if su.Dirty == protocol.DirtySubsystems {
		// Server-authoritative only: this peer's own round-robin health
		// report from the client is never relayed.
		return
	}
	if p.Ship != nil {
		if su.Dirty&protocol.DirtyPositionAbs != 0 {
			p.Ship.Position = game.Vec3{X: su.PosX, Y: su.PosY, Z: su.PosZ}
		}
		if su.Dirty&protocol.DirtyForward != 0 {
			p.Ship.Forward = game.Vec3{X: su.FwdX, Y: su.FwdY, Z: su.FwdZ}
		}
		if su.Dirty&protocol.DirtyUp != 0 {
			p.Ship.Up = game.Vec3{X: su.UpX, Y: su.UpY, Z: su.UpZ}
		}
		if su.Dirty&protocol.DirtySpeed != 0 {
			p.Ship.Speed = su.Speed
		}
	}
	ctx.broadcastUnreliable(p, payload)
	ctx.Stats.RecordOpcode(protocol.OpStateUpdate, true)
}
