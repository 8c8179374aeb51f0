package protocol

import "github.com/ghostfleet/bcserver/wire"

// Each Build* function returns the opcode payload only (no transport
// framing — that's wire.BuildReliable/BuildUnreliable's job). Each Parse*
// function returns (value, ok); ok is false on any malformed input.

// BuildSettings encodes the Settings message (opcode 0x00): game time,
// collision/friendly-fire flags, the recipient's game slot, and the
// mission script name.
func BuildSettings(gameTime float32, collisionDamage, friendlyFire bool, gameSlot uint8, mapName string) []byte {
	buf := wire.NewWriteBuffer(8 + len(mapName) + 1)
	buf.WriteU8(OpSettings)
	buf.WriteF32(gameTime)
	buf.WriteBit(collisionDamage)
	buf.WriteBit(friendlyFire)
	buf.WriteU8(gameSlot)
	buf.WriteBytes([]byte(mapName))
	buf.WriteU8(0)
	return buf.Bytes()
}

// BuildGameInit encodes the (currently parameter-less) GameInit message
// (opcode 0x01).
func BuildGameInit() []byte {
	return []byte{OpGameInit}
}

// BuildUnknown28 encodes the undocumented opcode-0x28 sentinel sent before
// Settings (spec.md §9 Open Questions): just the opcode byte, no payload.
func BuildUnknown28() []byte {
	return []byte{OpUnknown28}
}

// BuildScore encodes a full Score sync message (opcode 0x37):
// [opcode][player:i32][kills:i32][deaths:i32][score:i32].
func BuildScore(playerID int32, kills, deaths, score int32) []byte {
	buf := wire.NewWriteBuffer(17)
	buf.WriteU8(OpScore)
	buf.WriteI32(playerID)
	buf.WriteI32(kills)
	buf.WriteI32(deaths)
	buf.WriteI32(score)
	return buf.Bytes()
}

// BuildScoreChange encodes a ScoreChange message (opcode 0x36). killerID==0
// means an environmental/no-credit kill; in that case the killer's
// kills/score fields are omitted.
func BuildScoreChange(killerID int32, kills, score int32, victimID int32, deaths int32) []byte {
	buf := wire.NewWriteBuffer(32)
	buf.WriteU8(OpScoreChange)
	buf.WriteI32(killerID)
	if killerID != 0 {
		buf.WriteI32(kills)
		buf.WriteI32(score)
	}
	buf.WriteI32(victimID)
	buf.WriteI32(deaths)
	buf.WriteU8(0) // extra_count, no extras
	return buf.Bytes()
}

// BuildDestroyObj encodes DestroyObj (opcode 0x14): [opcode][obj:i32].
func BuildDestroyObj(objID int32) []byte {
	buf := wire.NewWriteBuffer(5)
	buf.WriteU8(OpDestroyObj)
	buf.WriteI32(objID)
	return buf.Bytes()
}

// BuildDeletePlayerUI encodes DeletePlayerUI (opcode 0x17) for a game slot.
func BuildDeletePlayerUI(gameSlot uint8) []byte {
	return []byte{OpDeletePlayerUI, gameSlot}
}

// BuildDeletePlayerAnim encodes DeletePlayerAnim (opcode 0x18) carrying the
// departing player's display name.
func BuildDeletePlayerAnim(name string) []byte {
	buf := wire.NewWriteBuffer(2 + len(name))
	buf.WriteU8(OpDeletePlayerAnim)
	buf.WriteU8(uint8(len(name)))
	buf.WriteBytes([]byte(name))
	return buf.Bytes()
}

// BuildMissionInit encodes MissionInit (opcode 0x35): star-system index,
// the fixed TotalGameSlots, time limit, and frag limit.
func BuildMissionInit(starSystem uint8, timeLimit, fragLimit int32) []byte {
	buf := wire.NewWriteBuffer(11)
	buf.WriteU8(OpMissionInit)
	buf.WriteU8(starSystem)
	buf.WriteU8(TotalGameSlots)
	buf.WriteI32(timeLimit)
	buf.WriteI32(fragLimit)
	return buf.Bytes()
}

// BuildEndGame encodes EndGame (opcode 0x38) with a reason byte.
func BuildEndGame(reason uint8) []byte {
	return []byte{OpEndGame, reason}
}

// EndGame reasons.
const (
	EndGameReasonFragLimit = 0x00
	EndGameReasonTimeLimit = 0x01
)

// BuildBootPlayer encodes BootPlayer (opcode 0x04) with a boot reason.
func BuildBootPlayer(reason uint8) []byte {
	return []byte{OpBootPlayer, reason}
}

// BuildChat encodes Chat/TeamChat (opcodes 0x2C/0x2D):
// [opcode][sender_slot][pad:3][len:u16][ascii].
func BuildChat(team bool, senderSlot uint8, text string) []byte {
	op := uint8(OpChat)
	if team {
		op = OpTeamChat
	}
	buf := wire.NewWriteBuffer(7 + len(text))
	buf.WriteU8(op)
	buf.WriteU8(senderSlot)
	buf.WriteBytes([]byte{0, 0, 0})
	buf.WriteU16(uint16(len(text)))
	buf.WriteBytes([]byte(text))
	return buf.Bytes()
}

// ParseChat decodes a Chat/TeamChat payload.
func ParseChat(payload []byte) (senderSlot uint8, text string, ok bool) {
	buf := wire.NewBuffer(payload)
	if _, ok = buf.ReadU8(); !ok {
		return
	}
	if senderSlot, ok = buf.ReadU8(); !ok {
		return
	}
	if _, ok = buf.ReadBytes(3); !ok {
		return
	}
	var n uint16
	if n, ok = buf.ReadU16(); !ok {
		return
	}
	raw, rok := buf.ReadBytes(int(n))
	if !rok {
		ok = false
		return
	}
	return senderSlot, string(raw), true
}

// BuildObjCreateTeam encodes ObjCreateTeam (opcode 0x03):
// [opcode][owner:u8][team:u8][ship_blob...]. shipBlob is opaque
// ship-creation data supplied by the caller (already including the
// constant 4-byte prefix).
func BuildObjCreateTeam(owner, team uint8, shipBlob []byte) []byte {
	buf := wire.NewWriteBuffer(3 + len(shipBlob))
	buf.WriteU8(OpObjCreateTeam)
	buf.WriteU8(owner)
	buf.WriteU8(team)
	buf.WriteBytes(shipBlob)
	return buf.Bytes()
}

// TorpedoFire carries the fields of a parsed TorpedoFire message
// (opcode 0x19).
type TorpedoFire struct {
	ShooterID  int32
	Subsys     uint8
	Flags      uint8
	VelX, VelY, VelZ float32
	HasTarget  bool
	TargetID   int32
	ImpactX, ImpactY, ImpactZ float32
}

// BuildTorpedoFire encodes TorpedoFire. vel is a direction-only vector
// (CompressedVector3); impact is only present (and only encoded) when
// hasTarget is true.
func BuildTorpedoFire(shooterID int32, subsys uint8, vx, vy, vz float32, hasTarget bool, targetID int32, ix, iy, iz float32) []byte {
	buf := wire.NewWriteBuffer(32)
	buf.WriteU8(OpTorpedoFire)
	buf.WriteI32(shooterID)
	buf.WriteU8(subsys)
	flags := uint8(0)
	if hasTarget {
		flags |= TorpedoFlagHasTarget
	}
	buf.WriteU8(flags)
	buf.WriteCV3(vx, vy, vz)
	if hasTarget {
		buf.WriteI32(targetID)
		buf.WriteCV4(ix, iy, iz)
	}
	return buf.Bytes()
}

// ParseTorpedoFire decodes a TorpedoFire payload.
func ParseTorpedoFire(payload []byte) (TorpedoFire, bool) {
	var tf TorpedoFire
	buf := wire.NewBuffer(payload)
	var op uint8
	var ok bool
	if op, ok = buf.ReadU8(); !ok || op != OpTorpedoFire {
		return tf, false
	}
	if tf.ShooterID, ok = buf.ReadI32(); !ok {
		return tf, false
	}
	if tf.Subsys, ok = buf.ReadU8(); !ok {
		return tf, false
	}
	if tf.Flags, ok = buf.ReadU8(); !ok {
		return tf, false
	}
	if tf.VelX, tf.VelY, tf.VelZ, ok = buf.ReadCV3(); !ok {
		return tf, false
	}
	tf.HasTarget = tf.Flags&TorpedoFlagHasTarget != 0
	if tf.HasTarget {
		if tf.TargetID, ok = buf.ReadI32(); !ok {
			return tf, false
		}
		if tf.ImpactX, tf.ImpactY, tf.ImpactZ, ok = buf.ReadCV4(); !ok {
			return tf, false
		}
	}
	return tf, true
}

// BeamFire carries the fields of a parsed BeamFire message (opcode 0x1A).
type BeamFire struct {
	ShooterID int32
	Flags     uint8
	DirX, DirY, DirZ float32
	MoreFlags uint8
	HasTarget bool
	TargetID  int32
}

// BuildBeamFire encodes BeamFire.
func BuildBeamFire(shooterID int32, flags uint8, dx, dy, dz float32, hasTarget bool, targetID int32) []byte {
	buf := wire.NewWriteBuffer(24)
	buf.WriteU8(OpBeamFire)
	buf.WriteI32(shooterID)
	buf.WriteU8(flags)
	buf.WriteCV3(dx, dy, dz)
	more := uint8(0)
	if hasTarget {
		more |= BeamFlagHasTarget
	}
	buf.WriteU8(more)
	if hasTarget {
		buf.WriteI32(targetID)
	}
	return buf.Bytes()
}

// ParseBeamFire decodes a BeamFire payload.
func ParseBeamFire(payload []byte) (BeamFire, bool) {
	var bf BeamFire
	buf := wire.NewBuffer(payload)
	var op uint8
	var ok bool
	if op, ok = buf.ReadU8(); !ok || op != OpBeamFire {
		return bf, false
	}
	if bf.ShooterID, ok = buf.ReadI32(); !ok {
		return bf, false
	}
	if bf.Flags, ok = buf.ReadU8(); !ok {
		return bf, false
	}
	if bf.DirX, bf.DirY, bf.DirZ, ok = buf.ReadCV3(); !ok {
		return bf, false
	}
	if bf.MoreFlags, ok = buf.ReadU8(); !ok {
		return bf, false
	}
	bf.HasTarget = bf.MoreFlags&BeamFlagHasTarget != 0
	if bf.HasTarget {
		if bf.TargetID, ok = buf.ReadI32(); !ok {
			return bf, false
		}
	}
	return bf, true
}

// BuildExplosion encodes Explosion (opcode 0x29), a fixed 14 bytes:
// [opcode][obj:i32][impact:CV4][damage:CF16][radius:CF16].
func BuildExplosion(objID int32, ix, iy, iz float32, damage, radius float32) []byte {
	buf := wire.NewWriteBuffer(14)
	buf.WriteU8(OpExplosion)
	buf.WriteI32(objID)
	buf.WriteCV4(ix, iy, iz)
	buf.WriteCF16(damage)
	buf.WriteCF16(radius)
	return buf.Bytes()
}

// StateUpdate carries the parsed fields of a StateUpdate message
// (opcode 0x1C) present per the dirty-flag bitmask.
type StateUpdate struct {
	ObjectID int32
	GameTime float32
	Dirty    uint8

	PosX, PosY, PosZ          float32
	DeltaX, DeltaY, DeltaZ    float32
	FwdX, FwdY, FwdZ          float32
	UpX, UpY, UpZ             float32
	Speed                     float32
	CloakState                uint8
}

// BuildStateUpdateHeader encodes the fixed header of StateUpdate; fields is
// the already-encoded variable section (built per the dirty bitmask by the
// caller, matching the order: pos-abs, pos-delta, fwd, up, speed,
// subsystems, cloak, weapons).
func BuildStateUpdateHeader(objID int32, gameTime float32, dirty uint8, fields []byte) []byte {
	buf := wire.NewWriteBuffer(7 + len(fields))
	buf.WriteU8(OpStateUpdate)
	buf.WriteI32(objID)
	buf.WriteF32(gameTime)
	buf.WriteU8(dirty)
	buf.WriteBytes(fields)
	return buf.Bytes()
}

// ParseStateUpdate decodes a StateUpdate payload per its dirty bitmask.
func ParseStateUpdate(payload []byte) (StateUpdate, bool) {
	var su StateUpdate
	buf := wire.NewBuffer(payload)
	var op uint8
	var ok bool
	if op, ok = buf.ReadU8(); !ok || op != OpStateUpdate {
		return su, false
	}
	if su.ObjectID, ok = buf.ReadI32(); !ok {
		return su, false
	}
	if su.GameTime, ok = buf.ReadF32(); !ok {
		return su, false
	}
	if su.Dirty, ok = buf.ReadU8(); !ok {
		return su, false
	}
	if su.Dirty&DirtyPositionAbs != 0 {
		if su.PosX, ok = buf.ReadF32(); !ok {
			return su, false
		}
		if su.PosY, ok = buf.ReadF32(); !ok {
			return su, false
		}
		if su.PosZ, ok = buf.ReadF32(); !ok {
			return su, false
		}
		if _, ok = buf.ReadBit(); !ok { // optional hash bit, unused
			return su, false
		}
	}
	if su.Dirty&DirtyPositionDelta != 0 {
		if su.DeltaX, su.DeltaY, su.DeltaZ, ok = buf.ReadCV4(); !ok {
			return su, false
		}
	}
	if su.Dirty&DirtyForward != 0 {
		if su.FwdX, su.FwdY, su.FwdZ, ok = buf.ReadCV3(); !ok {
			return su, false
		}
	}
	if su.Dirty&DirtyUp != 0 {
		if su.UpX, su.UpY, su.UpZ, ok = buf.ReadCV3(); !ok {
			return su, false
		}
	}
	if su.Dirty&DirtySpeed != 0 {
		if su.Speed, ok = buf.ReadCF16(); !ok {
			return su, false
		}
	}
	if su.Dirty&DirtyCloak != 0 {
		if su.CloakState, ok = buf.ReadU8(); !ok {
			return su, false
		}
	}
	// Subsystem (0x20) and weapon-state (0x80) round-robin fields are
	// opaque blobs owned by the dispatcher's strip-and-relay logic; callers
	// that need them re-slice payload themselves using buf.Pos().
	return su, true
}

// CollisionEffect carries the parsed fields of a client-reported collision
// (opcode 0x15).
type CollisionEffect struct {
	SourceID int32
	TargetID int32
	Energy   float32
}

// BuildCollisionEffect encodes a collision report.
func BuildCollisionEffect(sourceID, targetID int32, energy float32) []byte {
	buf := wire.NewWriteBuffer(13)
	buf.WriteU8(OpCollisionEffect)
	buf.WriteI32(sourceID)
	buf.WriteI32(targetID)
	buf.WriteF32(energy)
	return buf.Bytes()
}

// ParseCollisionEffect decodes a collision report.
func ParseCollisionEffect(payload []byte) (CollisionEffect, bool) {
	var ce CollisionEffect
	buf := wire.NewBuffer(payload)
	var op uint8
	var ok bool
	if op, ok = buf.ReadU8(); !ok || op != OpCollisionEffect {
		return ce, false
	}
	if ce.SourceID, ok = buf.ReadI32(); !ok {
		return ce, false
	}
	if ce.TargetID, ok = buf.ReadI32(); !ok {
		return ce, false
	}
	if ce.Energy, ok = buf.ReadF32(); !ok {
		return ce, false
	}
	return ce, true
}

// ChecksumRequest encodes a CHECKSUM_REQ (opcode 0x20) for the given round.
// Round 0xFF is the terminal round.
func BuildChecksumRequest(round uint8) []byte {
	return []byte{OpChecksumReq, round}
}

// ChecksumResponse carries the parsed fields of a CHECKSUM_RESP
// (opcode 0x21): a directory content hash plus file/subdir counts.
type ChecksumResponse struct {
	Round       uint8
	DirHash     uint32
	FileCount   uint16
	SubdirCount uint16
}

// ParseChecksumResponse decodes a CHECKSUM_RESP payload.
func ParseChecksumResponse(payload []byte) (ChecksumResponse, bool) {
	var cr ChecksumResponse
	buf := wire.NewBuffer(payload)
	var op uint8
	var ok bool
	if op, ok = buf.ReadU8(); !ok || op != OpChecksumResp {
		return cr, false
	}
	if cr.Round, ok = buf.ReadU8(); !ok {
		return cr, false
	}
	if cr.DirHash, ok = buf.ReadU32(); !ok {
		return cr, false
	}
	if cr.FileCount, ok = buf.ReadU16(); !ok {
		return cr, false
	}
	if cr.SubdirCount, ok = buf.ReadU16(); !ok {
		return cr, false
	}
	return cr, true
}

// KeepaliveName decodes the UTF-16LE player name carried in the first
// keepalive a client sends, starting at payload offset 8 (spec.md §4.3).
func KeepaliveName(payload []byte) (string, bool) {
	if len(payload) < 8 {
		return "", false
	}
	raw := payload[8:]
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	runes := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		u := uint16(raw[i]) | uint16(raw[i+1])<<8
		if u == 0 {
			break
		}
		runes = append(runes, u)
	}
	return decodeUTF16(runes), true
}

func decodeUTF16(in []uint16) string {
	out := make([]rune, 0, len(in))
	for i := 0; i < len(in); i++ {
		r := in[i]
		if r >= 0xD800 && r <= 0xDBFF && i+1 < len(in) {
			r2 := in[i+1]
			if r2 >= 0xDC00 && r2 <= 0xDFFF {
				out = append(out, ((rune(r)-0xD800)<<10|(rune(r2)-0xDC00))+0x10000)
				i++
				continue
			}
		}
		out = append(out, rune(r))
	}
	return string(out)
}
