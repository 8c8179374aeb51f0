// Package protocol defines the game-layer opcodes and message
// builders/parsers carried inside the transport envelope (see package
// wire). Every format here is bit-exact and must be preserved for client
// compatibility — see spec.md §6.
package protocol

// Game-layer opcodes: the first byte of a (reassembled) game payload.
const (
	OpSettings          = 0x00
	OpGameInit          = 0x01
	OpObjCreate         = 0x02
	OpObjCreateTeam     = 0x03
	OpBootPlayer        = 0x04
	OpPythonEvent       = 0x06
	OpStartFiring       = 0x07
	OpStopFiring        = 0x08
	OpStopFiringAt      = 0x09
	OpSubsysStatus      = 0x0A
	OpAddRepairList     = 0x0B
	OpClientEvent       = 0x0C
	OpPythonEvent2      = 0x0D
	OpStartCloak        = 0x0E
	OpStopCloak         = 0x0F
	OpStartWarp         = 0x10
	OpRepairPriority    = 0x11
	OpSetPhaserLevel    = 0x12
	OpHostMsg           = 0x13
	OpDestroyObj        = 0x14
	OpCollisionEffect   = 0x15
	OpUISettings        = 0x16
	OpDeletePlayerUI    = 0x17
	OpDeletePlayerAnim  = 0x18
	OpTorpedoFire       = 0x19
	OpBeamFire          = 0x1A
	OpTorpTypeChange    = 0x1B
	OpStateUpdate       = 0x1C
	OpObjNotFound       = 0x1D
	OpRequestObj        = 0x1E
	OpEnterSet          = 0x1F
	OpChecksumReq       = 0x20
	OpChecksumResp      = 0x21
	OpVersionMismatch   = 0x22
	OpSysChecksumFail   = 0x23
	OpFileTransfer      = 0x25
	OpFileTransferAck   = 0x27
	OpUnknown28         = 0x28
	OpExplosion         = 0x29
	OpNewPlayerInGame   = 0x2A
	OpChat              = 0x2C
	OpTeamChat          = 0x2D
	OpMissionInit       = 0x35
	OpScoreChange       = 0x36
	OpScore             = 0x37
	OpEndGame           = 0x38
	OpRestart           = 0x39
)

// StateUpdate dirty-flag bits (spec.md §4.8).
const (
	DirtyPositionAbs   = 0x01
	DirtyPositionDelta = 0x02
	DirtyForward       = 0x04
	DirtyUp            = 0x08
	DirtySpeed         = 0x10
	DirtySubsystems    = 0x20
	DirtyCloak         = 0x40
	DirtyWeapons       = 0x80
)

// TorpedoFire / BeamFire per-message flag bits.
const (
	TorpedoFlagHasTarget = 0x02
	BeamFlagHasTarget    = 0x01
)

// BootReason values carried by BootPlayer.
const (
	BootServerFull = 0x00
	BootChecksum   = 0x01
	BootAntiCheat  = 0x02
)

// TotalGameSlots is the fixed total-slots value MissionInit reports
// (9, stock-compatible — see spec.md §4.6).
const TotalGameSlots = 9

// ShipBlobPrefix is the four-byte prefix of unknown purpose but constant
// value observed at the start of every ObjCreateTeam ship blob (spec.md §9
// Open Questions). It is preserved verbatim.
var ShipBlobPrefix = [4]byte{0x08, 0x80, 0x00, 0x00}
