// Package game holds the ship-class registry, mutable ship/torpedo state,
// and the 10 Hz simulation tick: movement, weapons, shields, cloak,
// repair, tractor, torpedo flight, damage resolution, and scoring.
package game

import "math"

// Tick cadence: the simulation advances at 10 Hz.
const TickInterval = 0.1 // seconds

// MaxTorpedoes bounds the global torpedo slab.
const MaxTorpedoes = 32

// MaxPeers is the fixed peer-slot count; slot 0 is reserved.
const MaxPeers = 7

// Object identifier space: base value plus 2^18 consecutive IDs per slot.
const (
	ObjectIDBase     int32 = 0x3FFFFFFF
	ObjectIDsPerSlot int32 = 1 << 18
)

// SlotForObjectID returns the game slot owning id, per the arithmetic
// bijection slot = (id - base) / 2^18.
func SlotForObjectID(id int32) int32 {
	return (id - ObjectIDBase) / ObjectIDsPerSlot
}

// FirstObjectIDForSlot returns the primary (ship) object ID for slot.
func FirstObjectIDForSlot(slot int32) int32 {
	return ObjectIDBase + slot*ObjectIDsPerSlot
}

// SubsystemType enumerates the kinds of subsystem a ship class can carry.
type SubsystemType string

const (
	SubsystemHull        SubsystemType = "hull"
	SubsystemPhaser      SubsystemType = "phaser"
	SubsystemPulseWeapon SubsystemType = "pulse_weapon"
	SubsystemTorpedoTube SubsystemType = "torpedo_tube"
	SubsystemShield      SubsystemType = "shield"
	SubsystemTractorBeam SubsystemType = "tractor_beam"
	SubsystemCloak       SubsystemType = "cloak"
	SubsystemReactor     SubsystemType = "reactor"
	SubsystemWarpDrive   SubsystemType = "warp_drive"
	SubsystemRepair      SubsystemType = "repair"
	SubsystemBridge      SubsystemType = "bridge"
)

// Vec3 is a plain 3-component vector; the simulation does its own trig
// rather than pulling in a generic math/3d library, matching the source's
// hand-rolled vector math.
type Vec3 struct{ X, Y, Z float32 }

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}
func (v Vec3) Length() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l < 1e-6 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// ShieldFacing indexes the six shield facings of a ship.
type ShieldFacing int

const (
	FacingFront ShieldFacing = iota
	FacingRear
	FacingTop
	FacingBottom
	FacingLeft
	FacingRight
	numFacings
)

// WeaponClass is the read-only firing profile of a phaser/pulse bank or
// torpedo tube, taken from the ship class registry.
type WeaponClass struct {
	Damage      float32
	MaxCharge   float32
	ChargeRate  float32
	FiringArc   float32 // degrees, full cone width
	MaxRange    float32
	ReloadDelay float32 // seconds
}

// SubsystemClass is one read-only subsystem definition within a ship
// class: its placement, hit box, health, and (for weapon subsystems) its
// firing profile.
type SubsystemClass struct {
	Type               SubsystemType
	Name               string
	LocalPos           Vec3
	Radius             float32
	MaxCondition        float32
	DisabledThreshold  float32 // fraction of MaxCondition below which disabled
	Critical           bool
	ParentIdx          int // index into ShipClass.Subsystems, -1 if none
	RepairComplexity   float32
	Weapon             WeaponClass // zero value if not a weapon subsystem
}

// ShipClass is the read-only registry entry for one ship type.
type ShipClass struct {
	Index       int
	Name        string
	Faction     string
	HullCapacity float32
	Mass        float32

	ShieldCapacity [numFacings]float32
	ShieldRecharge [numFacings]float32

	MaxAngularVelocity float32 // radians/sec
	MaxLinearSpeed     float32
	EngineEfficiency   float32

	HasCloak       bool
	CloakTransition float32 // seconds, ~3
	HasTractor     bool
	TractorMaxDamage float32

	TorpedoSpeed float32
	TorpedoLife  float32 // seconds of flight before fuse expiry
	TorpedoGuidanceLife float32
	TorpedoHomingRate   float32
	TorpedoDamage       float32
	TorpedoBlastRadius  float32

	NumRepairTeams  int
	MaxRepairPoints float32

	Subsystems []SubsystemClass
}

// CloakState enumerates the four-state cloak machine.
type CloakState int

const (
	CloakDecloaked CloakState = iota
	CloakCloaking
	CloakCloaked
	CloakDecloaking
)

// SubsystemState is the mutable per-ship condition of one subsystem.
type SubsystemState struct {
	Condition float32
	Destroyed bool
}

// WeaponState is the mutable per-bank/tube firing state.
type WeaponState struct {
	Charge      float32
	Cooldown    float32
}

// ShipState is the mutable, per-live-ship runtime state.
type ShipState struct {
	ClassIndex int
	ObjectID   int32
	OwnerSlot  int32
	Team       uint8

	Position Vec3
	Forward  Vec3
	Up       Vec3
	Speed    float32

	Hull    float32
	Shields [numFacings]float32

	Subsystems []SubsystemState
	Weapons    []WeaponState

	CloakState CloakState
	CloakTimer float32

	CurrentTorpedoType int
	TypeSwitchTimer    float32

	TractorTargetID int32 // 0 = none

	RepairQueue []int // subsystem indices, FIFO

	Alive bool

	DesiredPoint Vec3 // steering target for movement tick
	HasHeading   bool
}

// NewShipState initializes a fresh ship from its class defaults: full
// health, full charge, zero cooldowns, decloaked, identity orientation.
func NewShipState(class *ShipClass, classIndex int, objectID int32, ownerSlot int32, team uint8) *ShipState {
	s := &ShipState{
		ClassIndex: classIndex,
		ObjectID:   objectID,
		OwnerSlot:  ownerSlot,
		Team:       team,
		Forward:    Vec3{0, 0, 1},
		Up:         Vec3{0, 1, 0},
		Hull:       class.HullCapacity,
		CloakState: CloakDecloaked,
		Alive:      true,
	}
	s.Shields = class.ShieldCapacity
	s.Subsystems = make([]SubsystemState, len(class.Subsystems))
	for i, sc := range class.Subsystems {
		s.Subsystems[i] = SubsystemState{Condition: sc.MaxCondition}
	}
	s.Weapons = make([]WeaponState, len(class.Subsystems))
	s.TractorTargetID = 0
	return s
}

// Torpedo is one live entry in the global torpedo slab.
type Torpedo struct {
	Active      bool
	ShooterSlot int32
	Slot        int // index within the owning shooter's tube bank
	TargetID    int32 // 0 means dumbfire
	Position    Vec3
	Direction   Vec3 // normalized
	Speed       float32
	Damage      float32
	BlastRadius float32
	Life        float32 // seconds remaining
	GuidanceLife float32
	HomingRate  float32 // radians/sec
}
