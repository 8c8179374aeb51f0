package game

import (
	"encoding/json"
	"os"
)

// classDoc is the on-disk shape of one ship class entry. It mirrors
// ShipClass field-for-field so a registry file can be loaded with a
// single json.Unmarshal, with no intermediate mapping layer to keep in
// sync.
type classDoc struct {
	Index       int     `json:"index"`
	Name        string  `json:"name"`
	Faction     string  `json:"faction"`
	HullCapacity float32 `json:"hull_capacity"`
	Mass        float32 `json:"mass"`

	ShieldCapacity [numFacings]float32 `json:"shield_capacity"`
	ShieldRecharge [numFacings]float32 `json:"shield_recharge"`

	MaxAngularVelocity float32 `json:"max_angular_velocity"`
	MaxLinearSpeed     float32 `json:"max_linear_speed"`
	EngineEfficiency   float32 `json:"engine_efficiency"`

	HasCloak        bool    `json:"has_cloak"`
	CloakTransition  float32 `json:"cloak_transition"`
	HasTractor      bool    `json:"has_tractor"`
	TractorMaxDamage float32 `json:"tractor_max_damage"`

	TorpedoSpeed        float32 `json:"torpedo_speed"`
	TorpedoLife         float32 `json:"torpedo_life"`
	TorpedoGuidanceLife float32 `json:"torpedo_guidance_life"`
	TorpedoHomingRate   float32 `json:"torpedo_homing_rate"`
	TorpedoDamage       float32 `json:"torpedo_damage"`
	TorpedoBlastRadius  float32 `json:"torpedo_blast_radius"`

	NumRepairTeams  int     `json:"num_repair_teams"`
	MaxRepairPoints float32 `json:"max_repair_points"`

	Subsystems []SubsystemClass `json:"subsystems"`
}

func (d classDoc) toClass() *ShipClass {
	return &ShipClass{
		Index:               d.Index,
		Name:                d.Name,
		Faction:              d.Faction,
		HullCapacity:         d.HullCapacity,
		Mass:                 d.Mass,
		ShieldCapacity:       d.ShieldCapacity,
		ShieldRecharge:       d.ShieldRecharge,
		MaxAngularVelocity:   d.MaxAngularVelocity,
		MaxLinearSpeed:       d.MaxLinearSpeed,
		EngineEfficiency:     d.EngineEfficiency,
		HasCloak:             d.HasCloak,
		CloakTransition:      d.CloakTransition,
		HasTractor:           d.HasTractor,
		TractorMaxDamage:     d.TractorMaxDamage,
		TorpedoSpeed:         d.TorpedoSpeed,
		TorpedoLife:          d.TorpedoLife,
		TorpedoGuidanceLife:  d.TorpedoGuidanceLife,
		TorpedoHomingRate:    d.TorpedoHomingRate,
		TorpedoDamage:        d.TorpedoDamage,
		TorpedoBlastRadius:   d.TorpedoBlastRadius,
		NumRepairTeams:       d.NumRepairTeams,
		MaxRepairPoints:      d.MaxRepairPoints,
		Subsystems:           d.Subsystems,
	}
}

// LoadClasses reads a ship class registry from a JSON file: an array of
// class documents indexed by their position. The hash-manifest file
// format and its distribution are out of scope; this only needs to agree
// with whatever tool produces it.
func LoadClasses(path string) ([]*ShipClass, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []classDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	classes := make([]*ShipClass, len(docs))
	for i, d := range docs {
		d.Index = i
		classes[i] = d.toClass()
	}
	return classes, nil
}

// DefaultClasses returns a small built-in registry (one cruiser-class
// hull) used when no external registry file is configured, so the server
// is runnable standalone.
func DefaultClasses() []*ShipClass {
	return []*ShipClass{
		{
			Index:        0,
			Name:         "Light Cruiser",
			Faction:      "Federation",
			HullCapacity: 100,
			Mass:         1000,
			ShieldCapacity: [numFacings]float32{100, 100, 100, 100, 100, 100},
			ShieldRecharge: [numFacings]float32{2, 2, 2, 2, 2, 2},
			MaxAngularVelocity: 0.5,
			MaxLinearSpeed:     50,
			EngineEfficiency:   1.0,
			HasCloak:           true,
			CloakTransition:    3.0,
			HasTractor:         true,
			TractorMaxDamage:   5,
			TorpedoSpeed:       120,
			TorpedoLife:        8,
			TorpedoGuidanceLife: 4,
			TorpedoHomingRate:   1.5,
			TorpedoDamage:       30,
			TorpedoBlastRadius:  8,
			NumRepairTeams:      2,
			MaxRepairPoints:     10,
			Subsystems: []SubsystemClass{
				{Type: SubsystemReactor, Name: "Reactor", LocalPos: Vec3{0, 0, 0}, Radius: 4, MaxCondition: 100, DisabledThreshold: 0.25, Critical: true, ParentIdx: -1, RepairComplexity: 2},
				{Type: SubsystemBridge, Name: "Bridge", LocalPos: Vec3{0, 1, 2}, Radius: 2, MaxCondition: 60, DisabledThreshold: 0.25, Critical: true, ParentIdx: -1, RepairComplexity: 2},
				{Type: SubsystemPhaser, Name: "Phaser Bank", LocalPos: Vec3{0, 0, 5}, Radius: 2, MaxCondition: 50, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 1,
					Weapon: WeaponClass{Damage: 25, MaxCharge: 100, ChargeRate: 20, FiringArc: 180, MaxRange: 3000, ReloadDelay: 0.5}},
				{Type: SubsystemTorpedoTube, Name: "Torpedo Tube", LocalPos: Vec3{0, 0, 6}, Radius: 2, MaxCondition: 50, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 1,
					Weapon: WeaponClass{Damage: 30, MaxCharge: 100, ChargeRate: 10, FiringArc: 60, MaxRange: 6000, ReloadDelay: 2}},
				{Type: SubsystemShield, Name: "Shield Generator", LocalPos: Vec3{0, -1, 0}, Radius: 3, MaxCondition: 60, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 1},
				{Type: SubsystemTractorBeam, Name: "Tractor Emitter", LocalPos: Vec3{0, -1, 4}, Radius: 2, MaxCondition: 40, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 1},
				{Type: SubsystemCloak, Name: "Cloaking Device", LocalPos: Vec3{0, 1, -2}, Radius: 2, MaxCondition: 40, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 2},
				{Type: SubsystemWarpDrive, Name: "Warp Drive", LocalPos: Vec3{0, 0, -4}, Radius: 3, MaxCondition: 60, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 2},
				{Type: SubsystemRepair, Name: "Repair Team Bay", LocalPos: Vec3{0, -1, -2}, Radius: 2, MaxCondition: 40, DisabledThreshold: 0.3, ParentIdx: -1, RepairComplexity: 1},
			},
		},
	}
}
