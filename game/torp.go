package game

// MaxTorpedoRange returns the absolute maximum distance a torpedo can fly
// before its fuse (guidance/life) expires: speed * life-in-seconds.
func MaxTorpedoRange(speed, life float32) float32 {
	return speed * life
}

// EffectiveTorpedoRange applies a safety margin to MaxTorpedoRange so a
// fire-rate/range check only accepts shots reasonably likely to connect
// before the torpedo expires.
func EffectiveTorpedoRange(speed, life, safetyMargin float32) float32 {
	return MaxTorpedoRange(speed, life) * safetyMargin
}

// DefaultTorpedoRangeSafety is the default safety margin used by the
// validated-relay range check in the dispatcher.
const DefaultTorpedoRangeSafety = 0.9

// SpawnTorpedo finds a free slot in slab and initializes a torpedo fired
// by shooterSlot from pos toward dir (normalized). targetID is 0 for a
// dumbfire shot. Returns the slab index and true, or -1, false if the
// slab is full.
func SpawnTorpedo(slab []Torpedo, class *ShipClass, shooterSlot int32, pos, dir Vec3, targetID int32) (int, bool) {
	for i := range slab {
		if slab[i].Active {
			continue
		}
		slab[i] = Torpedo{
			Active:       true,
			ShooterSlot:  shooterSlot,
			TargetID:     targetID,
			Position:     pos,
			Direction:    dir.Normalized(),
			Speed:        class.TorpedoSpeed,
			Damage:       class.TorpedoDamage,
			BlastRadius:  class.TorpedoBlastRadius,
			Life:         class.TorpedoLife,
			GuidanceLife: class.TorpedoGuidanceLife,
			HomingRate:   class.TorpedoHomingRate,
		}
		return i, true
	}
	return -1, false
}

// TorpedoHitRadius is the fixed proximity distance a torpedo must reach
// its target's position within to register a hit.
const TorpedoHitRadius = 5.0

// TargetLookup resolves a live object's current position for torpedo
// homing, matching the callback abstraction called for in the design
// notes: an interface rather than a raw function pointer with user data.
type TargetLookup interface {
	TargetPosition(objectID int32) (Vec3, bool)
}

// HitCallback is invoked when a torpedo reaches its target (or, for a
// dumbfire shot, its own expiry position is irrelevant — dumbfires only
// ever expire, they never call Hit).
type HitCallback interface {
	Hit(shooterSlot int32, targetID int32, damage, blastRadius float32, impact Vec3)
}

// TickTorpedoes advances every active torpedo by dt seconds: homing
// toward its target while guidance life remains, checking proximity, and
// expiring on zero life. lookup and hit may be nil only in tests that
// don't exercise homing/hits.
func TickTorpedoes(slab []Torpedo, dt float32, lookup TargetLookup, hit HitCallback) {
	for i := range slab {
		t := &slab[i]
		if !t.Active {
			continue
		}

		if t.TargetID != 0 && t.GuidanceLife > 0 && lookup != nil {
			if targetPos, ok := lookup.TargetPosition(t.TargetID); ok {
				desired := targetPos.Sub(t.Position).Normalized()
				t.Direction = blendDirection(t.Direction, desired, t.HomingRate*dt)
			}
			t.GuidanceLife -= dt
			if t.GuidanceLife < 0 {
				t.GuidanceLife = 0
			}
		}

		t.Position = t.Position.Add(t.Direction.Scale(t.Speed * dt))

		if t.TargetID != 0 && lookup != nil {
			if targetPos, ok := lookup.TargetPosition(t.TargetID); ok {
				if t.Position.Sub(targetPos).Length() <= TorpedoHitRadius {
					if hit != nil {
						hit.Hit(t.ShooterSlot, t.TargetID, t.Damage, t.BlastRadius, t.Position)
					}
					t.Active = false
					continue
				}
			}
		}

		t.Life -= dt
		if t.Life <= 0 {
			t.Active = false
		}
	}
}

// blendDirection rotates current toward desired by at most maxAngle
// (radians), via the same Rodrigues approach as ship turning.
func blendDirection(current, desired Vec3, maxAngle float32) Vec3 {
	return rotateToward(current, desired, maxAngle)
}
