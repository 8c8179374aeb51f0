package game

// DamageKind distinguishes a single-facing directed hit from an
// area-effect impact that splits across all six facings.
type DamageKind int

const (
	DamageDirected DamageKind = iota
	DamageAreaEffect
)

// DamageResult reports what a ResolveDamage call actually did, so callers
// (scoring, health-broadcast) can react without re-deriving state.
type DamageResult struct {
	HullDamage       float32
	Died             bool
	DestroyedSubsystems []int
}

// localFacing transforms impactDir (attacker->target, world space) into
// the target's local frame and returns the dominant-axis facing.
func localFacing(s *ShipState, impactDir Vec3) ShieldFacing {
	right := s.Forward.Cross(s.Up)
	local := Vec3{
		X: impactDir.Dot(right),
		Y: impactDir.Dot(s.Up),
		Z: impactDir.Dot(s.Forward),
	}

	ax, ay, az := absf(local.X), absf(local.Y), absf(local.Z)
	switch {
	case az >= ax && az >= ay:
		if local.Z >= 0 {
			return FacingFront
		}
		return FacingRear
	case ay >= ax && ay >= az:
		if local.Y >= 0 {
			return FacingTop
		}
		return FacingBottom
	default:
		if local.X >= 0 {
			return FacingRight
		}
		return FacingLeft
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// ResolveDamage applies an impact to s: shield-facing absorption (skipped
// entirely while cloaked), hull overflow, and subsystem damage via
// AABB overlap between the subsystem's bounding cube and the damage cube
// centered at the local-frame impact point.
func ResolveDamage(s *ShipState, class *ShipClass, kind DamageKind, impactDir Vec3, localImpact Vec3, amount, effectiveRadius float32) DamageResult {
	var result DamageResult

	cloaked := s.CloakState != CloakDecloaked
	var overflow float32

	if cloaked {
		overflow = amount
	} else if kind == DamageAreaEffect {
		share := amount / float32(numFacings)
		for f := ShieldFacing(0); f < numFacings; f++ {
			absorbed := share
			if absorbed > s.Shields[f] {
				overflow += absorbed - s.Shields[f]
				absorbed = s.Shields[f]
			}
			s.Shields[f] -= absorbed
		}
	} else {
		f := localFacing(s, impactDir)
		absorbed := amount
		if absorbed > s.Shields[f] {
			overflow = absorbed - s.Shields[f]
			absorbed = s.Shields[f]
		}
		s.Shields[f] -= absorbed
	}

	s.Hull -= overflow
	result.HullDamage = overflow
	if s.Hull <= 0 {
		s.Hull = 0
		s.Alive = false
		result.Died = true
	}

	applySubsystemDamage(s, class, localImpact, effectiveRadius, overflow, &result)

	if result.Died {
		return result
	}
	for _, idx := range result.DestroyedSubsystems {
		if class.Subsystems[idx].Critical {
			s.Hull = 0
			s.Alive = false
			result.Died = true
			break
		}
	}
	return result
}

// applySubsystemDamage finds every subsystem whose bounding cube
// (centered at LocalPos, half-extent Radius) intersects the damage cube
// (centered at localImpact, half-extent effectiveRadius) and applies
// overflow * 0.5, propagating 25% of that to the parent container.
func applySubsystemDamage(s *ShipState, class *ShipClass, localImpact Vec3, effectiveRadius, overflow float32, result *DamageResult) {
	if overflow <= 0 {
		return
	}
	subsystemShare := overflow * 0.5

	for i, sc := range class.Subsystems {
		if s.Subsystems[i].Destroyed {
			continue
		}
		if !cubesOverlap(sc.LocalPos, sc.Radius, localImpact, effectiveRadius) {
			continue
		}

		cur := &s.Subsystems[i]
		cur.Condition -= subsystemShare
		if cur.Condition <= 0 {
			cur.Condition = 0
			cur.Destroyed = true
			result.DestroyedSubsystems = append(result.DestroyedSubsystems, i)
		}

		if sc.ParentIdx >= 0 && sc.ParentIdx < len(s.Subsystems) && !s.Subsystems[sc.ParentIdx].Destroyed {
			parent := &s.Subsystems[sc.ParentIdx]
			parent.Condition -= subsystemShare * 0.25
			if parent.Condition <= 0 {
				parent.Condition = 0
				parent.Destroyed = true
				result.DestroyedSubsystems = append(result.DestroyedSubsystems, sc.ParentIdx)
			}
		}
	}
}

// cubesOverlap reports whether two axis-aligned cubes (center +
// half-extent) intersect on every axis.
func cubesOverlap(centerA Vec3, halfA float32, centerB Vec3, halfB float32) bool {
	return absf(centerA.X-centerB.X) <= halfA+halfB &&
		absf(centerA.Y-centerB.Y) <= halfA+halfB &&
		absf(centerA.Z-centerB.Z) <= halfA+halfB
}

// CollisionDamage computes the clamped [0, 0.5*hull] collision-effect
// damage formula from reported energy.
func CollisionDamage(hullCapacity, energy float32) float32 {
	d := energy
	limit := hullCapacity * 0.5
	if d > limit {
		d = limit
	}
	if d < 0 {
		d = 0
	}
	return d
}

// CollisionMaxProximity is the implausibility threshold beyond which a
// reported collision is rejected outright.
const CollisionMaxProximity = 2000.0
