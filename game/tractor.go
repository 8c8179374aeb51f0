package game

// TractorMaxRange is the distance beyond which an engaged tractor beam
// auto-releases.
const TractorMaxRange = 6000.0

// TickTractor applies multiplicative drag to target's speed, computed
// from max_damage * system_condition * distance_ratio * dt. Tractor
// beams deal no direct damage; out-of-range engagements auto-release.
// Returns false (and clears TractorTargetID) if the tractor released.
func TickTractor(s *ShipState, class *ShipClass, tractorSubsysIdx int, target *ShipState, dt float32) bool {
	if s.TractorTargetID == 0 || target == nil {
		return false
	}

	dist := s.Position.Sub(target.Position).Length()
	if dist > TractorMaxRange {
		s.TractorTargetID = 0
		return false
	}

	condition := float32(1.0)
	if tractorSubsysIdx >= 0 && tractorSubsysIdx < len(s.Subsystems) {
		if max := class.Subsystems[tractorSubsysIdx].MaxCondition; max > 0 {
			condition = s.Subsystems[tractorSubsysIdx].Condition / max
		}
	}
	if condition <= 0 {
		s.TractorTargetID = 0
		return false
	}

	distanceRatio := float32(1.0)
	if TractorMaxRange > 0 {
		distanceRatio = 1 - dist/TractorMaxRange
	}
	drag := class.TractorMaxDamage * condition * distanceRatio * dt
	if drag < 0 {
		drag = 0
	}
	if drag > 1 {
		drag = 1
	}
	target.Speed *= 1 - drag
	return true
}
