package game

// TickShieldRecharge runs the two-pass recharge: each facing gains
// recharge_rate * power * dt capped at its class maximum; any overflow
// from capped facings is then redistributed among non-full facings
// proportionally to their remaining headroom. Skipped entirely while
// cloaked (shield HP is preserved, not zeroed, so it resumes on decloak).
func TickShieldRecharge(s *ShipState, class *ShipClass, power PowerLevel, dt float32) {
	if s.CloakState != CloakDecloaked {
		return
	}

	var overflow float32
	for f := ShieldFacing(0); f < numFacings; f++ {
		gained := class.ShieldRecharge[f] * power * dt
		next := s.Shields[f] + gained
		if max := class.ShieldCapacity[f]; next > max {
			overflow += next - max
			next = max
		}
		s.Shields[f] = next
	}
	if overflow <= 0 {
		return
	}

	var totalHeadroom float32
	headroom := [numFacings]float32{}
	for f := ShieldFacing(0); f < numFacings; f++ {
		h := class.ShieldCapacity[f] - s.Shields[f]
		if h < 0 {
			h = 0
		}
		headroom[f] = h
		totalHeadroom += h
	}
	if totalHeadroom <= 0 {
		return
	}

	for f := ShieldFacing(0); f < numFacings; f++ {
		if headroom[f] <= 0 {
			continue
		}
		share := overflow * (headroom[f] / totalHeadroom)
		if share > headroom[f] {
			share = headroom[f]
		}
		s.Shields[f] += share
	}
}
