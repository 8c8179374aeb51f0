package game

// hasCloakSubsystem reports whether class has a live (not destroyed)
// cloak subsystem on s.
func hasCloakSubsystem(s *ShipState, class *ShipClass) (idx int, ok bool) {
	for i, sc := range class.Subsystems {
		if sc.Type == SubsystemCloak {
			return i, !s.Subsystems[i].Destroyed
		}
	}
	return -1, false
}

// StartCloak transitions a decloaked ship with a live cloak subsystem
// into the cloaking state. Returns false if the preconditions aren't met.
func StartCloak(s *ShipState, class *ShipClass) bool {
	if s.CloakState != CloakDecloaked {
		return false
	}
	if _, ok := hasCloakSubsystem(s, class); !ok {
		return false
	}
	s.CloakState = CloakCloaking
	s.CloakTimer = class.CloakTransition
	return true
}

// StartDecloak transitions a cloaked ship into the decloaking state.
func StartDecloak(s *ShipState, class *ShipClass) bool {
	if s.CloakState != CloakCloaked {
		return false
	}
	s.CloakState = CloakDecloaking
	s.CloakTimer = class.CloakTransition
	return true
}

// TickCloak advances the cloak timer and flips state at expiry. On the
// decloaking->decloaked transition, any shield facing sitting at 0 HP is
// reset to 1.0 so the first hit after decloak isn't an instant breach.
func TickCloak(s *ShipState, dt float32) {
	if s.CloakState != CloakCloaking && s.CloakState != CloakDecloaking {
		return
	}
	s.CloakTimer -= dt
	if s.CloakTimer > 0 {
		return
	}
	switch s.CloakState {
	case CloakCloaking:
		s.CloakState = CloakCloaked
	case CloakDecloaking:
		s.CloakState = CloakDecloaked
		for f := range s.Shields {
			if s.Shields[f] <= 0 {
				s.Shields[f] = 1.0
			}
		}
	}
}
