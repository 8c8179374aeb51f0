package game

import "testing"

func tractorTestClass() *ShipClass {
	return &ShipClass{
		HullCapacity:     100,
		TractorMaxDamage: 1.0,
		Subsystems: []SubsystemClass{
			{Type: SubsystemTractorBeam, MaxCondition: 100, ParentIdx: -1},
		},
	}
}

func TestTickTractorNoopWithoutTarget(t *testing.T) {
	class := tractorTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	s.TractorTargetID = 0
	if TickTractor(s, class, 0, nil, 1.0) {
		t.Fatal("expected no engagement without a target ID")
	}
}

func TestTickTractorReleasesBeyondMaxRange(t *testing.T) {
	class := tractorTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	target := NewShipState(class, 0, 2, 2, 0)
	s.TractorTargetID = target.ObjectID
	target.Position = Vec3{X: TractorMaxRange + 1}

	if TickTractor(s, class, 0, target, 1.0) {
		t.Fatal("expected the tractor to release beyond max range")
	}
	if s.TractorTargetID != 0 {
		t.Fatal("expected TractorTargetID cleared on release")
	}
}

func TestTickTractorAppliesDragWithinRange(t *testing.T) {
	class := tractorTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	target := NewShipState(class, 0, 2, 2, 0)
	target.Speed = 100
	s.TractorTargetID = target.ObjectID
	target.Position = Vec3{X: 100}

	if !TickTractor(s, class, 0, target, 1.0) {
		t.Fatal("expected the tractor to stay engaged within range")
	}
	if target.Speed >= 100 {
		t.Fatalf("expected drag to reduce target speed, got %v", target.Speed)
	}
}

func TestTickTractorReleasesWhenSubsystemDestroyed(t *testing.T) {
	class := tractorTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	target := NewShipState(class, 0, 2, 2, 0)
	s.TractorTargetID = target.ObjectID
	s.Subsystems[0].Condition = 0

	if TickTractor(s, class, 0, target, 1.0) {
		t.Fatal("expected release when the tractor subsystem has no condition left")
	}
}
