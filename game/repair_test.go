package game

import "testing"

func repairTestClass() *ShipClass {
	return &ShipClass{
		HullCapacity: 100,
		NumRepairTeams: 1,
		MaxRepairPoints: 100,
		Subsystems: []SubsystemClass{
			{Type: SubsystemRepair, MaxCondition: 100, DisabledThreshold: 0.3, RepairComplexity: 1, ParentIdx: -1},
			{Type: SubsystemPhaser, MaxCondition: 100, DisabledThreshold: 0.3, RepairComplexity: 2, ParentIdx: -1},
		},
	}
}

func TestTickRepairNoopWithEmptyQueue(t *testing.T) {
	class := repairTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	s.Subsystems[1].Condition = 10
	TickRepair(s, class, 0, 1.0)
	if s.Subsystems[1].Condition != 10 {
		t.Fatalf("expected no repair with an empty queue, got %v", s.Subsystems[1].Condition)
	}
}

func TestTickRepairRestoresConditionAndDequeuesAtFullHealth(t *testing.T) {
	class := repairTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	s.Subsystems[1].Condition = 99
	s.RepairQueue = []int{1}

	TickRepair(s, class, 0, 10.0)

	if s.Subsystems[1].Condition != 100 {
		t.Fatalf("expected subsystem capped at max condition, got %v", s.Subsystems[1].Condition)
	}
	if len(s.RepairQueue) != 0 {
		t.Fatalf("expected the subsystem dequeued once fully repaired, got %v", s.RepairQueue)
	}
}

func TestTickRepairSkipsDestroyedSubsystemButKeepsItQueued(t *testing.T) {
	class := repairTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	s.Subsystems[1].Condition = 0
	s.Subsystems[1].Destroyed = true
	s.RepairQueue = []int{1}

	TickRepair(s, class, 0, 1.0)

	if s.Subsystems[1].Condition != 0 {
		t.Fatalf("a destroyed subsystem at 0 condition should receive no repair, got %v", s.Subsystems[1].Condition)
	}
	if len(s.RepairQueue) != 1 {
		t.Fatalf("expected the subsystem to remain queued, got %v", s.RepairQueue)
	}
}

func TestTickRepairAutoQueuesDamagedSubsystemsBelowThreshold(t *testing.T) {
	class := repairTestClass()
	s := NewShipState(class, 0, 1, 1, 0)
	s.Subsystems[1].Condition = 10 // 10% < 30% disabled threshold
	s.RepairQueue = []int{0}       // queue must be non-empty or TickRepair no-ops entirely

	TickRepair(s, class, 0, 0) // dt=0: no repair progress, but auto-queue still runs

	found := false
	for _, idx := range s.RepairQueue {
		if idx == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected subsystem 1 auto-queued for repair, got %v", s.RepairQueue)
	}
}
