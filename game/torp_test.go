package game

import "testing"

func TestMaxTorpedoRange(t *testing.T) {
	if got := MaxTorpedoRange(300, 30); got != 9000 {
		t.Fatalf("expected 9000, got %v", got)
	}
}

func TestEffectiveTorpedoRange(t *testing.T) {
	got := EffectiveTorpedoRange(300, 30, DefaultTorpedoRangeSafety)
	want := float32(9000 * 0.9)
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func torpedoClass() *ShipClass {
	return &ShipClass{
		TorpedoSpeed:        300,
		TorpedoLife:         30,
		TorpedoGuidanceLife: 20,
		TorpedoHomingRate:   1.0,
		TorpedoDamage:       40,
		TorpedoBlastRadius:  10,
	}
}

func TestSpawnTorpedoFillsFreeSlot(t *testing.T) {
	class := torpedoClass()
	slab := make([]Torpedo, 2)
	idx, ok := SpawnTorpedo(slab, class, 1, Vec3{0, 0, 0}, Vec3{0, 0, 1}, 5)
	if !ok || idx != 0 {
		t.Fatalf("expected slot 0, got idx=%d ok=%v", idx, ok)
	}
	if !slab[0].Active || slab[0].TargetID != 5 || slab[0].Speed != 300 {
		t.Fatalf("unexpected torpedo state: %+v", slab[0])
	}
}

func TestSpawnTorpedoFailsWhenSlabFull(t *testing.T) {
	class := torpedoClass()
	slab := []Torpedo{{Active: true}}
	_, ok := SpawnTorpedo(slab, class, 1, Vec3{}, Vec3{0, 0, 1}, 0)
	if ok {
		t.Fatal("expected failure on a full slab")
	}
}

type fakeLookup struct {
	pos Vec3
	ok  bool
}

func (f fakeLookup) TargetPosition(objectID int32) (Vec3, bool) { return f.pos, f.ok }

type fakeHitRecorder struct {
	hit     bool
	shooter int32
	target  int32
	damage  float32
	blastR  float32
}

func (f *fakeHitRecorder) Hit(shooterSlot int32, targetID int32, damage, blastRadius float32, impact Vec3) {
	f.hit = true
	f.shooter = shooterSlot
	f.target = targetID
	f.damage = damage
	f.blastR = blastRadius
}

func TestTickTorpedoesExpiresOnZeroLife(t *testing.T) {
	slab := []Torpedo{{Active: true, Direction: Vec3{0, 0, 1}, Speed: 100, Life: 0.05}}
	TickTorpedoes(slab, 0.1, nil, nil)
	if slab[0].Active {
		t.Fatal("expected torpedo to expire")
	}
}

func TestTickTorpedoesHitsTargetWithinRadius(t *testing.T) {
	rec := &fakeHitRecorder{}
	lookup := fakeLookup{pos: Vec3{0, 0, 1}, ok: true}
	slab := []Torpedo{{
		Active:      true,
		TargetID:    7,
		ShooterSlot: 2,
		Position:    Vec3{0, 0, 0},
		Direction:   Vec3{0, 0, 1},
		Speed:       100,
		Life:        10,
		Damage:      40,
		BlastRadius: 10,
	}}
	TickTorpedoes(slab, 0.1, lookup, rec)
	if slab[0].Active {
		t.Fatal("expected torpedo to detonate on proximity")
	}
	if !rec.hit || rec.shooter != 2 || rec.target != 7 || rec.damage != 40 {
		t.Fatalf("unexpected hit callback state: %+v", rec)
	}
}

func TestTickTorpedoesHomesTowardTarget(t *testing.T) {
	lookup := fakeLookup{pos: Vec3{100, 0, 0}, ok: true}
	slab := []Torpedo{{
		Active:       true,
		TargetID:     3,
		Position:     Vec3{0, 0, 0},
		Direction:    Vec3{0, 0, 1},
		Speed:        0, // isolate homing from position integration
		Life:         10,
		GuidanceLife: 5,
		HomingRate:   10,
	}}
	TickTorpedoes(slab, 0.1, lookup, nil)
	if slab[0].Direction.Z >= 1 {
		t.Fatalf("expected direction to turn toward target, got %+v", slab[0].Direction)
	}
	if slab[0].GuidanceLife >= 5 {
		t.Fatalf("expected guidance life to tick down, got %v", slab[0].GuidanceLife)
	}
}
