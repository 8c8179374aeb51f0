package game

import "testing"

func TestApplyKillCreditsKillerAndVictim(t *testing.T) {
	scores := map[int32]*ScoreRecord{}
	res := ApplyKill(scores, 1, 2, 5, false)
	if res.EndGame {
		t.Fatal("did not expect end-game at score 1 with frag limit 5")
	}
	if scores[1].Kills != 1 || scores[1].Score != 1 {
		t.Fatalf("unexpected killer record: %+v", scores[1])
	}
	if scores[2].Deaths != 1 {
		t.Fatalf("unexpected victim record: %+v", scores[2])
	}
}

func TestApplyKillSelfDestructionOnlyCountsDeath(t *testing.T) {
	scores := map[int32]*ScoreRecord{}
	ApplyKill(scores, 3, 3, 5, false)
	if scores[3].Deaths != 1 || scores[3].Kills != 0 {
		t.Fatalf("unexpected self-destruction record: %+v", scores[3])
	}
}

func TestApplyKillLatchesEndGameAtFragLimit(t *testing.T) {
	scores := map[int32]*ScoreRecord{}
	ApplyKill(scores, 1, 2, 1, false)
	res := ApplyKill(scores, 1, 2, 1, false)
	if !res.EndGame {
		t.Fatal("expected end-game on the kill that reaches the frag limit")
	}
}

func TestApplyKillSuppressesEndGameOnceLatched(t *testing.T) {
	scores := map[int32]*ScoreRecord{}
	res := ApplyKill(scores, 1, 2, 1, true)
	if res.EndGame {
		t.Fatal("expected no further EndGame once the game has already ended")
	}
}

func TestApplyKillNoLimitNeverEndsGame(t *testing.T) {
	scores := map[int32]*ScoreRecord{}
	for i := 0; i < 10; i++ {
		res := ApplyKill(scores, 1, 2, 0, false)
		if res.EndGame {
			t.Fatal("expected no end-game when frag limit is unset")
		}
	}
}
