package achievements

import (
	"testing"

	"github.com/nkoval/mafia-arena/internal/domain"
)

func mustLoad(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestLoadCatalog(t *testing.T) {
	c := mustLoad(t)
	if len(c.defs) != 10 {
		t.Fatalf("definitions = %d, want 10", len(c.defs))
	}
	for i := 1; i < len(c.defs); i++ {
		if c.defs[i-1].ID >= c.defs[i].ID {
			t.Fatalf("catalog not sorted by id: %d before %d", c.defs[i-1].ID, c.defs[i].ID)
		}
	}
}

func TestForUserFreshAccount(t *testing.T) {
	c := mustLoad(t)
	got := c.ForUser(&domain.User{ID: 1})
	if len(got) != len(c.defs) {
		t.Fatalf("entries = %d, want %d", len(got), len(c.defs))
	}
	for _, a := range got {
		if a.Unlocked {
			t.Fatalf("achievement %d unlocked for a fresh account", a.ID)
		}
	}
}

func TestForUserThresholds(t *testing.T) {
	c := mustLoad(t)

	unlockedIDs := func(u *domain.User) map[int]bool {
		out := map[int]bool{}
		for _, a := range c.ForUser(u) {
			if a.Unlocked {
				out[a.ID] = true
			}
		}
		return out
	}

	// One loss: played but never won.
	got := unlockedIDs(&domain.User{TotalGames: 1})
	if !got[1] || got[2] {
		t.Fatalf("one loss: %+v", got)
	}

	// Exactly at the games-played thresholds.
	got = unlockedIDs(&domain.User{TotalGames: 50, TotalWins: 25})
	for _, id := range []int{1, 2, 3, 4, 6, 7} {
		if !got[id] {
			t.Fatalf("expected %d unlocked at 50 games / 25 wins: %+v", id, got)
		}
	}
	if got[5] || got[8] {
		t.Fatalf("over-threshold unlocks: %+v", got)
	}

	// Win rate needs the minimum game count.
	got = unlockedIDs(&domain.User{TotalGames: 5, TotalWins: 5})
	if got[9] {
		t.Fatalf("win_rate unlocked below min_games: %+v", got)
	}
	got = unlockedIDs(&domain.User{TotalGames: 10, TotalWins: 6})
	if !got[9] {
		t.Fatalf("60%% over 10 games must unlock id 9: %+v", got)
	}
	if got[10] {
		t.Fatalf("80%% tier unlocked early: %+v", got)
	}
}

func TestForUserIsIdempotent(t *testing.T) {
	c := mustLoad(t)
	u := &domain.User{TotalGames: 12, TotalWins: 9}

	first := c.ForUser(u)
	second := c.ForUser(u)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("entry %d differs between evaluations: %+v vs %+v", i, first[i], second[i])
		}
	}
}
