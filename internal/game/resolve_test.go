package game

import (
	"testing"

	"github.com/nkoval/mafia-arena/internal/domain"
)

func table(roles ...domain.Role) []domain.Player {
	players := make([]domain.Player, len(roles))
	for i, r := range roles {
		players[i] = domain.Player{UserID: int64(i + 1), Username: string(r), Role: r, IsAlive: true}
	}
	return players
}

func act(actor, target int64, kind domain.ActionKind) domain.Action {
	return domain.Action{ActorID: actor, TargetID: target, Kind: kind}
}

func TestResolveNightHealCancelsKill(t *testing.T) {
	// mafia(1) doctor(2) citizen(3) citizen(4): mafia targets 3, doctor heals 3
	players := table(domain.RoleMafia, domain.RoleDoctor, domain.RoleCitizen, domain.RoleCitizen)
	out := ResolveNight(players, []domain.Action{
		act(1, 3, domain.ActionKill),
		act(2, 3, domain.ActionHeal),
	})
	if len(out.Deaths) != 0 {
		t.Fatalf("expected no deaths, got %v", out.Deaths)
	}
}

func TestResolveNightMissedHeal(t *testing.T) {
	players := table(domain.RoleMafia, domain.RoleDoctor, domain.RoleCitizen, domain.RoleCitizen)
	out := ResolveNight(players, []domain.Action{
		act(1, 3, domain.ActionKill),
		act(2, 4, domain.ActionHeal),
	})
	if len(out.Deaths) != 1 || out.Deaths[0] != 3 {
		t.Fatalf("expected player 3 dead, got %v", out.Deaths)
	}
}

func TestResolveNightShieldAbsorbsOneKill(t *testing.T) {
	// Two kills on the same target with a single heal: the target still dies,
	// but only once.
	players := table(domain.RoleMafia, domain.RoleManiac, domain.RoleDoctor, domain.RoleCitizen, domain.RoleCitizen)
	out := ResolveNight(players, []domain.Action{
		act(1, 5, domain.ActionKill),
		act(2, 5, domain.ActionKill),
		act(3, 5, domain.ActionHeal),
	})
	if len(out.Deaths) != 1 || out.Deaths[0] != 5 {
		t.Fatalf("expected exactly one death of player 5, got %v", out.Deaths)
	}
}

func TestResolveNightInvestigationIsPrivate(t *testing.T) {
	players := table(domain.RoleMafia, domain.RoleCommissar, domain.RoleCitizen, domain.RoleCitizen, domain.RoleCitizen)
	out := ResolveNight(players, []domain.Action{
		act(2, 1, domain.ActionInvestigate),
	})
	res, ok := out.Investigations[2]
	if !ok {
		t.Fatalf("missing investigation result for actor 2")
	}
	if !res.IsMafia || res.TargetID != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(out.Investigations) != 1 {
		t.Fatalf("investigation leaked to other actors: %v", out.Investigations)
	}
}

func TestTallyVotesPlurality(t *testing.T) {
	actions := []domain.Action{
		act(1, 4, domain.ActionVote),
		act(2, 4, domain.ActionVote),
		act(3, 4, domain.ActionVote),
		act(4, 1, domain.ActionVote),
	}
	target, eliminated := TallyVotes(actions)
	if !eliminated || target != 4 {
		t.Fatalf("expected 4 eliminated, got target=%d eliminated=%v", target, eliminated)
	}
}

func TestTallyVotesTieEliminatesNobody(t *testing.T) {
	actions := []domain.Action{
		act(1, 3, domain.ActionVote),
		act(2, 3, domain.ActionVote),
		act(3, 1, domain.ActionVote),
		act(4, 1, domain.ActionVote),
	}
	if _, eliminated := TallyVotes(actions); eliminated {
		t.Fatalf("tie must not eliminate")
	}
}

func TestTallyVotesNoVotes(t *testing.T) {
	if _, eliminated := TallyVotes(nil); eliminated {
		t.Fatalf("no votes must not eliminate")
	}
}

func TestCheckWinMafiaParity(t *testing.T) {
	players := table(domain.RoleMafia, domain.RoleCitizen, domain.RoleCitizen, domain.RoleDoctor)
	players[2].IsAlive = false
	players[3].IsAlive = false
	winner, ids, over := CheckWin(players)
	if !over || winner != domain.FactionMafia {
		t.Fatalf("expected mafia win, got %q over=%v", winner, over)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("unexpected winners: %v", ids)
	}
}

func TestCheckWinTown(t *testing.T) {
	players := table(domain.RoleMafia, domain.RoleCitizen, domain.RoleCitizen, domain.RoleDoctor)
	players[0].IsAlive = false
	winner, ids, over := CheckWin(players)
	if !over || winner != domain.FactionTown {
		t.Fatalf("expected town win, got %q over=%v", winner, over)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 town winners, got %v", ids)
	}
}

func TestCheckWinManiacEndgame(t *testing.T) {
	players := table(domain.RoleMafia, domain.RoleManiac, domain.RoleCitizen, domain.RoleCitizen)
	players[0].IsAlive = false
	players[2].IsAlive = false
	winner, _, over := CheckWin(players)
	if !over || winner != domain.FactionManiac {
		t.Fatalf("expected maniac win, got %q over=%v", winner, over)
	}
}

func TestCheckWinOrderPrefersMafia(t *testing.T) {
	// Mafia parity and maniac endgame hold simultaneously: contract order
	// awards mafia.
	players := table(domain.RoleMafia, domain.RoleManiac, domain.RoleCitizen)
	players[2].IsAlive = false
	winner, _, over := CheckWin(players)
	if !over || winner != domain.FactionMafia {
		t.Fatalf("expected mafia win by ordering, got %q over=%v", winner, over)
	}
}

func TestCheckWinGameContinues(t *testing.T) {
	players := table(domain.RoleMafia, domain.RoleCitizen, domain.RoleCitizen, domain.RoleDoctor)
	if _, _, over := CheckWin(players); over {
		t.Fatalf("game should continue with 1 mafia vs 3 town")
	}
}
