package game

import (
	"sort"

	"github.com/nkoval/mafia-arena/internal/domain"
)

// InvestigationResult is delivered privately to the investigator only.
type InvestigationResult struct {
	TargetID int64
	IsMafia  bool
}

// NightOutcome is the effect of one night's collected actions.
type NightOutcome struct {
	Deaths         []int64
	Investigations map[int64]InvestigationResult // actor -> result
}

// ResolveNight applies the night actions of a single phase instance in fixed
// priority order: protective effects first, then kills. Each heal or protect
// on a target absorbs exactly one kill addressed to that target.
func ResolveNight(players []domain.Player, actions []domain.Action) NightOutcome {
	out := NightOutcome{Investigations: make(map[int64]InvestigationResult)}

	roleOf := make(map[int64]domain.Role, len(players))
	aliveSet := make(map[int64]bool, len(players))
	for _, p := range players {
		roleOf[p.UserID] = p.Role
		aliveSet[p.UserID] = p.IsAlive
	}

	shields := make(map[int64]int)
	for _, a := range actions {
		switch a.Kind {
		case domain.ActionHeal, domain.ActionProtect:
			shields[a.TargetID]++
		case domain.ActionInvestigate:
			out.Investigations[a.ActorID] = InvestigationResult{
				TargetID: a.TargetID,
				IsMafia:  roleOf[a.TargetID] == domain.RoleMafia,
			}
		}
	}

	dead := make(map[int64]bool)
	for _, a := range actions {
		if a.Kind != domain.ActionKill {
			continue
		}
		if !aliveSet[a.TargetID] || dead[a.TargetID] {
			continue
		}
		if shields[a.TargetID] > 0 {
			shields[a.TargetID]--
			continue
		}
		dead[a.TargetID] = true
		out.Deaths = append(out.Deaths, a.TargetID)
	}
	sort.Slice(out.Deaths, func(i, j int) bool { return out.Deaths[i] < out.Deaths[j] })
	return out
}

// TallyVotes picks the plurality target among vote actions. Ties, including
// no votes at all, eliminate nobody.
func TallyVotes(actions []domain.Action) (target int64, eliminated bool) {
	counts := make(map[int64]int)
	for _, a := range actions {
		if a.Kind == domain.ActionVote {
			counts[a.TargetID]++
		}
	}

	best, bestCount, tied := int64(0), 0, false
	for id, c := range counts {
		switch {
		case c > bestCount:
			best, bestCount, tied = id, c, false
		case c == bestCount:
			tied = true
		}
	}
	if bestCount == 0 || tied {
		return 0, false
	}
	return best, true
}

// CheckWin evaluates win conditions in contract order: mafia parity, town
// sweep, maniac endgame. Winners include every member of the winning faction,
// dead or alive.
func CheckWin(players []domain.Player) (winner domain.Faction, winnerIDs []int64, over bool) {
	var aliveMafia, aliveManiac, aliveOther, aliveTotal int
	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		aliveTotal++
		switch p.Role.Faction() {
		case domain.FactionMafia:
			aliveMafia++
		case domain.FactionManiac:
			aliveManiac++
		default:
			aliveOther++
		}
	}

	switch {
	case aliveMafia > 0 && aliveMafia >= aliveManiac+aliveOther:
		winner = domain.FactionMafia
	case aliveMafia == 0 && aliveManiac == 0:
		winner = domain.FactionTown
	case aliveManiac > 0 && aliveTotal <= 2:
		winner = domain.FactionManiac
	default:
		return "", nil, false
	}

	for _, p := range players {
		if p.Role.Faction() == winner {
			winnerIDs = append(winnerIDs, p.UserID)
		}
	}
	return winner, winnerIDs, true
}
