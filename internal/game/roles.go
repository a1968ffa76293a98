package game

import (
	"errors"
	"math/rand"

	"github.com/nkoval/mafia-arena/internal/domain"
)

// MinPlayers is the smallest table a game can start with:
// one mafia, a doctor and two citizens.
const MinPlayers = 4

var ErrNotEnoughPlayers = errors.New("minimum 4 players required")

// thresholdRoles are dealt once each, in order, as the table grows.
var thresholdRoles = []struct {
	role domain.Role
	min  int
}{
	{domain.RoleCommissar, 5},
	{domain.RoleManiac, 6},
	{domain.RoleProstitute, 7},
	{domain.RoleLucky, 8},
	{domain.RoleSergeant, 9},
	{domain.RoleHomeless, 10},
	{domain.RoleLawyer, 11},
	{domain.RoleSuicide, 12},
	{domain.RoleKamikaze, 13},
}

// fillerRoles pad out the deck before falling back to plain citizens, so big
// tables get a second doctor/commissar instead of a pile of vanilla seats.
// A filler is only eligible once the table meets that role's own threshold.
var fillerRoles = []struct {
	role domain.Role
	min  int
}{
	{domain.RoleDoctor, 4},
	{domain.RoleCommissar, 5},
	{domain.RoleLucky, 8},
	{domain.RoleSergeant, 9},
}

// AssignRoles deals exactly one role per seat for a table of n players.
// Mafia count is max(1, n/4); the deck is re-derivable from n alone, only the
// shuffle order is random.
func AssignRoles(n int) ([]domain.Role, error) {
	if n < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	roles := make([]domain.Role, 0, n)

	mafia := n / 4
	if mafia < 1 {
		mafia = 1
	}
	for i := 0; i < mafia; i++ {
		roles = append(roles, domain.RoleMafia)
	}

	roles = append(roles, domain.RoleDoctor)

	for _, tr := range thresholdRoles {
		if n >= tr.min {
			roles = append(roles, tr.role)
		}
	}

	for i := 0; len(roles) < n; i++ {
		if i < len(fillerRoles) && n >= fillerRoles[i].min {
			roles = append(roles, fillerRoles[i].role)
		} else {
			roles = append(roles, domain.RoleCitizen)
		}
	}

	rand.Shuffle(len(roles), func(i, j int) {
		roles[i], roles[j] = roles[j], roles[i]
	})
	return roles, nil
}
