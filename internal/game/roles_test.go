package game

import (
	"testing"

	"github.com/nkoval/mafia-arena/internal/domain"
)

func countRoles(roles []domain.Role) map[domain.Role]int {
	m := make(map[domain.Role]int)
	for _, r := range roles {
		m[r]++
	}
	return m
}

func TestAssignRolesRejectsSmallTables(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3} {
		if _, err := AssignRoles(n); err == nil {
			t.Fatalf("expected error for n=%d", n)
		}
	}
}

func TestAssignRolesCounts(t *testing.T) {
	for n := 4; n <= 20; n++ {
		roles, err := AssignRoles(n)
		if err != nil {
			t.Fatalf("AssignRoles(%d): %v", n, err)
		}
		if len(roles) != n {
			t.Fatalf("n=%d: got %d roles", n, len(roles))
		}
		counts := countRoles(roles)
		wantMafia := n / 4
		if wantMafia < 1 {
			wantMafia = 1
		}
		if counts[domain.RoleMafia] != wantMafia {
			t.Fatalf("n=%d: mafia count %d, want %d", n, counts[domain.RoleMafia], wantMafia)
		}
		if counts[domain.RoleDoctor] == 0 {
			t.Fatalf("n=%d: no doctor dealt", n)
		}
	}
}

func TestAssignRolesThresholds(t *testing.T) {
	checks := []struct {
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
	for n := 4; n <= 20; n++ {
		roles, err := AssignRoles(n)
		if err != nil {
			t.Fatalf("AssignRoles(%d): %v", n, err)
		}
		counts := countRoles(roles)
		for _, c := range checks {
			if n < c.min && counts[c.role] > 0 {
				t.Fatalf("n=%d: role %s dealt below its threshold %d", n, c.role, c.min)
			}
			if n >= c.min && counts[c.role] == 0 {
				t.Fatalf("n=%d: role %s missing at threshold %d", n, c.role, c.min)
			}
		}
	}
}

func TestAssignRolesSingletonSpecials(t *testing.T) {
	// Threshold-only roles are never dealt twice; doctor/commissar/lucky/
	// sergeant may repeat once via the filler pass.
	roles, err := AssignRoles(20)
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	counts := countRoles(roles)
	for _, r := range []domain.Role{domain.RoleManiac, domain.RoleProstitute, domain.RoleHomeless, domain.RoleLawyer, domain.RoleSuicide, domain.RoleKamikaze} {
		if counts[r] > 1 {
			t.Fatalf("role %s dealt %d times", r, counts[r])
		}
	}
}
