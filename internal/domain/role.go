package domain

// Role is the closed set of parts a player can be dealt at game start.
type Role string

const (
	RoleMafia      Role = "mafia"
	RoleCitizen    Role = "citizen"
	RoleDoctor     Role = "doctor"
	RoleCommissar  Role = "commissar"
	RoleManiac     Role = "maniac"
	RoleProstitute Role = "prostitute"
	RoleLucky      Role = "lucky"
	RoleSergeant   Role = "sergeant"
	RoleHomeless   Role = "homeless"
	RoleLawyer     Role = "lawyer"
	RoleSuicide    Role = "suicide"
	RoleKamikaze   Role = "kamikaze"
)

// Faction identifies which win condition a role counts toward.
type Faction string

const (
	FactionMafia  Faction = "mafia"
	FactionTown   Faction = "town"
	FactionManiac Faction = "maniac"
)

// Faction maps a role to its alignment. Everything that is neither mafia nor
// the maniac counts as town.
func (r Role) Faction() Faction {
	switch r {
	case RoleMafia:
		return FactionMafia
	case RoleManiac:
		return FactionManiac
	default:
		return FactionTown
	}
}

// ActionKind tags a pending action. Night kinds are dispatched uniformly by
// the resolver; vote is the only day-cycle kind.
type ActionKind string

const (
	ActionVote        ActionKind = "vote"
	ActionKill        ActionKind = "kill"
	ActionHeal        ActionKind = "heal"
	ActionInvestigate ActionKind = "investigate"
	ActionProtect     ActionKind = "protect"
)

// NightAction returns the action kind a role may submit during the night,
// or "" for roles that sleep through it.
func (r Role) NightAction() ActionKind {
	switch r {
	case RoleMafia, RoleManiac:
		return ActionKill
	case RoleDoctor:
		return ActionHeal
	case RoleCommissar:
		return ActionInvestigate
	case RoleProstitute:
		return ActionProtect
	default:
		return ""
	}
}
