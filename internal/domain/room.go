package domain

import (
	"time"
)

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Phase is the atomic unit of in-game time. Empty while the room is waiting.
type Phase string

const (
	PhaseNight  Phase = "night"
	PhaseDay    Phase = "day"
	PhaseVoting Phase = "voting"
)

// Player is a room-membership record. It persists after elimination so the
// client can keep rendering the seat.
type Player struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role,omitempty"`
	IsAlive  bool   `json:"is_alive"`
	IsBot    bool   `json:"is_bot,omitempty"`
}

// Action is one pending night action or day vote. Actions are ephemeral:
// keyed by actor within a single phase instance and discarded on resolution.
type Action struct {
	ID            string     `json:"id"`
	ActorID       int64      `json:"actor_id"`
	TargetID      int64      `json:"target_id"`
	Kind          ActionKind `json:"kind"`
	Phase         Phase      `json:"phase"`
	PhaseInstance string     `json:"phase_instance"`
	SubmittedAt   time.Time  `json:"submitted_at"`
}

// Room is stored as a single JSON blob in Redis so that every mutation and
// every phase resolution is atomic with respect to readers.
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     RoomStatus `json:"status"`
	MaxPlayers int        `json:"max_players"`
	HostID     int64      `json:"host_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Phase         Phase      `json:"current_phase,omitempty"`
	PhaseEndsAt   *time.Time `json:"phase_ends_at,omitempty"`
	PhaseInstance string     `json:"phase_instance,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`

	Players []Player         `json:"players"`
	Actions map[int64]Action `json:"actions,omitempty"`

	// Notes carries per-user private resolution output (investigations).
	// Only the owning user's slice is ever exposed.
	Notes map[int64][]string `json:"notes,omitempty"`

	WinnerFaction Faction `json:"winner_faction,omitempty"`
}

// Player returns the membership record for userID, or nil.
func (r *Room) Player(userID int64) *Player {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// AliveCount returns the number of living players.
func (r *Room) AliveCount() int {
	n := 0
	for i := range r.Players {
		if r.Players[i].IsAlive {
			n++
		}
	}
	return n
}

// DeadlinePassed reports whether the current phase timer has expired.
func (r *Room) DeadlinePassed(now time.Time) bool {
	return r.PhaseEndsAt != nil && !now.Before(*r.PhaseEndsAt)
}
