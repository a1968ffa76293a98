package gamedto

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type JoinRoomResponse struct {
	Success bool `json:"success"`
	Joined  bool `json:"joined"`
}

type AddBotResponse struct {
	Success     bool   `json:"success"`
	BotUsername string `json:"bot_username"`
}

type StartGameResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ActionResponse struct {
	Success  bool   `json:"success"`
	ActionID string `json:"action_id"`
}

// RoomListEntry is one row of the lobby browser.
type RoomListEntry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	MaxPlayers  int       `json:"max_players"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlayerInfo is a room seat as shown to one specific requester: Role is
// populated only for the requester's own seat.
type PlayerInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
	IsAlive  bool   `json:"is_alive"`
	IsBot    bool   `json:"is_bot,omitempty"`
}

// RoomInfo is the polled game view. YourNotes carries private resolution
// output (investigation results) for the requester only.
type RoomInfo struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Status        string       `json:"status"`
	MaxPlayers    int          `json:"max_players"`
	HostID        int64        `json:"host_id"`
	CurrentPhase  string       `json:"current_phase,omitempty"`
	PhaseEndsAt   *time.Time   `json:"phase_ends_at,omitempty"`
	WinnerFaction string       `json:"winner_faction,omitempty"`
	Players       []PlayerInfo `json:"players"`
	YourNotes     []string     `json:"your_notes,omitempty"`
}
