package gamedto

// RegisterRequest creates a user by plain username.
type RegisterRequest struct {
	Username   string `json:"username"`
	TelegramID *int64 `json:"telegram_id,omitempty"`
}

// TelegramAuthRequest is the Telegram Login Widget payload, verbatim.
type TelegramAuthRequest struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date"`
	Hash      string `json:"hash"`
}

type CreateRoomRequest struct {
	Name       string `json:"name"`
	HostUserID int64  `json:"host_user_id"`
	MaxPlayers int    `json:"max_players,omitempty"`
}

type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
	UserID int64  `json:"user_id"`
}

type AddBotRequest struct {
	RoomID string `json:"room_id"`
}

type StartGameRequest struct {
	RoomID string `json:"room_id"`
}

// VoteRequest is a day-phase vote.
type VoteRequest struct {
	RoomID   string `json:"room_id"`
	ActorID  int64  `json:"actor_id"`
	TargetID int64  `json:"target_id"`
}

// ActionRequest is a night action; Kind must match the actor's role.
type ActionRequest struct {
	RoomID   string `json:"room_id"`
	ActorID  int64  `json:"actor_id"`
	TargetID int64  `json:"target_id"`
	Kind     string `json:"kind"`
}
