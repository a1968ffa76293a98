package domain

import "time"

// User is the durable identity record. Aggregate counters are only touched
// when a finished game is recorded.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	TelegramID *int64    `json:"telegram_id,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	TotalGames int       `json:"total_games"`
	TotalWins  int       `json:"total_wins"`
	CreatedAt  time.Time `json:"created_at"`
}

// WinRate returns the percentage of won games, rounded like Postgres ROUND.
// Zero when the user has never played.
func (u *User) WinRate() int {
	if u == nil || u.TotalGames <= 0 {
		return 0
	}
	return int((float64(u.TotalWins)/float64(u.TotalGames))*100 + 0.5)
}

// LeaderboardEntry is a read-only ranking row derived from user aggregates.
type LeaderboardEntry struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	TotalGames int    `json:"total_games"`
	TotalWins  int    `json:"total_wins"`
	WinRate    int    `json:"win_rate"`
}

// Achievement is a derived view; unlock state is recomputed from aggregates
// and never stored.
type Achievement struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

// GameResult is the durable record of one finished room.
type GameResult struct {
	RoomID        string    `json:"room_id"`
	RoomName      string    `json:"room_name"`
	WinnerFaction string    `json:"winner_faction"`
	PlayerCount   int       `json:"player_count"`
	WinnerIDs     []int64   `json:"winner_ids"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
}
