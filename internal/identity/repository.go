package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/nkoval/mafia-arena/internal/domain"
)

var ErrDuplicateUsername = errors.New("username already exists")

// Repository is the durable side of the identity store: users, aggregate
// counters and finished-game archive rows.
type Repository interface {
	CreateUser(ctx context.Context, username string, telegramID *int64, avatarURL string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	UpdateTelegramProfile(ctx context.Context, telegramID int64, username, avatarURL string) (*domain.User, error)
	RecordOutcome(ctx context.Context, participants, winners []int64) error
	Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error)
	SaveGameResult(ctx context.Context, res *domain.GameResult) error
}

type repository struct {
	db *sql.DB
}

// NewPostgresRepository opens and pings a Postgres pool.
func NewPostgresRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &repository{db: db}, nil
}

func (r *repository) CreateUser(ctx context.Context, username string, telegramID *int64, avatarURL string) (*domain.User, error) {
	const query = `
		INSERT INTO users (username, telegram_id, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, created_at`

	u := &domain.User{Username: username, TelegramID: telegramID, AvatarURL: avatarURL}
	err := r.db.QueryRowContext(ctx, query, username, telegramID, nullableString(avatarURL)).
		Scan(&u.ID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return r.getBy(ctx, "telegram_id = $1", telegramID)
}

func (r *repository) getBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `
		SELECT id, username, telegram_id, COALESCE(avatar_url, ''), total_games, total_wins, created_at
		FROM users
		WHERE ` + where

	var u domain.User
	var tg sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &tg, &u.AvatarURL, &u.TotalGames, &u.TotalWins, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	if tg.Valid {
		u.TelegramID = &tg.Int64
	}
	return &u, nil
}

func (r *repository) UpdateTelegramProfile(ctx context.Context, telegramID int64, username, avatarURL string) (*domain.User, error) {
	const query = `
		UPDATE users
		SET username = $2, avatar_url = $3, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING id, username, telegram_id, COALESCE(avatar_url, ''), total_games, total_wins, created_at`

	var u domain.User
	var tg sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, telegramID, username, nullableString(avatarURL)).Scan(
		&u.ID, &u.Username, &tg, &u.AvatarURL, &u.TotalGames, &u.TotalWins, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update telegram profile: %w", err)
	}
	if tg.Valid {
		u.TelegramID = &tg.Int64
	}
	return &u, nil
}

func (r *repository) RecordOutcome(ctx context.Context, participants, winners []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outcome tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET total_games = total_games + 1 WHERE id = ANY($1)`,
		pq.Array(participants),
	); err != nil {
		return fmt.Errorf("bump total_games: %w", err)
	}
	if len(winners) > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET total_wins = total_wins + 1 WHERE id = ANY($1)`,
			pq.Array(winners),
		); err != nil {
			return fmt.Errorf("bump total_wins: %w", err)
		}
	}
	return tx.Commit()
}

func (r *repository) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, username, total_games, total_wins,
		       CASE WHEN total_games > 0
		            THEN ROUND((total_wins::numeric / total_games) * 100)
		            ELSE 0 END AS win_rate
		FROM users
		WHERE total_games > 0
		ORDER BY win_rate DESC, total_wins DESC, id ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.TotalGames, &e.TotalWins, &e.WinRate); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *repository) SaveGameResult(ctx context.Context, res *domain.GameResult) error {
	if res == nil {
		return nil
	}
	winnersRaw, err := json.Marshal(res.WinnerIDs)
	if err != nil {
		return fmt.Errorf("marshal winner_ids: %w", err)
	}

	const query = `
		INSERT INTO game_results (
			room_id, room_name, winner_faction, player_count, winner_ids, started_at, ended_at
		)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
		ON CONFLICT (room_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query,
		res.RoomID, res.RoomName, res.WinnerFaction, res.PlayerCount,
		winnersRaw, res.StartedAt, res.EndedAt,
	); err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
