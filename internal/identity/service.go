package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nkoval/mafia-arena/internal/domain"
	"github.com/nkoval/mafia-arena/internal/obslog"
	"github.com/nkoval/mafia-arena/pkg/gamedto"
)

var (
	ErrUsernameRequired  = gamedto.E(gamedto.CodeValidation, "username required")
	ErrUsernameTaken     = gamedto.E(gamedto.CodeConflict, "username already taken")
	ErrUserNotFound      = gamedto.E(gamedto.CodeNotFound, "user not found")
	ErrHashMissing       = gamedto.E(gamedto.CodeValidation, "hash missing")
	ErrBadSignature      = gamedto.E(gamedto.CodeUnauthorized, "invalid authentication")
	ErrStaleAuth         = gamedto.E(gamedto.CodeUnauthorized, "authentication data expired")
	ErrBotTokenMissing   = gamedto.E(gamedto.CodeUnauthorized, "bot token not configured")
	ErrTelegramIDMissing = gamedto.E(gamedto.CodeValidation, "telegram id required")
)

const leaderboardLimit = 50

// Service owns user identity: registration, Telegram login and the
// leaderboard/stat aggregates derived from finished games.
type Service struct {
	repo       Repository
	botToken   string
	authMaxAge time.Duration
	now        func() time.Time
}

func NewService(repo Repository, botToken string, authMaxAge time.Duration) *Service {
	return &Service{
		repo:       repo,
		botToken:   strings.TrimSpace(botToken),
		authMaxAge: authMaxAge,
		now:        time.Now,
	}
}

// Register creates a user by plain username. Usernames are unique.
func (s *Service) Register(ctx context.Context, username string, telegramID *int64) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	u, err := s.repo.CreateUser(ctx, username, telegramID, "")
	if errors.Is(err, ErrDuplicateUsername) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	obslog.L().Info("user_register", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// AuthenticateTelegram verifies a Login Widget payload and upserts the user
// keyed by telegram_id.
func (s *Service) AuthenticateTelegram(ctx context.Context, req *gamedto.TelegramAuthRequest) (*domain.User, error) {
	if req == nil || req.ID == 0 {
		return nil, ErrTelegramIDMissing
	}
	if s.botToken == "" {
		return nil, ErrBotTokenMissing
	}
	if err := verifyTelegramAuth(req, s.botToken, s.authMaxAge, s.now()); err != nil {
		obslog.L().Warn("telegram_auth_reject", zap.Int64("telegram_id", req.ID), zap.Error(err))
		return nil, err
	}

	name := displayName(req)
	existing, err := s.repo.GetUserByTelegramID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		u, err := s.repo.UpdateTelegramProfile(ctx, req.ID, name, req.PhotoURL)
		if err != nil {
			return nil, err
		}
		obslog.L().Info("telegram_auth_login", zap.Int64("user_id", u.ID), zap.Int64("telegram_id", req.ID))
		return u, nil
	}

	tg := req.ID
	u, err := s.repo.CreateUser(ctx, name, &tg, req.PhotoURL)
	if errors.Is(err, ErrDuplicateUsername) {
		// Telegram display names are not unique across accounts; suffix with
		// the telegram id to keep the username constraint intact.
		u, err = s.repo.CreateUser(ctx, fmt.Sprintf("%s-%d", name, tg), &tg, req.PhotoURL)
	}
	if err != nil {
		return nil, err
	}
	obslog.L().Info("telegram_auth_signup", zap.Int64("user_id", u.ID), zap.Int64("telegram_id", req.ID))
	return u, nil
}

// GetUser loads one user or fails with NotFound.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// RegisterBot creates a synthetic user for a room bot. Name collisions fall
// back to a suffixed variant so a popular bot name can sit at many tables.
func (s *Service) RegisterBot(ctx context.Context, name, suffix string) (*domain.User, error) {
	u, err := s.repo.CreateUser(ctx, name, nil, "")
	if errors.Is(err, ErrDuplicateUsername) {
		u, err = s.repo.CreateUser(ctx, name+"-"+suffix, nil, "")
	}
	return u, err
}

// RecordOutcome applies one finished game to the aggregates and archives the
// result row. Guarded by the room's finished transition, so it runs once per
// game.
func (s *Service) RecordOutcome(ctx context.Context, res *domain.GameResult, participants []int64) error {
	if err := s.repo.RecordOutcome(ctx, participants, res.WinnerIDs); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	if err := s.repo.SaveGameResult(ctx, res); err != nil {
		return fmt.Errorf("archive result: %w", err)
	}
	obslog.L().Info("game_outcome_recorded",
		zap.String("room_id", res.RoomID),
		zap.String("winner_faction", string(res.WinnerFaction)),
		zap.Int("players", res.PlayerCount),
	)
	return nil
}

// Leaderboard returns the ranking: win_rate desc, total_wins desc, id asc.
func (s *Service) Leaderboard(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	return s.repo.Leaderboard(ctx, leaderboardLimit)
}
