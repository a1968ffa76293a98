package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nkoval/mafia-arena/internal/domain"
)

// memrepo is an in-memory repository used when no DATABASE_URL is configured,
// and by tests.
type memrepo struct {
	mu sync.RWMutex

	nextID     int64
	byID       map[int64]*domain.User
	byUsername map[string]int64
	byTelegram map[int64]int64

	results map[string]*domain.GameResult // roomID -> result
}

func NewMemoryRepository() Repository {
	return &memrepo{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]int64),
		byTelegram: make(map[int64]int64),
		results:    make(map[string]*domain.GameResult),
	}
}

func (m *memrepo) CreateUser(ctx context.Context, username string, telegramID *int64, avatarURL string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(username)
	if _, taken := m.byUsername[key]; taken {
		return nil, ErrDuplicateUsername
	}

	m.nextID++
	u := &domain.User{
		ID:        m.nextID,
		Username:  username,
		AvatarURL: avatarURL,
		CreatedAt: time.Now(),
	}
	if telegramID != nil {
		tg := *telegramID
		u.TelegramID = &tg
		m.byTelegram[tg] = u.ID
	}
	m.byID[u.ID] = u
	m.byUsername[key] = u.ID

	out := *u
	return &out, nil
}

func (m *memrepo) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (m *memrepo) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byTelegram[telegramID]
	if !ok {
		return nil, nil
	}
	out := *m.byID[id]
	return &out, nil
}

func (m *memrepo) UpdateTelegramProfile(ctx context.Context, telegramID int64, username, avatarURL string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byTelegram[telegramID]
	if !ok {
		return nil, nil
	}
	u := m.byID[id]
	delete(m.byUsername, strings.ToLower(u.Username))
	u.Username = username
	u.AvatarURL = avatarURL
	m.byUsername[strings.ToLower(username)] = id

	out := *u
	return &out, nil
}

func (m *memrepo) RecordOutcome(ctx context.Context, participants, winners []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range participants {
		if u, ok := m.byID[id]; ok {
			u.TotalGames++
		}
	}
	for _, id := range winners {
		if u, ok := m.byID[id]; ok {
			u.TotalWins++
		}
	}
	return nil
}

func (m *memrepo) Leaderboard(ctx context.Context, limit int) ([]*domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.RLock()
	entries := make([]*domain.LeaderboardEntry, 0, len(m.byID))
	for _, u := range m.byID {
		if u.TotalGames == 0 {
			continue
		}
		entries = append(entries, &domain.LeaderboardEntry{
			ID:         u.ID,
			Username:   u.Username,
			TotalGames: u.TotalGames,
			TotalWins:  u.TotalWins,
			WinRate:    u.WinRate(),
		})
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].WinRate != entries[j].WinRate {
			return entries[i].WinRate > entries[j].WinRate
		}
		if entries[i].TotalWins != entries[j].TotalWins {
			return entries[i].TotalWins > entries[j].TotalWins
		}
		return entries[i].ID < entries[j].ID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *memrepo) SaveGameResult(ctx context.Context, res *domain.GameResult) error {
	if res == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.results[res.RoomID]; exists {
		return nil
	}
	stored := *res
	m.results[res.RoomID] = &stored
	return nil
}
