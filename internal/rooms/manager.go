package rooms

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nkoval/mafia-arena/internal/domain"
	"github.com/nkoval/mafia-arena/internal/identity"
	"github.com/nkoval/mafia-arena/internal/obslog"
	"github.com/nkoval/mafia-arena/pkg/gamedto"
)

var (
	ErrNameRequired = gamedto.E(gamedto.CodeValidation, "room name required")
	ErrRoomNotFound = gamedto.E(gamedto.CodeNotFound, "room not found")
	ErrRoomFull     = gamedto.E(gamedto.CodeInvalidState, "room is full")
	ErrGameStarted  = gamedto.E(gamedto.CodeInvalidState, "game already started")
	ErrNotHost      = gamedto.E(gamedto.CodeForbidden, "only the host can do that")
	ErrTableCap     = gamedto.E(gamedto.CodeInvalidState, "maximum player cap reached")
)

// botNames is the fixed pool of display names for synthetic players; the
// pool order decides which name the next bot gets.
var botNames = []string{
	"Johnny", "Vinny", "Tony", "Rocky", "Max", "Duke", "Spike", "Blade",
	"Raider", "Viper", "Harley", "Chopper", "Revolver", "Diesel", "Cyclone",
	"Thunder", "Style", "Drive", "Boost", "Nitro",
}

// Manager is the room registry: creation, membership and the per-requester
// room view. Live game state rides in the same room blob but is mutated by
// the session engine only.
type Manager struct {
	store      *Store
	users      *identity.Service
	defaultMax int
	hardMax    int
}

func NewManager(store *Store, users *identity.Service, defaultMax, hardMax int) *Manager {
	if defaultMax <= 0 {
		defaultMax = 12
	}
	if hardMax <= 0 {
		hardMax = 20
	}
	return &Manager{store: store, users: users, defaultMax: defaultMax, hardMax: hardMax}
}

func (m *Manager) Store() *Store { return m.store }

// Create opens a new waiting room with the host seated as its first player.
func (m *Manager) Create(ctx context.Context, name string, hostID int64, maxPlayers int) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	host, err := m.users.GetUser(ctx, hostID)
	if err != nil {
		return nil, err
	}

	if maxPlayers <= 0 {
		maxPlayers = m.defaultMax
	}
	if maxPlayers > m.hardMax {
		maxPlayers = m.hardMax
	}

	var id string
	for {
		candidate, err := newRoomID()
		if err != nil {
			return nil, err
		}
		existing, err := m.store.Get(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			id = candidate
			break
		}
	}

	room := &domain.Room{
		ID:         id,
		Name:       name,
		Status:     domain.StatusWaiting,
		MaxPlayers: maxPlayers,
		HostID:     host.ID,
		Players: []domain.Player{
			{UserID: host.ID, Username: host.Username, IsAlive: true},
		},
	}
	room.CreatedAt = nowUTC()
	room.UpdatedAt = room.CreatedAt

	if err := m.store.Save(ctx, room); err != nil {
		return nil, err
	}
	obslog.L().Info("room_create",
		zap.String("room_id", room.ID),
		zap.String("name", room.Name),
		zap.Int64("host_id", host.ID),
		zap.Int("max_players", room.MaxPlayers),
	)
	return room, nil
}

// Join seats a user in a waiting room. Joining a room the user already sits
// in is not an error; joined=false signals the no-op.
func (m *Manager) Join(ctx context.Context, roomID string, userID int64) (joined bool, err error) {
	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	_, err = m.store.Update(ctx, roomID, func(room *domain.Room) error {
		if room.Status != domain.StatusWaiting {
			return ErrGameStarted
		}
		if room.Player(user.ID) != nil {
			joined = false
			return nil
		}
		if len(room.Players) >= room.MaxPlayers {
			return ErrRoomFull
		}
		room.Players = append(room.Players, domain.Player{
			UserID:   user.ID,
			Username: user.Username,
			IsAlive:  true,
		})
		joined = true
		return nil
	})
	if errors.Is(err, ErrRoomMissing) {
		return false, ErrRoomNotFound
	}
	if err != nil {
		return false, err
	}
	if joined {
		obslog.L().Info("room_join", zap.String("room_id", roomID), zap.Int64("user_id", user.ID))
	}
	return joined, nil
}

// AddBot seats a synthetic player. Host-only.
func (m *Manager) AddBot(ctx context.Context, roomID string, requesterID int64) (string, error) {
	room, err := m.store.Get(ctx, roomID)
	if err != nil {
		return "", err
	}
	if room == nil {
		return "", ErrRoomNotFound
	}
	if room.HostID != requesterID {
		return "", ErrNotHost
	}
	if room.Status != domain.StatusWaiting {
		return "", ErrGameStarted
	}
	// Capacity is checked before the bot user is registered, so a rejected
	// add leaves no orphaned identity row. The closure re-checks under WATCH.
	if len(room.Players) >= room.MaxPlayers || len(room.Players) >= m.hardMax {
		return "", ErrTableCap
	}

	botCount := 0
	for _, p := range room.Players {
		if p.IsBot {
			botCount++
		}
	}
	name := fmt.Sprintf("Bot-%d", botCount+1)
	if botCount < len(botNames) {
		name = botNames[botCount]
	}

	suffix, err := shortSuffix()
	if err != nil {
		return "", err
	}
	bot, err := m.users.RegisterBot(ctx, name, suffix)
	if err != nil {
		return "", err
	}

	_, err = m.store.Update(ctx, roomID, func(room *domain.Room) error {
		if room.HostID != requesterID {
			return ErrNotHost
		}
		if room.Status != domain.StatusWaiting {
			return ErrGameStarted
		}
		if len(room.Players) >= room.MaxPlayers || len(room.Players) >= m.hardMax {
			return ErrTableCap
		}
		room.Players = append(room.Players, domain.Player{
			UserID:   bot.ID,
			Username: bot.Username,
			IsAlive:  true,
			IsBot:    true,
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	obslog.L().Info("room_add_bot", zap.String("room_id", roomID), zap.String("bot", bot.Username))
	return bot.Username, nil
}

// List returns open and in-progress rooms, newest first.
func (m *Manager) List(ctx context.Context) ([]gamedto.RoomListEntry, error) {
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]gamedto.RoomListEntry, 0, len(all))
	for _, room := range all {
		if room.Status != domain.StatusWaiting && room.Status != domain.StatusPlaying {
			continue
		}
		out = append(out, gamedto.RoomListEntry{
			ID:          room.ID,
			Name:        room.Name,
			Status:      string(room.Status),
			MaxPlayers:  room.MaxPlayers,
			PlayerCount: len(room.Players),
			CreatedAt:   room.CreatedAt,
		})
	}
	return out, nil
}

// Info builds the polled room view for one requester. Roles other than the
// requester's own are never included, regardless of room status.
func (m *Manager) Info(ctx context.Context, roomID string, requesterID int64) (*gamedto.RoomInfo, error) {
	room, err := m.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	info := &gamedto.RoomInfo{
		ID:            room.ID,
		Name:          room.Name,
		Status:        string(room.Status),
		MaxPlayers:    room.MaxPlayers,
		HostID:        room.HostID,
		CurrentPhase:  string(room.Phase),
		PhaseEndsAt:   room.PhaseEndsAt,
		WinnerFaction: string(room.WinnerFaction),
		Players:       make([]gamedto.PlayerInfo, 0, len(room.Players)),
	}
	for _, p := range room.Players {
		pi := gamedto.PlayerInfo{
			ID:       p.UserID,
			Username: p.Username,
			IsAlive:  p.IsAlive,
			IsBot:    p.IsBot,
		}
		if p.UserID == requesterID {
			pi.Role = string(p.Role)
		}
		info.Players = append(info.Players, pi)
	}
	if notes, ok := room.Notes[requesterID]; ok {
		info.YourNotes = notes
	}
	return info, nil
}

func nowUTC() time.Time { return time.Now().UTC() }

// newRoomID returns `R-` + 6 upper alnum.
func newRoomID() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return "R-" + string(b), nil
}

func shortSuffix() (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}
