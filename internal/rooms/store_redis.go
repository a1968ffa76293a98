package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkoval/mafia-arena/internal/domain"
	"github.com/nkoval/mafia-arena/pkg/gamedto"
)

// ErrConcurrentUpdate surfaces when optimistic retries are exhausted; callers
// may simply retry the request.
var ErrConcurrentUpdate = &gamedto.DomainError{
	Code:      gamedto.CodeRetry,
	Message:   "concurrent update detected, retry",
	Retryable: true,
}

var ErrRoomMissing = errors.New("room not found")

const updateRetries = 3

// Store keeps each room as a single JSON blob under room:<id>, plus a set
// index for listings. The blob-per-room layout makes every mutation atomic
// with respect to readers.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) key(id string) string { return "room:" + strings.TrimSpace(id) }
func (s *Store) keyIndex() string     { return "rooms:index" }

// Save writes the room blob and registers it in the index.
func (s *Store) Save(ctx context.Context, room *domain.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(room.ID), raw, s.ttl).Err(); err != nil {
		return err
	}
	if err := s.rdb.SAdd(ctx, s.keyIndex(), room.ID).Err(); err != nil {
		return err
	}
	return nil
}

// Get loads one room; (nil, nil) when it does not exist or has aged out.
func (s *Store) Get(ctx context.Context, id string) (*domain.Room, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Update applies fn to the room under a WATCH transaction, so at most one
// concurrent mutation of the same room can commit. Domain errors from fn
// abort the transaction and pass through unchanged.
func (s *Store) Update(ctx context.Context, id string, fn func(*domain.Room) error) (*domain.Room, error) {
	key := s.key(id)
	var out *domain.Room

	for attempt := 0; attempt < updateRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err == redis.Nil {
				return ErrRoomMissing
			}
			if err != nil {
				return err
			}
			var room domain.Room
			if err := json.Unmarshal(raw, &room); err != nil {
				return err
			}
			if err := fn(&room); err != nil {
				return err
			}
			room.UpdatedAt = time.Now()

			newRaw, err := json.Marshal(&room)
			if err != nil {
				return err
			}
			pipe := tx.TxPipeline()
			pipe.Set(ctx, key, newRaw, s.ttl)
			if _, err := pipe.Exec(ctx); err != nil {
				return err
			}
			out = &room
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConcurrentUpdate
}

// List loads every indexed room, dropping entries whose blob has expired.
// Newest first.
func (s *Store) List(ctx context.Context) ([]*domain.Room, error) {
	ids, err := s.rdb.SMembers(ctx, s.keyIndex()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Room, 0, len(ids))
	for _, id := range ids {
		room, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if room == nil {
			_ = s.rdb.SRem(ctx, s.keyIndex(), id).Err()
			continue
		}
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
