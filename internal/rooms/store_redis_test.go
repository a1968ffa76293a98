package rooms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nkoval/mafia-arena/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour), mr
}

func testRoom(id string) *domain.Room {
	now := time.Now().UTC()
	return &domain.Room{
		ID:         id,
		Name:       "test",
		Status:     domain.StatusWaiting,
		MaxPlayers: 6,
		HostID:     1,
		CreatedAt:  now,
		UpdatedAt:  now,
		Players:    []domain.Player{{UserID: 1, Username: "host", IsAlive: true}},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRoom("R-AAAAAA")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "R-AAAAAA")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ID != "R-AAAAAA" || len(got.Players) != 1 {
		t.Fatalf("unexpected room: %+v", got)
	}
}

func TestGetMissingRoom(t *testing.T) {
	s, _ := newTestStore(t)
	got, err := s.Get(context.Background(), "R-GHOST0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing room, got %+v", got)
	}
}

func TestUpdateAppliesMutation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, testRoom("R-AAAAAA")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	before := time.Now().Add(-time.Second)
	out, err := s.Update(ctx, "R-AAAAAA", func(room *domain.Room) error {
		room.Name = "renamed"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.Name != "renamed" || !out.UpdatedAt.After(before) {
		t.Fatalf("mutation not applied: %+v", out)
	}

	got, err := s.Get(ctx, "R-AAAAAA")
	if err != nil || got.Name != "renamed" {
		t.Fatalf("persisted state: %+v err=%v", got, err)
	}
}

func TestUpdateMissingRoom(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Update(context.Background(), "R-GHOST0", func(*domain.Room) error { return nil })
	if !errors.Is(err, ErrRoomMissing) {
		t.Fatalf("expected ErrRoomMissing, got %v", err)
	}
}

func TestUpdatePassesDomainErrorThrough(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, testRoom("R-AAAAAA")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := s.Update(ctx, "R-AAAAAA", func(*domain.Room) error { return ErrRoomFull }); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}

	// A failing fn must not commit anything.
	got, err := s.Get(ctx, "R-AAAAAA")
	if err != nil || got.Name != "test" {
		t.Fatalf("aborted update leaked: %+v err=%v", got, err)
	}
}

func TestListDropsExpiredBlobs(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	keep := testRoom("R-KEEP00")
	keep.CreatedAt = time.Now().UTC()
	stale := testRoom("R-GONE00")
	if err := s.Save(ctx, keep); err != nil {
		t.Fatalf("Save keep: %v", err)
	}
	if err := s.Save(ctx, stale); err != nil {
		t.Fatalf("Save stale: %v", err)
	}
	mr.Del("room:R-GONE00")

	out, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].ID != "R-KEEP00" {
		t.Fatalf("unexpected listing: %+v", out)
	}

	// The stale index entry was pruned, so a second pass sees the same set.
	out, err = s.List(ctx)
	if err != nil || len(out) != 1 {
		t.Fatalf("second List: %+v err=%v", out, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	older := testRoom("R-OLD000")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testRoom("R-NEW000")
	newer.CreatedAt = time.Now().UTC()
	if err := s.Save(ctx, older); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, newer); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 || out[0].ID != "R-NEW000" {
		t.Fatalf("ordering wrong: %+v", out)
	}
}
