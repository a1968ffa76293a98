package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nkoval/mafia-arena/internal/domain"
	"github.com/nkoval/mafia-arena/internal/obslog"
	"github.com/nkoval/mafia-arena/internal/rooms"
)

// Sweeper enforces phase deadlines: a background ticker walks the playing
// rooms and resolves any whose timer has expired, so phases advance even
// when every client is idle.
type Sweeper struct {
	store    *rooms.Store
	engine   *Engine
	interval time.Duration
}

func NewSweeper(store *rooms.Store, engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Sweeper{store: store, engine: engine, interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	obslog.L().Info("sweeper_start", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			obslog.L().Info("sweeper_stop")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	all, err := s.store.List(ctx)
	if err != nil {
		obslog.L().Warn("sweep_list_failed", zap.Error(err))
		return
	}
	for _, room := range all {
		if room.Status != domain.StatusPlaying {
			continue
		}
		// A complete night action set is as due as an expired timer.
		due := room.DeadlinePassed(time.Now()) ||
			(room.Phase == domain.PhaseNight && nightComplete(room))
		if !due {
			continue
		}
		if _, err := s.engine.ResolveDue(ctx, room.ID); err != nil {
			obslog.L().Warn("sweep_resolve_failed", zap.String("room_id", room.ID), zap.Error(err))
		}
	}
}
