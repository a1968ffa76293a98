package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nkoval/mafia-arena/internal/domain"
	"github.com/nkoval/mafia-arena/internal/game"
	"github.com/nkoval/mafia-arena/internal/identity"
	"github.com/nkoval/mafia-arena/internal/obslog"
	"github.com/nkoval/mafia-arena/internal/rooms"
	"github.com/nkoval/mafia-arena/pkg/gamedto"
)

var (
	ErrNotEnoughPlayers = gamedto.E(gamedto.CodeInvalidState, "minimum 4 players required")
	ErrNotPlaying       = gamedto.E(gamedto.CodeInvalidState, "game is not in progress")
	ErrNotMember        = gamedto.E(gamedto.CodeInvalidState, "actor is not in this room")
	ErrTargetMissing    = gamedto.E(gamedto.CodeInvalidState, "target is not in this room")
	ErrActorDead        = gamedto.E(gamedto.CodeInvalidState, "dead players cannot act")
	ErrTargetDead       = gamedto.E(gamedto.CodeInvalidState, "target is not alive")
	ErrWrongPhase       = gamedto.E(gamedto.CodeInvalidState, "action not allowed in current phase")
	ErrWrongRole        = gamedto.E(gamedto.CodeInvalidState, "role cannot perform this action")
	ErrPhaseOver        = gamedto.E(gamedto.CodeInvalidState, "phase deadline has passed")
	ErrBadActionKind    = gamedto.E(gamedto.CodeValidation, "unknown action kind")
)

// Durations are the wall-clock lengths of each phase.
type Durations struct {
	Night time.Duration
	Day   time.Duration
	Vote  time.Duration
}

// Engine drives the per-room state machine: lobby -> night -> day -> voting
// -> night ... -> finished. All mutation goes through the store's WATCH
// transaction, so at most one resolution pass per room can commit.
type Engine struct {
	store     *rooms.Store
	users     *identity.Service
	durations Durations
	now       func() time.Time
}

func NewEngine(store *rooms.Store, users *identity.Service, d Durations) *Engine {
	if d.Night <= 0 {
		d.Night = 60 * time.Second
	}
	if d.Day <= 0 {
		d.Day = 120 * time.Second
	}
	if d.Vote <= 0 {
		d.Vote = 60 * time.Second
	}
	return &Engine{store: store, users: users, durations: d, now: time.Now}
}

// Start begins the game: host-only, waiting rooms only, four players minimum.
// Roles are dealt uniformly at random over the seat order.
func (e *Engine) Start(ctx context.Context, roomID string, requesterID int64) (int, error) {
	playerCount := 0
	_, err := e.store.Update(ctx, roomID, func(room *domain.Room) error {
		if room.HostID != requesterID {
			return rooms.ErrNotHost
		}
		if room.Status != domain.StatusWaiting {
			return rooms.ErrGameStarted
		}
		roles, err := game.AssignRoles(len(room.Players))
		if err != nil {
			return ErrNotEnoughPlayers
		}
		for i := range room.Players {
			room.Players[i].Role = roles[i]
			room.Players[i].IsAlive = true
		}
		now := e.now()
		room.Status = domain.StatusPlaying
		room.StartedAt = &now
		room.Actions = make(map[int64]domain.Action)
		room.Notes = make(map[int64][]string)
		e.enterPhase(room, domain.PhaseNight, now)
		playerCount = len(room.Players)
		return nil
	})
	if err != nil {
		return 0, mapStoreErr(err)
	}
	obslog.L().Info("game_start", zap.String("room_id", roomID), zap.Int("players", playerCount))
	return playerCount, nil
}

// SubmitAction records one night action or day vote. A second submission by
// the same actor before the deadline overwrites the first.
func (e *Engine) SubmitAction(ctx context.Context, roomID string, actorID, targetID int64, kind domain.ActionKind) (string, error) {
	switch kind {
	case domain.ActionVote, domain.ActionKill, domain.ActionHeal, domain.ActionInvestigate, domain.ActionProtect:
	default:
		return "", ErrBadActionKind
	}

	var actionID string
	_, err := e.store.Update(ctx, roomID, func(room *domain.Room) error {
		if room.Status != domain.StatusPlaying {
			return ErrNotPlaying
		}
		now := e.now()
		if room.DeadlinePassed(now) {
			// The timer is authoritative; the sweeper will resolve shortly.
			return ErrPhaseOver
		}
		actor := room.Player(actorID)
		if actor == nil {
			return ErrNotMember
		}
		if !actor.IsAlive {
			return ErrActorDead
		}
		target := room.Player(targetID)
		if target == nil {
			return ErrTargetMissing
		}
		if !target.IsAlive {
			return ErrTargetDead
		}

		switch room.Phase {
		case domain.PhaseVoting:
			if kind != domain.ActionVote {
				return ErrWrongPhase
			}
		case domain.PhaseNight:
			if kind == domain.ActionVote {
				return ErrWrongPhase
			}
			if actor.Role.NightAction() != kind {
				return ErrWrongRole
			}
		default:
			return ErrWrongPhase
		}

		a := domain.Action{
			ID:            uuid.NewString(),
			ActorID:       actorID,
			TargetID:      targetID,
			Kind:          kind,
			Phase:         room.Phase,
			PhaseInstance: room.PhaseInstance,
			SubmittedAt:   now,
		}
		if room.Actions == nil {
			room.Actions = make(map[int64]domain.Action)
		}
		room.Actions[actorID] = a
		actionID = a.ID
		return nil
	})
	if err != nil {
		return "", mapStoreErr(err)
	}
	obslog.L().Debug("action_submit",
		zap.String("room_id", roomID),
		zap.Int64("actor_id", actorID),
		zap.String("kind", string(kind)),
	)

	// A full set of night actions ends the night without waiting for the
	// timer; harmless no-op otherwise.
	if _, err := e.ResolveDue(ctx, roomID); err != nil {
		obslog.L().Warn("early_resolve_failed", zap.String("room_id", roomID), zap.Error(err))
	}
	return actionID, nil
}

// ResolveDue runs one phase transition if the room has one pending: deadline
// expiry for any phase, or a complete night action set. Returns whether a
// transition committed.
func (e *Engine) ResolveDue(ctx context.Context, roomID string) (bool, error) {
	resolved := false
	room, err := e.store.Update(ctx, roomID, func(room *domain.Room) error {
		// The closure reruns on WATCH conflicts; recompute from scratch so a
		// lost race cannot leave a stale verdict behind.
		resolved = false
		if room.Status != domain.StatusPlaying {
			return nil
		}
		now := e.now()
		if !room.DeadlinePassed(now) && !(room.Phase == domain.PhaseNight && nightComplete(room)) {
			return nil
		}

		switch room.Phase {
		case domain.PhaseNight:
			e.resolveNight(room)
			if !e.maybeFinish(room) {
				e.enterPhase(room, domain.PhaseDay, now)
			}
		case domain.PhaseDay:
			e.enterPhase(room, domain.PhaseVoting, now)
		case domain.PhaseVoting:
			e.resolveVoting(room)
			if !e.maybeFinish(room) {
				e.enterPhase(room, domain.PhaseNight, now)
			}
		}
		resolved = true
		return nil
	})
	if err != nil {
		return false, mapStoreErr(err)
	}
	if !resolved {
		return false, nil
	}

	obslog.L().Info("phase_resolve",
		zap.String("room_id", roomID),
		zap.String("status", string(room.Status)),
		zap.String("phase", string(room.Phase)),
		zap.Int("alive", room.AliveCount()),
	)
	if room.Status == domain.StatusFinished {
		e.recordFinish(ctx, room)
	}
	return true, nil
}

// resolveNight applies the collected night actions and drops private
// investigation results into the actors' note queues.
func (e *Engine) resolveNight(room *domain.Room) {
	out := game.ResolveNight(room.Players, currentActions(room))
	for _, id := range out.Deaths {
		if p := room.Player(id); p != nil {
			p.IsAlive = false
		}
	}
	if len(out.Investigations) > 0 && room.Notes == nil {
		room.Notes = make(map[int64][]string)
	}
	for actor, res := range out.Investigations {
		verdict := "not mafia"
		if res.IsMafia {
			verdict = "mafia"
		}
		name := fmt.Sprintf("player %d", res.TargetID)
		if p := room.Player(res.TargetID); p != nil {
			name = p.Username
		}
		room.Notes[actor] = append(room.Notes[actor], fmt.Sprintf("%s is %s", name, verdict))
	}
}

// resolveVoting eliminates the plurality target, if any.
func (e *Engine) resolveVoting(room *domain.Room) {
	target, eliminated := game.TallyVotes(currentActions(room))
	if !eliminated {
		return
	}
	if p := room.Player(target); p != nil {
		p.IsAlive = false
	}
}

// maybeFinish checks win conditions and, when met, moves the room to
// finished. The winner set is stashed on the room for post-commit recording.
func (e *Engine) maybeFinish(room *domain.Room) bool {
	winner, _, over := game.CheckWin(room.Players)
	if !over {
		return false
	}
	room.Status = domain.StatusFinished
	room.WinnerFaction = winner
	room.Phase = ""
	room.PhaseEndsAt = nil
	room.PhaseInstance = ""
	room.Actions = nil
	return true
}

// enterPhase rolls the room into the next phase with a fresh instance id and
// deadline, discarding all pending actions.
func (e *Engine) enterPhase(room *domain.Room, phase domain.Phase, now time.Time) {
	var d time.Duration
	switch phase {
	case domain.PhaseNight:
		d = e.durations.Night
	case domain.PhaseDay:
		d = e.durations.Day
	case domain.PhaseVoting:
		d = e.durations.Vote
	}
	ends := now.Add(d)
	room.Phase = phase
	room.PhaseEndsAt = &ends
	room.PhaseInstance = uuid.NewString()
	room.Actions = make(map[int64]domain.Action)
}

// recordFinish persists stats and the archive row after the finished
// transition committed. The transition commits exactly once, so this runs
// exactly once per game.
func (e *Engine) recordFinish(ctx context.Context, room *domain.Room) {
	_, winnerIDs, _ := game.CheckWin(room.Players)
	participants := make([]int64, 0, len(room.Players))
	for _, p := range room.Players {
		participants = append(participants, p.UserID)
	}
	res := &domain.GameResult{
		RoomID:        room.ID,
		RoomName:      room.Name,
		WinnerFaction: string(room.WinnerFaction),
		PlayerCount:   len(room.Players),
		WinnerIDs:     winnerIDs,
		EndedAt:       e.now(),
	}
	if room.StartedAt != nil {
		res.StartedAt = *room.StartedAt
	}
	if err := e.users.RecordOutcome(ctx, res, participants); err != nil {
		obslog.L().Error("record_finish_failed", zap.String("room_id", room.ID), zap.Error(err))
	}
}

// currentActions filters pending actions to the live phase instance. Stale
// entries cannot normally survive a transition, but the instance check keeps
// cross-phase leakage impossible even if one did.
func currentActions(room *domain.Room) []domain.Action {
	out := make([]domain.Action, 0, len(room.Actions))
	for _, a := range room.Actions {
		if a.PhaseInstance == room.PhaseInstance && a.Phase == room.Phase {
			out = append(out, a)
		}
	}
	return out
}

// nightComplete reports whether every living player with a night-active role
// has an action on record.
func nightComplete(room *domain.Room) bool {
	for _, p := range room.Players {
		if !p.IsAlive || p.Role.NightAction() == "" {
			continue
		}
		a, ok := room.Actions[p.UserID]
		if !ok || a.PhaseInstance != room.PhaseInstance {
			return false
		}
	}
	return true
}

func mapStoreErr(err error) error {
	if errors.Is(err, rooms.ErrRoomMissing) {
		return rooms.ErrRoomNotFound
	}
	return err
}
