package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/nkoval/mafia-arena/internal/domain"
	"github.com/nkoval/mafia-arena/internal/obslog"
	"github.com/nkoval/mafia-arena/pkg/gamedto"
)

func (api *API) Register(w http.ResponseWriter, r *http.Request) {
	var req gamedto.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := api.Users.Register(r.Context(), req.Username, req.TelegramID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (api *API) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "id")
	if !ok {
		return
	}
	user, err := api.Users.GetUser(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (api *API) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	var req gamedto.TelegramAuthRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := api.Users.AuthenticateTelegram(r.Context(), &req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (api *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	entries, err := api.Rooms.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (api *API) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req gamedto.CreateRoomRequest
	if !decode(w, r, &req) {
		return
	}
	if req.HostUserID == 0 {
		writeErr(w, gamedto.E(gamedto.CodeValidation, "host_user_id required"))
		return
	}
	room, err := api.Rooms.Create(r.Context(), req.Name, req.HostUserID, req.MaxPlayers)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, gamedto.RoomListEntry{
		ID:          room.ID,
		Name:        room.Name,
		Status:      string(room.Status),
		MaxPlayers:  room.MaxPlayers,
		PlayerCount: len(room.Players),
		CreatedAt:   room.CreatedAt,
	})
}

func (api *API) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req gamedto.JoinRoomRequest
	if !decode(w, r, &req) {
		return
	}
	joined, err := api.Rooms.Join(r.Context(), req.RoomID, req.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gamedto.JoinRoomResponse{Success: true, Joined: joined})
}

func (api *API) RoomInfo(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("id")
	if roomID == "" {
		writeErr(w, gamedto.E(gamedto.CodeValidation, "room id required"))
		return
	}
	info, err := api.Rooms.Info(r.Context(), roomID, requesterID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (api *API) AddBot(w http.ResponseWriter, r *http.Request) {
	var req gamedto.AddBotRequest
	if !decode(w, r, &req) {
		return
	}
	botName, err := api.Rooms.AddBot(r.Context(), req.RoomID, requesterID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gamedto.AddBotResponse{Success: true, BotUsername: botName})
}

func (api *API) StartGame(w http.ResponseWriter, r *http.Request) {
	var req gamedto.StartGameRequest
	if !decode(w, r, &req) {
		return
	}
	players, err := api.Engine.Start(r.Context(), req.RoomID, requesterID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gamedto.StartGameResponse{
		Success: true,
		Message: fmt.Sprintf("Game started with %d players", players),
	})
}

func (api *API) Vote(w http.ResponseWriter, r *http.Request) {
	var req gamedto.VoteRequest
	if !decode(w, r, &req) {
		return
	}
	actionID, err := api.Engine.SubmitAction(r.Context(), req.RoomID, req.ActorID, req.TargetID, domain.ActionVote)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gamedto.ActionResponse{Success: true, ActionID: actionID})
}

func (api *API) NightAction(w http.ResponseWriter, r *http.Request) {
	var req gamedto.ActionRequest
	if !decode(w, r, &req) {
		return
	}
	actionID, err := api.Engine.SubmitAction(r.Context(), req.RoomID, req.ActorID, req.TargetID, domain.ActionKind(req.Kind))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gamedto.ActionResponse{Success: true, ActionID: actionID})
}

func (api *API) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := api.Users.Leaderboard(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (api *API) UserAchievements(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(w, r, "user_id")
	if !ok {
		return
	}
	user, err := api.Users.GetUser(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.Achievements.ForUser(user))
}

// requesterID reads the caller identity header; zero when absent, which never
// matches a real user id.
func requesterID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-User-Id"), 10, 64)
	return id
}

func queryID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		writeErr(w, gamedto.E(gamedto.CodeValidation, param+" required"))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeErr(w, gamedto.E(gamedto.CodeValidation, "invalid "+param))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErr(w, gamedto.E(gamedto.CodeValidation, "invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain taxonomy onto HTTP statuses. Anything outside the
// taxonomy is an internal error and is logged, not leaked.
func writeErr(w http.ResponseWriter, err error) {
	var de *gamedto.DomainError
	if errors.As(err, &de) {
		writeJSON(w, statusFor(de.Code), gamedto.ErrorResponse{Error: de.Message})
		return
	}
	obslog.L().Error("internal_error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, gamedto.ErrorResponse{Error: "internal error"})
}

func statusFor(code string) int {
	switch code {
	case gamedto.CodeValidation, gamedto.CodeInvalidState:
		return http.StatusBadRequest
	case gamedto.CodeNotFound:
		return http.StatusNotFound
	case gamedto.CodeConflict:
		return http.StatusConflict
	case gamedto.CodeForbidden:
		return http.StatusForbidden
	case gamedto.CodeUnauthorized:
		return http.StatusUnauthorized
	case gamedto.CodeRetry:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
