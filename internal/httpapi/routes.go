package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nkoval/mafia-arena/internal/achievements"
	"github.com/nkoval/mafia-arena/internal/identity"
	"github.com/nkoval/mafia-arena/internal/rooms"
	"github.com/nkoval/mafia-arena/internal/session"
)

// API bundles the services the handlers dispatch into.
type API struct {
	Users        *identity.Service
	Rooms        *rooms.Manager
	Engine       *session.Engine
	Achievements *achievements.Catalog
}

// SetupRoutes builds the router with the services injected. Every call is
// bounded: a request that outlives the timeout returns an error instead of
// hanging.
func SetupRoutes(api *API) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))
	r.Use(corsMiddleware)

	r.Post("/register", api.Register)
	r.Get("/user", api.GetUser)
	r.Post("/telegram-auth", api.TelegramAuth)

	r.Get("/rooms", api.ListRooms)
	r.Post("/room/create", api.CreateRoom)
	r.Post("/room/join", api.JoinRoom)
	r.Get("/room/info", api.RoomInfo)
	r.Post("/room/add-bot", api.AddBot)

	r.Post("/game/start", api.StartGame)
	r.Post("/game/vote", api.Vote)
	r.Post("/game/action", api.NightAction)

	r.Get("/leaderboard", api.Leaderboard)
	r.Get("/achievements", api.UserAchievements)

	r.Get("/healthz", Healthz)
	return r
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// corsMiddleware mirrors the headers the original gateway emitted; the web
// client sends its user id in X-User-Id.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-User-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
