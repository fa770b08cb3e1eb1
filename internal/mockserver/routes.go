package mockserver

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/miroq/mau/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, db *sql.DB, store Store) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Mau API (mock)", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
		"sqlite": health.CheckerFunc(func(ctx context.Context) error { return db.PingContext(ctx) }),
	}).Routes())

	r.Route("/api", func(r chi.Router) {
		// Public reads and account creation.
		r.Get("/rooms", handleListRooms(store))
		r.Get("/rooms/random", handleRandomRoom(store))
		r.Get("/rooms/{id}", handleGetRoom(store))
		r.Get("/users", handleListUsers(store))
		r.Get("/users/{username}", handleGetUser(store))
		r.Post("/users", handleRegister(store))
		r.Post("/users/login", handleLogin(store))
		r.Get("/leaderboard/{category}", handleLeaderboard(store))
		r.Get("/leaderboard/{username}/{category}", handlePlayerRank(store))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(store))

			r.Get("/users/me", handleMe())
			r.Put("/users/", handleEditUser(store))
			r.Post("/users/change-password", handleChangePassword(store))

			r.Get("/rooms/active", handleActiveRoom(store))
			r.Post("/rooms", handleCreateRoom(store))
			r.Put("/rooms/", handleEditRoom(store))
			r.Delete("/rooms/{id}", handleDeleteRoom(store))
			r.Post("/rooms/{id}/join", handleJoinRoom(store))
			r.Post("/rooms/{id}/leave", handleLeaveRoom(store))
			r.Post("/rooms/{id}/kick/{uid}", handleRoomKick(store))
			r.Post("/rooms/{id}/owner/{uid}", handleRoomOwner(store))

			r.Get("/game/", handleActiveGame(store))
			r.Post("/game/join", handleJoinGame(store))
			r.Post("/game/leave", handleLeaveGame(store))
			r.Post("/game/start", handleStartGame(store))
			r.Post("/game/end", handleEndGame(store))
			r.Post("/game/kick/{uid}", handleGameKick(store))
			r.Post("/game/color/{n}", handleGameColor(store))
			r.Post("/game/player/{uid}", handleGamePlayer(store))
			for _, action := range []string{"skip", "next", "take", "shotgun/take", "shotgun/shot", "bluff"} {
				r.Post("/game/"+action, handleGameAction(store))
			}
		})
	})
}
