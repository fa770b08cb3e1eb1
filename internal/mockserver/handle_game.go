package mockserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/miroq/mau"
)

// The mock does not deal cards. Game actions check that the caller sits at
// a running game and answer with the current snapshot, which is enough for
// client code to exercise every endpoint.

// gameRoom returns the room the user sits in.
func gameRoom(ctx context.Context, store Store, user mau.User) (mau.Room, error) {
	room, err := store.RoomOf(ctx, user.ID)
	if errors.Is(err, ErrNotFound) {
		return room, reject(http.StatusNotFound, "not in a room")
	}
	return room, err
}

// runningRoom is gameRoom restricted to rooms with a game in progress.
func runningRoom(ctx context.Context, store Store, user mau.User) (mau.Room, error) {
	room, err := gameRoom(ctx, store, user)
	if err != nil {
		return room, err
	}
	if room.Status != mau.RoomGame {
		return room, reject(http.StatusConflict, "no game in progress")
	}
	return room, nil
}

func ownerOnly(room mau.Room, user mau.User) error {
	if room.Owner.ID != user.ID {
		return reject(http.StatusForbidden, "only the room owner can do this")
	}
	return nil
}

// snapshot builds the caller's view of the latest game of a room.
func snapshot(ctx context.Context, store Store, roomID string, user mau.User) (mau.GameContext, error) {
	game, err := store.CurrentGame(ctx, roomID)
	if errors.Is(err, ErrNotFound) {
		return mau.GameContext{}, reject(http.StatusNotFound, "room has no game")
	}
	if err != nil {
		return mau.GameContext{}, err
	}
	return mau.GameContext{
		Game: game,
		Player: mau.Player{
			UserID: user.ID,
			Name:   user.Name,
			Hand:   mau.HandCards(nil),
		},
	}, nil
}

func writeSnapshot(w http.ResponseWriter, r *http.Request, store Store, roomID string, user mau.User) {
	gc, err := snapshot(r.Context(), store, roomID, user)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gc)
}

func handleActiveGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleJoinGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleLeaveGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		if _, err := detach(r.Context(), store, room, user.ID); err != nil {
			writeInternal(w)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleStartGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := gameRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		if err := ownerOnly(room, user); err != nil {
			writeFailure(w, err)
			return
		}
		if room.Status != mau.RoomIdle {
			writeError(w, http.StatusConflict, "room is not idle")
			return
		}
		if len(room.Players) < room.MinPlayers {
			writeError(w, http.StatusConflict, "not enough players")
			return
		}

		if _, err := store.StartGame(r.Context(), room.ID, user.ID); err != nil {
			writeInternal(w)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleEndGame(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		if err := ownerOnly(room, user); err != nil {
			writeFailure(w, err)
			return
		}

		if err := store.CloseRoom(r.Context(), room.ID); err != nil {
			writeInternal(w)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleGameKick(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		if err := ownerOnly(room, user); err != nil {
			writeFailure(w, err)
			return
		}
		target := chi.URLParam(r, "uid")
		if target == user.ID {
			writeError(w, http.StatusBadRequest, "cannot kick yourself")
			return
		}
		if !isMember(room, target) {
			writeError(w, http.StatusNotFound, "player not in game")
			return
		}

		if _, err := detach(r.Context(), store, room, target); err != nil {
			writeInternal(w)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleGameColor(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(r, "n"))
		if err != nil || !mau.CardColor(n).Valid() {
			writeError(w, http.StatusBadRequest, "unknown color")
			return
		}

		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

func handleGamePlayer(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		target := chi.URLParam(r, "uid")
		if target == user.ID || !isMember(room, target) {
			writeError(w, http.StatusBadRequest, "pick another player of this game")
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}

// handleGameAction serves the turn actions that carry no arguments.
func handleGameAction(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := runningRoom(r.Context(), store, user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeSnapshot(w, r, store, room.ID, user)
	}
}
