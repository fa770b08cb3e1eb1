package mockserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/miroq/mau"
)

const (
	minPlayersLimit = 2
	maxPlayersLimit = 10
)

func isMember(room mau.Room, userID string) bool {
	for _, p := range room.Players {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// roomByID loads a room named in the URL, 404 when it does not exist.
func roomByID(ctx context.Context, store Store, id string) (mau.Room, error) {
	room, err := store.Room(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return room, reject(http.StatusNotFound, "room not found")
	}
	return room, err
}

// ownedRoom loads a room and checks that user owns it.
func ownedRoom(ctx context.Context, store Store, id string, user mau.User) (mau.Room, error) {
	room, err := roomByID(ctx, store, id)
	if err != nil {
		return room, err
	}
	if room.Owner.ID != user.ID {
		return room, reject(http.StatusForbidden, "only the room owner can do this")
	}
	return room, nil
}

// seatFree makes sure user can take a seat somewhere: a seat in an ended
// room is released, a seat in a live room is a conflict.
func seatFree(ctx context.Context, store Store, userID string) error {
	room, err := store.RoomOf(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if room.Status != mau.RoomEnded {
		return reject(http.StatusConflict, "already in a room")
	}
	return store.RemovePlayer(ctx, room.ID, userID)
}

// detach removes a member from a room, hands ownership over when the owner
// leaves, and closes the room when it empties or a running game drops below
// the minimum player count.
func detach(ctx context.Context, store Store, room mau.Room, userID string) (mau.Room, error) {
	if err := store.RemovePlayer(ctx, room.ID, userID); err != nil {
		return room, err
	}
	room, err := store.Room(ctx, room.ID)
	if err != nil {
		return room, err
	}

	if len(room.Players) > 0 && room.Owner.ID == userID {
		if err := store.SetOwner(ctx, room.ID, room.Players[0].ID); err != nil {
			return room, err
		}
	}
	if room.Status != mau.RoomEnded &&
		(len(room.Players) == 0 || room.Status == mau.RoomGame && len(room.Players) < room.MinPlayers) {
		if err := store.CloseRoom(ctx, room.ID); err != nil {
			return room, err
		}
	}
	return store.Room(ctx, room.ID)
}

func handleListRooms(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := store.ListRooms(r.Context())
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

func handleRandomRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := store.RandomRoom(r.Context())
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "no open rooms")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleGetRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := roomByID(r.Context(), store, chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleActiveRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := store.RoomOf(r.Context(), currentUser(r).ID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "not in a room")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleCreateRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if err := seatFree(r.Context(), store, user.ID); err != nil {
			writeFailure(w, err)
			return
		}

		room, err := store.CreateRoom(r.Context(), user)
		if errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "already in a room")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

// checkRoomEdit allows edits only before the game starts, so a running
// game always keeps its players within [min_players, max_players].
func checkRoomEdit(room mau.Room, edit mau.RoomEdit) error {
	if room.Status != mau.RoomIdle {
		return reject(http.StatusConflict, "room settings can only change while the room is idle")
	}
	if edit.Name != nil && strings.TrimSpace(*edit.Name) == "" {
		return reject(http.StatusBadRequest, "name must not be empty")
	}
	if edit.Gems != nil && *edit.Gems < 0 {
		return reject(http.StatusBadRequest, "gems must not be negative")
	}

	minP, maxP := room.MinPlayers, room.MaxPlayers
	if edit.MinPlayers != nil {
		minP = *edit.MinPlayers
	}
	if edit.MaxPlayers != nil {
		maxP = *edit.MaxPlayers
	}
	if minP < minPlayersLimit || maxP > maxPlayersLimit || minP > maxP {
		return reject(http.StatusBadRequest, "player limits must satisfy 2 <= min_players <= max_players <= 10")
	}
	if maxP < len(room.Players) {
		return reject(http.StatusConflict, "max_players is below the current player count")
	}
	return nil
}

func handleEditRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mau.RoomEdit
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		user := currentUser(r)
		room, err := store.RoomOf(r.Context(), user.ID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "not in a room")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		if room.Owner.ID != user.ID {
			writeError(w, http.StatusForbidden, "only the room owner can do this")
			return
		}
		if err := checkRoomEdit(room, req); err != nil {
			writeFailure(w, err)
			return
		}

		room, err = store.UpdateRoom(r.Context(), room.ID, req)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleDeleteRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := ownedRoom(r.Context(), store, chi.URLParam(r, "id"), currentUser(r))
		if err != nil {
			writeFailure(w, err)
			return
		}
		if err := store.DeleteRoom(r.Context(), room.ID); err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, mau.RoomDelete{RoomID: room.ID})
	}
}

func handleJoinRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := roomByID(r.Context(), store, chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, err)
			return
		}
		switch {
		case isMember(room, user.ID):
			writeError(w, http.StatusConflict, "already in this room")
			return
		case room.Status != mau.RoomIdle:
			writeError(w, http.StatusConflict, "room is not accepting players")
			return
		case len(room.Players) >= room.MaxPlayers:
			writeError(w, http.StatusConflict, "room is full")
			return
		}
		if err := seatFree(r.Context(), store, user.ID); err != nil {
			writeFailure(w, err)
			return
		}

		if err := store.AddPlayer(r.Context(), room.ID, user.ID); err != nil {
			if errors.Is(err, ErrConflict) {
				writeError(w, http.StatusConflict, "already in a room")
				return
			}
			writeInternal(w)
			return
		}
		room, err = store.Room(r.Context(), room.ID)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleLeaveRoom(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := roomByID(r.Context(), store, chi.URLParam(r, "id"))
		if err != nil {
			writeFailure(w, err)
			return
		}
		if !isMember(room, user.ID) {
			writeError(w, http.StatusConflict, "not in this room")
			return
		}

		room, err = detach(r.Context(), store, room, user.ID)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleRoomKick(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		room, err := ownedRoom(r.Context(), store, chi.URLParam(r, "id"), user)
		if err != nil {
			writeFailure(w, err)
			return
		}
		target := chi.URLParam(r, "uid")
		if target == user.ID {
			writeError(w, http.StatusBadRequest, "cannot kick yourself")
			return
		}
		if !isMember(room, target) {
			writeError(w, http.StatusNotFound, "player not in room")
			return
		}

		room, err = detach(r.Context(), store, room, target)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}

func handleRoomOwner(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room, err := ownedRoom(r.Context(), store, chi.URLParam(r, "id"), currentUser(r))
		if err != nil {
			writeFailure(w, err)
			return
		}
		target := chi.URLParam(r, "uid")
		if !isMember(room, target) {
			writeError(w, http.StatusNotFound, "player not in room")
			return
		}

		if err := store.SetOwner(r.Context(), room.ID, target); err != nil {
			writeInternal(w)
			return
		}
		room, err = store.Room(r.Context(), room.ID)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}
