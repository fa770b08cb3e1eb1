package mockserver

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/miroq/mau"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

const maxUsernameLen = 32

func validUsername(name string) bool {
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= maxUsernameLen && !strings.ContainsAny(name, "/ ")
}

func handleListUsers(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func handleGetUser(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := store.UserByUsername(r.Context(), chi.URLParam(r, "username"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleRegister(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mau.UserCredentials
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		if !validUsername(req.Username) || req.Password == "" {
			writeError(w, http.StatusBadRequest, "username and password are required")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			writeInternal(w)
			return
		}

		user, err := store.CreateUser(r.Context(), req.Username, string(hash))
		if errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "username already taken")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleLogin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mau.UserCredentials
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		userID, hash, err := store.Credentials(r.Context(), strings.TrimSpace(req.Username))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		token, err := store.CreateSession(r.Context(), userID)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, mau.TokenResult{Status: "ok", Token: token})
	}
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	}
}

func handleEditUser(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mau.UserEdit
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}

		user, err := store.UpdateUser(r.Context(), currentUser(r).ID, req)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleChangePassword(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mau.UserChangePassword
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "new_password is required")
			return
		}

		user := currentUser(r)
		_, hash, err := store.Credentials(r.Context(), user.Username)
		if err != nil {
			writeInternal(w)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)); err != nil {
			writeError(w, http.StatusForbidden, "wrong password")
			return
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			writeInternal(w)
			return
		}
		if err := store.SetPassword(r.Context(), user.ID, string(newHash)); err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func handleLeaderboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := mau.ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		users, err := store.Leaderboard(r.Context(), category)
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

func handlePlayerRank(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := mau.ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rank, err := store.Rank(r.Context(), chi.URLParam(r, "username"), category)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeInternal(w)
			return
		}
		writeJSON(w, http.StatusOK, rank)
	}
}
