package mockserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/miroq/mau"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyInfo
)

func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token, found && token != ""
}

// authMiddleware resolves the bearer token to a user and rejects the
// request with 401 when it is missing or unknown.
func authMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			user, err := store.UserFromToken(r.Context(), token)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if err != nil {
				writeInternal(w)
				return
			}

			if info := infoFrom(r.Context()); info != nil {
				info.userID = user.ID
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func currentUser(r *http.Request) mau.User {
	return r.Context().Value(ctxKeyUser).(mau.User)
}
