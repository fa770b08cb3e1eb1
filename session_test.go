package mau

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
)

// fakeAPI serves just enough of the API for session tests: registration,
// login with password "pw" and /users/me behind a bearer token.
func fakeAPI(t *testing.T, loginFails bool) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/api/users", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, userJSON)
	})
	r.Post("/api/users/login", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if loginFails || !strings.Contains(string(body), `"password":"pw"`) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"invalid credentials"}`)
			return
		}
		io.WriteString(w, `{"status":"ok","token":"tok-1"}`)
	})
	r.Get("/api/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"detail":"not authenticated"}`)
			return
		}
		io.WriteString(w, userJSON)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := New(WithServer(srv.URL+"/api/"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, &hits
}

func TestSessionRequiresLogin(t *testing.T) {
	c, hits := fakeAPI(t, false)
	s := NewSession(c, "alice")
	ctx := context.Background()

	calls := map[string]func() error{
		"Me":              func() error { _, err := s.Me(ctx); return err },
		"CreateRoom":      func() error { _, err := s.CreateRoom(ctx); return err },
		"Room":            func() error { _, err := s.Room(ctx); return err },
		"JoinRoom":        func() error { _, err := s.JoinRoom(ctx, "r"); return err },
		"StartGame":       func() error { _, err := s.StartGame(ctx); return err },
		"GameShotgunShot": func() error { _, err := s.GameShotgunShot(ctx); return err },
		"GameColor":       func() error { _, err := s.GameColor(ctx, ColorRed); return err },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrAuthRequired) {
			t.Errorf("%s: err = %v, want ErrAuthRequired", name, err)
		}
	}
	if !errors.Is(ErrAuthRequired, ErrMau) {
		t.Error("ErrAuthRequired does not match ErrMau")
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("anonymous session sent %d requests", n)
	}
}

func TestSessionLogin(t *testing.T) {
	c, _ := fakeAPI(t, false)
	s := NewSession(c, "alice")
	ctx := context.Background()

	var re *RequestError
	if err := s.Login(ctx, "wrong"); !errors.As(err, &re) || re.StatusCode != 401 {
		t.Fatalf("Login(wrong) = %v, want 401", err)
	}
	if s.Authenticated() {
		t.Fatal("authenticated after failed login")
	}

	if err := s.Login(ctx, "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !s.Authenticated() {
		t.Fatal("not authenticated after login")
	}
	me, err := s.Me(ctx)
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if me.Username != "alice" {
		t.Errorf("username = %q", me.Username)
	}

	// A later failed login keeps the earlier token.
	if err := s.Login(ctx, "wrong"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Me(ctx); err != nil {
		t.Errorf("Me after failed re-login: %v", err)
	}
}

func TestSessionRegister(t *testing.T) {
	tests := []struct {
		name       string
		loginFails bool
		wantAuth   bool
	}{
		{name: "register and login", wantAuth: true},
		{name: "login fails after register", loginFails: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := fakeAPI(t, tt.loginFails)
			s := NewSession(c, "alice")

			user, err := s.Register(context.Background(), "pw")
			if tt.loginFails {
				if err == nil {
					t.Fatal("expected login error")
				}
			} else if err != nil {
				t.Fatalf("Register: %v", err)
			}
			if user.ID != "u1" {
				t.Errorf("user = %+v, want the registered user", user)
			}
			if s.Authenticated() != tt.wantAuth {
				t.Errorf("Authenticated() = %v, want %v", s.Authenticated(), tt.wantAuth)
			}
		})
	}
}
