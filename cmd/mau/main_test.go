package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/miroq/mau"
	"github.com/miroq/mau/internal/database"
	"github.com/miroq/mau/internal/migrations"
	"github.com/miroq/mau/internal/mockserver"
)

// startMock serves a fresh mock API and points MAU_SERVER at it.
func startMock(t *testing.T) string {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	if err := migrations.Run(context.Background(), db, logger); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	srv := httptest.NewServer(mockserver.NewRouter(logger, db))
	t.Cleanup(srv.Close)

	api := srv.URL + "/api/"
	t.Setenv("MAU_SERVER", api)
	t.Setenv("MAU_USERNAME", "")
	t.Setenv("MAU_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "INFO")
	return api
}

func seedUser(t *testing.T, api, username, password string) {
	t.Helper()
	c, err := mau.New(mau.WithServer(api))
	if err != nil {
		t.Fatalf("mau.New: %v", err)
	}
	defer c.Close()
	if _, err := mau.NewSession(c, username).Register(context.Background(), password); err != nil {
		t.Fatalf("registering %s: %v", username, err)
	}
}

func TestRunCommands(t *testing.T) {
	api := startMock(t)
	seedUser(t, api, "alice", "secret")

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "rooms", args: []string{"rooms"}, want: "[]"},
		{name: "users", args: []string{"users"}, want: `"username": "alice"`},
		{name: "leaderboard", args: []string{"leaderboard", "wins"}, want: `"username": "alice"`},
		{name: "rank", args: []string{"rank", "alice"}, want: "1"},
		{name: "overview", args: []string{"overview"}, want: `"leaderboard"`},
		{name: "unknown room", args: []string{"room", "missing"}, wantErr: true},
		{name: "random room without rooms", args: []string{"random-room"}, wantErr: true},
		{name: "bad category", args: []string{"leaderboard", "luck"}, wantErr: true},
		{name: "unknown command", args: []string{"dance"}, wantErr: true},
		{name: "no command", args: nil, wantErr: true},
		{name: "me without credentials", args: []string{"me"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got output %s", stdout.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output = %s, want it to contain %s", stdout.String(), tt.want)
			}
		})
	}
}

func TestRunMe(t *testing.T) {
	api := startMock(t)
	seedUser(t, api, "bob", "hunter2")
	t.Setenv("MAU_USERNAME", "bob")
	t.Setenv("MAU_PASSWORD", "hunter2")

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"me"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}

	var me mau.User
	if err := json.Unmarshal(stdout.Bytes(), &me); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if me.Username != "bob" {
		t.Errorf("username = %q, want bob", me.Username)
	}
}

func TestRunMeWrongPassword(t *testing.T) {
	api := startMock(t)
	seedUser(t, api, "bob", "hunter2")
	t.Setenv("MAU_USERNAME", "bob")
	t.Setenv("MAU_PASSWORD", "wrong")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"me"}, &stdout, &stderr)
	var re *mau.RequestError
	if !errors.As(err, &re) || re.StatusCode != 401 {
		t.Fatalf("err = %v, want 401 RequestError", err)
	}
}
