package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/miroq/mau"
	"github.com/miroq/mau/internal/config"
)

const usage = `usage: mau <command> [args]

commands:
  rooms                        list open rooms
  room <id>                    show a room
  random-room                  show a random open room
  users                        list users
  leaderboard [category]       show a leaderboard (gems, games, wins, cards)
  rank <username> [category]   show a player's position
  me                           show the logged in user (MAU_USERNAME, MAU_PASSWORD)
  overview                     rooms, users and the gems leaderboard at once`

var errUsage = errors.New(usage)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	client, err := mau.New(mau.WithServer(cfg.Server), mau.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}
	defer client.Close()

	out, err := dispatch(ctx, client, cfg, args)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// categoryArg reads an optional category argument, defaulting to gems.
func categoryArg(args []string, i int) (mau.LeaderboardCategory, error) {
	if len(args) <= i {
		return mau.CategoryGems, nil
	}
	return mau.ParseCategory(args[i])
}

func dispatch(ctx context.Context, client *mau.Client, cfg *config.Client, args []string) (any, error) {
	switch cmd := args[0]; cmd {
	case "rooms":
		return client.Rooms(ctx)
	case "room":
		if len(args) < 2 {
			return nil, errUsage
		}
		return client.Room(ctx, args[1])
	case "random-room":
		return client.RandomRoom(ctx)
	case "users":
		return client.Users(ctx)
	case "leaderboard":
		category, err := categoryArg(args, 1)
		if err != nil {
			return nil, err
		}
		return client.Rating(ctx, category)
	case "rank":
		if len(args) < 2 {
			return nil, errUsage
		}
		category, err := categoryArg(args, 2)
		if err != nil {
			return nil, err
		}
		return client.PlayerRating(ctx, args[1], category)
	case "me":
		if !cfg.HasCredentials() {
			return nil, errors.New("MAU_USERNAME and MAU_PASSWORD must be set")
		}
		session := mau.NewSession(client, cfg.Username)
		if err := session.Login(ctx, cfg.Password); err != nil {
			return nil, fmt.Errorf("logging in: %w", err)
		}
		return session.Me(ctx)
	case "overview":
		return overview(ctx, client)
	default:
		return nil, fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
	}
}

type overviewResult struct {
	Rooms       []mau.Room `json:"rooms"`
	Users       []mau.User `json:"users"`
	Leaderboard []mau.User `json:"leaderboard"`
}

func overview(ctx context.Context, client *mau.Client) (overviewResult, error) {
	var res overviewResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rooms, err := client.Rooms(gctx)
		res.Rooms = rooms
		return err
	})
	g.Go(func() error {
		users, err := client.Users(gctx)
		res.Users = users
		return err
	})
	g.Go(func() error {
		top, err := client.Rating(gctx, mau.CategoryGems)
		res.Leaderboard = top
		return err
	})

	if err := g.Wait(); err != nil {
		return overviewResult{}, err
	}
	return res, nil
}
