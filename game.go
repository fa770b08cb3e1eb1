package mau

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Game lifecycle and actions. Every call needs a bearer token and returns
// the caller's GameContext after the action.

func (c *Client) gameAction(ctx context.Context, token, method, path string) (GameContext, error) {
	return call[GameContext](ctx, c, method, path, token, nil)
}

// JoinGame adds the user to the game of their current room.
func (c *Client) JoinGame(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/join")
}

func (c *Client) LeaveGame(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/leave")
}

// ActiveGame returns the current game context of the user.
func (c *Client) ActiveGame(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodGet, "/game/")
}

func (c *Client) StartGame(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/start")
}

// EndGame forcibly finishes the game in the user's room.
func (c *Client) EndGame(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/end")
}

// GameKick removes a player from the running game.
func (c *Client) GameKick(ctx context.Context, token, userID string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/kick/"+url.PathEscape(userID))
}

// GameSkip skips the current player's turn.
func (c *Client) GameSkip(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/skip")
}

// GameNext passes the turn to the next player.
func (c *Client) GameNext(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/next")
}

// GameTake draws cards.
func (c *Client) GameTake(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/take")
}

// GameShotgunTake draws cards instead of firing the shotgun.
func (c *Client) GameShotgunTake(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/shotgun/take")
}

// GameShotgunShot fires the shotgun instead of drawing cards.
func (c *Client) GameShotgunShot(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/shotgun/shot")
}

// GameBluff challenges whether the previous player played honestly.
func (c *Client) GameBluff(ctx context.Context, token string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/bluff")
}

// GameColor picks the color for a wild card.
func (c *Client) GameColor(ctx context.Context, token string, color CardColor) (GameContext, error) {
	if !color.Valid() {
		var zero GameContext
		return zero, &ValidationError{Type: "CardColor", Err: fmt.Errorf("unknown card color %d", int(color))}
	}
	return c.gameAction(ctx, token, http.MethodPost, "/game/color/"+strconv.Itoa(int(color)))
}

// GamePlayer picks the player to swap hands with.
func (c *Client) GamePlayer(ctx context.Context, token, userID string) (GameContext, error) {
	return c.gameAction(ctx, token, http.MethodPost, "/game/player/"+url.PathEscape(userID))
}
