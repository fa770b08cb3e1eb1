package mau

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Rating returns the leaderboard for a category, best first.
func (c *Client) Rating(ctx context.Context, category LeaderboardCategory) ([]User, error) {
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	return callList[User](ctx, c, http.MethodGet, "/leaderboard/"+string(category), "")
}

// PlayerRating returns the position of username in the category's
// leaderboard.
func (c *Client) PlayerRating(ctx context.Context, username string, category LeaderboardCategory) (int, error) {
	if err := checkCategory(category); err != nil {
		return 0, err
	}
	path := "/leaderboard/" + url.PathEscape(username) + "/" + string(category)
	return call[int](ctx, c, http.MethodGet, path, "", nil)
}

func checkCategory(category LeaderboardCategory) error {
	if !category.Valid() {
		return &ValidationError{Type: "LeaderboardCategory", Err: fmt.Errorf("unknown category %q", category)}
	}
	return nil
}
