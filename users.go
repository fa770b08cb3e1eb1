package mau

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) Users(ctx context.Context) ([]User, error) {
	return callList[User](ctx, c, http.MethodGet, "/users", "")
}

// User fetches a public profile by username.
func (c *Client) User(ctx context.Context, username string) (User, error) {
	return call[User](ctx, c, http.MethodGet, "/users/"+url.PathEscape(username), "", nil)
}

func (c *Client) RegisterUser(ctx context.Context, creds UserCredentials) (User, error) {
	return call[User](ctx, c, http.MethodPost, "/users", "", creds)
}

// LoginUser exchanges credentials for a bearer token.
func (c *Client) LoginUser(ctx context.Context, creds UserCredentials) (TokenResult, error) {
	return call[TokenResult](ctx, c, http.MethodPost, "/users/login", "", creds)
}

// UserMe returns the current profile of the token's user.
func (c *Client) UserMe(ctx context.Context, token string) (User, error) {
	return call[User](ctx, c, http.MethodGet, "/users/me", token, nil)
}

func (c *Client) EditUser(ctx context.Context, token string, edit UserEdit) (User, error) {
	return call[User](ctx, c, http.MethodPut, "/users/", token, edit)
}

func (c *Client) ChangePassword(ctx context.Context, token string, change UserChangePassword) (User, error) {
	return call[User](ctx, c, http.MethodPost, "/users/change-password", token, change)
}
