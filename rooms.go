package mau

import (
	"context"
	"net/http"
	"net/url"
)

// Rooms returns all open rooms.
func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	return callList[Room](ctx, c, http.MethodGet, "/rooms", "")
}

// RandomRoom returns a random open room.
func (c *Client) RandomRoom(ctx context.Context) (Room, error) {
	return call[Room](ctx, c, http.MethodGet, "/rooms/random", "", nil)
}

func (c *Client) Room(ctx context.Context, roomID string) (Room, error) {
	return call[Room](ctx, c, http.MethodGet, "/rooms/"+url.PathEscape(roomID), "", nil)
}

// ActiveRoom returns the room the token's user is currently in.
func (c *Client) ActiveRoom(ctx context.Context, token string) (Room, error) {
	return call[Room](ctx, c, http.MethodGet, "/rooms/active", token, nil)
}

// CreateRoom creates a room owned by the token's user.
func (c *Client) CreateRoom(ctx context.Context, token string) (Room, error) {
	return call[Room](ctx, c, http.MethodPost, "/rooms", token, nil)
}

// EditRoom updates the settings of the user's room. Only the non-nil
// fields of edit are sent.
func (c *Client) EditRoom(ctx context.Context, token string, edit RoomEdit) (Room, error) {
	return call[Room](ctx, c, http.MethodPut, "/rooms/", token, edit)
}

func (c *Client) DeleteRoom(ctx context.Context, token, roomID string) (RoomDelete, error) {
	return call[RoomDelete](ctx, c, http.MethodDelete, "/rooms/"+url.PathEscape(roomID), token, nil)
}

func (c *Client) JoinRoom(ctx context.Context, token, roomID string) (Room, error) {
	return call[Room](ctx, c, http.MethodPost, "/rooms/"+url.PathEscape(roomID)+"/join", token, nil)
}

func (c *Client) LeaveRoom(ctx context.Context, token, roomID string) (Room, error) {
	return call[Room](ctx, c, http.MethodPost, "/rooms/"+url.PathEscape(roomID)+"/leave", token, nil)
}

// RoomKick removes a user from the room. Owner only.
func (c *Client) RoomKick(ctx context.Context, token, roomID, userID string) (Room, error) {
	path := "/rooms/" + url.PathEscape(roomID) + "/kick/" + url.PathEscape(userID)
	return call[Room](ctx, c, http.MethodPost, path, token, nil)
}

// RoomOwner hands room ownership to another member. Owner only.
func (c *Client) RoomOwner(ctx context.Context, token, roomID, userID string) (Room, error) {
	path := "/rooms/" + url.PathEscape(roomID) + "/owner/" + url.PathEscape(userID)
	return call[Room](ctx, c, http.MethodPost, path, token, nil)
}
