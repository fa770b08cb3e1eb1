package mau

import (
	"context"
	"sync"
)

// Session performs requests on behalf of one user. It starts anonymous and
// becomes authenticated after a successful Login or Register; the token then
// lives as long as the Session. Sessions for different users are independent.
type Session struct {
	client   *Client
	username string

	mu    sync.RWMutex
	token string
}

func NewSession(client *Client, username string) *Session {
	return &Session{client: client, username: username}
}

func (s *Session) Username() string { return s.username }

// Authenticated reports whether a login has succeeded.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

func (s *Session) getToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrAuthRequired
	}
	return s.token, nil
}

func (s *Session) credentials(password string) UserCredentials {
	return UserCredentials{Username: s.username, Password: password}
}

// withToken runs fn with the stored token, or fails with ErrAuthRequired
// without touching the network.
func withToken[T any](s *Session, fn func(token string) (T, error)) (T, error) {
	token, err := s.getToken()
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(token)
}

// Login obtains a fresh token. On failure the previous state is kept.
func (s *Session) Login(ctx context.Context, password string) error {
	res, err := s.client.LoginUser(ctx, s.credentials(password))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.token = res.Token
	s.mu.Unlock()
	return nil
}

// Register creates the account and logs in right away. If the login step
// fails the account exists server-side but the session stays anonymous.
func (s *Session) Register(ctx context.Context, password string) (User, error) {
	user, err := s.client.RegisterUser(ctx, s.credentials(password))
	if err != nil {
		return User{}, err
	}
	if err := s.Login(ctx, password); err != nil {
		return user, err
	}
	return user, nil
}

func (s *Session) Me(ctx context.Context) (User, error) {
	return withToken(s, func(t string) (User, error) { return s.client.UserMe(ctx, t) })
}

func (s *Session) Edit(ctx context.Context, edit UserEdit) (User, error) {
	return withToken(s, func(t string) (User, error) { return s.client.EditUser(ctx, t, edit) })
}

func (s *Session) ChangePassword(ctx context.Context, change UserChangePassword) (User, error) {
	return withToken(s, func(t string) (User, error) { return s.client.ChangePassword(ctx, t, change) })
}

// Rooms

func (s *Session) CreateRoom(ctx context.Context) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.CreateRoom(ctx, t) })
}

// Room returns the room the user is currently in.
func (s *Session) Room(ctx context.Context) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.ActiveRoom(ctx, t) })
}

func (s *Session) EditRoom(ctx context.Context, edit RoomEdit) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.EditRoom(ctx, t, edit) })
}

func (s *Session) DeleteRoom(ctx context.Context, roomID string) (RoomDelete, error) {
	return withToken(s, func(t string) (RoomDelete, error) { return s.client.DeleteRoom(ctx, t, roomID) })
}

func (s *Session) JoinRoom(ctx context.Context, roomID string) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.JoinRoom(ctx, t, roomID) })
}

func (s *Session) LeaveRoom(ctx context.Context, roomID string) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.LeaveRoom(ctx, t, roomID) })
}

func (s *Session) RoomKick(ctx context.Context, roomID, userID string) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.RoomKick(ctx, t, roomID, userID) })
}

func (s *Session) RoomOwner(ctx context.Context, roomID, userID string) (Room, error) {
	return withToken(s, func(t string) (Room, error) { return s.client.RoomOwner(ctx, t, roomID, userID) })
}

// Game

func (s *Session) JoinGame(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.JoinGame(ctx, t) })
}

func (s *Session) LeaveGame(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.LeaveGame(ctx, t) })
}

func (s *Session) ActiveGame(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.ActiveGame(ctx, t) })
}

func (s *Session) StartGame(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.StartGame(ctx, t) })
}

func (s *Session) EndGame(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.EndGame(ctx, t) })
}

func (s *Session) GameKick(ctx context.Context, userID string) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameKick(ctx, t, userID) })
}

func (s *Session) GameSkip(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameSkip(ctx, t) })
}

func (s *Session) GameNext(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameNext(ctx, t) })
}

func (s *Session) GameTake(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameTake(ctx, t) })
}

func (s *Session) GameShotgunTake(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameShotgunTake(ctx, t) })
}

func (s *Session) GameShotgunShot(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameShotgunShot(ctx, t) })
}

func (s *Session) GameBluff(ctx context.Context) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameBluff(ctx, t) })
}

func (s *Session) GameColor(ctx context.Context, color CardColor) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GameColor(ctx, t, color) })
}

func (s *Session) GamePlayer(ctx context.Context, userID string) (GameContext, error) {
	return withToken(s, func(t string) (GameContext, error) { return s.client.GamePlayer(ctx, t, userID) })
}
