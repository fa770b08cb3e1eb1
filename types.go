package mau

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// Timestamp decodes the service's ISO-8601 datetimes, which may come
// without a zone offset. Naive values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// checkFields makes sure a JSON object carries every key in required with a
// non-null value. Keys listed in nullable must be present but may be null.
func checkFields(b []byte, required []string, nullable ...string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj == nil {
		return errors.New("expected an object, got null")
	}
	for _, key := range required {
		v, ok := obj[key]
		if !ok {
			return fmt.Errorf("missing field %q", key)
		}
		if string(bytes.TrimSpace(v)) == "null" && !slices.Contains(nullable, key) {
			return fmt.Errorf("field %q must not be null", key)
		}
	}
	return nil
}

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url"`
	Gems       int       `json:"gems"`
	CreateDate Timestamp `json:"create_date"`

	// Leaderboard counters, maintained by the server.
	PlayCount  int `json:"play_count"`
	WinCount   int `json:"win_count"`
	CardsCount int `json:"cards_count"`
}

func (u User) Validate() error {
	if u.ID == "" {
		return errors.New("user: missing id")
	}
	if u.Username == "" {
		return errors.New("user: missing username")
	}
	return nil
}

func (u *User) UnmarshalJSON(b []byte) error {
	err := checkFields(b, []string{
		"id", "username", "name", "avatar_url", "gems", "create_date",
		"play_count", "win_count", "cards_count",
	})
	if err != nil {
		return fmt.Errorf("user: %w", err)
	}
	type plain User
	return json.Unmarshal(b, (*plain)(u))
}

// Room is a lobby grouping players before and during a game.
type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreateTime Timestamp `json:"create_time"`
	Private    bool      `json:"private"`

	Owner   User   `json:"owner"`
	Players []User `json:"players"`

	Gems       int `json:"gems"`
	MaxPlayers int `json:"max_players"`
	MinPlayers int `json:"min_players"`

	Status        RoomStatus `json:"status"`
	StatusUpdates Timestamp  `json:"status_updates"`

	Games []Game `json:"games"`
}

func (r Room) Validate() error {
	if r.ID == "" {
		return errors.New("room: missing id")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("room: unknown status %q", r.Status)
	}
	if err := r.Owner.Validate(); err != nil {
		return fmt.Errorf("room owner: %w", err)
	}
	for i, p := range r.Players {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("room players[%d]: %w", i, err)
		}
	}
	if r.Status == RoomGame && (len(r.Players) < r.MinPlayers || len(r.Players) > r.MaxPlayers) {
		return fmt.Errorf("room: %d players outside [%d, %d] during game",
			len(r.Players), r.MinPlayers, r.MaxPlayers)
	}
	for i, g := range r.Games {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("room games[%d]: %w", i, err)
		}
	}
	return nil
}

func (r *Room) UnmarshalJSON(b []byte) error {
	err := checkFields(b, []string{
		"id", "name", "create_time", "private", "owner", "players",
		"gems", "max_players", "min_players", "status", "status_updates", "games",
	})
	if err != nil {
		return fmt.Errorf("room: %w", err)
	}
	type plain Room
	return json.Unmarshal(b, (*plain)(r))
}

// RoomEdit carries the room settings to change. Nil fields are left out of
// the request body.
type RoomEdit struct {
	Name         *string `json:"name,omitempty"`
	Private      *bool   `json:"private,omitempty"`
	RoomPassword *string `json:"room_password,omitempty"`
	Gems         *int    `json:"gems,omitempty"`
	MaxPlayers   *int    `json:"max_players,omitempty"`
	MinPlayers   *int    `json:"min_players,omitempty"`
}

// RoomDelete confirms a room removal.
type RoomDelete struct {
	RoomID string `json:"room_id"`
}

func (d RoomDelete) Validate() error {
	if d.RoomID == "" {
		return errors.New("room delete: missing room_id")
	}
	return nil
}

func (d *RoomDelete) UnmarshalJSON(b []byte) error {
	if err := checkFields(b, []string{"room_id"}); err != nil {
		return fmt.Errorf("room delete: %w", err)
	}
	type plain RoomDelete
	return json.Unmarshal(b, (*plain)(d))
}

type Card struct {
	Color    CardColor    `json:"color"`
	Behavior CardBehavior `json:"behavior"`
	Value    int          `json:"value"`
	Cost     int          `json:"cost"`
}

func (c Card) Validate() error {
	if !c.Color.Valid() {
		return fmt.Errorf("card: unknown color %d", int(c.Color))
	}
	if !c.Behavior.Valid() {
		return fmt.Errorf("card: unknown behavior %q", c.Behavior)
	}
	return nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	if err := checkFields(b, []string{"color", "behavior", "value", "cost"}); err != nil {
		return fmt.Errorf("card: %w", err)
	}
	type plain Card
	return json.Unmarshal(b, (*plain)(c))
}

// Hand is either a card count (how other players are seen) or the full
// list of cards (how the acting player sees its own hand). On the wire it
// is an integer or an array.
type Hand struct {
	cards []Card
	count int
	full  bool
}

func HandCount(n int) Hand { return Hand{count: n} }

func HandCards(cards []Card) Hand {
	return Hand{cards: slices.Clone(cards), count: len(cards), full: true}
}

// Len is the number of cards in the hand regardless of visibility.
func (h Hand) Len() int { return h.count }

// Cards returns the hand contents; ok is false for a count-only hand.
func (h Hand) Cards() (cards []Card, ok bool) {
	if !h.full {
		return nil, false
	}
	return slices.Clone(h.cards), true
}

func (h Hand) Visible() bool { return h.full }

func (h *Hand) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		return errors.New("hand must be a card count or a card list, got null")
	}
	if len(b) > 0 && b[0] == '[' {
		var cards []Card
		if err := json.Unmarshal(b, &cards); err != nil {
			return err
		}
		*h = Hand{cards: cards, count: len(cards), full: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("hand must be a card count or a card list: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("hand: negative card count %d", n)
	}
	*h = Hand{count: n}
	return nil
}

func (h Hand) MarshalJSON() ([]byte, error) {
	if h.full {
		if h.cards == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(h.cards)
	}
	return json.Marshal(h.count)
}

type Player struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Hand           Hand   `json:"hand"`
	ShotgunCurrent int    `json:"shotgun_current"`
}

func (p Player) Validate() error {
	if p.UserID == "" {
		return errors.New("player: missing user_id")
	}
	for i, c := range p.Hand.cards {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("player hand[%d]: %w", i, err)
		}
	}
	return nil
}

func (p *Player) UnmarshalJSON(b []byte) error {
	if err := checkFields(b, []string{"user_id", "name", "hand", "shotgun_current"}); err != nil {
		return fmt.Errorf("player: %w", err)
	}
	type plain Player
	return json.Unmarshal(b, (*plain)(p))
}

// validateOther checks a player seen from someone else's seat.
func (p Player) validateOther() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Hand.full {
		return fmt.Errorf("player %s: hand of another player must be a count", p.UserID)
	}
	return nil
}

// Game is a game session of a room, finished or in progress.
type Game struct {
	ID         string    `json:"id"`
	CreateTime Timestamp `json:"create_time"`
	EndTime    Timestamp `json:"end_time"`
	Owner      Player    `json:"owner"`
	Winners    []Player  `json:"winners"`
	Losers     []Player  `json:"losers"`
}

func (g Game) Validate() error {
	if g.ID == "" {
		return errors.New("game: missing id")
	}
	if err := g.Owner.validateOther(); err != nil {
		return fmt.Errorf("game owner: %w", err)
	}
	for i, p := range g.Winners {
		if err := p.validateOther(); err != nil {
			return fmt.Errorf("game winners[%d]: %w", i, err)
		}
	}
	for i, p := range g.Losers {
		if err := p.validateOther(); err != nil {
			return fmt.Errorf("game losers[%d]: %w", i, err)
		}
	}
	return nil
}

// UnmarshalJSON requires every field; end_time is null while the game runs.
func (g *Game) UnmarshalJSON(b []byte) error {
	err := checkFields(b, []string{
		"id", "create_time", "end_time", "owner", "winners", "losers",
	}, "end_time")
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	type plain Game
	return json.Unmarshal(b, (*plain)(g))
}

// GameContext is the game snapshot returned after every game action,
// together with the calling player's own view.
type GameContext struct {
	Game   Game   `json:"game"`
	Player Player `json:"player"`
}

func (c GameContext) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if err := c.Player.Validate(); err != nil {
		return fmt.Errorf("context player: %w", err)
	}
	if !c.Player.Hand.full {
		return errors.New("context player: own hand must be a card list")
	}
	return nil
}

func (c *GameContext) UnmarshalJSON(b []byte) error {
	if err := checkFields(b, []string{"game", "player"}); err != nil {
		return fmt.Errorf("game context: %w", err)
	}
	type plain GameContext
	return json.Unmarshal(b, (*plain)(c))
}

// Ptr returns a pointer to v, for filling RoomEdit and UserEdit.
func Ptr[T any](v T) *T { return &v }

type UserCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserEdit carries the profile fields to change. Nil fields are left out.
type UserEdit struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type UserChangePassword struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// TokenResult is the login response.
type TokenResult struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

func (t TokenResult) Validate() error {
	if t.Token == "" {
		return errors.New("token result: empty token")
	}
	return nil
}

func (t *TokenResult) UnmarshalJSON(b []byte) error {
	if err := checkFields(b, []string{"status", "token"}); err != nil {
		return fmt.Errorf("token result: %w", err)
	}
	type plain TokenResult
	return json.Unmarshal(b, (*plain)(t))
}
