package mau

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: `"2024-05-01T10:20:30"`, want: time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{in: `"2024-05-01T10:20:30.5+03:00"`, want: time.Date(2024, 5, 1, 7, 20, 30, 500_000_000, time.UTC)},
		{in: `"2024-05-01 10:20:30"`, want: time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)},
		{in: `null`},
		{in: `"yesterday"`, wantErr: true},
		{in: `42`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var ts Timestamp
			err := json.Unmarshal([]byte(tt.in), &ts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", ts)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !ts.Equal(tt.want) {
				t.Errorf("got %v, want %v", ts.Time, tt.want)
			}
		})
	}
}

func TestHandUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		visible bool
		n       int
		wantErr bool
	}{
		{in: `4`, n: 4},
		{in: `0`, n: 0},
		{in: `[]`, visible: true, n: 0},
		{in: `[{"color":1,"behavior":"take","value":2,"cost":20},{"color":6,"behavior":"wild+color","value":0,"cost":50}]`, visible: true, n: 2},
		{in: `-1`, wantErr: true},
		{in: `"three"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var h Hand
			err := json.Unmarshal([]byte(tt.in), &h)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if h.Visible() != tt.visible || h.Len() != tt.n {
				t.Errorf("visible=%v len=%d, want visible=%v len=%d", h.Visible(), h.Len(), tt.visible, tt.n)
			}
			cards, ok := h.Cards()
			if ok != tt.visible || len(cards) != tt.n && tt.visible {
				t.Errorf("Cards() = %v, %v", cards, ok)
			}
		})
	}
}

func TestHandMarshal(t *testing.T) {
	tests := []struct {
		name string
		hand Hand
		want string
	}{
		{"count", HandCount(3), `3`},
		{"empty cards", HandCards(nil), `[]`},
		{"cards", HandCards([]Card{{Color: ColorGreen, Behavior: BehaviorNumber, Value: 7}}), `[{"color":3,"behavior":"number","value":7,"cost":0}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.hand)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}

func TestPlayerRejectsBadCard(t *testing.T) {
	p := Player{UserID: "u1", Hand: HandCards([]Card{{Color: ColorRed, Behavior: "steal"}})}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for unknown behavior")
	}
}

func TestGameRejectsVisibleOtherHand(t *testing.T) {
	g := Game{ID: "g1", Owner: Player{UserID: "u1", Hand: HandCards(nil)}}
	if err := g.Validate(); err == nil {
		t.Fatal("expected error for visible owner hand")
	}
	g.Owner.Hand = HandCount(2)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestRoomValidate(t *testing.T) {
	alice := User{ID: "u1", Username: "alice"}
	bob := User{ID: "u2", Username: "bob"}
	base := Room{ID: "r1", Owner: alice, MinPlayers: 2, MaxPlayers: 3, Status: RoomIdle}

	tests := []struct {
		name    string
		edit    func(r *Room)
		wantErr bool
	}{
		{name: "idle alone", edit: func(r *Room) { r.Players = []User{alice} }},
		{name: "game within limits", edit: func(r *Room) { r.Status = RoomGame; r.Players = []User{alice, bob} }},
		{name: "game below min", edit: func(r *Room) { r.Status = RoomGame; r.Players = []User{alice} }, wantErr: true},
		{name: "unknown status", edit: func(r *Room) { r.Status = "paused" }, wantErr: true},
		{name: "missing id", edit: func(r *Room) { r.ID = "" }, wantErr: true},
		{name: "bad player", edit: func(r *Room) { r.Players = []User{{ID: "u3"}} }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.edit(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEditOmitsUnsetFields(t *testing.T) {
	b, err := json.Marshal(UserEdit{AvatarURL: Ptr("https://example.com/a.png")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"avatar_url":"https://example.com/a.png"}` {
		t.Errorf("got %s", b)
	}

	b, err = json.Marshal(RoomEdit{Private: Ptr(false)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"private":false}` {
		t.Errorf("got %s", b)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    CardColor
		wantErr bool
	}{
		{in: "red", want: ColorRed},
		{in: "cream", want: ColorCream},
		{in: "5", want: ColorBlue},
		{in: "8", wantErr: true},
		{in: "purple", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
	if s := CardColor(9).String(); s != "CardColor(9)" {
		t.Errorf("String() = %q", s)
	}
}

func TestParseCategory(t *testing.T) {
	for _, s := range []string{"gems", "games", "wins", "cards"} {
		if _, err := ParseCategory(s); err != nil {
			t.Errorf("ParseCategory(%q): %v", s, err)
		}
	}
	if _, err := ParseCategory("luck"); err == nil {
		t.Error("ParseCategory(luck) succeeded")
	}
}

func decodeAs[T any](b []byte) error {
	var v T
	return json.Unmarshal(b, &v)
}

// withField rewrites one key of a JSON object: deleted when drop is set,
// otherwise replaced with null.
func withField(t *testing.T, doc, key string, drop bool) []byte {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal([]byte(doc), &obj); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if drop {
		delete(obj, key)
	} else {
		obj[key] = nil
	}
	b, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestDecodeRequiresEveryField(t *testing.T) {
	const (
		cardJSON   = `{"color":1,"behavior":"take","value":2,"cost":20}`
		playerJSON = `{"user_id":"u2","name":"Bob","hand":2,"shotgun_current":0}`
		gameJSON   = `{"id":"g1","create_time":"2024-05-01T10:00:00","end_time":null,
"owner":{"user_id":"u1","name":"Alice","hand":3,"shotgun_current":0},"winners":[],"losers":[]}`
	)

	tests := []struct {
		name     string
		doc      string
		decode   func([]byte) error
		nullable []string
	}{
		{name: "User", doc: userJSON, decode: decodeAs[User]},
		{name: "Room", doc: roomJSON("r1"), decode: decodeAs[Room]},
		{name: "RoomDelete", doc: `{"room_id":"r1"}`, decode: decodeAs[RoomDelete]},
		{name: "Card", doc: cardJSON, decode: decodeAs[Card]},
		{name: "Player", doc: playerJSON, decode: decodeAs[Player]},
		{name: "Game", doc: gameJSON, decode: decodeAs[Game], nullable: []string{"end_time"}},
		{name: "GameContext", doc: gameContextJSON("[]"), decode: decodeAs[GameContext]},
		{name: "TokenResult", doc: `{"status":"ok","token":"t"}`, decode: decodeAs[TokenResult]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.decode([]byte(tt.doc)); err != nil {
				t.Fatalf("valid document rejected: %v", err)
			}

			var obj map[string]json.RawMessage
			if err := json.Unmarshal([]byte(tt.doc), &obj); err != nil {
				t.Fatalf("fixture: %v", err)
			}
			for key := range obj {
				if err := tt.decode(withField(t, tt.doc, key, true)); err == nil {
					t.Errorf("missing %q accepted", key)
				}
				err := tt.decode(withField(t, tt.doc, key, false))
				if nullable := slices.Contains(tt.nullable, key); nullable != (err == nil) {
					t.Errorf("null %q: err = %v, nullable %v", key, err, nullable)
				}
			}
		})
	}
}

func TestNestedNullHandRejected(t *testing.T) {
	doc := strings.Replace(gameContextJSON("[]"), `"hand":3`, `"hand":null`, 1)
	if err := decodeAs[GameContext]([]byte(doc)); err == nil {
		t.Fatal("null owner hand accepted")
	}

	var h Hand
	if err := json.Unmarshal([]byte(`null`), &h); err == nil {
		t.Fatal("null hand accepted")
	}
}
