package mockserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/miroq/mau"
)

const userColumns = `id, username, name, avatar_url, gems, create_date, play_count, win_count, cards_count`

// leaderboardColumns maps a category to the users column it ranks by.
var leaderboardColumns = map[mau.LeaderboardCategory]string{
	mau.CategoryGems:  "gems",
	mau.CategoryGames: "play_count",
	mau.CategoryWins:  "win_count",
	mau.CategoryCards: "cards_count",
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// stampLayout is fixed width so stored timestamps sort as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *SQLiteStore) stamp() string {
	return s.now().UTC().Format(stampLayout)
}

func parseStamp(v string) mau.Timestamp {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return mau.Timestamp{}
	}
	return mau.Timestamp{Time: t}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (mau.User, error) {
	var u mau.User
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.AvatarURL, &u.Gems, &created,
		&u.PlayCount, &u.WinCount, &u.CardsCount)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	u.CreateDate = parseStamp(created)
	return u, nil
}

func (s *SQLiteStore) queryUsers(ctx context.Context, query string, args ...any) ([]mau.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []mau.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (mau.User, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)
	`, username).Scan(&exists)
	if err != nil {
		return mau.User{}, err
	}
	if exists {
		return mau.User{}, ErrConflict
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, name, create_date, password_hash)
		VALUES (?, ?, ?, ?, ?)
	`, id, username, username, s.stamp(), passwordHash)
	if err != nil {
		return mau.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return s.UserByID(ctx, id)
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (mau.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (mau.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *SQLiteStore) Credentials(ctx context.Context, username string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM users WHERE username = ?
	`, username).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]mau.User, error) {
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY create_date, username`)
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, id string, edit mau.UserEdit) (mau.User, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET name = COALESCE(?, name), avatar_url = COALESCE(?, avatar_url)
		WHERE id = ?
	`, nullable(edit.Name), nullable(edit.AvatarURL), id)
	if err != nil {
		return mau.User{}, err
	}
	return s.UserByID(ctx, id)
}

func (s *SQLiteStore) SetPassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)
	`, token, userID, s.stamp())
	return token, err
}

func (s *SQLiteStore) UserFromToken(ctx context.Context, token string) (mau.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.name, u.avatar_url, u.gems, u.create_date,
		       u.play_count, u.win_count, u.cards_count
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token))
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, category mau.LeaderboardCategory) ([]mau.User, error) {
	col, ok := leaderboardColumns[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	return s.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY `+col+` DESC, username LIMIT 100`)
}

// Rank is the 1-based position of username in Leaderboard order.
func (s *SQLiteStore) Rank(ctx context.Context, username string, category mau.LeaderboardCategory) (int, error) {
	col, ok := leaderboardColumns[category]
	if !ok {
		return 0, fmt.Errorf("unknown category %q", category)
	}
	var score int
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT `+col+`, username FROM users WHERE username = ?`, username).
		Scan(&score, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	// Same order as Leaderboard: score descending, then username.
	var ahead int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE `+col+` > ? OR (`+col+` = ? AND username < ?)
	`, score, score, name).Scan(&ahead)
	return ahead + 1, err
}

// Rooms

type roomRow struct {
	room    mau.Room
	ownerID string
}

const roomColumns = `id, name, create_time, private, owner_id, gems, max_players, min_players, status, status_updates`

func scanRoom(row rowScanner) (roomRow, error) {
	var r roomRow
	var created, updated, status string
	var private int
	err := row.Scan(&r.room.ID, &r.room.Name, &created, &private, &r.ownerID,
		&r.room.Gems, &r.room.MaxPlayers, &r.room.MinPlayers, &status, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, err
	}
	r.room.CreateTime = parseStamp(created)
	r.room.StatusUpdates = parseStamp(updated)
	r.room.Private = private != 0
	r.room.Status = mau.RoomStatus(status)
	return r, nil
}

// fill loads the owner, members and game history of a room row.
func (s *SQLiteStore) fill(ctx context.Context, r roomRow) (mau.Room, error) {
	room := r.room
	owner, err := s.UserByID(ctx, r.ownerID)
	if err != nil {
		return room, fmt.Errorf("loading room owner: %w", err)
	}
	room.Owner = owner

	room.Players, err = s.queryUsers(ctx, `
		SELECT u.id, u.username, u.name, u.avatar_url, u.gems, u.create_date,
		       u.play_count, u.win_count, u.cards_count
		FROM room_players rp
		JOIN users u ON u.id = rp.user_id
		WHERE rp.room_id = ?
		ORDER BY rp.joined_at, u.username
	`, room.ID)
	if err != nil {
		return room, fmt.Errorf("loading room players: %w", err)
	}

	room.Games, err = s.queryGames(ctx, `
		SELECT g.id, g.create_time, g.end_time, u.id, u.name
		FROM games g
		JOIN users u ON u.id = g.owner_id
		WHERE g.room_id = ?
		ORDER BY g.create_time
	`, room.ID)
	if err != nil {
		return room, fmt.Errorf("loading room games: %w", err)
	}
	return room, nil
}

func (s *SQLiteStore) queryRooms(ctx context.Context, query string, args ...any) ([]mau.Room, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var found []roomRow
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows are drained first: an in-memory database has a single connection.
	rooms := make([]mau.Room, 0, len(found))
	for _, r := range found {
		room, err := s.fill(ctx, r)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *SQLiteStore) oneRoom(ctx context.Context, query string, args ...any) (mau.Room, error) {
	r, err := scanRoom(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return mau.Room{}, err
	}
	return s.fill(ctx, r)
}

// ListRooms returns the public rooms that have not ended.
func (s *SQLiteStore) ListRooms(ctx context.Context) ([]mau.Room, error) {
	return s.queryRooms(ctx, `
		SELECT `+roomColumns+` FROM rooms
		WHERE private = 0 AND status != 'ended'
		ORDER BY create_time
	`)
}

func (s *SQLiteStore) RandomRoom(ctx context.Context) (mau.Room, error) {
	return s.oneRoom(ctx, `
		SELECT `+roomColumns+` FROM rooms
		WHERE private = 0 AND status = 'idle'
		ORDER BY RANDOM() LIMIT 1
	`)
}

func (s *SQLiteStore) Room(ctx context.Context, id string) (mau.Room, error) {
	return s.oneRoom(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
}

func (s *SQLiteStore) RoomOf(ctx context.Context, userID string) (mau.Room, error) {
	return s.oneRoom(ctx, `
		SELECT `+roomColumns+` FROM rooms
		WHERE id = (SELECT room_id FROM room_players WHERE user_id = ?)
	`, userID)
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, owner mau.User) (mau.Room, error) {
	id := uuid.NewString()
	now := s.stamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mau.Room{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (id, name, create_time, owner_id, status_updates)
		VALUES (?, ?, ?, ?, ?)
	`, id, owner.Name+"'s room", now, owner.ID, now)
	if err != nil {
		return mau.Room{}, fmt.Errorf("inserting room: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_players (room_id, user_id, joined_at) VALUES (?, ?, ?)
	`, id, owner.ID, now)
	if isUniqueViolation(err) {
		return mau.Room{}, ErrConflict
	}
	if err != nil {
		return mau.Room{}, fmt.Errorf("seating owner: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return mau.Room{}, err
	}
	return s.Room(ctx, id)
}

func (s *SQLiteStore) UpdateRoom(ctx context.Context, id string, edit mau.RoomEdit) (mau.Room, error) {
	var private any
	if edit.Private != nil {
		private = boolInt(*edit.Private)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET
			name          = COALESCE(?, name),
			private       = COALESCE(?, private),
			room_password = COALESCE(?, room_password),
			gems          = COALESCE(?, gems),
			max_players   = COALESCE(?, max_players),
			min_players   = COALESCE(?, min_players)
		WHERE id = ?
	`, nullable(edit.Name), private, nullable(edit.RoomPassword), nullable(edit.Gems),
		nullable(edit.MaxPlayers), nullable(edit.MinPlayers), id)
	if err != nil {
		return mau.Room{}, err
	}
	if err := expectOne(res); err != nil {
		return mau.Room{}, err
	}
	return s.Room(ctx, id)
}

func (s *SQLiteStore) DeleteRoom(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *SQLiteStore) AddPlayer(ctx context.Context, roomID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO room_players (room_id, user_id, joined_at) VALUES (?, ?, ?)
	`, roomID, userID, s.stamp())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *SQLiteStore) RemovePlayer(ctx context.Context, roomID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM room_players WHERE room_id = ? AND user_id = ?
	`, roomID, userID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *SQLiteStore) SetOwner(ctx context.Context, roomID, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rooms SET owner_id = ? WHERE id = ?`, userID, roomID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Games

func (s *SQLiteStore) setStatus(ctx context.Context, tx *sql.Tx, roomID string, status mau.RoomStatus) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE rooms SET status = ?, status_updates = ? WHERE id = ?
	`, string(status), s.stamp(), roomID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *SQLiteStore) StartGame(ctx context.Context, roomID, ownerID string) (mau.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mau.Game{}, err
	}
	defer tx.Rollback()

	if err := s.setStatus(ctx, tx, roomID, mau.RoomGame); err != nil {
		return mau.Game{}, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, room_id, owner_id, create_time) VALUES (?, ?, ?, ?)
	`, uuid.NewString(), roomID, ownerID, s.stamp())
	if err != nil {
		return mau.Game{}, fmt.Errorf("inserting game: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET play_count = play_count + 1
		WHERE id IN (SELECT user_id FROM room_players WHERE room_id = ?)
	`, roomID)
	if err != nil {
		return mau.Game{}, fmt.Errorf("counting plays: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return mau.Game{}, err
	}
	return s.CurrentGame(ctx, roomID)
}

func (s *SQLiteStore) CloseRoom(ctx context.Context, roomID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE games SET end_time = ? WHERE room_id = ? AND end_time IS NULL
	`, s.stamp(), roomID)
	if err != nil {
		return fmt.Errorf("closing game: %w", err)
	}
	if err := s.setStatus(ctx, tx, roomID, mau.RoomEnded); err != nil {
		return err
	}
	return tx.Commit()
}

// CurrentGame returns the latest game of a room, running or finished.
func (s *SQLiteStore) CurrentGame(ctx context.Context, roomID string) (mau.Game, error) {
	games, err := s.queryGames(ctx, `
		SELECT g.id, g.create_time, g.end_time, u.id, u.name
		FROM games g
		JOIN users u ON u.id = g.owner_id
		WHERE g.room_id = ?
		ORDER BY g.create_time DESC
		LIMIT 1
	`, roomID)
	if err != nil {
		return mau.Game{}, err
	}
	if len(games) == 0 {
		return mau.Game{}, ErrNotFound
	}
	return games[0], nil
}

func (s *SQLiteStore) queryGames(ctx context.Context, query string, args ...any) ([]mau.Game, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []mau.Game{}
	for rows.Next() {
		var g mau.Game
		var created string
		var ended sql.NullString
		if err := rows.Scan(&g.ID, &created, &ended, &g.Owner.UserID, &g.Owner.Name); err != nil {
			return nil, err
		}
		g.CreateTime = parseStamp(created)
		if ended.Valid {
			g.EndTime = parseStamp(ended.String)
		}
		g.Owner.Hand = mau.HandCount(0)
		g.Winners = []mau.Player{}
		g.Losers = []mau.Player{}
		games = append(games, g)
	}
	return games, rows.Err()
}

// nullable turns an optional field into a query argument, NULL when unset.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
