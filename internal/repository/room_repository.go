package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/cargarn1/MovieFan/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so scanning helpers can
// run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const roomColumns = `id, name, COALESCE(description, ''), movie_id, creator_id, is_private, max_members, created_at, updated_at`

// RoomRepo is the MySQL MembershipStore.  A room's row lock
// (SELECT ... FOR UPDATE) is the per-room serializing guard; member and
// invitation rows of that room are only written while it is held.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the provided database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle.
func (r *RoomRepo) DB() *sql.DB { return r.db }

func scanRoom(sc interface{ Scan(...any) error }) (model.Room, error) {
	var rm model.Room
	err := sc.Scan(&rm.ID, &rm.Name, &rm.Description, &rm.MovieID, &rm.CreatorID,
		&rm.IsPrivate, &rm.MaxMembers, &rm.CreatedAt, &rm.UpdatedAt)
	return rm, err
}

// queryRooms runs a room SELECT and attaches member sets to every row.
func queryRooms(ctx context.Context, q querier, query string, args ...any) ([]model.Room, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	rooms := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := loadMembers(ctx, q, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// loadMembers fills MemberIDs for rooms in join order.
func loadMembers(ctx context.Context, q querier, rooms []model.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(rooms))
	placeholders := make([]string, 0, len(rooms))
	args := make([]any, 0, len(rooms))
	for i, rm := range rooms {
		index[rm.ID] = i
		rooms[i].MemberIDs = []uint64{}
		placeholders = append(placeholders, "?")
		args = append(args, rm.ID)
	}
	query := `SELECT room_id, user_id FROM room_members WHERE room_id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY joined_at, user_id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var roomID, userID uint64
		if err := rows.Scan(&roomID, &userID); err != nil {
			return fmt.Errorf("scan member: %w", err)
		}
		i := index[roomID]
		rooms[i].MemberIDs = append(rooms[i].MemberIDs, userID)
	}
	return rows.Err()
}

// CreateRoom inserts the room and the creator's membership in one
// transaction.
func (r *RoomRepo) CreateRoom(ctx context.Context, room *model.Room) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (name, description, movie_id, creator_id, is_private, max_members) VALUES (?, ?, ?, ?, ?, ?)`,
		room.Name, nullString(room.Description), room.MovieID, room.CreatorID, room.IsPrivate, room.MaxMembers)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("room id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO room_members (room_id, user_id) VALUES (?, ?)`, id, room.CreatorID); err != nil {
		return fmt.Errorf("insert creator membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	now := time.Now().UTC()
	room.ID = uint64(id)
	room.MemberIDs = []uint64{room.CreatorID}
	room.CreatedAt, room.UpdatedAt = now, now
	return nil
}

func (r *RoomRepo) Room(ctx context.Context, roomID uint64) (model.Room, error) {
	rooms, err := queryRooms(ctx, r.db, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if len(rooms) == 0 {
		return model.Room{}, roomNotFound()
	}
	return rooms[0], nil
}

// PublicRooms applies the optional movie and search filters in SQL.  The
// default collation makes LIKE case-insensitive.
func (r *RoomRepo) PublicRooms(ctx context.Context, f model.RoomFilter) ([]model.Room, error) {
	var (
		where = []string{"is_private = FALSE"}
		args  []any
	)
	if f.MovieID != 0 {
		where = append(where, "movie_id = ?")
		args = append(args, f.MovieID)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where = append(where, "(name LIKE ? OR description LIKE ?)")
		args = append(args, pattern, pattern)
	}
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return queryRooms(ctx, r.db, query, args...)
}

func (r *RoomRepo) RoomsForMember(ctx context.Context, userID uint64) ([]model.Room, error) {
	return queryRooms(ctx, r.db,
		`SELECT `+prefixed("r.", roomColumns)+` FROM rooms r
		 JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ? ORDER BY r.id`, userID)
}

func (r *RoomRepo) MemberMovieIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT r.movie_id FROM rooms r
		 JOIN room_members m ON m.room_id = r.id
		 WHERE m.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query member movies: %w", err)
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WithRoomLock opens a transaction, locks the room row and hands fn a
// MembershipTx bound to it.  The transaction commits only when fn succeeds.
func (r *RoomRepo) WithRoomLock(ctx context.Context, roomID uint64, fn func(tx MembershipTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	room, err := scanRoom(tx.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ? FOR UPDATE`, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return roomNotFound()
	}
	if err != nil {
		return fmt.Errorf("lock room: %w", err)
	}
	locked := []model.Room{room}
	if err := loadMembers(ctx, tx, locked); err != nil {
		return err
	}
	if err := fn(&sqlMembershipTx{ctx: ctx, tx: tx, room: locked[0]}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// sqlMembershipTx implements MembershipTx on a *sql.Tx holding the room lock.
type sqlMembershipTx struct {
	ctx  context.Context
	tx   *sql.Tx
	room model.Room
}

func (t *sqlMembershipTx) Room() model.Room { return t.room.Clone() }

func (t *sqlMembershipTx) AddMember(userID uint64) error {
	_, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO room_members (room_id, user_id) VALUES (?, ?)`, t.room.ID, userID)
	if isDuplicate(err) {
		return Fail(ErrConflict, ReasonAlreadyMember)
	}
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	t.room.MemberIDs = append(t.room.MemberIDs, userID)
	return nil
}

func (t *sqlMembershipTx) RemoveMember(userID uint64) error {
	res, err := t.tx.ExecContext(t.ctx,
		`DELETE FROM room_members WHERE room_id = ? AND user_id = ?`, t.room.ID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Fail(ErrConflict, ReasonNotMember)
	}
	kept := t.room.MemberIDs[:0:0]
	for _, id := range t.room.MemberIDs {
		if id != userID {
			kept = append(kept, id)
		}
	}
	t.room.MemberIDs = kept
	return nil
}

func (t *sqlMembershipTx) UpdateRoom(room model.Room) error {
	if _, err := t.tx.ExecContext(t.ctx,
		`UPDATE rooms SET name = ?, description = ?, is_private = ?, max_members = ? WHERE id = ?`,
		room.Name, nullString(room.Description), room.IsPrivate, room.MaxMembers, t.room.ID); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	t.room.Name = room.Name
	t.room.Description = room.Description
	t.room.IsPrivate = room.IsPrivate
	t.room.MaxMembers = room.MaxMembers
	return nil
}

func (t *sqlMembershipTx) PendingInvitation(inviteeID uint64) (model.Invitation, bool, error) {
	inv, err := scanInvitation(t.tx.QueryRowContext(t.ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE room_id = ? AND invitee_id = ? AND status = ?
		 ORDER BY id LIMIT 1`, t.room.ID, inviteeID, model.InvitationPending))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invitation{}, false, nil
	}
	if err != nil {
		return model.Invitation{}, false, fmt.Errorf("query pending invitation: %w", err)
	}
	return inv, true, nil
}

func (t *sqlMembershipTx) CreateInvitation(inv *model.Invitation) error {
	res, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO invitations (room_id, inviter_id, invitee_id, status, message) VALUES (?, ?, ?, ?, ?)`,
		t.room.ID, inv.InviterID, inv.InviteeID, inv.Status, nullString(inv.Message))
	if isDuplicate(err) {
		return Fail(ErrConflict, ReasonInvitationExists)
	}
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("invitation id: %w", err)
	}
	now := time.Now().UTC()
	inv.ID = uint64(id)
	inv.RoomID = t.room.ID
	inv.CreatedAt, inv.UpdatedAt = now, now
	return nil
}

func (t *sqlMembershipTx) SetInvitationStatus(invitationID uint64, status model.InvitationStatus) error {
	res, err := t.tx.ExecContext(t.ctx,
		`UPDATE invitations SET status = ? WHERE id = ? AND room_id = ?`, status, invitationID, t.room.ID)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return invitationNotFound()
	}
	return nil
}

// isDuplicate reports a MySQL duplicate key violation (error 1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// likePattern wraps s in % after escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// prefixed qualifies a comma separated column list with a table alias.
func prefixed(alias, cols string) string {
	parts := strings.Split(cols, ", ")
	for i, p := range parts {
		if strings.HasPrefix(p, "COALESCE(") {
			parts[i] = "COALESCE(" + alias + strings.TrimPrefix(p, "COALESCE(")
			continue
		}
		parts[i] = alias + p
	}
	return strings.Join(parts, ", ")
}
