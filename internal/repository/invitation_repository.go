package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cargarn1/MovieFan/internal/model"
)

const invitationColumns = `id, room_id, inviter_id, invitee_id, status, COALESCE(message, ''), created_at, updated_at`

func scanInvitation(sc interface{ Scan(...any) error }) (model.Invitation, error) {
	var inv model.Invitation
	err := sc.Scan(&inv.ID, &inv.RoomID, &inv.InviterID, &inv.InviteeID, &inv.Status,
		&inv.Message, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

// Invitation loads one invitation by id outside any room lock.  Callers that
// intend to transition it must re-read it under WithRoomLock.
func (r *RoomRepo) Invitation(ctx context.Context, invitationID uint64) (model.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, invitationID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invitation{}, invitationNotFound()
	}
	if err != nil {
		return model.Invitation{}, fmt.Errorf("query invitation: %w", err)
	}
	return inv, nil
}

// PendingInvitationsFor lists the pending invitations addressed to userID.
func (r *RoomRepo) PendingInvitationsFor(ctx context.Context, userID uint64) ([]model.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE invitee_id = ? AND status = ? ORDER BY id`, userID, model.InvitationPending)
	if err != nil {
		return nil, fmt.Errorf("query invitations: %w", err)
	}
	defer rows.Close()
	out := make([]model.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
