package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
)

type invitationRow struct {
	ID            string        `db:"id"`
	Email         string        `db:"email"`
	TokenHash     string        `db:"token_hash"`
	CreatedByRole string        `db:"created_by_role"`
	CreatedByID   string        `db:"created_by_id"`
	Used          bool          `db:"used"`
	UsedAt        sql.NullInt64 `db:"used_at"`
	ExpiresAt     int64         `db:"expires_at"`
	CreatedAt     int64         `db:"created_at"`
	UpdatedAt     int64         `db:"updated_at"`
}

func (r invitationRow) toDomain() domain.Invitation {
	return domain.Invitation{
		ID:        r.ID,
		Email:     r.Email,
		TokenHash: r.TokenHash,
		CreatedBy: toRef(r.CreatedByRole, r.CreatedByID),
		Used:      r.Used,
		UsedAt:    fromNullMillis(r.UsedAt),
		ExpiresAt: fromMillis(r.ExpiresAt),
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
}

const invitationColumns = `id, email, token_hash, created_by_role, created_by_id, used, used_at,
	expires_at, created_at, updated_at`

type invitationsRepo struct {
	c conn
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	// An expired, unused invitation still holds the live slot for its email
	// until it is lapsed, so clear it before inserting the replacement.
	if _, err := r.c.exec(ctx, `
		UPDATE invitations SET lapsed_at = ?, updated_at = ?
		WHERE email = ? AND used = ? AND lapsed_at IS NULL AND expires_at <= ?`,
		millis(inv.CreatedAt), millis(inv.CreatedAt), inv.Email, false, millis(inv.CreatedAt),
	); err != nil {
		return err
	}

	_, err := r.c.exec(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.TokenHash, refRole(inv.CreatedBy), inv.CreatedBy.ID,
		inv.Used, nullMillis(inv.UsedAt), millis(inv.ExpiresAt), millis(inv.CreatedAt), millis(inv.UpdatedAt),
	)
	return err
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	var row invitationRow
	if err := r.c.get(ctx, &row, `SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash); err != nil {
		return domain.Invitation{}, err
	}
	return row.toDomain(), nil
}

func (r *invitationsRepo) GetPendingInvitationByEmail(ctx context.Context, email string, now time.Time) (domain.Invitation, error) {
	var row invitationRow
	if err := r.c.get(ctx, &row, `
		SELECT `+invitationColumns+` FROM invitations
		WHERE email = ? AND used = ? AND expires_at > ?
		ORDER BY created_at DESC LIMIT 1`,
		email, false, millis(now),
	); err != nil {
		return domain.Invitation{}, err
	}
	return row.toDomain(), nil
}

func (r *invitationsRepo) ConsumeInvitation(ctx context.Context, id string, now time.Time) error {
	return r.c.execOne(ctx, `
		UPDATE invitations SET used = ?, used_at = ?, updated_at = ?
		WHERE id = ? AND used = ? AND expires_at > ?`,
		true, millis(now), millis(now), id, false, millis(now),
	)
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	return r.c.execOne(ctx, `DELETE FROM invitations WHERE id = ?`, id)
}

func (r *invitationsRepo) ListInvitations(ctx context.Context) ([]domain.Invitation, error) {
	var rows []invitationRow
	if err := r.c.selectRows(ctx, &rows,
		`SELECT `+invitationColumns+` FROM invitations ORDER BY created_at DESC, id DESC`,
	); err != nil {
		return nil, err
	}

	out := make([]domain.Invitation, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *invitationsRepo) CountPendingInvitations(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.c.get(ctx, &n,
		`SELECT COUNT(*) FROM invitations WHERE used = ? AND expires_at > ?`,
		false, millis(now),
	)
	return n, err
}

func (r *invitationsRepo) LapseExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.c.exec(ctx, `
		UPDATE invitations SET lapsed_at = ?, updated_at = ?
		WHERE used = ? AND lapsed_at IS NULL AND expires_at <= ?`,
		millis(now), millis(now), false, millis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
