package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
)

type adminRow struct {
	ID            string        `db:"id"`
	Name          string        `db:"name"`
	Email         string        `db:"email"`
	PasswordHash  string        `db:"password_hash"`
	Department    string        `db:"department"`
	IsActive      bool          `db:"is_active"`
	DeletedAt     sql.NullInt64 `db:"deleted_at"`
	CreatedByRole string        `db:"created_by_role"`
	CreatedByID   string        `db:"created_by_id"`
	CreatedAt     int64         `db:"created_at"`
	UpdatedAt     int64         `db:"updated_at"`
}

func (r adminRow) toDomain() domain.Admin {
	return domain.Admin{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Department:   r.Department,
		IsActive:     r.IsActive,
		DeletedAt:    fromNullMillis(r.DeletedAt),
		CreatedBy:    toRef(r.CreatedByRole, r.CreatedByID),
		CreatedAt:    fromMillis(r.CreatedAt),
		UpdatedAt:    fromMillis(r.UpdatedAt),
	}
}

const adminColumns = `id, name, email, password_hash, department, is_active, deleted_at,
	created_by_role, created_by_id, created_at, updated_at`

type adminsRepo struct {
	c conn
}

func (r *adminsRepo) GetAdminByID(ctx context.Context, id string) (domain.Admin, error) {
	var row adminRow
	if err := r.c.get(ctx, &row, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id); err != nil {
		return domain.Admin{}, err
	}
	return row.toDomain(), nil
}

func (r *adminsRepo) GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error) {
	var row adminRow
	if err := r.c.get(ctx, &row, `SELECT `+adminColumns+` FROM admins WHERE email = ?`, email); err != nil {
		return domain.Admin{}, err
	}
	return row.toDomain(), nil
}

func (r *adminsRepo) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	var rows []adminRow
	if err := r.c.selectRows(ctx, &rows,
		`SELECT `+adminColumns+` FROM admins WHERE deleted_at IS NULL ORDER BY created_at DESC, id DESC`,
	); err != nil {
		return nil, err
	}

	out := make([]domain.Admin, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *adminsRepo) CreateAdmin(ctx context.Context, a domain.Admin) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO admins (id, name, email, password_hash, department, is_active, deleted_at,
			created_by_role, created_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Department, a.IsActive, nullMillis(a.DeletedAt),
		refRole(a.CreatedBy), a.CreatedBy.ID, millis(a.CreatedAt), millis(a.UpdatedAt),
	)
	return err
}

func (r *adminsRepo) UpdateAdmin(ctx context.Context, a domain.Admin) error {
	return r.c.execOne(ctx, `
		UPDATE admins
		SET name = ?, email = ?, department = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		a.Name, a.Email, a.Department, a.IsActive, millis(a.UpdatedAt), a.ID,
	)
}

func (r *adminsRepo) SoftDeleteAdmin(ctx context.Context, id string, at time.Time) error {
	return r.c.execOne(ctx, `
		UPDATE admins
		SET is_active = ?, deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		false, millis(at), millis(at), id,
	)
}

func (r *adminsRepo) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.c.get(ctx, &n, `SELECT COUNT(*) FROM admins WHERE deleted_at IS NULL`)
	return n, err
}
