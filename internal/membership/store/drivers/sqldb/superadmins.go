package sqldb

import (
	"context"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
)

type superAdminRow struct {
	ID           string `db:"id"`
	Name         string `db:"name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func (r superAdminRow) toDomain() domain.SuperAdmin {
	return domain.SuperAdmin{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    fromMillis(r.CreatedAt),
		UpdatedAt:    fromMillis(r.UpdatedAt),
	}
}

const superAdminColumns = `id, name, email, password_hash, created_at, updated_at`

type superAdminsRepo struct {
	c conn
}

func (r *superAdminsRepo) GetSuperAdminByID(ctx context.Context, id string) (domain.SuperAdmin, error) {
	var row superAdminRow
	if err := r.c.get(ctx, &row, `SELECT `+superAdminColumns+` FROM super_admins WHERE id = ?`, id); err != nil {
		return domain.SuperAdmin{}, err
	}
	return row.toDomain(), nil
}

func (r *superAdminsRepo) GetSuperAdminByEmail(ctx context.Context, email string) (domain.SuperAdmin, error) {
	var row superAdminRow
	if err := r.c.get(ctx, &row, `SELECT `+superAdminColumns+` FROM super_admins WHERE email = ?`, email); err != nil {
		return domain.SuperAdmin{}, err
	}
	return row.toDomain(), nil
}

func (r *superAdminsRepo) CreateSuperAdmin(ctx context.Context, s domain.SuperAdmin) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO super_admins (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.PasswordHash, millis(s.CreatedAt), millis(s.UpdatedAt),
	)
	return err
}

func (r *superAdminsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := r.c.get(ctx, &n, `SELECT COUNT(*) FROM super_admins`); err != nil {
		return false, err
	}
	return n == 0, nil
}
