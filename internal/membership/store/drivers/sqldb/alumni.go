package sqldb

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
)

type alumniRow struct {
	ID              string `db:"id"`
	Name            string `db:"name"`
	Email           string `db:"email"`
	PasswordHash    string `db:"password_hash"`
	Batch           string `db:"batch"`
	Department      string `db:"department"`
	Occupation      string `db:"occupation"`
	Phone           string `db:"phone"`
	Address         string `db:"address"`
	City            string `db:"city"`
	State           string `db:"state"`
	Country         string `db:"country"`
	LinkedIn        string `db:"linkedin"`
	GitHub          string `db:"github"`
	Portfolio       string `db:"portfolio"`
	Bio             string `db:"bio"`
	ProfilePicture  string `db:"profile_picture"`
	Skills          string `db:"skills"`
	Achievements    string `db:"achievements"`
	IsEmailVerified bool   `db:"is_email_verified"`
	IsActive        bool   `db:"is_active"`
	InvitedByRole   string `db:"invited_by_role"`
	InvitedByID     string `db:"invited_by_id"`
	CreatedAt       int64  `db:"created_at"`
	UpdatedAt       int64  `db:"updated_at"`
}

func (r alumniRow) toDomain() domain.Alumni {
	return domain.Alumni{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Batch:        r.Batch,
		Department:   r.Department,
		Occupation:   r.Occupation,
		Profile: domain.AlumniProfile{
			Phone:          r.Phone,
			Address:        r.Address,
			City:           r.City,
			State:          r.State,
			Country:        r.Country,
			LinkedIn:       r.LinkedIn,
			GitHub:         r.GitHub,
			Portfolio:      r.Portfolio,
			Bio:            r.Bio,
			ProfilePicture: r.ProfilePicture,
			Skills:         decodeList(r.Skills),
			Achievements:   decodeList(r.Achievements),
		},
		IsEmailVerified: r.IsEmailVerified,
		IsActive:        r.IsActive,
		InvitedBy:       toRef(r.InvitedByRole, r.InvitedByID),
		CreatedAt:       fromMillis(r.CreatedAt),
		UpdatedAt:       fromMillis(r.UpdatedAt),
	}
}

const alumniColumns = `id, name, email, password_hash, batch, department, occupation,
	phone, address, city, state, country, linkedin, github, portfolio, bio, profile_picture,
	skills, achievements, is_email_verified, is_active, invited_by_role, invited_by_id,
	created_at, updated_at`

type alumniRepo struct {
	c conn
}

func (r *alumniRepo) GetAlumniByID(ctx context.Context, id string) (domain.Alumni, error) {
	var row alumniRow
	if err := r.c.get(ctx, &row, `SELECT `+alumniColumns+` FROM alumni WHERE id = ?`, id); err != nil {
		return domain.Alumni{}, err
	}
	a := row.toDomain()

	var err error
	if a.Experiences, err = r.listExperiences(ctx, id); err != nil {
		return domain.Alumni{}, err
	}
	if a.Education, err = r.listEducation(ctx, id); err != nil {
		return domain.Alumni{}, err
	}
	if a.Courses, err = r.listCourses(ctx, id); err != nil {
		return domain.Alumni{}, err
	}
	return a, nil
}

func (r *alumniRepo) GetAlumniByEmail(ctx context.Context, email string) (domain.Alumni, error) {
	var row alumniRow
	if err := r.c.get(ctx, &row, `SELECT `+alumniColumns+` FROM alumni WHERE email = ?`, email); err != nil {
		return domain.Alumni{}, err
	}
	return row.toDomain(), nil
}

func (r *alumniRepo) ListAlumni(ctx context.Context, filter domain.AlumniFilter) ([]domain.Alumni, error) {
	var (
		where []string
		args  []any
	)
	if filter.Department != "" {
		where = append(where, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.Batch != "" {
		where = append(where, "batch = ?")
		args = append(args, filter.Batch)
	}

	query := `SELECT ` + alumniColumns + ` FROM alumni`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, id`

	var rows []alumniRow
	if err := r.c.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]domain.Alumni, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *alumniRepo) CreateAlumni(ctx context.Context, a domain.Alumni) error {
	p := a.Profile
	_, err := r.c.exec(ctx, `
		INSERT INTO alumni (`+alumniColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Email, a.PasswordHash, a.Batch, a.Department, a.Occupation,
		p.Phone, p.Address, p.City, p.State, p.Country, p.LinkedIn, p.GitHub, p.Portfolio, p.Bio, p.ProfilePicture,
		encodeList(p.Skills), encodeList(p.Achievements), a.IsEmailVerified, a.IsActive,
		refRole(a.InvitedBy), a.InvitedBy.ID, millis(a.CreatedAt), millis(a.UpdatedAt),
	)
	return err
}

func (r *alumniRepo) UpdateAlumniProfile(ctx context.Context, a domain.Alumni) error {
	p := a.Profile
	return r.c.execOne(ctx, `
		UPDATE alumni
		SET name = ?, occupation = ?, phone = ?, address = ?, city = ?, state = ?, country = ?,
			linkedin = ?, github = ?, portfolio = ?, bio = ?, profile_picture = ?,
			skills = ?, achievements = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, a.Occupation, p.Phone, p.Address, p.City, p.State, p.Country,
		p.LinkedIn, p.GitHub, p.Portfolio, p.Bio, p.ProfilePicture,
		encodeList(p.Skills), encodeList(p.Achievements), millis(a.UpdatedAt),
		a.ID,
	)
}

func (r *alumniRepo) UpdateAlumniPassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	return r.c.execOne(ctx,
		`UPDATE alumni SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, millis(at), id,
	)
}

func (r *alumniRepo) CountAlumni(ctx context.Context) (int, int, error) {
	var counts struct {
		Total  int `db:"total"`
		Active int `db:"active"`
	}
	err := r.c.get(ctx, &counts, `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_active = ? THEN 1 ELSE 0 END), 0) AS active
		FROM alumni`, true)
	return counts.Total, counts.Active, err
}

type groupCount struct {
	Key   string `db:"k"`
	Count int    `db:"n"`
}

func (r *alumniRepo) countBy(ctx context.Context, column string) (map[string]int, error) {
	var rows []groupCount
	// column is one of a fixed set chosen below, never caller input.
	if err := r.c.selectRows(ctx, &rows,
		`SELECT `+column+` AS k, COUNT(*) AS n FROM alumni GROUP BY `+column+` ORDER BY `+column,
	); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *alumniRepo) CountAlumniByDepartment(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "department")
}

func (r *alumniRepo) CountAlumniByBatch(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "batch")
}
