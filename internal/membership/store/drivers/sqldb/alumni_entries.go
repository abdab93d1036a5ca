package sqldb

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
)

type experienceRow struct {
	ID          string        `db:"id"`
	Company     string        `db:"company"`
	Title       string        `db:"title"`
	Location    string        `db:"location"`
	StartDate   sql.NullInt64 `db:"start_date"`
	EndDate     sql.NullInt64 `db:"end_date"`
	IsCurrent   bool          `db:"is_current"`
	Description string        `db:"description"`
}

type educationRow struct {
	ID           string        `db:"id"`
	Institution  string        `db:"institution"`
	Degree       string        `db:"degree"`
	FieldOfStudy string        `db:"field_of_study"`
	StartDate    sql.NullInt64 `db:"start_date"`
	EndDate      sql.NullInt64 `db:"end_date"`
	Grade        string        `db:"grade"`
	Description  string        `db:"description"`
}

type courseRow struct {
	ID             string        `db:"id"`
	Name           string        `db:"name"`
	Provider       string        `db:"provider"`
	CompletionDate sql.NullInt64 `db:"completion_date"`
	CertificateURL string        `db:"certificate_url"`
	Description    string        `db:"description"`
}

func (r *alumniRepo) listExperiences(ctx context.Context, alumniID string) ([]domain.Experience, error) {
	var rows []experienceRow
	if err := r.c.selectRows(ctx, &rows, `
		SELECT id, company, title, location, start_date, end_date, is_current, description
		FROM alumni_experiences WHERE alumni_id = ? ORDER BY id`, alumniID); err != nil {
		return nil, err
	}

	out := make([]domain.Experience, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Experience{
			ID:          row.ID,
			Company:     row.Company,
			Position:    row.Title,
			Location:    row.Location,
			StartDate:   fromNullMillis(row.StartDate),
			EndDate:     fromNullMillis(row.EndDate),
			Current:     row.IsCurrent,
			Description: row.Description,
		})
	}
	return out, nil
}

func (r *alumniRepo) AddExperience(ctx context.Context, alumniID string, e domain.Experience) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO alumni_experiences (id, alumni_id, company, title, location, start_date, end_date, is_current, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, alumniID, e.Company, e.Position, e.Location,
		nullMillis(e.StartDate), nullMillis(e.EndDate), e.Current, e.Description,
	)
	return err
}

func (r *alumniRepo) UpdateExperience(ctx context.Context, alumniID string, e domain.Experience) error {
	return r.c.execOne(ctx, `
		UPDATE alumni_experiences
		SET company = ?, title = ?, location = ?, start_date = ?, end_date = ?, is_current = ?, description = ?
		WHERE id = ? AND alumni_id = ?`,
		e.Company, e.Position, e.Location, nullMillis(e.StartDate), nullMillis(e.EndDate), e.Current, e.Description,
		e.ID, alumniID,
	)
}

func (r *alumniRepo) DeleteExperience(ctx context.Context, alumniID, id string) error {
	return r.c.execOne(ctx, `DELETE FROM alumni_experiences WHERE id = ? AND alumni_id = ?`, id, alumniID)
}

func (r *alumniRepo) listEducation(ctx context.Context, alumniID string) ([]domain.Education, error) {
	var rows []educationRow
	if err := r.c.selectRows(ctx, &rows, `
		SELECT id, institution, degree, field_of_study, start_date, end_date, grade, description
		FROM alumni_education WHERE alumni_id = ? ORDER BY id`, alumniID); err != nil {
		return nil, err
	}

	out := make([]domain.Education, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Education{
			ID:           row.ID,
			Institution:  row.Institution,
			Degree:       row.Degree,
			FieldOfStudy: row.FieldOfStudy,
			StartDate:    fromNullMillis(row.StartDate),
			EndDate:      fromNullMillis(row.EndDate),
			Grade:        row.Grade,
			Description:  row.Description,
		})
	}
	return out, nil
}

func (r *alumniRepo) AddEducation(ctx context.Context, alumniID string, e domain.Education) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO alumni_education (id, alumni_id, institution, degree, field_of_study, start_date, end_date, grade, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, alumniID, e.Institution, e.Degree, e.FieldOfStudy,
		nullMillis(e.StartDate), nullMillis(e.EndDate), e.Grade, e.Description,
	)
	return err
}

func (r *alumniRepo) UpdateEducation(ctx context.Context, alumniID string, e domain.Education) error {
	return r.c.execOne(ctx, `
		UPDATE alumni_education
		SET institution = ?, degree = ?, field_of_study = ?, start_date = ?, end_date = ?, grade = ?, description = ?
		WHERE id = ? AND alumni_id = ?`,
		e.Institution, e.Degree, e.FieldOfStudy, nullMillis(e.StartDate), nullMillis(e.EndDate), e.Grade, e.Description,
		e.ID, alumniID,
	)
}

func (r *alumniRepo) DeleteEducation(ctx context.Context, alumniID, id string) error {
	return r.c.execOne(ctx, `DELETE FROM alumni_education WHERE id = ? AND alumni_id = ?`, id, alumniID)
}

func (r *alumniRepo) listCourses(ctx context.Context, alumniID string) ([]domain.Course, error) {
	var rows []courseRow
	if err := r.c.selectRows(ctx, &rows, `
		SELECT id, name, provider, completion_date, certificate_url, description
		FROM alumni_courses WHERE alumni_id = ? ORDER BY id`, alumniID); err != nil {
		return nil, err
	}

	out := make([]domain.Course, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Course{
			ID:             row.ID,
			Name:           row.Name,
			Provider:       row.Provider,
			CompletionDate: fromNullMillis(row.CompletionDate),
			CertificateURL: row.CertificateURL,
			Description:    row.Description,
		})
	}
	return out, nil
}

func (r *alumniRepo) AddCourse(ctx context.Context, alumniID string, c domain.Course) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO alumni_courses (id, alumni_id, name, provider, completion_date, certificate_url, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, alumniID, c.Name, c.Provider, nullMillis(c.CompletionDate), c.CertificateURL, c.Description,
	)
	return err
}

func (r *alumniRepo) UpdateCourse(ctx context.Context, alumniID string, c domain.Course) error {
	return r.c.execOne(ctx, `
		UPDATE alumni_courses
		SET name = ?, provider = ?, completion_date = ?, certificate_url = ?, description = ?
		WHERE id = ? AND alumni_id = ?`,
		c.Name, c.Provider, nullMillis(c.CompletionDate), c.CertificateURL, c.Description,
		c.ID, alumniID,
	)
}

func (r *alumniRepo) DeleteCourse(ctx context.Context, alumniID, id string) error {
	return r.c.execOne(ctx, `DELETE FROM alumni_courses WHERE id = ? AND alumni_id = ?`, id, alumniID)
}
