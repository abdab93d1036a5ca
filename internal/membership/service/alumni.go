package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/pkg/cryptox"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

// ProfileUpdate changes the given profile fields; nil leaves a field as is.
// Email, batch and department are fixed at registration.
type ProfileUpdate struct {
	Name           *string  `validate:"omitnil,min=2,max=100"`
	Occupation     *string  `validate:"omitnil,max=100"`
	Phone          *string  `validate:"omitempty,phone"`
	Address        *string  `validate:"omitnil,max=200"`
	City           *string  `validate:"omitnil,max=100"`
	State          *string  `validate:"omitnil,max=100"`
	Country        *string  `validate:"omitnil,max=100"`
	LinkedIn       *string  `validate:"omitempty,url"`
	GitHub         *string  `validate:"omitempty,url"`
	Portfolio      *string  `validate:"omitempty,url"`
	Bio            *string  `validate:"omitnil,max=1000"`
	ProfilePicture *string  `validate:"omitempty,url"`
	Skills         []string `validate:"omitnil,max=50,dive,min=1,max=50"`
	Achievements   []string `validate:"omitnil,max=50,dive,min=1,max=200"`
}

type PasswordChange struct {
	Current string `validate:"required"`
	New     string `validate:"required,min=6,password,nefield=Current"`
}

type ExperienceInput struct {
	Company     string     `validate:"required,max=100"`
	Position    string     `validate:"required,max=100"`
	Location    string     `validate:"max=100"`
	StartDate   *time.Time `validate:"required"`
	EndDate     *time.Time
	Current     bool
	Description string `validate:"max=2000"`
}

type EducationInput struct {
	Institution  string     `validate:"required,max=150"`
	Degree       string     `validate:"required,max=100"`
	FieldOfStudy string     `validate:"required,max=100"`
	StartDate    *time.Time `validate:"required"`
	EndDate      *time.Time
	Grade        string `validate:"max=20"`
	Description  string `validate:"max=2000"`
}

type CourseInput struct {
	Name           string     `validate:"required,max=150"`
	Provider       string     `validate:"required,max=150"`
	CompletionDate *time.Time `validate:"required"`
	CertificateURL string     `validate:"omitempty,url"`
	Description    string     `validate:"max=2000"`
}

// AlumniService is the alumni self-service surface. Every method acts on the
// authenticated alumni's own record.
type AlumniService struct {
	Store store.Store
	Clock clockwork.Clock
}

func (s *AlumniService) GetProfile(ctx context.Context, alumniID string) (domain.Alumni, error) {
	a, err := s.Store.Alumni().GetAlumniByID(ctx, alumniID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Alumni{}, ErrAlumniNotFound
		}
		return domain.Alumni{}, err
	}
	return a, nil
}

func (s *AlumniService) UpdateProfile(ctx context.Context, alumniID string, upd ProfileUpdate) (domain.Alumni, error) {
	trimAll(upd.Name, upd.Occupation, upd.Phone, upd.Address, upd.City, upd.State, upd.Country,
		upd.LinkedIn, upd.GitHub, upd.Portfolio, upd.Bio, upd.ProfilePicture)
	if upd.Skills != nil {
		upd.Skills = trimList(upd.Skills)
	}
	if upd.Achievements != nil {
		upd.Achievements = trimList(upd.Achievements)
	}
	if err := validateStruct(ErrInvalidRequest, upd); err != nil {
		return domain.Alumni{}, err
	}

	a, err := s.GetProfile(ctx, alumniID)
	if err != nil {
		return domain.Alumni{}, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&a.Name, upd.Name)
	set(&a.Occupation, upd.Occupation)
	p := &a.Profile
	set(&p.Phone, upd.Phone)
	set(&p.Address, upd.Address)
	set(&p.City, upd.City)
	set(&p.State, upd.State)
	set(&p.Country, upd.Country)
	set(&p.LinkedIn, upd.LinkedIn)
	set(&p.GitHub, upd.GitHub)
	set(&p.Portfolio, upd.Portfolio)
	set(&p.Bio, upd.Bio)
	set(&p.ProfilePicture, upd.ProfilePicture)
	if upd.Skills != nil {
		p.Skills = upd.Skills
	}
	if upd.Achievements != nil {
		p.Achievements = upd.Achievements
	}
	a.UpdatedAt = s.Clock.Now()

	if err := s.Store.Alumni().UpdateAlumniProfile(ctx, a); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Alumni{}, ErrAlumniNotFound
		}
		return domain.Alumni{}, err
	}

	slogx.FromContext(ctx).Info("alumni profile updated", slog.String("alumni_id", a.ID))
	return a, nil
}

// ChangePassword replaces the password after checking the current one. A
// wrong current password reports ErrInvalidCredentials.
func (s *AlumniService) ChangePassword(ctx context.Context, alumniID string, req PasswordChange) error {
	if err := validateStruct(ErrInvalidRequest, req); err != nil {
		return err
	}

	a, err := s.GetProfile(ctx, alumniID)
	if err != nil {
		return err
	}
	if !a.MatchPassword(req.Current) {
		slogx.FromContext(ctx).Info("password change rejected", slog.String("alumni_id", a.ID))
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(req.New)
	if err != nil {
		return err
	}
	if err := s.Store.Alumni().UpdateAlumniPassword(ctx, a.ID, hash, s.Clock.Now()); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("alumni password changed", slog.String("alumni_id", a.ID))
	return nil
}

func (s *AlumniService) AddExperience(ctx context.Context, alumniID string, in ExperienceInput) (domain.Experience, error) {
	e, err := in.toDomain()
	if err != nil {
		return domain.Experience{}, err
	}
	e.ID = idx.NewAt(s.Clock.Now()).String()

	if err := s.Store.Alumni().AddExperience(ctx, alumniID, e); err != nil {
		return domain.Experience{}, err
	}
	return e, nil
}

func (s *AlumniService) UpdateExperience(ctx context.Context, alumniID, entryID string, in ExperienceInput) (domain.Experience, error) {
	e, err := in.toDomain()
	if err != nil {
		return domain.Experience{}, err
	}
	e.ID = entryID

	if err := s.Store.Alumni().UpdateExperience(ctx, alumniID, e); err != nil {
		return domain.Experience{}, entryErr(err)
	}
	return e, nil
}

func (s *AlumniService) DeleteExperience(ctx context.Context, alumniID, entryID string) error {
	return entryErr(s.Store.Alumni().DeleteExperience(ctx, alumniID, entryID))
}

func (s *AlumniService) AddEducation(ctx context.Context, alumniID string, in EducationInput) (domain.Education, error) {
	e, err := in.toDomain()
	if err != nil {
		return domain.Education{}, err
	}
	e.ID = idx.NewAt(s.Clock.Now()).String()

	if err := s.Store.Alumni().AddEducation(ctx, alumniID, e); err != nil {
		return domain.Education{}, err
	}
	return e, nil
}

func (s *AlumniService) UpdateEducation(ctx context.Context, alumniID, entryID string, in EducationInput) (domain.Education, error) {
	e, err := in.toDomain()
	if err != nil {
		return domain.Education{}, err
	}
	e.ID = entryID

	if err := s.Store.Alumni().UpdateEducation(ctx, alumniID, e); err != nil {
		return domain.Education{}, entryErr(err)
	}
	return e, nil
}

func (s *AlumniService) DeleteEducation(ctx context.Context, alumniID, entryID string) error {
	return entryErr(s.Store.Alumni().DeleteEducation(ctx, alumniID, entryID))
}

func (s *AlumniService) AddCourse(ctx context.Context, alumniID string, in CourseInput) (domain.Course, error) {
	c, err := in.toDomain()
	if err != nil {
		return domain.Course{}, err
	}
	c.ID = idx.NewAt(s.Clock.Now()).String()

	if err := s.Store.Alumni().AddCourse(ctx, alumniID, c); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

func (s *AlumniService) UpdateCourse(ctx context.Context, alumniID, entryID string, in CourseInput) (domain.Course, error) {
	c, err := in.toDomain()
	if err != nil {
		return domain.Course{}, err
	}
	c.ID = entryID

	if err := s.Store.Alumni().UpdateCourse(ctx, alumniID, c); err != nil {
		return domain.Course{}, entryErr(err)
	}
	return c, nil
}

func (s *AlumniService) DeleteCourse(ctx context.Context, alumniID, entryID string) error {
	return entryErr(s.Store.Alumni().DeleteCourse(ctx, alumniID, entryID))
}

func (in ExperienceInput) toDomain() (domain.Experience, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	if err := validateStruct(ErrInvalidRequest, in); err != nil {
		return domain.Experience{}, err
	}
	if in.Current {
		in.EndDate = nil
	}
	if err := checkRange(in.StartDate, in.EndDate); err != nil {
		return domain.Experience{}, err
	}
	return domain.Experience{
		Company:     in.Company,
		Position:    in.Position,
		Location:    strings.TrimSpace(in.Location),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Current:     in.Current,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func (in EducationInput) toDomain() (domain.Education, error) {
	in.Institution = strings.TrimSpace(in.Institution)
	in.Degree = strings.TrimSpace(in.Degree)
	in.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)
	if err := validateStruct(ErrInvalidRequest, in); err != nil {
		return domain.Education{}, err
	}
	if err := checkRange(in.StartDate, in.EndDate); err != nil {
		return domain.Education{}, err
	}
	return domain.Education{
		Institution:  in.Institution,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Grade:        strings.TrimSpace(in.Grade),
		Description:  strings.TrimSpace(in.Description),
	}, nil
}

func (in CourseInput) toDomain() (domain.Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Provider = strings.TrimSpace(in.Provider)
	if err := validateStruct(ErrInvalidRequest, in); err != nil {
		return domain.Course{}, err
	}
	return domain.Course{
		Name:           in.Name,
		Provider:       in.Provider,
		CompletionDate: in.CompletionDate,
		CertificateURL: strings.TrimSpace(in.CertificateURL),
		Description:    strings.TrimSpace(in.Description),
	}, nil
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return fmt.Errorf("%w: EndDate must not be before StartDate", ErrInvalidRequest)
	}
	return nil
}

func entryErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrEntryNotFound
	}
	return err
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
