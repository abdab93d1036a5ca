package domain

import "time"

type SuperAdmin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s *SuperAdmin) Ref() PrincipalRef { return PrincipalRef{Role: RoleSuperAdmin, ID: s.ID} }

func (s *SuperAdmin) MatchPassword(password string) bool {
	return matchPassword(s.PasswordHash, password)
}

func (s *SuperAdmin) Public() PublicPrincipal {
	return PublicPrincipal{ID: s.ID, Role: RoleSuperAdmin, Name: s.Name, Email: s.Email}
}

type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Department   string
	IsActive     bool
	DeletedAt    *time.Time   // soft delete
	CreatedBy    PrincipalRef // zero for accounts created at bootstrap
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Admin) Ref() PrincipalRef { return PrincipalRef{Role: RoleAdmin, ID: a.ID} }

func (a *Admin) MatchPassword(password string) bool {
	return matchPassword(a.PasswordHash, password)
}

func (a *Admin) Public() PublicPrincipal {
	return PublicPrincipal{ID: a.ID, Role: RoleAdmin, Name: a.Name, Email: a.Email, Department: a.Department}
}

// Usable reports whether the admin may sign in.
func (a *Admin) Usable() bool { return a.IsActive && a.DeletedAt == nil }

type Alumni struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Batch           string // "2019" or "2015-2019"
	Department      string
	Occupation      string
	Profile         AlumniProfile
	Experiences     []Experience
	Education       []Education
	Courses         []Course
	IsEmailVerified bool
	IsActive        bool
	InvitedBy       PrincipalRef
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *Alumni) Ref() PrincipalRef { return PrincipalRef{Role: RoleAlumni, ID: a.ID} }

func (a *Alumni) MatchPassword(password string) bool {
	return matchPassword(a.PasswordHash, password)
}

func (a *Alumni) Public() PublicPrincipal {
	return PublicPrincipal{
		ID:         a.ID,
		Role:       RoleAlumni,
		Name:       a.Name,
		Email:      a.Email,
		Department: a.Department,
		Batch:      a.Batch,
	}
}

type AlumniProfile struct {
	Phone          string
	Address        string
	City           string
	State          string
	Country        string
	LinkedIn       string
	GitHub         string
	Portfolio      string
	Bio            string
	ProfilePicture string
	Skills         []string
	Achievements   []string
}

type Experience struct {
	ID          string
	Company     string
	Position    string
	Location    string
	StartDate   *time.Time
	EndDate     *time.Time
	Current     bool
	Description string
}

type Education struct {
	ID           string
	Institution  string
	Degree       string
	FieldOfStudy string
	StartDate    *time.Time
	EndDate      *time.Time
	Grade        string
	Description  string
}

type Course struct {
	ID             string
	Name           string
	Provider       string
	CompletionDate *time.Time
	CertificateURL string
	Description    string
}
