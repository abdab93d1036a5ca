package membersdk

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// ---- Authentication ----

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PrincipalResponse is the public projection of a super admin, admin or
// alumni. It never carries credentials.
type PrincipalResponse struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
	Batch      string `json:"batch,omitempty"`
}

// SessionResponse is returned by login and registration.
type SessionResponse struct {
	Token     string            `json:"token"`
	TokenType string            `json:"token_type"`
	ExpiresAt int64             `json:"expires_at"` // unix seconds
	Principal PrincipalResponse `json:"principal"`
}

type VerifyInvitationResponse struct {
	Email string `json:"email"`
}

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Batch      string `json:"batch"`
	Department string `json:"department"`
	Occupation string `json:"occupation"`
}

type BootstrapRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type BootstrapResponse struct {
	SuperAdminID string `json:"super_admin_id"`
}

// ---- Invitations ----

type InviteRequest struct {
	Email string `json:"email"`
}

// PrincipalRef names the account that issued an invitation or created an
// admin.
type PrincipalRef struct {
	Role string `json:"role"`
	ID   string `json:"id"`
}

type InvitationResponse struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Status    string        `json:"status"`
	CreatedBy *PrincipalRef `json:"created_by,omitempty"`
	ExpiresAt time.Time     `json:"expires_at"`
	UsedAt    *time.Time    `json:"used_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type InvitationListResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

type BulkInviteRequest struct {
	Emails []string `json:"emails"`
}

// BulkInviteResponse reports each distinct address in exactly one list.
type BulkInviteResponse struct {
	Delivered     []string `json:"delivered"`
	AlreadyExists []string `json:"already_exists"`
	Failed        []string `json:"failed"`
}

// ---- Alumni ----

type ExperienceRequest struct {
	Company     string     `json:"company"`
	Position    string     `json:"position"`
	Location    string     `json:"location,omitempty"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type ExperienceResponse struct {
	ID string `json:"id"`
	ExperienceRequest
}

type EducationRequest struct {
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Grade        string     `json:"grade,omitempty"`
	Description  string     `json:"description,omitempty"`
}

type EducationResponse struct {
	ID string `json:"id"`
	EducationRequest
}

type CourseRequest struct {
	Name           string     `json:"name"`
	Provider       string     `json:"provider"`
	CompletionDate *time.Time `json:"completion_date"`
	CertificateURL string     `json:"certificate_url,omitempty"`
	Description    string     `json:"description,omitempty"`
}

type CourseResponse struct {
	ID string `json:"id"`
	CourseRequest
}

type AlumniResponse struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Email           string               `json:"email"`
	Batch           string               `json:"batch"`
	Department      string               `json:"department"`
	Occupation      string               `json:"occupation"`
	Phone           string               `json:"phone,omitempty"`
	Address         string               `json:"address,omitempty"`
	City            string               `json:"city,omitempty"`
	State           string               `json:"state,omitempty"`
	Country         string               `json:"country,omitempty"`
	LinkedIn        string               `json:"linkedin,omitempty"`
	GitHub          string               `json:"github,omitempty"`
	Portfolio       string               `json:"portfolio,omitempty"`
	Bio             string               `json:"bio,omitempty"`
	ProfilePicture  string               `json:"profile_picture,omitempty"`
	Skills          []string             `json:"skills"`
	Achievements    []string             `json:"achievements"`
	Experiences     []ExperienceResponse `json:"experiences,omitempty"`
	Education       []EducationResponse  `json:"education,omitempty"`
	Courses         []CourseResponse     `json:"courses,omitempty"`
	IsEmailVerified bool                 `json:"is_email_verified"`
	IsActive        bool                 `json:"is_active"`
	CreatedAt       time.Time            `json:"created_at"`
}

type AlumniListResponse struct {
	Alumni []AlumniResponse `json:"alumni"`
}

// ProfileUpdateRequest changes only the fields that are present.
type ProfileUpdateRequest struct {
	Name           *string  `json:"name,omitempty"`
	Occupation     *string  `json:"occupation,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	Address        *string  `json:"address,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	Country        *string  `json:"country,omitempty"`
	LinkedIn       *string  `json:"linkedin,omitempty"`
	GitHub         *string  `json:"github,omitempty"`
	Portfolio      *string  `json:"portfolio,omitempty"`
	Bio            *string  `json:"bio,omitempty"`
	ProfilePicture *string  `json:"profile_picture,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ---- Admin management ----

type CreateAdminRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
}

type UpdateAdminRequest struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Department *string `json:"department,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

type AdminResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Department string        `json:"department"`
	IsActive   bool          `json:"is_active"`
	CreatedBy  *PrincipalRef `json:"created_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

type AdminListResponse struct {
	Admins []AdminResponse `json:"admins"`
}

type StatisticsResponse struct {
	TotalAdmins        int            `json:"total_admins"`
	TotalAlumni        int            `json:"total_alumni"`
	ActiveAlumni       int            `json:"active_alumni"`
	PendingInvitations int            `json:"pending_invitations"`
	TotalPosts         int            `json:"total_posts"`
	AlumniByDepartment map[string]int `json:"alumni_by_department"`
	AlumniByBatch      map[string]int `json:"alumni_by_batch"`
}

// ---- Feed ----

type PostRequest struct {
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
}

// PostUpdateRequest changes only the fields that are present.
type PostUpdateRequest struct {
	Content    *string  `json:"content,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Visibility *string  `json:"visibility,omitempty"`
}

type AuthorResponse struct {
	Role           string `json:"role"`
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type CommentResponse struct {
	ID        string         `json:"id"`
	Author    AuthorResponse `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

type PostResponse struct {
	ID         string            `json:"id"`
	Author     AuthorResponse    `json:"author"`
	Content    string            `json:"content"`
	Tags       []string          `json:"tags"`
	Visibility string            `json:"visibility"`
	Edited     bool              `json:"edited"`
	LikeCount  int               `json:"like_count"`
	Liked      bool              `json:"liked"`
	Comments   []CommentResponse `json:"comments"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type FeedResponse struct {
	Posts   []PostResponse `json:"posts"`
	Page    int            `json:"page"`
	HasMore bool           `json:"has_more"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
