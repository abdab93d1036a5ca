package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are reached through methods so that a Tx
// hands out repositories bound to the transaction and nothing can open a
// transaction inside another one.
type Store interface {
	SuperAdmins() SuperAdmins
	Admins() Admins
	Alumni() Alumni
	Invitations() Invitations
	Posts() Posts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type SuperAdmins interface {
	GetSuperAdminByID(ctx context.Context, id string) (domain.SuperAdmin, error)
	GetSuperAdminByEmail(ctx context.Context, email string) (domain.SuperAdmin, error)

	// CreateSuperAdmin returns ErrAlreadyExists when the email is taken.
	CreateSuperAdmin(ctx context.Context, s domain.SuperAdmin) error

	// IsEmpty returns true if there are no super admins (bootstrap gate).
	IsEmpty(ctx context.Context) (bool, error)
}

type Admins interface {
	// GetAdminByID returns the admin regardless of active/deleted state.
	GetAdminByID(ctx context.Context, id string) (domain.Admin, error)

	// GetAdminByEmail returns the admin regardless of active/deleted state.
	GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error)

	// ListAdmins returns admins that are not soft-deleted, newest first.
	ListAdmins(ctx context.Context) ([]domain.Admin, error)

	// CreateAdmin returns ErrAlreadyExists when the email is taken.
	CreateAdmin(ctx context.Context, a domain.Admin) error

	// UpdateAdmin writes name, email, department and is_active of a
	// non-deleted admin and bumps updated_at.
	UpdateAdmin(ctx context.Context, a domain.Admin) error

	// SoftDeleteAdmin sets is_active=false and deleted_at=at.
	SoftDeleteAdmin(ctx context.Context, id string, at time.Time) error

	// CountAdmins counts admins that are not soft-deleted.
	CountAdmins(ctx context.Context) (int, error)
}

type Alumni interface {
	// GetAlumniByID loads the alumni with its experiences, education and courses.
	GetAlumniByID(ctx context.Context, id string) (domain.Alumni, error)

	// GetAlumniByEmail returns the alumni regardless of active state,
	// without nested collections.
	GetAlumniByEmail(ctx context.Context, email string) (domain.Alumni, error)

	// ListAlumni returns alumni matching filter ordered by name, without
	// nested collections.
	ListAlumni(ctx context.Context, filter domain.AlumniFilter) ([]domain.Alumni, error)

	// CreateAlumni returns ErrAlreadyExists when the email is taken.
	CreateAlumni(ctx context.Context, a domain.Alumni) error

	// UpdateAlumniProfile writes name, occupation and the profile fields.
	UpdateAlumniProfile(ctx context.Context, a domain.Alumni) error

	UpdateAlumniPassword(ctx context.Context, id, passwordHash string, at time.Time) error

	// CountAlumni returns the total and active alumni counts.
	CountAlumni(ctx context.Context) (total int, active int, err error)
	CountAlumniByDepartment(ctx context.Context) (map[string]int, error)
	CountAlumniByBatch(ctx context.Context) (map[string]int, error)

	// Nested entries are always addressed through their owning alumni;
	// an entry owned by someone else reports ErrNotFound.
	AddExperience(ctx context.Context, alumniID string, e domain.Experience) error
	UpdateExperience(ctx context.Context, alumniID string, e domain.Experience) error
	DeleteExperience(ctx context.Context, alumniID, id string) error

	AddEducation(ctx context.Context, alumniID string, e domain.Education) error
	UpdateEducation(ctx context.Context, alumniID string, e domain.Education) error
	DeleteEducation(ctx context.Context, alumniID, id string) error

	AddCourse(ctx context.Context, alumniID string, c domain.Course) error
	UpdateCourse(ctx context.Context, alumniID string, c domain.Course) error
	DeleteCourse(ctx context.Context, alumniID, id string) error
}

type Invitations interface {
	// CreateInvitation first lapses any expired, unused invitation for the
	// same email and then inserts inv. It returns ErrAlreadyExists when a live
	// invitation for the email already exists (unique index on live rows).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByTokenHash returns the invitation in any state.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// GetPendingInvitationByEmail returns the unused invitation for email
	// whose expiry is after now.
	GetPendingInvitationByEmail(ctx context.Context, email string, now time.Time) (domain.Invitation, error)

	// ConsumeInvitation flips used=true only if the invitation is still
	// unused and unexpired at now. ErrNotFound means someone else won or
	// the invitation expired.
	ConsumeInvitation(ctx context.Context, id string, now time.Time) error

	// DeleteInvitation is only used to roll back an invitation whose email
	// could not be delivered.
	DeleteInvitation(ctx context.Context, id string) error

	// ListInvitations returns every invitation, newest first.
	ListInvitations(ctx context.Context) ([]domain.Invitation, error)

	CountPendingInvitations(ctx context.Context, now time.Time) (int, error)

	// LapseExpiredInvitations marks unused invitations whose expiry has
	// passed so they stop occupying the live-invitation slot.
	LapseExpiredInvitations(ctx context.Context, now time.Time) (int64, error)
}

type Posts interface {
	CreatePost(ctx context.Context, p domain.Post) error

	// GetPost loads the post with its comments, like count and whether
	// viewer has liked it. Visibility is left to the caller.
	GetPost(ctx context.Context, id string, viewer domain.PrincipalRef) (domain.Post, error)

	// ListPosts returns posts matching filter, newest first, with comments.
	ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error)

	// UpdatePost writes content, tags, visibility and edited.
	UpdatePost(ctx context.Context, p domain.Post) error

	// DeletePost removes the post with its likes and comments.
	DeletePost(ctx context.Context, id string) error

	// AddLike returns ErrAlreadyExists when who already likes the post.
	AddLike(ctx context.Context, postID string, who domain.PrincipalRef, at time.Time) error

	// RemoveLike returns ErrNotFound when who does not like the post.
	RemoveLike(ctx context.Context, postID string, who domain.PrincipalRef) error

	CountLikes(ctx context.Context, postID string) (int, error)

	AddComment(ctx context.Context, c domain.Comment) error

	// CountPosts counts every post regardless of visibility.
	CountPosts(ctx context.Context) (int, error)
}
