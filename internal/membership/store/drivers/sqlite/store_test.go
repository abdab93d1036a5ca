package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/internal/membership/store/drivers/sqldb"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqldb.Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newInvitation(email string, createdAt time.Time) domain.Invitation {
	return domain.Invitation{
		ID:        idx.New().String(),
		Email:     email,
		TokenHash: idx.New().String(),
		CreatedBy: domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"},
		ExpiresAt: createdAt.Add(domain.DefaultInvitationTTL),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func newAlumni(email, batch, dept string) domain.Alumni {
	return domain.Alumni{
		ID:           idx.New().String(),
		Name:         "Alumni " + email,
		Email:        email,
		PasswordHash: "hash",
		Batch:        batch,
		Department:   dept,
		IsActive:     true,
		CreatedAt:    epoch,
		UpdatedAt:    epoch,
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestSuperAdmins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.SuperAdmins().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	sa := domain.SuperAdmin{ID: idx.New().String(), Name: "Root", Email: "root@example.edu", PasswordHash: "h", CreatedAt: epoch, UpdatedAt: epoch}
	require.NoError(t, s.SuperAdmins().CreateSuperAdmin(ctx, sa))

	dup := sa
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.SuperAdmins().CreateSuperAdmin(ctx, dup), store.ErrAlreadyExists)

	got, err := s.SuperAdmins().GetSuperAdminByEmail(ctx, "root@example.edu")
	require.NoError(t, err)
	require.Equal(t, sa, got)

	_, err = s.SuperAdmins().GetSuperAdminByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	empty, err = s.SuperAdmins().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestAdminsSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := domain.Admin{
		ID: idx.New().String(), Name: "Ada", Email: "ada@example.edu", PasswordHash: "h",
		Department: "CSE", IsActive: true,
		CreatedBy: domain.PrincipalRef{Role: domain.RoleSuperAdmin, ID: "root"},
		CreatedAt: epoch, UpdatedAt: epoch,
	}
	require.NoError(t, s.Admins().CreateAdmin(ctx, a))

	n, err := s.Admins().CountAdmins(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	a.Department = "EEE"
	a.UpdatedAt = epoch.Add(time.Hour)
	require.NoError(t, s.Admins().UpdateAdmin(ctx, a))

	at := epoch.Add(2 * time.Hour)
	require.NoError(t, s.Admins().SoftDeleteAdmin(ctx, a.ID, at))
	require.ErrorIs(t, s.Admins().SoftDeleteAdmin(ctx, a.ID, at), store.ErrNotFound)

	got, err := s.Admins().GetAdminByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "EEE", got.Department)
	require.False(t, got.IsActive)
	require.NotNil(t, got.DeletedAt)
	require.True(t, got.DeletedAt.Equal(at))
	require.False(t, got.Usable())
	require.Equal(t, domain.RoleSuperAdmin, got.CreatedBy.Role)

	list, err := s.Admins().ListAdmins(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAlumniProfileAndEntries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	al := newAlumni("grace@example.edu", "2015-2019", "CSE")
	al.Profile.Skills = []string{"go", "sql"}
	require.NoError(t, s.Alumni().CreateAlumni(ctx, al))
	require.ErrorIs(t, s.Alumni().CreateAlumni(ctx, newAlumni("grace@example.edu", "2019", "CSE")), store.ErrAlreadyExists)

	start := epoch.AddDate(-2, 0, 0)
	exp := domain.Experience{ID: idx.New().String(), Company: "Acme", Position: "Engineer", StartDate: &start, Current: true}
	require.NoError(t, s.Alumni().AddExperience(ctx, al.ID, exp))
	require.NoError(t, s.Alumni().AddEducation(ctx, al.ID, domain.Education{ID: idx.New().String(), Institution: "Uni", Degree: "BSc"}))
	course := domain.Course{ID: idx.New().String(), Name: "Distributed Systems"}
	require.NoError(t, s.Alumni().AddCourse(ctx, al.ID, course))

	got, err := s.Alumni().GetAlumniByID(ctx, al.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"go", "sql"}, got.Profile.Skills)
	require.Nil(t, got.Profile.Achievements)
	require.Len(t, got.Experiences, 1)
	require.Equal(t, "Engineer", got.Experiences[0].Position)
	require.True(t, got.Experiences[0].StartDate.Equal(start))
	require.Nil(t, got.Experiences[0].EndDate)
	require.Len(t, got.Education, 1)
	require.Len(t, got.Courses, 1)

	// Entries belonging to another alumni are invisible.
	other := newAlumni("linus@example.edu", "2019", "EEE")
	require.NoError(t, s.Alumni().CreateAlumni(ctx, other))
	require.ErrorIs(t, s.Alumni().DeleteCourse(ctx, other.ID, course.ID), store.ErrNotFound)
	exp.Company = "Elsewhere"
	require.ErrorIs(t, s.Alumni().UpdateExperience(ctx, other.ID, exp), store.ErrNotFound)
	require.NoError(t, s.Alumni().UpdateExperience(ctx, al.ID, exp))
	require.NoError(t, s.Alumni().DeleteCourse(ctx, al.ID, course.ID))

	got.Profile.City = "Dhaka"
	got.Occupation = "Staff Engineer"
	got.UpdatedAt = epoch.Add(time.Hour)
	require.NoError(t, s.Alumni().UpdateAlumniProfile(ctx, got))
	require.NoError(t, s.Alumni().UpdateAlumniPassword(ctx, al.ID, "new-hash", epoch.Add(2*time.Hour)))

	got, err = s.Alumni().GetAlumniByEmail(ctx, al.Email)
	require.NoError(t, err)
	require.Equal(t, "Dhaka", got.Profile.City)
	require.Equal(t, "Staff Engineer", got.Occupation)
	require.Equal(t, "new-hash", got.PasswordHash)

	list, err := s.Alumni().ListAlumni(ctx, domain.AlumniFilter{Department: "EEE"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, other.ID, list[0].ID)

	byDept, err := s.Alumni().CountAlumniByDepartment(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"CSE": 1, "EEE": 1}, byDept)

	total, active, err := s.Alumni().CountAlumni(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, 2, active)
}

func TestInvitationLiveSlot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	inv := s.Invitations()

	first := newInvitation("new@example.edu", epoch)
	require.NoError(t, inv.CreateInvitation(ctx, first))

	// A second live invitation for the same email is rejected.
	require.ErrorIs(t, inv.CreateInvitation(ctx, newInvitation("new@example.edu", epoch.Add(time.Hour))), store.ErrAlreadyExists)

	pending, err := inv.GetPendingInvitationByEmail(ctx, "new@example.edu", epoch.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, first.ID, pending.ID)

	// Once expired, a new invitation replaces it.
	later := first.ExpiresAt
	_, err = inv.GetPendingInvitationByEmail(ctx, "new@example.edu", later)
	require.ErrorIs(t, err, store.ErrNotFound)

	second := newInvitation("new@example.edu", later)
	require.NoError(t, inv.CreateInvitation(ctx, second))

	all, err := inv.ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, second.ID, all[0].ID)

	n, err := inv.CountPendingInvitations(ctx, later)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestConsumeInvitation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	inv := s.Invitations()

	i := newInvitation("c@example.edu", epoch)
	require.NoError(t, inv.CreateInvitation(ctx, i))

	// Expired invitations cannot be consumed.
	require.ErrorIs(t, inv.ConsumeInvitation(ctx, i.ID, i.ExpiresAt), store.ErrNotFound)

	now := epoch.Add(time.Minute)
	require.NoError(t, inv.ConsumeInvitation(ctx, i.ID, now))
	require.ErrorIs(t, inv.ConsumeInvitation(ctx, i.ID, now), store.ErrNotFound)

	got, err := inv.GetInvitationByTokenHash(ctx, i.TokenHash)
	require.NoError(t, err)
	require.True(t, got.Used)
	require.NotNil(t, got.UsedAt)
	require.Equal(t, domain.InvitationUsed, got.Status(now))

	// A used invitation frees the slot for the email.
	require.NoError(t, inv.CreateInvitation(ctx, newInvitation("c@example.edu", now)))
}

func TestConsumeInvitationConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	i := newInvitation("race@example.edu", epoch)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, i))

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(tx store.Tx) error {
				return tx.Invitations().ConsumeInvitation(ctx, i.ID, epoch.Add(time.Minute))
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, store.ErrNotFound)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	i := newInvitation("tx@example.edu", epoch)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, i))
	require.NoError(t, s.Alumni().CreateAlumni(ctx, newAlumni("tx@example.edu", "2019", "")))

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().ConsumeInvitation(ctx, i.ID, epoch); err != nil {
			return err
		}
		return tx.Alumni().CreateAlumni(ctx, newAlumni("tx@example.edu", "2019", ""))
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Invitations().GetInvitationByTokenHash(ctx, i.TokenHash)
	require.NoError(t, err)
	require.False(t, got.Used)
}

func TestLapseExpiredInvitations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	inv := s.Invitations()

	require.NoError(t, inv.CreateInvitation(ctx, newInvitation("a@example.edu", epoch)))
	require.NoError(t, inv.CreateInvitation(ctx, newInvitation("b@example.edu", epoch.Add(24*time.Hour))))

	n, err := inv.LapseExpiredInvitations(ctx, epoch.Add(domain.DefaultInvitationTTL))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = inv.LapseExpiredInvitations(ctx, epoch.Add(domain.DefaultInvitationTTL))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPostLikesAndComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := domain.PrincipalRef{Role: domain.RoleAlumni, ID: "alumni-1"}
	fan := domain.PrincipalRef{Role: domain.RoleAdmin, ID: "admin-1"}

	post := domain.Post{
		ID:         idx.NewAt(epoch).String(),
		Author:     author,
		Content:    "Hello 50% of you",
		Tags:       []string{"Intro"},
		Visibility: domain.VisibilityPublic,
		CreatedAt:  epoch,
		UpdatedAt:  epoch,
	}
	require.NoError(t, s.Posts().CreatePost(ctx, post))

	require.NoError(t, s.Posts().AddLike(ctx, post.ID, fan, epoch))
	require.ErrorIs(t, s.Posts().AddLike(ctx, post.ID, fan, epoch), store.ErrAlreadyExists)
	require.ErrorIs(t, s.Posts().RemoveLike(ctx, post.ID, author), store.ErrNotFound)

	for i, who := range []domain.PrincipalRef{fan, author} {
		require.NoError(t, s.Posts().AddComment(ctx, domain.Comment{
			ID:        idx.New().String(),
			PostID:    post.ID,
			Author:    who,
			Content:   "comment",
			CreatedAt: epoch.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.Posts().GetPost(ctx, post.ID, fan)
	require.NoError(t, err)
	require.Equal(t, 1, got.LikeCount)
	require.True(t, got.Liked)
	require.Equal(t, []string{"Intro"}, got.Tags)
	require.Len(t, got.Comments, 2)
	require.Equal(t, fan, got.Comments[0].Author)

	got, err = s.Posts().GetPost(ctx, post.ID, author)
	require.NoError(t, err)
	require.False(t, got.Liked)

	// LIKE wildcards in the search term match literally.
	list, err := s.Posts().ListPosts(ctx, domain.PostFilter{Viewer: fan, Search: "50%"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	list, err = s.Posts().ListPosts(ctx, domain.PostFilter{Viewer: fan, Search: "5_%"})
	require.NoError(t, err)
	require.Empty(t, list)

	require.NoError(t, s.Posts().DeletePost(ctx, post.ID))
	n, err := s.Posts().CountLikes(ctx, post.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	var comments int
	require.NoError(t, s.DB().GetContext(ctx, &comments, `SELECT COUNT(*) FROM post_comments`))
	require.Zero(t, comments)
}
