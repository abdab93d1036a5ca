package http

import (
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
)

func toPrincipalResponse(p domain.PublicPrincipal) membersdk.PrincipalResponse {
	return membersdk.PrincipalResponse{
		ID:         p.ID,
		Role:       p.Role.String(),
		Name:       p.Name,
		Email:      p.Email,
		Department: p.Department,
		Batch:      p.Batch,
	}
}

func toSessionResponse(s service.Session) membersdk.SessionResponse {
	return membersdk.SessionResponse{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresAt: s.ExpiresAt.Unix(),
		Principal: toPrincipalResponse(s.Principal),
	}
}

func toRef(r domain.PrincipalRef) *membersdk.PrincipalRef {
	if r.IsZero() {
		return nil
	}
	return &membersdk.PrincipalRef{Role: r.Role.String(), ID: r.ID}
}

func toInvitationResponse(inv domain.Invitation, status domain.InvitationStatus) membersdk.InvitationResponse {
	return membersdk.InvitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Status:    string(status),
		CreatedBy: toRef(inv.CreatedBy),
		ExpiresAt: inv.ExpiresAt.UTC(),
		UsedAt:    utcPtr(inv.UsedAt),
		CreatedAt: inv.CreatedAt.UTC(),
	}
}

func toAdminResponse(a domain.Admin) membersdk.AdminResponse {
	return membersdk.AdminResponse{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Department: a.Department,
		IsActive:   a.IsActive,
		CreatedBy:  toRef(a.CreatedBy),
		CreatedAt:  a.CreatedAt.UTC(),
		UpdatedAt:  a.UpdatedAt.UTC(),
	}
}

func toAlumniResponse(a domain.Alumni) membersdk.AlumniResponse {
	p := a.Profile
	out := membersdk.AlumniResponse{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		Batch:           a.Batch,
		Department:      a.Department,
		Occupation:      a.Occupation,
		Phone:           p.Phone,
		Address:         p.Address,
		City:            p.City,
		State:           p.State,
		Country:         p.Country,
		LinkedIn:        p.LinkedIn,
		GitHub:          p.GitHub,
		Portfolio:       p.Portfolio,
		Bio:             p.Bio,
		ProfilePicture:  p.ProfilePicture,
		Skills:          nonNil(p.Skills),
		Achievements:    nonNil(p.Achievements),
		IsEmailVerified: a.IsEmailVerified,
		IsActive:        a.IsActive,
		CreatedAt:       a.CreatedAt.UTC(),
	}
	for _, e := range a.Experiences {
		out.Experiences = append(out.Experiences, toExperienceResponse(e))
	}
	for _, e := range a.Education {
		out.Education = append(out.Education, toEducationResponse(e))
	}
	for _, c := range a.Courses {
		out.Courses = append(out.Courses, toCourseResponse(c))
	}
	return out
}

func toExperienceResponse(e domain.Experience) membersdk.ExperienceResponse {
	return membersdk.ExperienceResponse{
		ID: e.ID,
		ExperienceRequest: membersdk.ExperienceRequest{
			Company:     e.Company,
			Position:    e.Position,
			Location:    e.Location,
			StartDate:   utcPtr(e.StartDate),
			EndDate:     utcPtr(e.EndDate),
			Current:     e.Current,
			Description: e.Description,
		},
	}
}

func toEducationResponse(e domain.Education) membersdk.EducationResponse {
	return membersdk.EducationResponse{
		ID: e.ID,
		EducationRequest: membersdk.EducationRequest{
			Institution:  e.Institution,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			StartDate:    utcPtr(e.StartDate),
			EndDate:      utcPtr(e.EndDate),
			Grade:        e.Grade,
			Description:  e.Description,
		},
	}
}

func toCourseResponse(c domain.Course) membersdk.CourseResponse {
	return membersdk.CourseResponse{
		ID: c.ID,
		CourseRequest: membersdk.CourseRequest{
			Name:           c.Name,
			Provider:       c.Provider,
			CompletionDate: utcPtr(c.CompletionDate),
			CertificateURL: c.CertificateURL,
			Description:    c.Description,
		},
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toAuthorResponse(a domain.Author) membersdk.AuthorResponse {
	return membersdk.AuthorResponse{
		Role:           a.Ref.Role.String(),
		ID:             a.Ref.ID,
		Name:           a.Name,
		ProfilePicture: a.ProfilePicture,
		Occupation:     a.Occupation,
	}
}

func toCommentResponse(c service.CommentView) membersdk.CommentResponse {
	return membersdk.CommentResponse{
		ID:        c.Comment.ID,
		Author:    toAuthorResponse(c.Author),
		Content:   c.Comment.Content,
		CreatedAt: c.Comment.CreatedAt.UTC(),
	}
}

func toPostResponse(v service.PostView) membersdk.PostResponse {
	p := v.Post
	out := membersdk.PostResponse{
		ID:         p.ID,
		Author:     toAuthorResponse(v.Author),
		Content:    p.Content,
		Tags:       nonNil(p.Tags),
		Visibility: string(p.Visibility),
		Edited:     p.Edited,
		LikeCount:  p.LikeCount,
		Liked:      p.Liked,
		Comments:   make([]membersdk.CommentResponse, 0, len(v.Comments)),
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
	for _, c := range v.Comments {
		out.Comments = append(out.Comments, toCommentResponse(c))
	}
	return out
}
