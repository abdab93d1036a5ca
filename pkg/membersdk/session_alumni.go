package membersdk

import (
	"context"
	"net/http"
	"net/url"
)

// GetProfile returns the authenticated alumni's full profile.
func (s *Session) GetProfile(ctx context.Context) (*AlumniResponse, error) {
	var out AlumniResponse
	if err := s.call(ctx, http.MethodGet, "/v1/alumni/profile", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*AlumniResponse, error) {
	var out AlumniResponse
	if err := s.call(ctx, http.MethodPut, "/v1/alumni/profile", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	req := PasswordChangeRequest{CurrentPassword: current, NewPassword: next}
	return s.call(ctx, http.MethodPut, "/v1/alumni/password", req, nil, http.StatusNoContent)
}

func (s *Session) AddExperience(ctx context.Context, req ExperienceRequest) (*ExperienceResponse, error) {
	var out ExperienceResponse
	if err := s.call(ctx, http.MethodPost, "/v1/alumni/experiences", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteExperience(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/alumni/experiences/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (s *Session) AddEducation(ctx context.Context, req EducationRequest) (*EducationResponse, error) {
	var out EducationResponse
	if err := s.call(ctx, http.MethodPost, "/v1/alumni/education", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AddCourse(ctx context.Context, req CourseRequest) (*CourseResponse, error) {
	var out CourseResponse
	if err := s.call(ctx, http.MethodPost, "/v1/alumni/courses", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
