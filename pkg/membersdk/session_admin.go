package membersdk

import (
	"context"
	"net/http"
	"net/url"
)

// Invite sends a single invitation. Requires the admin or super_admin role.
func (s *Session) Invite(ctx context.Context, email string) (*InvitationResponse, error) {
	var out InvitationResponse
	if err := s.call(ctx, http.MethodPost, "/v1/admin/invitations", InviteRequest{Email: email}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkInvite invites every address and reports per-address outcomes.
func (s *Session) BulkInvite(ctx context.Context, emails []string) (*BulkInviteResponse, error) {
	var out BulkInviteResponse
	if err := s.call(ctx, http.MethodPost, "/v1/admin/invitations/bulk", BulkInviteRequest{Emails: emails}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAlumni lists alumni, optionally narrowed by department and batch.
func (s *Session) ListAlumni(ctx context.Context, department, batch string) ([]AlumniResponse, error) {
	q := url.Values{}
	if department != "" {
		q.Set("department", department)
	}
	if batch != "" {
		q.Set("batch", batch)
	}
	path := "/v1/admin/alumni"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out AlumniListResponse
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Alumni, nil
}

// ---- super_admin only ----

func (s *Session) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*AdminResponse, error) {
	var out AdminResponse
	if err := s.call(ctx, http.MethodPost, "/v1/super-admin/admins", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListAdmins(ctx context.Context) ([]AdminResponse, error) {
	var out AdminListResponse
	if err := s.call(ctx, http.MethodGet, "/v1/super-admin/admins", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Admins, nil
}

func (s *Session) UpdateAdmin(ctx context.Context, id string, req UpdateAdminRequest) (*AdminResponse, error) {
	var out AdminResponse
	if err := s.call(ctx, http.MethodPut, "/v1/super-admin/admins/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteAdmin(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/super-admin/admins/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (s *Session) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	var out StatisticsResponse
	if err := s.call(ctx, http.MethodGet, "/v1/super-admin/statistics", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) ListInvitations(ctx context.Context) ([]InvitationResponse, error) {
	var out InvitationListResponse
	if err := s.call(ctx, http.MethodGet, "/v1/super-admin/invitations", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}
