package http

import (
	"net/http"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
)

// AlumniHandler serves the alumni self-service routes. Every route acts on
// the authenticated alumni's own record.
type AlumniHandler struct {
	AlumniService *service.AlumniService
}

func callerRef(r *http.Request) domain.PrincipalRef {
	return PrincipalFromContext(r.Context()).Ref()
}

func callerID(r *http.Request) string { return callerRef(r).ID }

// HandleGetProfile godoc
//
//	@Summary		Get own profile
//	@Tags			Alumni
//	@Produce		json
//	@Success		200	{object}	membersdk.AlumniResponse
//	@Failure		401	{object}	membersdk.ErrorResponse
//	@Failure		403	{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/profile [get].
func (h *AlumniHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	a, err := h.AlumniService.GetProfile(r.Context(), callerID(r))
	if err != nil {
		writeServiceError(w, r, err, "failed to load profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAlumniResponse(a))
}

// HandleUpdateProfile godoc
//
//	@Summary		Update own profile
//	@Description	Only fields present in the body change. Email, batch and department are fixed.
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ProfileUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	membersdk.AlumniResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/profile [put].
func (h *AlumniHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ProfileUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	a, err := h.AlumniService.UpdateProfile(r.Context(), callerID(r), service.ProfileUpdate{
		Name:           req.Name,
		Occupation:     req.Occupation,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		LinkedIn:       req.LinkedIn,
		GitHub:         req.GitHub,
		Portfolio:      req.Portfolio,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Skills:         req.Skills,
		Achievements:   req.Achievements,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update profile")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAlumniResponse(a))
}

// HandleChangePassword godoc
//
//	@Summary		Change own password
//	@Tags			Alumni
//	@Accept			json
//	@Param			request	body	membersdk.PasswordChangeRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	membersdk.ErrorResponse
//	@Failure		401	{object}	membersdk.ErrorResponse	"current password is wrong"
//	@Security		BearerAuth
//	@Router			/v1/alumni/password [put].
func (h *AlumniHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req membersdk.PasswordChangeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	err := h.AlumniService.ChangePassword(r.Context(), callerID(r), service.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddExperience godoc
//
//	@Summary		Add a work experience entry
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.ExperienceRequest	true	"Experience"
//	@Success		201		{object}	membersdk.ExperienceResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/experiences [post].
func (h *AlumniHandler) HandleAddExperience(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ExperienceRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	e, err := h.AlumniService.AddExperience(r.Context(), callerID(r), experienceInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to add experience")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toExperienceResponse(e))
}

// HandleUpdateExperience godoc
//
//	@Summary		Replace a work experience entry
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Entry ID"
//	@Param			request	body		membersdk.ExperienceRequest	true	"Experience"
//	@Success		200		{object}	membersdk.ExperienceResponse
//	@Failure		404		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/experiences/{id} [put].
func (h *AlumniHandler) HandleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	var req membersdk.ExperienceRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.AlumniService.UpdateExperience(r.Context(), callerID(r), id, experienceInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to update experience")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toExperienceResponse(e))
}

// HandleDeleteExperience godoc
//
//	@Summary	Remove a work experience entry
//	@Tags		Alumni
//	@Param		id	path	string	true	"Entry ID"
//	@Success	204
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/alumni/experiences/{id} [delete].
func (h *AlumniHandler) HandleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.AlumniService.DeleteExperience(r.Context(), callerID(r), id); err != nil {
		writeServiceError(w, r, err, "failed to delete experience")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddEducation godoc
//
//	@Summary		Add an education entry
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.EducationRequest	true	"Education"
//	@Success		201		{object}	membersdk.EducationResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/education [post].
func (h *AlumniHandler) HandleAddEducation(w http.ResponseWriter, r *http.Request) {
	var req membersdk.EducationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	e, err := h.AlumniService.AddEducation(r.Context(), callerID(r), educationInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to add education")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEducationResponse(e))
}

// HandleUpdateEducation godoc
//
//	@Summary		Replace an education entry
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Entry ID"
//	@Param			request	body		membersdk.EducationRequest	true	"Education"
//	@Success		200		{object}	membersdk.EducationResponse
//	@Failure		404		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/education/{id} [put].
func (h *AlumniHandler) HandleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	var req membersdk.EducationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.AlumniService.UpdateEducation(r.Context(), callerID(r), id, educationInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to update education")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEducationResponse(e))
}

// HandleDeleteEducation godoc
//
//	@Summary	Remove an education entry
//	@Tags		Alumni
//	@Param		id	path	string	true	"Entry ID"
//	@Success	204
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/alumni/education/{id} [delete].
func (h *AlumniHandler) HandleDeleteEducation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.AlumniService.DeleteEducation(r.Context(), callerID(r), id); err != nil {
		writeServiceError(w, r, err, "failed to delete education")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddCourse godoc
//
//	@Summary		Add a course entry
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.CourseRequest	true	"Course"
//	@Success		201		{object}	membersdk.CourseResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/courses [post].
func (h *AlumniHandler) HandleAddCourse(w http.ResponseWriter, r *http.Request) {
	var req membersdk.CourseRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	c, err := h.AlumniService.AddCourse(r.Context(), callerID(r), courseInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to add course")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCourseResponse(c))
}

// HandleUpdateCourse godoc
//
//	@Summary		Replace a course entry
//	@Tags			Alumni
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Entry ID"
//	@Param			request	body		membersdk.CourseRequest	true	"Course"
//	@Success		200		{object}	membersdk.CourseResponse
//	@Failure		404		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/alumni/courses/{id} [put].
func (h *AlumniHandler) HandleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req membersdk.CourseRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.AlumniService.UpdateCourse(r.Context(), callerID(r), id, courseInput(req))
	if err != nil {
		writeServiceError(w, r, err, "failed to update course")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCourseResponse(c))
}

// HandleDeleteCourse godoc
//
//	@Summary	Remove a course entry
//	@Tags		Alumni
//	@Param		id	path	string	true	"Entry ID"
//	@Success	204
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/alumni/courses/{id} [delete].
func (h *AlumniHandler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.AlumniService.DeleteCourse(r.Context(), callerID(r), id); err != nil {
		writeServiceError(w, r, err, "failed to delete course")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func experienceInput(req membersdk.ExperienceRequest) service.ExperienceInput {
	return service.ExperienceInput{
		Company:     req.Company,
		Position:    req.Position,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Current:     req.Current,
		Description: req.Description,
	}
}

func educationInput(req membersdk.EducationRequest) service.EducationInput {
	return service.EducationInput{
		Institution:  req.Institution,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Grade:        req.Grade,
		Description:  req.Description,
	}
}

func courseInput(req membersdk.CourseRequest) service.CourseInput {
	return service.CourseInput{
		Name:           req.Name,
		Provider:       req.Provider,
		CompletionDate: req.CompletionDate,
		CertificateURL: req.CertificateURL,
		Description:    req.Description,
	}
}
