package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jobdomain "barbid-go/internal/domain/job"
	"barbid-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createJobRequest struct {
	JobTitle     string    `json:"job_title"`
	StartOfShift time.Time `json:"start_of_shift"`
	EndOfShift   time.Time `json:"end_of_shift"`
	PayRate      float64   `json:"pay_rate"`
	Description  string    `json:"description"`
}

type updateJobRequest struct {
	Description string `json:"description"`
}

type acceptApplicationRequest struct {
	ApplicantID string `json:"applicant_id"`
}

type verifyAttendanceRequest struct {
	Code string `json:"code"`
}

type jobResponse struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	BusinessOwnerID string    `json:"business_owner_id"`
	JobTitle        string    `json:"job_title"`
	StartOfShift    time.Time `json:"start_of_shift"`
	EndOfShift      time.Time `json:"end_of_shift"`
	PayRate         float64   `json:"pay_rate"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	ApplicantCount  int       `json:"applicant_count"`
	ClosingSoon     bool      `json:"closing_soon"`

	AcceptedUserID  *string    `json:"accepted_user_id,omitempty"`
	AcceptedPayRate *float64   `json:"accepted_pay_rate,omitempty"`
	AcceptedStart   *time.Time `json:"accepted_start,omitempty"`
	AcceptedEnd     *time.Time `json:"accepted_end,omitempty"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	// VerificationCode is only present for the listing owner and the
	// accepted worker; everyone else sees the listing without it.
	VerificationCode *string `json:"verification_code,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) toJobResponse(l *jobdomain.JobListing, viewerID string) jobResponse {
	response := jobResponse{
		ID:              l.ID,
		BusinessID:      l.BusinessID,
		BusinessOwnerID: l.BusinessOwnerID,
		JobTitle:        l.JobTitle,
		StartOfShift:    l.StartOfShift,
		EndOfShift:      l.EndOfShift,
		PayRate:         l.PayRate,
		Description:     l.Description,
		Status:          l.Status,
		ApplicantCount:  l.ApplicantCount,
		ClosingSoon:     l.ClosingSoon(time.Now(), h.Jobs.ClosingSoonWindow()),
		AcceptedUserID:  l.AcceptedUserID,
		AcceptedPayRate: l.AcceptedPayRate,
		AcceptedStart:   l.AcceptedStart,
		AcceptedEnd:     l.AcceptedEnd,
		AcceptedAt:      l.AcceptedAt,
		CompletedAt:     l.CompletedAt,
		CreatedAt:       l.CreatedAt,
	}
	if viewerID == l.BusinessOwnerID ||
		(l.AcceptedUserID != nil && viewerID == *l.AcceptedUserID) {
		response.VerificationCode = l.VerificationCode
	}
	return response
}

func (h *Handlers) jobListResponse(listings []jobdomain.JobListing, viewerID string) []jobResponse {
	response := make([]jobResponse, 0, len(listings))
	for i := range listings {
		response = append(response, h.toJobResponse(&listings[i], viewerID))
	}
	return response
}

func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	businessID := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.CreateListing(r.Context(), user.ID, businessID, jobdomain.CreateListingInput{
		JobTitle:     req.JobTitle,
		StartOfShift: req.StartOfShift,
		EndOfShift:   req.EndOfShift,
		PayRate:      req.PayRate,
		Description:  req.Description,
	})
	if err != nil {
		h.writeJobError(w, "jobs.create", err, user.ID, businessID)
		return
	}

	writeJSON(w, http.StatusCreated, h.toJobResponse(result, user.ID))
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, jobdomain.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, "job_not_found", "job listing not found")
			return
		}
		h.log.InternalError("jobs.get: failed", err, "job_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, h.toJobResponse(result, user.ID))
}

func (h *Handlers) JobFeed(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	listings, err := h.Jobs.Feed(r.Context(), jobdomain.FeedFilter{
		JobTitle: r.URL.Query().Get("job_title"),
		City:     r.URL.Query().Get("city"),
	})
	if err != nil {
		h.log.InternalError("jobs.feed: failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, h.jobListResponse(listings, user.ID))
}

func (h *Handlers) ListBusinessJobs(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	businessID := strings.TrimSpace(chi.URLParam(r, "id"))
	listings, err := h.Jobs.ListByBusiness(r.Context(), user.ID, businessID)
	if err != nil {
		h.writeJobError(w, "jobs.list_business", err, user.ID, businessID)
		return
	}

	writeJSON(w, http.StatusOK, h.jobListResponse(listings, user.ID))
}

func (h *Handlers) UpdateJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateJobRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.UpdateDescription(r.Context(), user.ID, id, req.Description)
	if err != nil {
		h.writeJobError(w, "jobs.update", err, user.ID, id)
		return
	}

	writeJSON(w, http.StatusOK, h.toJobResponse(result, user.ID))
}

func (h *Handlers) AcceptApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req acceptApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	req.ApplicantID = strings.TrimSpace(req.ApplicantID)
	if req.ApplicantID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "applicant_id is required")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.AcceptApplication(r.Context(), user.ID, id, req.ApplicantID)
	if err != nil {
		h.writeJobError(w, "jobs.accept", err, user.ID, id)
		return
	}

	writeJSON(w, http.StatusOK, h.toJobResponse(result, user.ID))
}

func (h *Handlers) VerifyAttendance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req verifyAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.VerifyAttendance(r.Context(), user.ID, id, req.Code)
	if err != nil {
		h.writeJobError(w, "jobs.verify", err, user.ID, id)
		return
	}

	writeJSON(w, http.StatusOK, h.toJobResponse(result, user.ID))
}

func (h *Handlers) CloseJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.CloseListing(r.Context(), user.ID, id)
	if err != nil {
		h.writeJobError(w, "jobs.close", err, user.ID, id)
		return
	}

	writeJSON(w, http.StatusOK, h.toJobResponse(result, user.ID))
}

func (h *Handlers) DeleteJob(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.Jobs.DeleteListing(r.Context(), user.ID, id); err != nil {
		h.writeJobError(w, "jobs.delete", err, user.ID, id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeJobError maps job domain errors onto HTTP responses; anything not in
// the domain taxonomy is an internal error.
func (h *Handlers) writeJobError(w http.ResponseWriter, op string, err error, userID, id string) {
	switch {
	case errors.Is(err, jobdomain.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "job_not_found", "job listing not found")
	case errors.Is(err, jobdomain.ErrBusinessNotFound):
		writeError(w, http.StatusNotFound, "business_not_found", "business not found")
	case errors.Is(err, jobdomain.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "application_not_found", "application not found")
	case errors.Is(err, jobdomain.ErrNotOwner):
		h.log.BusinessError(op+": not owner", err, "user_id", userID, "id", id)
		writeError(w, http.StatusForbidden, "not_owner", "only the listing owner can do this")
	case errors.Is(err, jobdomain.ErrInvalidTitle):
		writeError(w, http.StatusBadRequest, "invalid_title", "unknown job title")
	case errors.Is(err, jobdomain.ErrShiftOrder):
		writeError(w, http.StatusBadRequest, "invalid_shift", "shift must end after it starts")
	case errors.Is(err, jobdomain.ErrInsufficientLead):
		writeError(w, http.StatusBadRequest, "insufficient_lead", "shift must start at least 1 hour from now")
	case errors.Is(err, jobdomain.ErrBelowMinimumWage):
		writeError(w, http.StatusBadRequest, "below_minimum_wage", "pay rate is below minimum wage")
	case errors.Is(err, jobdomain.ErrJobNotOpen):
		h.log.BusinessError(op+": listing not open", err, "user_id", userID, "id", id)
		writeError(w, http.StatusConflict, "job_not_open", "job listing is not open")
	case errors.Is(err, jobdomain.ErrJobNotFilled):
		h.log.BusinessError(op+": listing not filled", err, "user_id", userID, "id", id)
		writeError(w, http.StatusConflict, "job_not_filled", "job listing is not filled")
	case errors.Is(err, jobdomain.ErrAlreadyApplied):
		writeError(w, http.StatusConflict, "already_applied", "already applied to this listing")
	case errors.Is(err, jobdomain.ErrOwnListing):
		writeError(w, http.StatusConflict, "own_listing", "cannot apply to your own listing")
	case errors.Is(err, jobdomain.ErrVerificationFailed):
		h.log.BusinessError(op+": verification failed", err, "user_id", userID, "id", id)
		writeError(w, http.StatusUnprocessableEntity, "verification_failed", "verification code does not match")
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
