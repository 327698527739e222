package handler

import (
	"net/http"
	"strings"
	"time"

	jobdomain "barbid-go/internal/domain/job"
	"barbid-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type applyRequest struct {
	PayRate      *float64   `json:"pay_rate"`
	StartOfShift *time.Time `json:"start_of_shift"`
	EndOfShift   *time.Time `json:"end_of_shift"`
	Message      string     `json:"message"`
}

type applicationResponse struct {
	ListingID    string    `json:"listing_id"`
	ApplicantID  string    `json:"applicant_id"`
	PayRate      float64   `json:"pay_rate"`
	StartOfShift time.Time `json:"start_of_shift"`
	EndOfShift   time.Time `json:"end_of_shift"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	Attended     bool      `json:"attended"`
	AppliedAt    time.Time `json:"applied_at"`

	// VerificationCode is only present on the accepted worker's own view;
	// the worker reads it out to the business on arrival.
	VerificationCode *string `json:"verification_code,omitempty"`
}

type workerApplicationResponse struct {
	Application applicationResponse `json:"application"`
	Listing     jobResponse         `json:"listing"`
}

type workerApplicationsResponse struct {
	Active   []workerApplicationResponse `json:"active"`
	Accepted []workerApplicationResponse `json:"accepted"`
	Rejected []workerApplicationResponse `json:"rejected"`
}

func toApplicationResponse(a *jobdomain.JobApplication, viewerID string) applicationResponse {
	response := applicationResponse{
		ListingID:    a.ListingID,
		ApplicantID:  a.ApplicantID,
		PayRate:      a.PayRate,
		StartOfShift: a.StartOfShift,
		EndOfShift:   a.EndOfShift,
		Message:      a.Message,
		Status:       a.Status,
		Attended:     a.Attended,
		AppliedAt:    a.AppliedAt,
	}
	if viewerID == a.ApplicantID && a.Status == jobdomain.ApplicationAccepted {
		response.VerificationCode = a.VerificationCode
	}
	return response
}

func (h *Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	listingID := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Jobs.Apply(r.Context(), user.ID, listingID, jobdomain.ApplyInput{
		PayRate:      req.PayRate,
		StartOfShift: req.StartOfShift,
		EndOfShift:   req.EndOfShift,
		Message:      req.Message,
	})
	if err != nil {
		h.writeJobError(w, "applications.apply", err, user.ID, listingID)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(result, user.ID))
}

func (h *Handlers) ListApplicants(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	listingID := strings.TrimSpace(chi.URLParam(r, "id"))
	applications, err := h.Jobs.Applicants(r.Context(), user.ID, listingID)
	if err != nil {
		h.writeJobError(w, "applications.list", err, user.ID, listingID)
		return
	}

	response := make([]applicationResponse, 0, len(applications))
	for i := range applications {
		response = append(response, toApplicationResponse(&applications[i], user.ID))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) MyApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	buckets, err := h.Jobs.WorkerApplications(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("applications.mine: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, workerApplicationsResponse{
		Active:   h.toWorkerApplications(buckets.Active, user.ID),
		Accepted: h.toWorkerApplications(buckets.Accepted, user.ID),
		Rejected: h.toWorkerApplications(buckets.Rejected, user.ID),
	})
}

func (h *Handlers) toWorkerApplications(rows []jobdomain.ApplicationWithListing, viewerID string) []workerApplicationResponse {
	response := make([]workerApplicationResponse, 0, len(rows))
	for i := range rows {
		response = append(response, workerApplicationResponse{
			Application: toApplicationResponse(&rows[i].Application, viewerID),
			Listing:     h.toJobResponse(&rows[i].Listing, viewerID),
		})
	}
	return response
}
