package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	userdomain "barbid-go/internal/domain/user"
	"barbid-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type updateProfileRequest struct {
	Username   *string  `json:"username"`
	FirstName  *string  `json:"first_name"`
	LastName   *string  `json:"last_name"`
	About      *string  `json:"about"`
	Occupation *string  `json:"occupation"`
	Skills     []string `json:"skills"`
	Theme      *string  `json:"theme"`
	AvatarURL  *string  `json:"avatar_url"`
	CoverURL   *string  `json:"cover_url"`
}

type addReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type profileResponse struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	About            string    `json:"about"`
	Occupation       string    `json:"occupation"`
	Skills           []string  `json:"skills"`
	Theme            string    `json:"theme"`
	AvatarURL        *string   `json:"avatar_url"`
	CoverURL         *string   `json:"cover_url"`
	ShiftCount       int64     `json:"shift_count"`
	TotalHoursWorked float64   `json:"total_hours_worked"`
	CreatedAt        time.Time `json:"created_at"`
}

type reviewResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type profileWithReviewsResponse struct {
	Profile profileResponse  `json:"profile"`
	Reviews []reviewResponse `json:"reviews"`
}

func toProfileResponse(p *userdomain.Profile) profileResponse {
	skills := []string{}
	if len(p.Skills) > 0 {
		_ = json.Unmarshal(p.Skills, &skills)
	}

	return profileResponse{
		UserID:           p.UserID,
		Username:         p.Username,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		About:            p.About,
		Occupation:       p.Occupation,
		Skills:           skills,
		Theme:            p.Theme,
		AvatarURL:        p.AvatarURL,
		CoverURL:         p.CoverURL,
		ShiftCount:       p.ShiftCount,
		TotalHoursWorked: p.TotalHoursWorked,
		CreatedAt:        p.CreatedAt,
	}
}

func (h *Handlers) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Users.Get(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("profiles.me: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handlers) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))

	profile, reviews, err := h.Users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, userdomain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		h.log.InternalError("profiles.get: failed", err, "username", username)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := profileWithReviewsResponse{
		Profile: toProfileResponse(profile),
		Reviews: make([]reviewResponse, 0, len(reviews)),
	}
	for _, review := range reviews {
		response.Reviews = append(response.Reviews, reviewResponse{
			ID:        review.ID,
			AuthorID:  review.AuthorID,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	profile, err := h.Users.Update(r.Context(), user.ID, userdomain.ProfileUpdate{
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		About:      req.About,
		Occupation: req.Occupation,
		Skills:     req.Skills,
		Theme:      req.Theme,
		AvatarURL:  req.AvatarURL,
		CoverURL:   req.CoverURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, userdomain.ErrInvalidUsername):
			writeError(w, http.StatusBadRequest, "invalid_username", "username must be 3-30 lowercase letters, digits or underscores")
		case errors.Is(err, userdomain.ErrUsernameTaken):
			h.log.BusinessError("profiles.update: username taken", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "username_taken", "username is already taken")
		case errors.Is(err, userdomain.ErrInvalidTheme):
			writeError(w, http.StatusBadRequest, "invalid_theme", "theme must be light or dark")
		default:
			h.log.InternalError("profiles.update: failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handlers) AddReview(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req addReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	username := strings.TrimSpace(chi.URLParam(r, "username"))
	profile, _, err := h.Users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, userdomain.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile_not_found", "profile not found")
			return
		}
		h.log.InternalError("profiles.review: lookup failed", err, "username", username)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	review, err := h.Users.AddReview(r.Context(), user.ID, profile.UserID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, userdomain.ErrInvalidRating):
			writeError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		case errors.Is(err, userdomain.ErrSelfReview):
			writeError(w, http.StatusConflict, "self_review", "cannot review your own profile")
		case errors.Is(err, userdomain.ErrReviewExists):
			writeError(w, http.StatusConflict, "review_exists", "already reviewed this profile")
		default:
			h.log.InternalError("profiles.review: failed", err, "username", username)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, reviewResponse{
		ID:        review.ID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	})
}

func (h *Handlers) RecomputeMyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	profile, err := h.Users.RecomputeStats(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("profiles.recompute_stats: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}
