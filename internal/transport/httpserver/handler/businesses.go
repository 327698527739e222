package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	businessdomain "barbid-go/internal/domain/business"
	"barbid-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createBusinessRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Postcode    string  `json:"postcode"`
	City        string  `json:"city"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Privacy     string  `json:"privacy"`
	Phone       string  `json:"phone"`
	Description string  `json:"description"`
}

type updateBusinessRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	Postcode    *string  `json:"postcode"`
	City        *string  `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Privacy     *string  `json:"privacy"`
	Phone       *string  `json:"phone"`
	Description *string  `json:"description"`
}

type businessResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Postcode    string    `json:"postcode"`
	City        string    `json:"city"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Privacy     string    `json:"privacy"`
	Phone       string    `json:"phone"`
	Description string    `json:"description"`
	JobListings int       `json:"job_listings"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBusinessResponse(b *businessdomain.Business) businessResponse {
	return businessResponse{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Address:     b.Address,
		Postcode:    b.Postcode,
		City:        b.City,
		Latitude:    b.Latitude,
		Longitude:   b.Longitude,
		Privacy:     b.Privacy,
		Phone:       b.Phone,
		Description: b.Description,
		JobListings: b.JobListings,
		CreatedAt:   b.CreatedAt,
	}
}

func (h *Handlers) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createBusinessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	result, err := h.Businesses.Create(r.Context(), user.ID, businessdomain.CreateInput{
		Name:        req.Name,
		Address:     req.Address,
		Postcode:    req.Postcode,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Privacy:     req.Privacy,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, businessdomain.ErrInvalidPrivacy) {
			writeError(w, http.StatusBadRequest, "invalid_privacy", "privacy must be public or private")
			return
		}
		h.log.BusinessError("businesses.create: rejected", err, "user_id", user.ID)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toBusinessResponse(result))
}

func (h *Handlers) GetBusiness(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Businesses.GetVisible(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, businessdomain.ErrBusinessNotFound) {
			writeError(w, http.StatusNotFound, "business_not_found", "business not found")
			return
		}
		h.log.InternalError("businesses.get: failed", err, "business_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toBusinessResponse(result))
}

func (h *Handlers) ListMyBusinesses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	businesses, err := h.Businesses.ListMine(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("businesses.list_mine: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]businessResponse, 0, len(businesses))
	for i := range businesses {
		response = append(response, toBusinessResponse(&businesses[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ListPublicBusinesses(w http.ResponseWriter, r *http.Request) {
	businesses, err := h.Businesses.ListPublic(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.log.InternalError("businesses.list_public: failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]businessResponse, 0, len(businesses))
	for i := range businesses {
		response = append(response, toBusinessResponse(&businesses[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateBusinessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	result, err := h.Businesses.Update(r.Context(), user.ID, id, businessdomain.Update{
		Name:        req.Name,
		Address:     req.Address,
		Postcode:    req.Postcode,
		City:        req.City,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Privacy:     req.Privacy,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, businessdomain.ErrBusinessNotFound):
			writeError(w, http.StatusNotFound, "business_not_found", "business not found")
		case errors.Is(err, businessdomain.ErrNotOwner):
			h.log.BusinessError("businesses.update: not owner", err, "user_id", user.ID, "business_id", id)
			writeError(w, http.StatusForbidden, "not_owner", "only the owner can update a business")
		case errors.Is(err, businessdomain.ErrInvalidPrivacy):
			writeError(w, http.StatusBadRequest, "invalid_privacy", "privacy must be public or private")
		default:
			h.log.InternalError("businesses.update: failed", err, "business_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toBusinessResponse(result))
}

func (h *Handlers) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.Businesses.Delete(r.Context(), user.ID, id); err != nil {
		switch {
		case errors.Is(err, businessdomain.ErrBusinessNotFound):
			writeError(w, http.StatusNotFound, "business_not_found", "business not found")
		case errors.Is(err, businessdomain.ErrNotOwner):
			h.log.BusinessError("businesses.delete: not owner", err, "user_id", user.ID, "business_id", id)
			writeError(w, http.StatusForbidden, "not_owner", "only the owner can delete a business")
		default:
			h.log.InternalError("businesses.delete: failed", err, "business_id", id)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
