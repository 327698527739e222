package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	notificationdomain "barbid-go/internal/domain/notification"
	"barbid-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type notificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func toNotificationResponse(n *notificationdomain.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      json.RawMessage(n.Data),
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	notifications, err := h.Notifications.List(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("notifications.list: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		response = append(response, toNotificationResponse(&notifications[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	count, err := h.Notifications.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("notifications.unread: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.Notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, notificationdomain.ErrNotificationNotFound) {
			writeError(w, http.StatusNotFound, "notification_not_found", "notification not found")
			return
		}
		h.log.InternalError("notifications.mark_read: failed", err, "user_id", user.ID, "notification_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Notifications.MarkAllRead(r.Context(), user.ID); err != nil {
		h.log.InternalError("notifications.mark_all_read: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := h.Notifications.Delete(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, notificationdomain.ErrNotificationNotFound) {
			writeError(w, http.StatusNotFound, "notification_not_found", "notification not found")
			return
		}
		h.log.InternalError("notifications.delete: failed", err, "user_id", user.ID, "notification_id", id)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
