package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"barbid-go/pkg/logger"
	"github.com/google/uuid"
)

// Service writes derived lifecycle events into recipients' inboxes. The
// push methods are best-effort: a failed notification is logged and
// dropped, never propagated to the operation that triggered it.
type Service struct {
	repo Repository
	log  logger.Logger
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) JobApplication(ctx context.Context, recipientID, jobID, businessID, jobTitle string) {
	s.push(ctx, recipientID, TypeJobApplication,
		"New application",
		fmt.Sprintf("Someone applied to your %s shift.", jobTitle),
		jobID, businessID)
}

func (s *Service) JobAccepted(ctx context.Context, recipientID, jobID, businessID, jobTitle string) {
	s.push(ctx, recipientID, TypeJobAccepted,
		"Application accepted",
		fmt.Sprintf("You got the %s shift. Show your verification code on arrival.", jobTitle),
		jobID, businessID)
}

func (s *Service) JobCompleted(ctx context.Context, recipientID, jobID, businessID, jobTitle string) {
	s.push(ctx, recipientID, TypeJobCompleted,
		"Shift completed",
		fmt.Sprintf("Your %s shift was marked completed.", jobTitle),
		jobID, businessID)
}

func (s *Service) JobAutoClosed(ctx context.Context, recipientID, jobID, businessID, jobTitle string) {
	s.push(ctx, recipientID, TypeJobAutoClosed,
		"Listing closed",
		fmt.Sprintf("Your %s listing closed automatically at shift start.", jobTitle),
		jobID, businessID)
}

func (s *Service) push(ctx context.Context, recipientID, kind, title, message, jobID, businessID string) {
	data, err := json.Marshal(map[string]string{
		"job_id":      jobID,
		"business_id": businessID,
	})
	if err != nil {
		s.log.InternalError("notifications: marshal payload failed", err, "type", kind)
		return
	}

	n := Notification{
		ID:      uuid.NewString(),
		UserID:  recipientID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		s.log.InternalError("notifications: create failed", err, "type", kind, "user_id", recipientID)
	}
}

func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
