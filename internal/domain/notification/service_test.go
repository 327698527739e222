package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"barbid-go/pkg/logger"
)

type fakeNotificationRepo struct {
	created   []Notification
	createErr error
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, *n)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	var result []Notification
	for _, n := range r.created {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range r.created {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, userID, id string) error {
	for i := range r.created {
		if r.created[i].UserID == userID && r.created[i].ID == id {
			r.created[i].IsRead = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	for i := range r.created {
		if r.created[i].UserID == userID {
			r.created[i].IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, userID, id string) error {
	for i := range r.created {
		if r.created[i].UserID == userID && r.created[i].ID == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return ErrNotificationNotFound
}

func testLogger() logger.Logger {
	return logger.New(io.Discard, slog.LevelError, "json")
}

func TestJobAcceptedWritesInbox(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(repo, testLogger())

	svc.JobAccepted(context.Background(), "worker-1", "job-1", "biz-1", "Bartender")

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	n := repo.created[0]
	if n.Type != TypeJobAccepted {
		t.Fatalf("expected type %q, got %q", TypeJobAccepted, n.Type)
	}
	if n.UserID != "worker-1" {
		t.Fatalf("expected recipient worker-1, got %q", n.UserID)
	}

	var data map[string]string
	if err := json.Unmarshal(n.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data["job_id"] != "job-1" || data["business_id"] != "biz-1" {
		t.Fatalf("expected job and business refs in data, got %v", data)
	}
}

func TestPushSwallowsRepoErrors(t *testing.T) {
	repo := &fakeNotificationRepo{createErr: errors.New("db down")}
	svc := NewService(repo, testLogger())

	// Must not panic or surface the error.
	svc.JobApplication(context.Background(), "owner-1", "job-1", "biz-1", "Waiter")

	if len(repo.created) != 0 {
		t.Fatalf("expected nothing written, got %d", len(repo.created))
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(repo, testLogger())

	svc.JobApplication(context.Background(), "owner-1", "job-1", "biz-1", "Waiter")
	svc.JobApplication(context.Background(), "owner-1", "job-2", "biz-1", "Chef")

	count, err := svc.UnreadCount(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	if err := svc.MarkRead(context.Background(), "owner-1", repo.created[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	count, _ = svc.UnreadCount(context.Background(), "owner-1")
	if count != 1 {
		t.Fatalf("expected 1 unread after mark read, got %d", count)
	}

	if err := svc.MarkAllRead(context.Background(), "owner-1"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	count, _ = svc.UnreadCount(context.Background(), "owner-1")
	if count != 0 {
		t.Fatalf("expected 0 unread after mark all, got %d", count)
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(repo, testLogger())

	svc.JobApplication(context.Background(), "owner-1", "job-1", "biz-1", "Waiter")

	err := svc.MarkRead(context.Background(), "someone-else", repo.created[0].ID)
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got %v", err)
	}
}
