package user

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeUserRepo struct {
	profiles     map[string]*Profile
	reservations map[string]string
	reviews      []Review
	shifts       map[string][]CompletedShift
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		profiles:     make(map[string]*Profile),
		reservations: make(map[string]string),
		shifts:       make(map[string][]CompletedShift),
	}
}

func (r *fakeUserRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeUserRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeUserRepo) GetProfileByUsername(ctx context.Context, username string) (*Profile, error) {
	for _, profile := range r.profiles {
		if profile.Username == username {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, ErrProfileNotFound
}

func (r *fakeUserRepo) CreateProfile(ctx context.Context, profile *Profile) error {
	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	profile, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	if update.Username != nil {
		profile.Username = *update.Username
	}
	if update.FirstName != nil {
		profile.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		profile.LastName = *update.LastName
	}
	if update.About != nil {
		profile.About = *update.About
	}
	if update.Occupation != nil {
		profile.Occupation = *update.Occupation
	}
	if update.Theme != nil {
		profile.Theme = *update.Theme
	}
	return nil
}

func (r *fakeUserRepo) TouchProfile(ctx context.Context, userID string, email, avatarURL *string) error {
	profile, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	if email != nil {
		profile.Email = email
	}
	if avatarURL != nil {
		profile.AvatarURL = avatarURL
	}
	return nil
}

func (r *fakeUserRepo) ClaimUsername(ctx context.Context, username, userID string) error {
	if owner, taken := r.reservations[username]; taken && owner != userID {
		return ErrUsernameTaken
	}
	r.reservations[username] = userID
	return nil
}

func (r *fakeUserRepo) ReleaseUsername(ctx context.Context, username, userID string) error {
	if r.reservations[username] == userID {
		delete(r.reservations, username)
	}
	return nil
}

func (r *fakeUserRepo) CreateReview(ctx context.Context, review *Review) error {
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *fakeUserRepo) HasReview(ctx context.Context, profileUserID, authorID string) (bool, error) {
	for _, review := range r.reviews {
		if review.ProfileUserID == profileUserID && review.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ListReviews(ctx context.Context, profileUserID string) ([]Review, error) {
	var result []Review
	for _, review := range r.reviews {
		if review.ProfileUserID == profileUserID {
			result = append(result, review)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) UpdateStats(ctx context.Context, userID string, shiftCount int64, totalHours float64) error {
	profile, ok := r.profiles[userID]
	if !ok {
		return ErrProfileNotFound
	}
	profile.ShiftCount = shiftCount
	profile.TotalHoursWorked = totalHours
	return nil
}

func (r *fakeUserRepo) CompletedShiftsByWorker(ctx context.Context, userID string) ([]CompletedShift, error) {
	return r.shifts[userID], nil
}

func TestEnsureProfileCreates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", "https://cdn/avatar.png")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	profile := repo.profiles["user-1"]
	if profile == nil {
		t.Fatalf("expected profile created")
	}
	if profile.Username != "jane_doe" {
		t.Fatalf("expected username jane_doe, got %q", profile.Username)
	}
	if profile.FirstName != "Jane" || profile.LastName != "Doe" {
		t.Fatalf("expected split name, got %q %q", profile.FirstName, profile.LastName)
	}
	if repo.reservations["jane_doe"] != "user-1" {
		t.Fatalf("expected username reserved for user-1")
	}
}

func TestEnsureProfileUsernameCollision(t *testing.T) {
	repo := newFakeUserRepo()
	repo.reservations["jane_doe"] = "someone-else"
	svc := NewService(repo)

	err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	profile := repo.profiles["user-1"]
	if profile == nil {
		t.Fatalf("expected profile created")
	}
	if !strings.HasPrefix(profile.Username, "jane_doe_") {
		t.Fatalf("expected suffixed username, got %q", profile.Username)
	}
	if repo.reservations[profile.Username] != "user-1" {
		t.Fatalf("expected suffixed username reserved for user-1")
	}
}

func TestEnsureProfileDerivesFromEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	if err := svc.EnsureProfile(context.Background(), "user-1", "barkeep99@example.com", "", ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.profiles["user-1"].Username != "barkeep99" {
		t.Fatalf("expected username from email local part, got %q", repo.profiles["user-1"].Username)
	}
}

func TestEnsureProfileRefreshesExisting(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)

	if err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", ""); err != nil {
		t.Fatalf("first call: %v", err)
	}

	if err := svc.EnsureProfile(context.Background(), "user-1", "jane.new@example.com", "Jane Doe", "https://cdn/new.png"); err != nil {
		t.Fatalf("second call: %v", err)
	}

	profile := repo.profiles["user-1"]
	if profile.Email == nil || *profile.Email != "jane.new@example.com" {
		t.Fatalf("expected refreshed email, got %v", profile.Email)
	}
	if profile.Username != "jane_doe" {
		t.Fatalf("expected username untouched, got %q", profile.Username)
	}
}

func TestUpdateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	if err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	newName := "Jane_behind_the_bar"
	profile, err := svc.Update(context.Background(), "user-1", ProfileUpdate{Username: &newName})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.Username != "jane_behind_the_bar" {
		t.Fatalf("expected lowercased username, got %q", profile.Username)
	}
	if _, taken := repo.reservations["jane_doe"]; taken {
		t.Fatalf("expected old username released")
	}
	if repo.reservations["jane_behind_the_bar"] != "user-1" {
		t.Fatalf("expected new username reserved")
	}
}

func TestUpdateUsernameTaken(t *testing.T) {
	repo := newFakeUserRepo()
	repo.reservations["wanted"] = "someone-else"
	svc := NewService(repo)
	if err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	wanted := "wanted"
	_, err := svc.Update(context.Background(), "user-1", ProfileUpdate{Username: &wanted})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if repo.profiles["user-1"].Username != "jane_doe" {
		t.Fatalf("expected username unchanged, got %q", repo.profiles["user-1"].Username)
	}
}

func TestUpdateUsernameInvalid(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	if err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	for _, bad := range []string{"ab", "has space", "dollar$", strings.Repeat("a", 31)} {
		candidate := bad
		if _, err := svc.Update(context.Background(), "user-1", ProfileUpdate{Username: &candidate}); !errors.Is(err, ErrInvalidUsername) {
			t.Fatalf("username %q: expected ErrInvalidUsername, got %v", bad, err)
		}
	}
}

func TestUpdateTheme(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	if err := svc.EnsureProfile(context.Background(), "user-1", "jane@example.com", "Jane Doe", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	bad := "solarized"
	if _, err := svc.Update(context.Background(), "user-1", ProfileUpdate{Theme: &bad}); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}

	dark := "dark"
	profile, err := svc.Update(context.Background(), "user-1", ProfileUpdate{Theme: &dark})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.Theme != "dark" {
		t.Fatalf("expected dark theme, got %q", profile.Theme)
	}
}

func TestAddReview(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	if err := svc.EnsureProfile(context.Background(), "worker-1", "w@example.com", "Worker One", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if _, err := svc.AddReview(context.Background(), "owner-1", "worker-1", 0, ""); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if _, err := svc.AddReview(context.Background(), "worker-1", "worker-1", 5, ""); !errors.Is(err, ErrSelfReview) {
		t.Fatalf("expected ErrSelfReview, got %v", err)
	}

	review, err := svc.AddReview(context.Background(), "owner-1", "worker-1", 5, "  showed up early  ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if review.Comment != "showed up early" {
		t.Fatalf("expected trimmed comment, got %q", review.Comment)
	}

	if _, err := svc.AddReview(context.Background(), "owner-1", "worker-1", 4, "again"); !errors.Is(err, ErrReviewExists) {
		t.Fatalf("expected ErrReviewExists, got %v", err)
	}
}

func TestRecomputeStats(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo)
	if err := svc.EnsureProfile(context.Background(), "worker-1", "w@example.com", "Worker One", ""); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	start := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	repo.shifts["worker-1"] = []CompletedShift{
		{ListingID: "l1", Start: start, End: start.Add(6 * time.Hour)},
		{ListingID: "l2", Start: start.Add(24 * time.Hour), End: start.Add(28 * time.Hour)},
	}

	profile, err := svc.RecomputeStats(context.Background(), "worker-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if profile.ShiftCount != 2 {
		t.Fatalf("expected 2 shifts, got %d", profile.ShiftCount)
	}
	if profile.TotalHoursWorked != 10 {
		t.Fatalf("expected 10 hours, got %v", profile.TotalHoursWorked)
	}
	if repo.profiles["worker-1"].ShiftCount != 2 {
		t.Fatalf("expected stats persisted")
	}
}
