package user

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

const usernameClaimAttempts = 10

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureProfile is called on every authenticated request. First sight of a
// user creates their profile with a username derived from the identity
// provider's display name, claimed atomically; later calls just refresh
// email and avatar.
func (s *Service) EnsureProfile(ctx context.Context, userID, email, name, avatarURL string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	_, err := s.repo.GetProfile(ctx, userID)
	if err == nil {
		var emailPtr, avatarPtr *string
		if email != "" {
			emailPtr = &email
		}
		if avatarURL != "" {
			avatarPtr = &avatarURL
		}
		if emailPtr == nil && avatarPtr == nil {
			return nil
		}
		return s.repo.TouchProfile(ctx, userID, emailPtr, avatarPtr)
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return err
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		username, err := claimDerivedUsername(ctx, tx, userID, name, email)
		if err != nil {
			return err
		}

		profile := Profile{
			UserID:   userID,
			Username: username,
			Theme:    "light",
		}
		if email != "" {
			profile.Email = &email
		}
		if avatarURL != "" {
			profile.AvatarURL = &avatarURL
		}
		if first, last, ok := splitName(name); ok {
			profile.FirstName = first
			profile.LastName = last
		}
		return tx.CreateProfile(ctx, &profile)
	})
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*Profile, []Review, error) {
	profile, err := s.repo.GetProfileByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, nil, err
	}

	reviews, err := s.repo.ListReviews(ctx, profile.UserID)
	if err != nil {
		return nil, nil, err
	}
	return profile, reviews, nil
}

// Update applies profile edits. A username change claims the new name and
// releases the old one inside a single transaction, so two concurrent
// renames to the same name cannot both win.
func (s *Service) Update(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error) {
	if update.Theme != nil && *update.Theme != "light" && *update.Theme != "dark" {
		return nil, ErrInvalidTheme
	}
	if update.Username != nil {
		normalized := strings.ToLower(strings.TrimSpace(*update.Username))
		if !usernamePattern.MatchString(normalized) {
			return nil, ErrInvalidUsername
		}
		update.Username = &normalized
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		profile, err := tx.GetProfile(ctx, userID)
		if err != nil {
			return err
		}

		if update.Username != nil && *update.Username != profile.Username {
			if err := tx.ClaimUsername(ctx, *update.Username, userID); err != nil {
				return err
			}
			if err := tx.ReleaseUsername(ctx, profile.Username, userID); err != nil {
				return err
			}
		} else {
			update.Username = nil
		}

		return tx.UpdateProfile(ctx, userID, update)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) AddReview(ctx context.Context, authorID, profileUserID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	if authorID == profileUserID {
		return nil, ErrSelfReview
	}

	var result Review
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetProfile(ctx, profileUserID); err != nil {
			return err
		}

		exists, err := tx.HasReview(ctx, profileUserID, authorID)
		if err != nil {
			return err
		}
		if exists {
			return ErrReviewExists
		}

		review := Review{
			ID:            uuid.NewString(),
			ProfileUserID: profileUserID,
			AuthorID:      authorID,
			Rating:        rating,
			Comment:       strings.TrimSpace(comment),
		}
		if err := tx.CreateReview(ctx, &review); err != nil {
			return err
		}

		result = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RecomputeStats rebuilds the cached shift totals from completed listings.
// Normal operation increments them at completion time; this is the backfill
// for profiles that predate the counters.
func (s *Service) RecomputeStats(ctx context.Context, userID string) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	shifts, err := s.repo.CompletedShiftsByWorker(ctx, userID)
	if err != nil {
		return nil, err
	}

	var hours float64
	for _, shift := range shifts {
		hours += shift.End.Sub(shift.Start).Hours()
	}

	if err := s.repo.UpdateStats(ctx, userID, int64(len(shifts)), hours); err != nil {
		return nil, err
	}

	profile.ShiftCount = int64(len(shifts))
	profile.TotalHoursWorked = hours
	return profile, nil
}

func claimDerivedUsername(ctx context.Context, tx Repository, userID, name, email string) (string, error) {
	base := usernameBase(name, email)

	candidate := base
	for i := 0; i < usernameClaimAttempts; i++ {
		err := tx.ClaimUsername(ctx, candidate, userID)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrUsernameTaken) {
			return "", err
		}

		suffix, err := randomDigits(4)
		if err != nil {
			return "", err
		}
		candidate = truncate(base, 30-1-len(suffix)) + "_" + suffix
	}

	return "", ErrUsernameTaken
}

func usernameBase(name, email string) string {
	source := name
	if source == "" {
		if at := strings.Index(email, "@"); at > 0 {
			source = email[:at]
		}
	}

	var builder strings.Builder
	for _, r := range strings.ToLower(source) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ', r == '.', r == '-', r == '_':
			builder.WriteRune('_')
		}
	}

	base := strings.Trim(builder.String(), "_")
	if len(base) < 3 {
		base = "worker"
	}
	return truncate(base, 30)
}

func splitName(name string) (string, string, bool) {
	parts := strings.Fields(strings.TrimSpace(name))
	switch len(parts) {
	case 0:
		return "", "", false
	case 1:
		return parts[0], "", true
	default:
		return parts[0], strings.Join(parts[1:], " "), true
	}
}

func randomDigits(length int) (string, error) {
	max := big.NewInt(10)

	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}
	return builder.String(), nil
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}

// SkillsJSON converts a skills list to its stored JSON form.
func SkillsJSON(skills []string) ([]byte, error) {
	if skills == nil {
		skills = []string{}
	}
	return json.Marshal(skills)
}
