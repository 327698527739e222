package job

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeBusiness struct {
	ref      BusinessRef
	listings int
}

type fakeStats struct {
	shifts int
	hours  float64
}

type fakeJobRepo struct {
	listings     map[string]*JobListing
	applications map[string]map[string]*JobApplication
	businesses   map[string]*fakeBusiness
	stats        map[string]*fakeStats
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		listings:     make(map[string]*JobListing),
		applications: make(map[string]map[string]*JobApplication),
		businesses:   make(map[string]*fakeBusiness),
		stats:        make(map[string]*fakeStats),
	}
}

func (r *fakeJobRepo) addBusiness(id, ownerID string, public bool) {
	r.businesses[id] = &fakeBusiness{ref: BusinessRef{ID: id, OwnerID: ownerID, Name: "The Crown", City: "London", Public: public}}
}

func (r *fakeJobRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeJobRepo) CreateListing(ctx context.Context, l *JobListing) error {
	copied := *l
	r.listings[l.ID] = &copied
	return nil
}

func (r *fakeJobRepo) GetListing(ctx context.Context, id string) (*JobListing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	copied := *listing
	return &copied, nil
}

func (r *fakeJobRepo) ListByBusiness(ctx context.Context, businessID string) ([]JobListing, error) {
	var result []JobListing
	for _, l := range r.listings {
		if l.BusinessID == businessID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (r *fakeJobRepo) ListOpenPublic(ctx context.Context, filter FeedFilter) ([]JobListing, error) {
	var result []JobListing
	for _, l := range r.listings {
		if l.Status != StatusOpen {
			continue
		}
		b, ok := r.businesses[l.BusinessID]
		if !ok || !b.ref.Public {
			continue
		}
		if filter.JobTitle != "" && l.JobTitle != filter.JobTitle {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (r *fakeJobRepo) ListStartedOpen(ctx context.Context, now time.Time) ([]JobListing, error) {
	var result []JobListing
	for _, l := range r.listings {
		if l.Status == StatusOpen && !l.StartOfShift.After(now) {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (r *fakeJobRepo) UpdateDescription(ctx context.Context, id, description string) error {
	listing, ok := r.listings[id]
	if !ok {
		return ErrListingNotFound
	}
	listing.Description = description
	return nil
}

func (r *fakeJobRepo) DeleteListing(ctx context.Context, id string) error {
	delete(r.listings, id)
	return nil
}

func (r *fakeJobRepo) FillListing(ctx context.Context, id string, update FillUpdate) (bool, error) {
	listing, ok := r.listings[id]
	if !ok || listing.Status != StatusOpen || listing.AcceptedUserID != nil {
		return false, nil
	}
	listing.Status = StatusFilled
	listing.AcceptedUserID = &update.AcceptedUserID
	listing.AcceptedPayRate = &update.AcceptedPayRate
	listing.AcceptedStart = &update.AcceptedStart
	listing.AcceptedEnd = &update.AcceptedEnd
	listing.VerificationCode = &update.VerificationCode
	listing.AcceptedAt = &update.AcceptedAt
	return true, nil
}

func (r *fakeJobRepo) CompleteListing(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	listing, ok := r.listings[id]
	if !ok || listing.Status != StatusFilled {
		return false, nil
	}
	listing.Status = StatusCompleted
	listing.ApplicantAttended = true
	listing.CompletedAt = &completedAt
	return true, nil
}

func (r *fakeJobRepo) CloseListing(ctx context.Context, id string) (bool, error) {
	listing, ok := r.listings[id]
	if !ok || listing.Status != StatusOpen {
		return false, nil
	}
	listing.Status = StatusClosed
	return true, nil
}

func (r *fakeJobRepo) CreateApplication(ctx context.Context, a *JobApplication) error {
	if r.applications[a.ListingID] == nil {
		r.applications[a.ListingID] = make(map[string]*JobApplication)
	}
	copied := *a
	if copied.AppliedAt.IsZero() {
		copied.AppliedAt = time.Now().UTC()
	}
	r.applications[a.ListingID][a.ApplicantID] = &copied
	return nil
}

func (r *fakeJobRepo) GetApplication(ctx context.Context, listingID, applicantID string) (*JobApplication, error) {
	application, ok := r.applications[listingID][applicantID]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	copied := *application
	return &copied, nil
}

func (r *fakeJobRepo) ListApplications(ctx context.Context, listingID string) ([]JobApplication, error) {
	var result []JobApplication
	for _, a := range r.applications[listingID] {
		result = append(result, *a)
	}
	return result, nil
}

func (r *fakeJobRepo) ListApplicationsByWorker(ctx context.Context, workerID string) ([]ApplicationWithListing, error) {
	var result []ApplicationWithListing
	for listingID, byApplicant := range r.applications {
		application, ok := byApplicant[workerID]
		if !ok {
			continue
		}
		listing, ok := r.listings[listingID]
		if !ok {
			continue
		}
		result = append(result, ApplicationWithListing{Application: *application, Listing: *listing})
	}
	return result, nil
}

func (r *fakeJobRepo) AcceptApplication(ctx context.Context, listingID, applicantID, verificationCode string) error {
	application, ok := r.applications[listingID][applicantID]
	if !ok {
		return ErrApplicationNotFound
	}
	application.Status = ApplicationAccepted
	application.VerificationCode = &verificationCode
	return nil
}

func (r *fakeJobRepo) MarkApplicationAttended(ctx context.Context, listingID, applicantID string) error {
	application, ok := r.applications[listingID][applicantID]
	if !ok {
		return ErrApplicationNotFound
	}
	application.Attended = true
	return nil
}

func (r *fakeJobRepo) DeleteApplicationsByListing(ctx context.Context, listingID string) error {
	delete(r.applications, listingID)
	return nil
}

func (r *fakeJobRepo) IncrementApplicantCount(ctx context.Context, listingID string, delta int) error {
	listing, ok := r.listings[listingID]
	if !ok {
		return ErrListingNotFound
	}
	listing.ApplicantCount += delta
	return nil
}

func (r *fakeJobRepo) GetBusinessRef(ctx context.Context, businessID string) (*BusinessRef, error) {
	b, ok := r.businesses[businessID]
	if !ok {
		return nil, ErrBusinessNotFound
	}
	ref := b.ref
	return &ref, nil
}

func (r *fakeJobRepo) IncrementBusinessListings(ctx context.Context, businessID string, delta int) error {
	b, ok := r.businesses[businessID]
	if !ok {
		return ErrBusinessNotFound
	}
	b.listings += delta
	if b.listings < 0 {
		b.listings = 0
	}
	return nil
}

func (r *fakeJobRepo) IncrementWorkerStats(ctx context.Context, userID string, shifts int, hours float64) error {
	if r.stats[userID] == nil {
		r.stats[userID] = &fakeStats{}
	}
	r.stats[userID].shifts += shifts
	r.stats[userID].hours += hours
	return nil
}

type notifierEvent struct {
	kind        string
	recipientID string
	jobID       string
}

type fakeNotifier struct {
	events []notifierEvent
}

func (n *fakeNotifier) JobApplication(_ context.Context, recipientID, jobID, _, _ string) {
	n.events = append(n.events, notifierEvent{"job_application", recipientID, jobID})
}

func (n *fakeNotifier) JobAccepted(_ context.Context, recipientID, jobID, _, _ string) {
	n.events = append(n.events, notifierEvent{"job_accepted", recipientID, jobID})
}

func (n *fakeNotifier) JobCompleted(_ context.Context, recipientID, jobID, _, _ string) {
	n.events = append(n.events, notifierEvent{"job_completed", recipientID, jobID})
}

func (n *fakeNotifier) JobAutoClosed(_ context.Context, recipientID, jobID, _, _ string) {
	n.events = append(n.events, notifierEvent{"job_auto_closed", recipientID, jobID})
}

var testNow = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeJobRepo) (*Service, *fakeNotifier) {
	svc := NewService(repo, Config{
		MinimumWage:       12.21,
		MinLeadTime:       time.Hour,
		ClosingSoonWindow: time.Hour,
	})
	svc.now = func() time.Time { return testNow }

	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)
	return svc, notifier
}

func validInput() CreateListingInput {
	return CreateListingInput{
		JobTitle:     "Bartender",
		StartOfShift: testNow.Add(3 * time.Hour),
		EndOfShift:   testNow.Add(9 * time.Hour),
		PayRate:      14.50,
	}
}

func TestCreateListingSuccess(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	listing, err := svc.CreateListing(context.Background(), "owner-1", "biz-1", validInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if listing.Status != StatusOpen {
		t.Fatalf("expected status Open, got %q", listing.Status)
	}
	if listing.ApplicantCount != 0 {
		t.Fatalf("expected applicant count 0, got %d", listing.ApplicantCount)
	}
	if repo.businesses["biz-1"].listings != 1 {
		t.Fatalf("expected business counter 1, got %d", repo.businesses["biz-1"].listings)
	}
}

func TestCreateListingInsufficientLead(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	input := validInput()
	input.StartOfShift = testNow.Add(30 * time.Minute)
	input.EndOfShift = testNow.Add(8 * time.Hour)

	_, err := svc.CreateListing(context.Background(), "owner-1", "biz-1", input)
	if !errors.Is(err, ErrInsufficientLead) {
		t.Fatalf("expected ErrInsufficientLead, got %v", err)
	}
	if len(repo.listings) != 0 {
		t.Fatalf("expected no listing created")
	}
}

func TestCreateListingBelowMinimumWage(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	input := validInput()
	input.PayRate = 10.00

	_, err := svc.CreateListing(context.Background(), "owner-1", "biz-1", input)
	if !errors.Is(err, ErrBelowMinimumWage) {
		t.Fatalf("expected ErrBelowMinimumWage, got %v", err)
	}
}

func TestCreateListingShiftOrder(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	input := validInput()
	input.EndOfShift = input.StartOfShift.Add(-time.Hour)

	_, err := svc.CreateListing(context.Background(), "owner-1", "biz-1", input)
	if !errors.Is(err, ErrShiftOrder) {
		t.Fatalf("expected ErrShiftOrder, got %v", err)
	}
}

func TestCreateListingUnknownTitle(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	input := validInput()
	input.JobTitle = "Astronaut"

	_, err := svc.CreateListing(context.Background(), "owner-1", "biz-1", input)
	if !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestCreateListingNotOwner(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	_, err := svc.CreateListing(context.Background(), "intruder", "biz-1", validInput())
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func createOpenListing(t *testing.T, svc *Service, repo *fakeJobRepo) *JobListing {
	t.Helper()
	repo.addBusiness("biz-1", "owner-1", true)
	listing, err := svc.CreateListing(context.Background(), "owner-1", "biz-1", validInput())
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

func TestApplyDefaultsToListingTerms(t *testing.T) {
	repo := newFakeJobRepo()
	svc, notifier := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	application, err := svc.Apply(context.Background(), "worker-1", listing.ID, ApplyInput{Message: "I can be there early"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if application.PayRate != listing.PayRate {
		t.Fatalf("expected pay rate defaulted to %v, got %v", listing.PayRate, application.PayRate)
	}
	if !application.StartOfShift.Equal(listing.StartOfShift) || !application.EndOfShift.Equal(listing.EndOfShift) {
		t.Fatalf("expected shift times defaulted to listing's")
	}
	if application.Status != ApplicationApplied {
		t.Fatalf("expected status Applied, got %q", application.Status)
	}

	updated, _ := repo.GetListing(context.Background(), listing.ID)
	if updated.ApplicantCount != 1 {
		t.Fatalf("expected applicant count 1, got %d", updated.ApplicantCount)
	}
	if len(notifier.events) != 1 || notifier.events[0].kind != "job_application" || notifier.events[0].recipientID != "owner-1" {
		t.Fatalf("expected job_application notification to owner, got %+v", notifier.events)
	}
}

func TestApplyProposedTerms(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	rate := 16.00
	start := listing.StartOfShift.Add(time.Hour)
	end := listing.EndOfShift
	application, err := svc.Apply(context.Background(), "worker-1", listing.ID, ApplyInput{
		PayRate:      &rate,
		StartOfShift: &start,
		EndOfShift:   &end,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if application.PayRate != 16.00 {
		t.Fatalf("expected proposed rate, got %v", application.PayRate)
	}
	if !application.StartOfShift.Equal(start) {
		t.Fatalf("expected proposed start time")
	}
}

func TestApplyTwiceRejected(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	if _, err := svc.Apply(context.Background(), "worker-1", listing.ID, ApplyInput{}); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	_, err := svc.Apply(context.Background(), "worker-1", listing.ID, ApplyInput{})
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}

	updated, _ := repo.GetListing(context.Background(), listing.ID)
	if updated.ApplicantCount != 1 {
		t.Fatalf("expected applicant count unchanged at 1, got %d", updated.ApplicantCount)
	}
}

func TestApplyOwnListingRejected(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	_, err := svc.Apply(context.Background(), "owner-1", listing.ID, ApplyInput{})
	if !errors.Is(err, ErrOwnListing) {
		t.Fatalf("expected ErrOwnListing, got %v", err)
	}
}

func TestAcceptApplication(t *testing.T) {
	repo := newFakeJobRepo()
	svc, notifier := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	if _, err := svc.Apply(context.Background(), "worker-a", listing.ID, ApplyInput{}); err != nil {
		t.Fatalf("apply a: %v", err)
	}
	if _, err := svc.Apply(context.Background(), "worker-b", listing.ID, ApplyInput{}); err != nil {
		t.Fatalf("apply b: %v", err)
	}

	result, err := svc.AcceptApplication(context.Background(), "owner-1", listing.ID, "worker-a")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != StatusFilled {
		t.Fatalf("expected status Filled, got %q", result.Status)
	}
	if result.AcceptedUserID == nil || *result.AcceptedUserID != "worker-a" {
		t.Fatalf("expected accepted user worker-a, got %v", result.AcceptedUserID)
	}
	if result.VerificationCode == nil || len(*result.VerificationCode) != 6 {
		t.Fatalf("expected 6-digit verification code, got %v", result.VerificationCode)
	}
	for _, c := range *result.VerificationCode {
		if c < '0' || c > '9' {
			t.Fatalf("expected numeric code, got %q", *result.VerificationCode)
		}
	}

	application, _ := repo.GetApplication(context.Background(), listing.ID, "worker-a")
	if application.Status != ApplicationAccepted {
		t.Fatalf("expected application Accepted, got %q", application.Status)
	}
	if application.VerificationCode == nil || *application.VerificationCode != *result.VerificationCode {
		t.Fatalf("expected code copied onto application")
	}

	last := notifier.events[len(notifier.events)-1]
	if last.kind != "job_accepted" || last.recipientID != "worker-a" {
		t.Fatalf("expected job_accepted notification to worker-a, got %+v", last)
	}

	// Second accept on the same listing must lose.
	_, err = svc.AcceptApplication(context.Background(), "owner-1", listing.ID, "worker-b")
	if !errors.Is(err, ErrJobNotOpen) {
		t.Fatalf("expected ErrJobNotOpen, got %v", err)
	}
	current, _ := repo.GetListing(context.Background(), listing.ID)
	if *current.AcceptedUserID != "worker-a" {
		t.Fatalf("expected worker-a to stay accepted, got %q", *current.AcceptedUserID)
	}
}

func TestAcceptApplicationNotOwner(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	if _, err := svc.Apply(context.Background(), "worker-a", listing.ID, ApplyInput{}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	_, err := svc.AcceptApplication(context.Background(), "intruder", listing.ID, "worker-a")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func acceptWorker(t *testing.T, svc *Service, repo *fakeJobRepo) (*JobListing, string) {
	t.Helper()
	listing := createOpenListing(t, svc, repo)
	if _, err := svc.Apply(context.Background(), "worker-a", listing.ID, ApplyInput{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	filled, err := svc.AcceptApplication(context.Background(), "owner-1", listing.ID, "worker-a")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	return filled, *filled.VerificationCode
}

func TestVerifyAttendanceSuccess(t *testing.T) {
	repo := newFakeJobRepo()
	svc, notifier := newTestService(repo)
	filled, code := acceptWorker(t, svc, repo)

	result, err := svc.VerifyAttendance(context.Background(), "owner-1", filled.ID, code)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("expected status Completed, got %q", result.Status)
	}
	if !result.ApplicantAttended {
		t.Fatalf("expected applicant attended")
	}

	application, _ := repo.GetApplication(context.Background(), filled.ID, "worker-a")
	if !application.Attended {
		t.Fatalf("expected application attended")
	}

	stats := repo.stats["worker-a"]
	if stats == nil || stats.shifts != 1 {
		t.Fatalf("expected 1 shift recorded, got %+v", stats)
	}
	if stats.hours != 6 {
		t.Fatalf("expected 6 hours recorded, got %v", stats.hours)
	}

	last := notifier.events[len(notifier.events)-1]
	if last.kind != "job_completed" || last.recipientID != "worker-a" {
		t.Fatalf("expected job_completed notification, got %+v", last)
	}
}

func TestVerifyAttendanceIdempotent(t *testing.T) {
	repo := newFakeJobRepo()
	svc, notifier := newTestService(repo)
	filled, code := acceptWorker(t, svc, repo)

	if _, err := svc.VerifyAttendance(context.Background(), "owner-1", filled.ID, code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	eventsAfterFirst := len(notifier.events)

	result, err := svc.VerifyAttendance(context.Background(), "owner-1", filled.ID, code)
	if err != nil {
		t.Fatalf("repeat verify should succeed, got %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("expected status Completed, got %q", result.Status)
	}

	if repo.stats["worker-a"].shifts != 1 {
		t.Fatalf("expected stats incremented exactly once, got %d", repo.stats["worker-a"].shifts)
	}
	if len(notifier.events) != eventsAfterFirst {
		t.Fatalf("expected no extra notification on repeat verify")
	}
}

func TestVerifyAttendanceWrongCode(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	filled, code := acceptWorker(t, svc, repo)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	_, err := svc.VerifyAttendance(context.Background(), "owner-1", filled.ID, wrong)
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}

	current, _ := repo.GetListing(context.Background(), filled.ID)
	if current.Status != StatusFilled {
		t.Fatalf("expected listing to stay Filled, got %q", current.Status)
	}
	if repo.stats["worker-a"] != nil {
		t.Fatalf("expected no stats recorded")
	}
}

func TestVerifyAttendanceBeforeAccept(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	_, err := svc.VerifyAttendance(context.Background(), "owner-1", listing.ID, "123456")
	if !errors.Is(err, ErrJobNotFilled) {
		t.Fatalf("expected ErrJobNotFilled, got %v", err)
	}
}

func TestDeleteListing(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	if _, err := svc.Apply(context.Background(), "worker-1", listing.ID, ApplyInput{}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if err := svc.DeleteListing(context.Background(), "owner-1", listing.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := repo.listings[listing.ID]; ok {
		t.Fatalf("expected listing deleted")
	}
	if _, ok := repo.applications[listing.ID]; ok {
		t.Fatalf("expected applications deleted")
	}
	if repo.businesses["biz-1"].listings != 0 {
		t.Fatalf("expected business counter back to 0, got %d", repo.businesses["biz-1"].listings)
	}
}

func TestCloseListingManual(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	listing := createOpenListing(t, svc, repo)

	result, err := svc.CloseListing(context.Background(), "owner-1", listing.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != StatusClosed {
		t.Fatalf("expected status Closed, got %q", result.Status)
	}

	_, err = svc.CloseListing(context.Background(), "owner-1", listing.ID)
	if !errors.Is(err, ErrJobNotOpen) {
		t.Fatalf("expected ErrJobNotOpen on second close, got %v", err)
	}
}

func TestCloseExpired(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, notifier := newTestService(repo)

	repo.listings["past"] = &JobListing{
		ID: "past", BusinessID: "biz-1", BusinessOwnerID: "owner-1",
		JobTitle: "Bartender", Status: StatusOpen,
		StartOfShift: testNow.Add(-10 * time.Minute), EndOfShift: testNow.Add(6 * time.Hour),
	}
	repo.listings["future"] = &JobListing{
		ID: "future", BusinessID: "biz-1", BusinessOwnerID: "owner-1",
		JobTitle: "Waiter", Status: StatusOpen,
		StartOfShift: testNow.Add(2 * time.Hour), EndOfShift: testNow.Add(8 * time.Hour),
	}
	accepted := "worker-a"
	repo.listings["filled"] = &JobListing{
		ID: "filled", BusinessID: "biz-1", BusinessOwnerID: "owner-1",
		JobTitle: "Chef", Status: StatusFilled, AcceptedUserID: &accepted,
		StartOfShift: testNow.Add(-time.Hour), EndOfShift: testNow.Add(5 * time.Hour),
	}

	closed, err := svc.CloseExpired(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 listing closed, got %d", closed)
	}
	if repo.listings["past"].Status != StatusClosed {
		t.Fatalf("expected past listing Closed, got %q", repo.listings["past"].Status)
	}
	if repo.listings["future"].Status != StatusOpen {
		t.Fatalf("expected future listing untouched")
	}
	if repo.listings["filled"].Status != StatusFilled {
		t.Fatalf("expected filled listing untouched")
	}
	if len(notifier.events) != 1 || notifier.events[0].kind != "job_auto_closed" {
		t.Fatalf("expected one job_auto_closed notification, got %+v", notifier.events)
	}
}

func TestWorkerApplicationBuckets(t *testing.T) {
	repo := newFakeJobRepo()
	repo.addBusiness("biz-1", "owner-1", true)
	svc, _ := newTestService(repo)

	accepted := "me"
	repo.listings["open"] = &JobListing{ID: "open", BusinessID: "biz-1", BusinessOwnerID: "owner-1", Status: StatusOpen}
	repo.listings["won"] = &JobListing{ID: "won", BusinessID: "biz-1", BusinessOwnerID: "owner-1", Status: StatusFilled, AcceptedUserID: &accepted}
	repo.listings["lost"] = &JobListing{ID: "lost", BusinessID: "biz-1", BusinessOwnerID: "owner-1", Status: StatusFilled}

	repo.applications["open"] = map[string]*JobApplication{"me": {ListingID: "open", ApplicantID: "me", Status: ApplicationApplied}}
	repo.applications["won"] = map[string]*JobApplication{"me": {ListingID: "won", ApplicantID: "me", Status: ApplicationAccepted}}
	repo.applications["lost"] = map[string]*JobApplication{"me": {ListingID: "lost", ApplicantID: "me", Status: ApplicationApplied}}

	buckets, err := svc.WorkerApplications(context.Background(), "me")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(buckets.Active) != 1 || buckets.Active[0].Listing.ID != "open" {
		t.Fatalf("expected open listing in Active, got %+v", buckets.Active)
	}
	if len(buckets.Accepted) != 1 || buckets.Accepted[0].Listing.ID != "won" {
		t.Fatalf("expected won listing in Accepted, got %+v", buckets.Accepted)
	}
	if len(buckets.Rejected) != 1 || buckets.Rejected[0].Listing.ID != "lost" {
		t.Fatalf("expected lost listing in Rejected, got %+v", buckets.Rejected)
	}
}

func TestUpdateDescriptionLockedAfterCompletion(t *testing.T) {
	repo := newFakeJobRepo()
	svc, _ := newTestService(repo)
	filled, code := acceptWorker(t, svc, repo)

	if _, err := svc.VerifyAttendance(context.Background(), "owner-1", filled.ID, code); err != nil {
		t.Fatalf("verify: %v", err)
	}

	_, err := svc.UpdateDescription(context.Background(), "owner-1", filled.ID, "changed")
	if !errors.Is(err, ErrJobNotOpen) {
		t.Fatalf("expected ErrJobNotOpen, got %v", err)
	}
}

func TestClosingSoonFlag(t *testing.T) {
	listing := JobListing{Status: StatusOpen, StartOfShift: testNow.Add(30 * time.Minute)}
	if !listing.ClosingSoon(testNow, time.Hour) {
		t.Fatalf("expected closing soon within the window")
	}

	listing.StartOfShift = testNow.Add(3 * time.Hour)
	if listing.ClosingSoon(testNow, time.Hour) {
		t.Fatalf("expected not closing soon outside the window")
	}

	listing.Status = StatusFilled
	listing.StartOfShift = testNow.Add(30 * time.Minute)
	if listing.ClosingSoon(testNow, time.Hour) {
		t.Fatalf("expected closing soon to apply only to open listings")
	}
}
