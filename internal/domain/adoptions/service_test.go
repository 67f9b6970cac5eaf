package adoptions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pet-adoption-api/internal/ports/auth"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Adoption

	failCreate  error
	failApprove error

	// registro de la escritura dual para los asserts
	approvedAnimalID  string
	approvedAdopterID string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Adoption{}}
}

func (r *testRepo) Create(ctx context.Context, ad Adoption) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, other := range r.byID {
		if other.AnimalID == ad.AnimalID && other.ApplicantID == ad.ApplicantID && other.Status.active() {
			return ErrDuplicateApplication
		}
	}
	r.byID[ad.ID] = ad
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Adoption, error) {
	ad, ok := r.byID[id]
	if !ok {
		return Adoption{}, ErrNotFound
	}
	return ad, nil
}

func (r *testRepo) GetDetail(ctx context.Context, id string) (Detail, error) {
	ad, err := r.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Adoption:  ad,
		Animal:    AnimalRef{ID: ad.AnimalID},
		Applicant: Applicant{ID: ad.ApplicantID},
	}, nil
}

func (r *testRepo) ListByApplicant(ctx context.Context, applicantID string) ([]Detail, error) {
	out := make([]Detail, 0)
	for _, ad := range r.byID {
		if ad.ApplicantID == applicantID {
			out = append(out, Detail{Adoption: ad, Animal: AnimalRef{ID: ad.AnimalID}})
		}
	}
	return out, nil
}

func (r *testRepo) FindActive(ctx context.Context, animalID, applicantID string) (Adoption, error) {
	for _, ad := range r.byID {
		if ad.AnimalID == animalID && ad.ApplicantID == applicantID && ad.Status.active() {
			return ad, nil
		}
	}
	return Adoption{}, ErrNotFound
}

func (r *testRepo) UpdateStatus(ctx context.Context, ad Adoption) error {
	if _, ok := r.byID[ad.ID]; !ok {
		return ErrNotFound
	}
	r.byID[ad.ID] = ad
	return nil
}

func (r *testRepo) Approve(ctx context.Context, ad Adoption) error {
	if r.failApprove != nil {
		return r.failApprove
	}
	cur, ok := r.byID[ad.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != StatusPending {
		return ErrStaleState
	}
	r.byID[ad.ID] = ad
	r.approvedAnimalID = ad.AnimalID
	r.approvedAdopterID = ad.ApplicantID
	return nil
}

// -------------------------
// Test animal directory
// -------------------------

type testDirectory struct {
	// animalID -> (owner, status)
	owners   map[string]string
	statuses map[string]string
}

func newTestDirectory() *testDirectory {
	return &testDirectory{owners: map[string]string{}, statuses: map[string]string{}}
}

func (d *testDirectory) add(animalID, ownerID, status string) {
	d.owners[animalID] = ownerID
	d.statuses[animalID] = status
}

func (d *testDirectory) StateOf(ctx context.Context, animalID string) (string, string, error) {
	owner, ok := d.owners[animalID]
	if !ok {
		return "", "", ErrAnimalNotFound
	}
	return owner, d.statuses[animalID], nil
}

// -------------------------
// Helpers
// -------------------------

func userClaims(id string) auth.Claims {
	return auth.Claims{UserID: id, Role: auth.RoleUser}
}

func adminClaims() auth.Claims {
	return auth.Claims{UserID: "admin-1", Role: auth.RoleAdmin}
}

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func isConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_PendingWithDefaults(t *testing.T) {
	repo := newTestRepo()
	dir := newTestDirectory()
	dir.add("a1", "owner-1", "available")
	svc := NewService(repo, dir)

	now := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ad, err := svc.Create(context.Background(), "user-2", CreateInput{AnimalID: "a1", HomeType: "house"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if ad.Status != StatusPending {
		t.Fatalf("expected pending, got %s", ad.Status)
	}
	if ad.ApplicationDate != now {
		t.Fatalf("expected applicationDate = now")
	}
	if ad.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestService_Create_AnimalMissingOrAdopted(t *testing.T) {
	repo := newTestRepo()
	dir := newTestDirectory()
	dir.add("a1", "owner-1", "adopted")
	svc := NewService(repo, dir)

	_, err := svc.Create(context.Background(), "user-2", CreateInput{AnimalID: "missing"})
	if !errors.Is(err, ErrAnimalNotFound) {
		t.Fatalf("expected ErrAnimalNotFound, got %v", err)
	}

	_, err = svc.Create(context.Background(), "user-2", CreateInput{AnimalID: "a1"})
	if !isConflict(err) {
		t.Fatalf("expected ConflictError for adopted animal, got %v", err)
	}
}

func TestService_Create_DuplicateActiveApplication(t *testing.T) {
	repo := newTestRepo()
	dir := newTestDirectory()
	dir.add("a1", "owner-1", "available")
	svc := NewService(repo, dir)

	if _, err := svc.Create(context.Background(), "user-2", CreateInput{AnimalID: "a1"}); err != nil {
		t.Fatalf("first Create error: %v", err)
	}

	_, err := svc.Create(context.Background(), "user-2", CreateInput{AnimalID: "a1"})
	if !isConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	// el mensaje debe nombrar el estado existente
	if !strings.Contains(err.Error(), "pending") {
		t.Fatalf("expected message naming existing status, got %q", err.Error())
	}

	// otro aplicante sí puede aplicar
	if _, err := svc.Create(context.Background(), "user-3", CreateInput{AnimalID: "a1"}); err != nil {
		t.Fatalf("second applicant should be allowed: %v", err)
	}
}

func TestService_Create_RaceLostToConstraint(t *testing.T) {
	repo := newTestRepo()
	repo.failCreate = ErrDuplicateApplication
	dir := newTestDirectory()
	dir.add("a1", "owner-1", "available")
	svc := NewService(repo, dir)

	_, err := svc.Create(context.Background(), "user-2", CreateInput{AnimalID: "a1"})
	if !isConflict(err) {
		t.Fatalf("expected ConflictError on constraint race, got %v", err)
	}
}

func TestService_Create_ValidatesInput(t *testing.T) {
	dir := newTestDirectory()
	dir.add("a1", "owner-1", "available")
	svc := NewService(newTestRepo(), dir)

	hours := 30
	income := -5
	cases := []CreateInput{
		{},
		{AnimalID: "a1", HomeType: "castle"},
		{AnimalID: "a1", HoursAlonePerDay: &hours},
		{AnimalID: "a1", Income: &income},
		{AnimalID: "a1", References: []byte("{not json")},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), "user-2", in); !isValidation(err) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestService_GetByID_ApplicantOrAdminOnly(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: StatusPending}
	svc := NewService(repo, newTestDirectory())

	if _, err := svc.GetByID(context.Background(), "ad1", userClaims("user-2")); err != nil {
		t.Fatalf("applicant read error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "ad1", adminClaims()); err != nil {
		t.Fatalf("admin read error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "ad1", userClaims("stranger")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "nope", adminClaims()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_UpdateStatus_AdminOnly(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: StatusPending}
	svc := NewService(repo, newTestDirectory())

	_, err := svc.UpdateStatus(context.Background(), "ad1", userClaims("user-2"), UpdateStatusInput{Status: "approved"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
}

func TestService_UpdateStatus_Approve_UsesTransactionalPath(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: StatusPending}
	svc := NewService(repo, newTestDirectory())

	now := time.Date(2026, 4, 3, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ad, err := svc.UpdateStatus(context.Background(), "ad1", adminClaims(), UpdateStatusInput{Status: "approved"})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if ad.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", ad.Status)
	}
	if ad.ReviewedByID == nil || *ad.ReviewedByID != "admin-1" {
		t.Fatalf("expected reviewer recorded")
	}
	if ad.ReviewDate == nil || !ad.ReviewDate.Equal(now) {
		t.Fatalf("expected review date = now")
	}
	if repo.approvedAnimalID != "a1" || repo.approvedAdopterID != "user-2" {
		t.Fatalf("expected dual write through Approve, got %s/%s", repo.approvedAnimalID, repo.approvedAdopterID)
	}
}

func TestService_UpdateStatus_StaleStateBecomesConflict(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: StatusPending}
	repo.failApprove = ErrStaleState
	svc := NewService(repo, newTestDirectory())

	_, err := svc.UpdateStatus(context.Background(), "ad1", adminClaims(), UpdateStatusInput{Status: "approved"})
	if !isConflict(err) {
		t.Fatalf("expected ConflictError on stale state, got %v", err)
	}
}

func TestService_UpdateStatus_TransitionRules(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, newTestDirectory())

	cases := []struct {
		from Status
		to   string
		ok   bool
	}{
		{StatusPending, "approved", true},
		{StatusPending, "rejected", true},
		{StatusPending, "withdrawn", true},
		{StatusApproved, "completed", true},
		{StatusPending, "completed", false},
		{StatusRejected, "approved", false},
		{StatusWithdrawn, "pending", false},
		{StatusCompleted, "approved", false},
		{StatusApproved, "rejected", false},
	}
	for i, c := range cases {
		repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: c.from}
		_, err := svc.UpdateStatus(context.Background(), "ad1", adminClaims(), UpdateStatusInput{Status: c.to})
		if c.ok && err != nil {
			t.Fatalf("case %d: expected %s -> %s allowed, got %v", i, c.from, c.to, err)
		}
		if !c.ok && !isConflict(err) {
			t.Fatalf("case %d: expected ConflictError for %s -> %s, got %v", i, c.from, c.to, err)
		}
	}

	// valor fuera del enum es 400, no 409
	repo.byID["ad1"] = Adoption{ID: "ad1", Status: StatusPending}
	_, err := svc.UpdateStatus(context.Background(), "ad1", adminClaims(), UpdateStatusInput{Status: "abandoned"})
	if !isValidation(err) {
		t.Fatalf("expected ValidationError for unknown status, got %v", err)
	}
}

func TestService_UpdateStatus_CompletedSetsCompletionDate(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: StatusApproved}
	svc := NewService(repo, newTestDirectory())

	now := time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ad, err := svc.UpdateStatus(context.Background(), "ad1", adminClaims(), UpdateStatusInput{Status: "completed"})
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if ad.CompletionDate == nil || !ad.CompletionDate.Equal(now) {
		t.Fatalf("expected completion date = now")
	}
}

func TestService_Withdraw_ApplicantOnlyAndPendingOnly(t *testing.T) {
	repo := newTestRepo()
	repo.byID["ad1"] = Adoption{ID: "ad1", AnimalID: "a1", ApplicantID: "user-2", Status: StatusPending}
	svc := NewService(repo, newTestDirectory())

	if _, err := svc.Withdraw(context.Background(), "ad1", userClaims("stranger")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	ad, err := svc.Withdraw(context.Background(), "ad1", userClaims("user-2"))
	if err != nil {
		t.Fatalf("Withdraw returned error: %v", err)
	}
	if ad.Status != StatusWithdrawn {
		t.Fatalf("expected withdrawn, got %s", ad.Status)
	}

	// ya no está pending
	if _, err := svc.Withdraw(context.Background(), "ad1", userClaims("user-2")); !isConflict(err) {
		t.Fatalf("expected ConflictError withdrawing twice, got %v", err)
	}
}
