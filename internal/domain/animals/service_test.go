package animals

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"pet-adoption-api/internal/domain/users"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/blob"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	animals map[string]Animal
	images  map[string]Image
	vaccs   map[string]Vaccination

	failAddImage error
}

func newTestRepo() *testRepo {
	return &testRepo{
		animals: map[string]Animal{},
		images:  map[string]Image{},
		vaccs:   map[string]Vaccination{},
	}
}

func (r *testRepo) Create(ctx context.Context, a Animal) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	r.animals[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Animal) error {
	if _, ok := r.animals[a.ID]; !ok {
		return ErrNotFound
	}
	r.animals[a.ID] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.animals[id]; !ok {
		return ErrNotFound
	}
	delete(r.animals, id)
	for imgID, img := range r.images {
		if img.AnimalID == id {
			delete(r.images, imgID)
		}
	}
	for vID, v := range r.vaccs {
		if v.AnimalID == id {
			delete(r.vaccs, vID)
		}
	}
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Animal, error) {
	a, ok := r.animals[id]
	if !ok {
		return Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) GetDetail(ctx context.Context, id string) (Detail, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	imgs, _ := r.ListImages(ctx, id)
	return Detail{Animal: a, Images: imgs, Vaccinations: nil, Creator: users.Contact{ID: a.CreatedByID}}, nil
}

func (r *testRepo) List(ctx context.Context, q ListQuery) ([]Summary, int, error) {
	all := make([]Animal, 0, len(r.animals))
	for _, a := range r.animals {
		if q.Filter.Species != "" && a.Species != q.Filter.Species {
			continue
		}
		if q.Filter.Status != "" && a.Status != q.Filter.Status {
			continue
		}
		all = append(all, a)
	}
	// orden estable por nombre, suficiente para los tests de paginación
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })

	total := len(all)
	if q.Offset >= total {
		return []Summary{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	out := make([]Summary, 0, end-q.Offset)
	for _, a := range all[q.Offset:end] {
		out = append(out, Summary{Animal: a, Creator: users.Contact{ID: a.CreatedByID}})
	}
	return out, total, nil
}

func (r *testRepo) AddImage(ctx context.Context, img Image) (Image, error) {
	if r.failAddImage != nil {
		return Image{}, r.failAddImage
	}
	existing, _ := r.ListImages(ctx, img.AnimalID)
	if len(existing) == 0 {
		img.IsPrimary = true
	} else if img.IsPrimary {
		for id, other := range r.images {
			if other.AnimalID == img.AnimalID && other.IsPrimary {
				other.IsPrimary = false
				r.images[id] = other
			}
		}
	}
	r.images[img.ID] = img
	return img, nil
}

func (r *testRepo) GetImage(ctx context.Context, animalID, imageID string) (Image, error) {
	img, ok := r.images[imageID]
	if !ok || img.AnimalID != animalID {
		return Image{}, ErrImageNotFound
	}
	return img, nil
}

func (r *testRepo) ListImages(ctx context.Context, animalID string) ([]Image, error) {
	out := make([]Image, 0)
	for _, img := range r.images {
		if img.AnimalID == animalID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *testRepo) DeleteImage(ctx context.Context, animalID, imageID string) error {
	img, err := r.GetImage(ctx, animalID, imageID)
	if err != nil {
		return err
	}
	delete(r.images, imageID)
	if !img.IsPrimary {
		return nil
	}
	rest, _ := r.ListImages(ctx, animalID)
	if len(rest) > 0 {
		promoted := rest[0]
		promoted.IsPrimary = true
		r.images[promoted.ID] = promoted
	}
	return nil
}

func (r *testRepo) AddVaccination(ctx context.Context, v Vaccination) error {
	r.vaccs[v.ID] = v
	return nil
}

// -------------------------
// Test blob store
// -------------------------

type testBlobStore struct {
	puts    map[string][]byte
	deleted []string

	failPut    error
	failDelete error
}

func newTestBlobStore() *testBlobStore {
	return &testBlobStore{puts: map[string][]byte{}}
}

func (s *testBlobStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if s.failPut != nil {
		return "", s.failPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.puts[key] = b
	return "https://blobs.test/" + key, nil
}

func (s *testBlobStore) Delete(ctx context.Context, key string) error {
	if s.failDelete != nil {
		return s.failDelete
	}
	s.deleted = append(s.deleted, key)
	delete(s.puts, key)
	return nil
}

var _ blob.Store = (*testBlobStore)(nil)

// -------------------------
// Helpers
// -------------------------

func newTestService(repo *testRepo, blobs *testBlobStore) *Service {
	return NewService(repo, blobs, logger.New(logger.Options{Level: logger.Error}))
}

func ownerClaims(id string) auth.Claims {
	return auth.Claims{UserID: id, Role: auth.RoleUser}
}

func adminClaims() auth.Claims {
	return auth.Claims{UserID: "admin-1", Role: auth.RoleAdmin}
}

func isValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_ForcesAvailableStatus(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Luna",
		Species: "cat",
		Gender:  "female",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if a.Status != StatusAvailable {
		t.Fatalf("expected status available, got %s", a.Status)
	}
	if a.CreatedByID != "user-1" {
		t.Fatalf("expected creator user-1, got %s", a.CreatedByID)
	}
	if a.CreatedAt != now || a.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestService_Create_RejectsUnknownEnums(t *testing.T) {
	svc := newTestService(newTestRepo(), newTestBlobStore())

	cases := []CreateInput{
		{Name: "X", Species: "dragon", Gender: "male"},
		{Name: "X", Species: "dog", Gender: "unknown"},
		{Name: "X", Species: "dog", Gender: "male", Size: "gigantic"},
		{Name: "", Species: "dog", Gender: "male"},
	}
	for i, in := range cases {
		_, err := svc.Create(context.Background(), "user-1", in)
		if !isValidation(err) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestService_List_Pagination(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	for i := 0; i < 12; i++ {
		repo.animals[string(rune('a'+i))] = Animal{
			ID:      string(rune('a' + i)),
			Name:    string(rune('a' + i)),
			Species: SpeciesCat,
			Status:  StatusAvailable,
		}
	}

	page, err := svc.List(context.Background(), ListInput{
		Species: "cat",
		Page:    2,
		Limit:   5,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Count != 12 {
		t.Fatalf("expected count 12, got %d", page.Count)
	}
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page.TotalPages)
	}
	if page.CurrentPage != 2 {
		t.Fatalf("expected current page 2, got %d", page.CurrentPage)
	}
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(page.Items))
	}
	if page.Items[0].Name != "f" {
		t.Fatalf("expected page 2 to start at f, got %s", page.Items[0].Name)
	}
}

func TestService_List_DefaultsAndCaps(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	page, err := svc.List(context.Background(), ListInput{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.CurrentPage != 1 {
		t.Fatalf("expected default page 1, got %d", page.CurrentPage)
	}
	if page.TotalPages != 0 {
		t.Fatalf("expected 0 total pages on empty repo, got %d", page.TotalPages)
	}

	// limit fuera de rango se recorta, no es error
	if _, err := svc.List(context.Background(), ListInput{Limit: 5000}); err != nil {
		t.Fatalf("oversized limit should be capped, got error: %v", err)
	}
}

func TestService_List_RejectsBadInput(t *testing.T) {
	svc := newTestService(newTestRepo(), newTestBlobStore())

	cases := []ListInput{
		{Species: "dragon"},
		{Gender: "robot"},
		{Status: "lost"},
		{Sort: "password"},
		{Order: "sideways"},
		{Page: -1},
		{Limit: -5},
	}
	for i, in := range cases {
		_, err := svc.List(context.Background(), in)
		if !isValidation(err) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestService_Update_OwnerOrAdminOnly(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	repo.animals["a1"] = Animal{ID: "a1", Name: "Rex", Species: SpeciesDog, Status: StatusAvailable, CreatedByID: "owner-1"}

	name := "Max"
	_, err := svc.Update(context.Background(), "a1", ownerClaims("stranger"), UpdateInput{Name: &name})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}

	a, err := svc.Update(context.Background(), "a1", ownerClaims("owner-1"), UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("owner update error: %v", err)
	}
	if a.Name != "Max" {
		t.Fatalf("expected renamed animal, got %s", a.Name)
	}

	featured := true
	a, err = svc.Update(context.Background(), "a1", adminClaims(), UpdateInput{Featured: &featured})
	if err != nil {
		t.Fatalf("admin update error: %v", err)
	}
	if !a.Featured {
		t.Fatalf("expected featured true after admin update")
	}
}

func TestService_Update_AdoptedIsNotSettableDirectly(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	repo.animals["a1"] = Animal{ID: "a1", Name: "Rex", Species: SpeciesDog, Status: StatusAvailable, CreatedByID: "owner-1"}

	st := "adopted"
	_, err := svc.Update(context.Background(), "a1", ownerClaims("owner-1"), UpdateInput{Status: &st})
	if !isValidation(err) {
		t.Fatalf("expected ValidationError setting adopted directly, got %v", err)
	}
}

func TestService_Update_LeavingAdoptedClearsAdopter(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	adopter := "user-9"
	when := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	repo.animals["a1"] = Animal{
		ID: "a1", Name: "Rex", Species: SpeciesDog, CreatedByID: "owner-1",
		Status: StatusAdopted, AdoptedByID: &adopter, AdoptionDate: &when,
	}

	st := "available"
	a, err := svc.Update(context.Background(), "a1", adminClaims(), UpdateInput{Status: &st})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if a.Status != StatusAvailable {
		t.Fatalf("expected available, got %s", a.Status)
	}
	if a.AdoptedByID != nil || a.AdoptionDate != nil {
		t.Fatalf("expected adopter fields cleared, got %v / %v", a.AdoptedByID, a.AdoptionDate)
	}
}

func TestService_Delete_RemovesBlobsBestEffort(t *testing.T) {
	repo := newTestRepo()
	blobs := newTestBlobStore()
	svc := newTestService(repo, blobs)

	repo.animals["a1"] = Animal{ID: "a1", Name: "Rex", Species: SpeciesDog, CreatedByID: "owner-1"}
	repo.images["i1"] = Image{ID: "i1", AnimalID: "a1", StorageKey: "a1/i1.jpg", IsPrimary: true}
	repo.images["i2"] = Image{ID: "i2", AnimalID: "a1", StorageKey: "a1/i2.jpg"}

	if err := svc.Delete(context.Background(), "a1", ownerClaims("owner-1")); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := repo.animals["a1"]; ok {
		t.Fatalf("expected animal removed")
	}
	if len(blobs.deleted) != 2 {
		t.Fatalf("expected 2 blob deletions, got %d", len(blobs.deleted))
	}
}

func TestService_Delete_BlobFailureDoesNotFailDelete(t *testing.T) {
	repo := newTestRepo()
	blobs := newTestBlobStore()
	blobs.failDelete = errors.New("bucket on fire")
	svc := newTestService(repo, blobs)

	repo.animals["a1"] = Animal{ID: "a1", Name: "Rex", Species: SpeciesDog, CreatedByID: "owner-1"}
	repo.images["i1"] = Image{ID: "i1", AnimalID: "a1", StorageKey: "a1/i1.jpg", IsPrimary: true}

	if err := svc.Delete(context.Background(), "a1", ownerClaims("owner-1")); err != nil {
		t.Fatalf("expected metadata delete to succeed despite blob failure, got %v", err)
	}
}

func TestService_StateOf(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	repo.animals["a1"] = Animal{ID: "a1", CreatedByID: "owner-1", Status: StatusAvailable}

	owner, status, err := svc.StateOf(context.Background(), "a1")
	if err != nil {
		t.Fatalf("StateOf returned error: %v", err)
	}
	if owner != "owner-1" || status != "available" {
		t.Fatalf("unexpected state: %s / %s", owner, status)
	}

	if _, _, err := svc.StateOf(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_AddVaccination_Validates(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo, newTestBlobStore())

	repo.animals["a1"] = Animal{ID: "a1", CreatedByID: "owner-1"}

	_, err := svc.AddVaccination(context.Background(), "a1", ownerClaims("owner-1"), AddVaccinationInput{})
	if !isValidation(err) {
		t.Fatalf("expected ValidationError without name, got %v", err)
	}

	_, err = svc.AddVaccination(context.Background(), "a1", ownerClaims("stranger"), AddVaccinationInput{
		Name: "rabies", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	v, err := svc.AddVaccination(context.Background(), "a1", ownerClaims("owner-1"), AddVaccinationInput{
		Name: "  rabies ", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddVaccination returned error: %v", err)
	}
	if v.Name != "rabies" {
		t.Fatalf("expected trimmed name, got %q", v.Name)
	}
	if !strings.HasPrefix(v.AnimalID, "a1") {
		t.Fatalf("expected vaccination bound to a1, got %s", v.AnimalID)
	}
}
