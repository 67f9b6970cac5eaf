package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption-api/internal/domain/animals"
	"pet-adoption-api/internal/domain/users"
)

type animalsRepo struct {
	store *Store
}

func NewAnimalsRepo(store *Store) animals.Repository {
	return &animalsRepo{store: store}
}

func (r *animalsRepo) Create(ctx context.Context, a animals.Animal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.store.animals[a.ID]; exists {
		return errors.New("animal already exists")
	}
	r.store.animals[a.ID] = a
	return nil
}

func (r *animalsRepo) Update(ctx context.Context, a animals.Animal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.animals[a.ID]; !exists {
		return animals.ErrNotFound
	}
	r.store.animals[a.ID] = a
	return nil
}

func (r *animalsRepo) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.animals[id]; !exists {
		return animals.ErrNotFound
	}
	delete(r.store.animals, id)
	for imgID, img := range r.store.images {
		if img.AnimalID == id {
			delete(r.store.images, imgID)
		}
	}
	for vID, v := range r.store.vaccinations {
		if v.AnimalID == id {
			delete(r.store.vaccinations, vID)
		}
	}
	return nil
}

func (r *animalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.animals[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalsRepo) GetDetail(ctx context.Context, id string) (animals.Detail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.animals[id]
	if !ok {
		return animals.Detail{}, animals.ErrNotFound
	}

	d := animals.Detail{
		Animal:       a,
		Images:       r.imagesOf(id),
		Vaccinations: make([]animals.Vaccination, 0),
		Creator:      r.contactOf(a.CreatedByID),
	}
	for _, v := range r.store.vaccinations {
		if v.AnimalID == id {
			d.Vaccinations = append(d.Vaccinations, v)
		}
	}
	sort.Slice(d.Vaccinations, func(i, j int) bool {
		return d.Vaccinations[i].Date.After(d.Vaccinations[j].Date)
	})
	return d, nil
}

func (r *animalsRepo) List(ctx context.Context, q animals.ListQuery) ([]animals.Summary, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]animals.Animal, 0, len(r.store.animals))
	for _, a := range r.store.animals {
		if matchesFilter(a, q.Filter) {
			matched = append(matched, a)
		}
	}

	sortAnimals(matched, q.SortColumn, q.Order)

	total := len(matched)
	if q.Offset >= total {
		return []animals.Summary{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}

	out := make([]animals.Summary, 0, end-q.Offset)
	for _, a := range matched[q.Offset:end] {
		s := animals.Summary{Animal: a, Creator: r.contactOf(a.CreatedByID)}
		for _, img := range r.imagesOf(a.ID) {
			if img.IsPrimary {
				cp := img
				s.PrimaryImage = &cp
				break
			}
		}
		out = append(out, s)
	}
	return out, total, nil
}

func matchesFilter(a animals.Animal, f animals.Filter) bool {
	if f.Species != "" && a.Species != f.Species {
		return false
	}
	if f.Gender != "" && a.Gender != f.Gender {
		return false
	}
	if f.Size != "" && a.Size != f.Size {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Breed != "" && !containsFold(a.Breed, f.Breed) {
		return false
	}
	if f.Location != "" && !containsFold(a.Location, f.Location) {
		return false
	}
	if f.Search != "" &&
		!containsFold(a.Name, f.Search) &&
		!containsFold(a.Breed, f.Search) &&
		!containsFold(a.Description, f.Search) {
		return false
	}
	if f.AgeMin != nil && (a.AgeMonths == nil || *a.AgeMonths < *f.AgeMin) {
		return false
	}
	if f.AgeMax != nil && (a.AgeMonths == nil || *a.AgeMonths > *f.AgeMax) {
		return false
	}
	if f.GoodWithKids && !a.GoodWithKids {
		return false
	}
	if f.GoodWithDogs && !a.GoodWithDogs {
		return false
	}
	if f.GoodWithCats && !a.GoodWithCats {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sortAnimals replica el ORDER BY de Postgres sobre el slice; column ya
// viene del allowlist del dominio.
func sortAnimals(list []animals.Animal, column, order string) {
	less := func(a, b animals.Animal) bool {
		switch column {
		case "name":
			return a.Name < b.Name
		case "species":
			return a.Species < b.Species
		case "breed":
			return a.Breed < b.Breed
		case "age_months":
			av, bv := 0, 0
			if a.AgeMonths != nil {
				av = *a.AgeMonths
			}
			if b.AgeMonths != nil {
				bv = *b.AgeMonths
			}
			return av < bv
		case "size":
			return a.Size < b.Size
		case "adoption_fee":
			return a.AdoptionFee < b.AdoptionFee
		case "adoption_status":
			return a.Status < b.Status
		case "location":
			return a.Location < b.Location
		case "featured":
			return !a.Featured && b.Featured
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default: // created_at
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if order == "DESC" {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		// desempate por id, como el ORDER BY secundario de SQL
		return a.ID < b.ID
	})
}

func (r *animalsRepo) AddImage(ctx context.Context, img animals.Image) (animals.Image, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.animals[img.AnimalID]; !ok {
		return animals.Image{}, animals.ErrNotFound
	}

	existing := r.imagesOf(img.AnimalID)
	if len(existing) == 0 {
		img.IsPrimary = true
	} else if img.IsPrimary {
		for id, other := range r.store.images {
			if other.AnimalID == img.AnimalID && other.IsPrimary {
				other.IsPrimary = false
				r.store.images[id] = other
			}
		}
	}

	r.store.images[img.ID] = img
	return img, nil
}

func (r *animalsRepo) GetImage(ctx context.Context, animalID, imageID string) (animals.Image, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	img, ok := r.store.images[imageID]
	if !ok || img.AnimalID != animalID {
		return animals.Image{}, animals.ErrImageNotFound
	}
	return img, nil
}

func (r *animalsRepo) ListImages(ctx context.Context, animalID string) ([]animals.Image, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.imagesOf(animalID), nil
}

func (r *animalsRepo) DeleteImage(ctx context.Context, animalID, imageID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	img, ok := r.store.images[imageID]
	if !ok || img.AnimalID != animalID {
		return animals.ErrImageNotFound
	}
	delete(r.store.images, imageID)

	if !img.IsPrimary {
		return nil
	}
	rest := r.imagesOf(animalID)
	if len(rest) > 0 {
		promoted := rest[0]
		promoted.IsPrimary = true
		r.store.images[promoted.ID] = promoted
	}
	return nil
}

func (r *animalsRepo) AddVaccination(ctx context.Context, v animals.Vaccination) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.animals[v.AnimalID]; !ok {
		return animals.ErrNotFound
	}
	r.store.vaccinations[v.ID] = v
	return nil
}

// imagesOf asume el lock tomado; devuelve ordenado por (sort_order, created_at).
func (r *animalsRepo) imagesOf(animalID string) []animals.Image {
	out := make([]animals.Image, 0)
	for _, img := range r.store.images {
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
	return out
}

// contactOf asume el lock tomado.
func (r *animalsRepo) contactOf(userID string) users.Contact {
	u, ok := r.store.users[userID]
	if !ok {
		return users.Contact{ID: userID}
	}
	return users.Contact{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}
