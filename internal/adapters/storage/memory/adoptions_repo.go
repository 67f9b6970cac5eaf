package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption-api/internal/domain/adoptions"
	"pet-adoption-api/internal/domain/animals"
)

type adoptionsRepo struct {
	store *Store
}

func NewAdoptionsRepo(store *Store) adoptions.Repository {
	return &adoptionsRepo{store: store}
}

func (r *adoptionsRepo) Create(ctx context.Context, ad adoptions.Adoption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(ad.ID) == "" {
		return errors.New("adoption id required")
	}
	for _, other := range r.store.adoptions {
		if other.AnimalID == ad.AnimalID && other.ApplicantID == ad.ApplicantID &&
			(other.Status == adoptions.StatusPending || other.Status == adoptions.StatusApproved) {
			return adoptions.ErrDuplicateApplication
		}
	}
	r.store.adoptions[ad.ID] = ad
	return nil
}

func (r *adoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Adoption, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ad, ok := r.store.adoptions[id]
	if !ok {
		return adoptions.Adoption{}, adoptions.ErrNotFound
	}
	return ad, nil
}

func (r *adoptionsRepo) GetDetail(ctx context.Context, id string) (adoptions.Detail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ad, ok := r.store.adoptions[id]
	if !ok {
		return adoptions.Detail{}, adoptions.ErrNotFound
	}
	return r.detailOf(ad), nil
}

func (r *adoptionsRepo) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.Detail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]adoptions.Detail, 0)
	for _, ad := range r.store.adoptions {
		if ad.ApplicantID == applicantID {
			out = append(out, r.detailOf(ad))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ApplicationDate.After(out[j].ApplicationDate)
	})
	return out, nil
}

func (r *adoptionsRepo) FindActive(ctx context.Context, animalID, applicantID string) (adoptions.Adoption, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, ad := range r.store.adoptions {
		if ad.AnimalID == animalID && ad.ApplicantID == applicantID &&
			(ad.Status == adoptions.StatusPending || ad.Status == adoptions.StatusApproved) {
			return ad, nil
		}
	}
	return adoptions.Adoption{}, adoptions.ErrNotFound
}

func (r *adoptionsRepo) UpdateStatus(ctx context.Context, ad adoptions.Adoption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.adoptions[ad.ID]; !ok {
		return adoptions.ErrNotFound
	}
	r.store.adoptions[ad.ID] = ad
	return nil
}

// Approve replica la transacción de Postgres: los re-chequeos y las dos
// escrituras pasan bajo el mismo lock.
func (r *adoptionsRepo) Approve(ctx context.Context, ad adoptions.Adoption) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cur, ok := r.store.adoptions[ad.ID]
	if !ok {
		return adoptions.ErrNotFound
	}
	if cur.Status != adoptions.StatusPending {
		return adoptions.ErrStaleState
	}

	a, ok := r.store.animals[ad.AnimalID]
	if !ok {
		return adoptions.ErrAnimalNotFound
	}
	if a.Status == animals.StatusAdopted {
		return adoptions.ErrStaleState
	}

	r.store.adoptions[ad.ID] = ad

	adopter := ad.ApplicantID
	a.Status = animals.StatusAdopted
	a.AdoptedByID = &adopter
	a.AdoptionDate = ad.ReviewDate
	a.UpdatedAt = ad.UpdatedAt
	r.store.animals[a.ID] = a

	return nil
}

// detailOf asume el lock tomado.
func (r *adoptionsRepo) detailOf(ad adoptions.Adoption) adoptions.Detail {
	d := adoptions.Detail{
		Adoption:  ad,
		Animal:    adoptions.AnimalRef{ID: ad.AnimalID},
		Applicant: adoptions.Applicant{ID: ad.ApplicantID},
	}

	if a, ok := r.store.animals[ad.AnimalID]; ok {
		d.Animal = adoptions.AnimalRef{
			ID:      a.ID,
			Name:    a.Name,
			Species: string(a.Species),
			Breed:   a.Breed,
			Status:  string(a.Status),
		}
		for _, img := range r.store.images {
			if img.AnimalID == a.ID && img.IsPrimary {
				d.Animal.PrimaryImageURL = img.URL
				break
			}
		}
	}
	if u, ok := r.store.users[ad.ApplicantID]; ok {
		d.Applicant = adoptions.Applicant{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
	}
	return d
}
