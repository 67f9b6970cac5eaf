package adoptions

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"pet-adoption-api/internal/ports/auth"

	"github.com/google/uuid"
)

// El animal queda bloqueado para nuevas solicitudes solo cuando ya fue
// adoptado; pending/fostered siguen aceptando aplicaciones.
const animalAdopted = "adopted"

type Service struct {
	repo    Repository
	animals AnimalDirectory
	now     func() time.Time
}

func NewService(repo Repository, animals AnimalDirectory) *Service {
	return &Service{
		repo:    repo,
		animals: animals,
		now:     time.Now,
	}
}

type CreateInput struct {
	AnimalID string

	HomeType             string
	HasYard              *bool
	HasChildren          *bool
	HasOtherPets         *bool
	OtherPetsDescription string
	HoursAlonePerDay     *int
	Income               *int
	Experience           string
	Reason               string
	References           json.RawMessage
	AdditionalInfo       string
}

func (s *Service) Create(ctx context.Context, applicantID string, in CreateInput) (Adoption, error) {
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return Adoption{}, validationf("applicant is required")
	}
	animalID := strings.TrimSpace(in.AnimalID)
	if animalID == "" {
		return Adoption{}, validationf("animal_id is required")
	}

	var homeType HomeType
	if v := strings.TrimSpace(in.HomeType); v != "" {
		homeType = HomeType(v)
		if _, ok := validHomeTypes[homeType]; !ok {
			return Adoption{}, validationf("invalid home_type %q", v)
		}
	}
	if in.HoursAlonePerDay != nil && (*in.HoursAlonePerDay < 0 || *in.HoursAlonePerDay > 24) {
		return Adoption{}, validationf("hours_alone_per_day must be between 0 and 24")
	}
	if in.Income != nil && *in.Income < 0 {
		return Adoption{}, validationf("income must be >= 0")
	}
	if len(in.References) > 0 && !json.Valid(in.References) {
		return Adoption{}, validationf("references must be valid JSON")
	}

	_, status, err := s.animals.StateOf(ctx, animalID)
	if err != nil {
		return Adoption{}, err
	}
	if status == animalAdopted {
		return Adoption{}, conflictf("this animal has already been adopted")
	}

	existing, err := s.repo.FindActive(ctx, animalID, applicantID)
	switch {
	case err == nil:
		return Adoption{}, conflictf("you already have a %s application for this animal", existing.Status)
	case errors.Is(err, ErrNotFound):
		// libre, seguimos
	default:
		return Adoption{}, err
	}

	now := s.now()
	ad := Adoption{
		ID:          uuid.NewString(),
		AnimalID:    animalID,
		ApplicantID: applicantID,

		Status:          StatusPending,
		ApplicationDate: now,

		HomeType:             homeType,
		HasYard:              in.HasYard,
		HasChildren:          in.HasChildren,
		HasOtherPets:         in.HasOtherPets,
		OtherPetsDescription: strings.TrimSpace(in.OtherPetsDescription),
		HoursAlonePerDay:     in.HoursAlonePerDay,
		Income:               in.Income,
		Experience:           strings.TrimSpace(in.Experience),
		Reason:               strings.TrimSpace(in.Reason),
		References:           in.References,
		AdditionalInfo:       strings.TrimSpace(in.AdditionalInfo),

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, ad); err != nil {
		// la constraint pudo ganar una carrera que FindActive no vio
		if errors.Is(err, ErrDuplicateApplication) {
			return Adoption{}, conflictf("you already have an active application for this animal")
		}
		return Adoption{}, err
	}
	return ad, nil
}

func (s *Service) GetByID(ctx context.Context, id string, claims auth.Claims) (Detail, error) {
	d, err := s.repo.GetDetail(ctx, strings.TrimSpace(id))
	if err != nil {
		return Detail{}, err
	}
	if d.ApplicantID != claims.UserID && !claims.IsAdmin() {
		return Detail{}, ErrForbidden
	}
	return d, nil
}

func (s *Service) ListByApplicant(ctx context.Context, applicantID string) ([]Detail, error) {
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return nil, validationf("applicant is required")
	}
	return s.repo.ListByApplicant(ctx, applicantID)
}

type UpdateStatusInput struct {
	Status      string
	ReviewNotes string
}

// UpdateStatus es la transición administrativa. Aprobar escribe solicitud
// y animal en una sola transacción del repo.
func (s *Service) UpdateStatus(ctx context.Context, id string, claims auth.Claims, in UpdateStatusInput) (Adoption, error) {
	ad, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Adoption{}, err
	}
	if !claims.IsAdmin() {
		return Adoption{}, ErrForbidden
	}

	next := Status(strings.TrimSpace(in.Status))
	if _, ok := validStatuses[next]; !ok {
		return Adoption{}, validationf("invalid status value")
	}
	if !canTransition(ad.Status, next) {
		return Adoption{}, conflictf("cannot move a %s application to %s", ad.Status, next)
	}

	now := s.now()
	reviewer := claims.UserID
	ad.Status = next
	ad.ReviewedByID = &reviewer
	ad.ReviewDate = &now
	if v := strings.TrimSpace(in.ReviewNotes); v != "" {
		ad.ReviewNotes = v
	}
	if next == StatusCompleted {
		ad.CompletionDate = &now
	}
	ad.UpdatedAt = now

	if next == StatusApproved {
		if err := s.repo.Approve(ctx, ad); err != nil {
			if errors.Is(err, ErrStaleState) {
				return Adoption{}, conflictf("this animal is no longer available for adoption")
			}
			return Adoption{}, err
		}
		return ad, nil
	}

	if err := s.repo.UpdateStatus(ctx, ad); err != nil {
		return Adoption{}, err
	}
	return ad, nil
}

// Withdraw deja que el propio aplicante retire una solicitud pending.
func (s *Service) Withdraw(ctx context.Context, id string, claims auth.Claims) (Adoption, error) {
	ad, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Adoption{}, err
	}
	if ad.ApplicantID != claims.UserID {
		return Adoption{}, ErrForbidden
	}
	if ad.Status != StatusPending {
		return Adoption{}, conflictf("only pending applications can be withdrawn")
	}

	ad.Status = StatusWithdrawn
	ad.UpdatedAt = s.now()

	if err := s.repo.UpdateStatus(ctx, ad); err != nil {
		return Adoption{}, err
	}
	return ad, nil
}
