package animals

import (
	"context"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/authz"
	"pet-adoption-api/internal/platform/logger"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/blob"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	defaultSort     = "createdAt"
)

type Service struct {
	repo  Repository
	blobs blob.Store
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, blobs blob.Store, log logger.Logger) *Service {
	return &Service{
		repo:  repo,
		blobs: blobs,
		log:   log,
		now:   time.Now,
	}
}

// ListInput llega con los strings crudos de la query; acá se convierten
// en un ListQuery cerrado o se rechazan.
type ListInput struct {
	Species  string
	Gender   string
	Size     string
	Status   string
	Breed    string
	Location string
	Search   string

	AgeMin *int
	AgeMax *int

	GoodWithKids bool
	GoodWithDogs bool
	GoodWithCats bool

	Page  int // 0 => default 1
	Limit int // 0 => default 10
	Sort  string
	Order string
}

func (s *Service) List(ctx context.Context, in ListInput) (Page, error) {
	f := Filter{
		Breed:        strings.TrimSpace(in.Breed),
		Location:     strings.TrimSpace(in.Location),
		Search:       strings.TrimSpace(in.Search),
		AgeMin:       in.AgeMin,
		AgeMax:       in.AgeMax,
		GoodWithKids: in.GoodWithKids,
		GoodWithDogs: in.GoodWithDogs,
		GoodWithCats: in.GoodWithCats,
	}

	if v := strings.TrimSpace(in.Species); v != "" {
		if _, ok := validSpecies[Species(v)]; !ok {
			return Page{}, validationf("invalid species %q", v)
		}
		f.Species = Species(v)
	}
	if v := strings.TrimSpace(in.Gender); v != "" {
		if _, ok := validGenders[Gender(v)]; !ok {
			return Page{}, validationf("invalid gender %q", v)
		}
		f.Gender = Gender(v)
	}
	if v := strings.TrimSpace(in.Size); v != "" {
		if _, ok := validSizes[Size(v)]; !ok {
			return Page{}, validationf("invalid size %q", v)
		}
		f.Size = Size(v)
	}
	if v := strings.TrimSpace(in.Status); v != "" {
		if _, ok := validStatuses[Status(v)]; !ok {
			return Page{}, validationf("invalid adoptionStatus %q", v)
		}
		f.Status = Status(v)
	}
	if f.AgeMin != nil && *f.AgeMin < 0 {
		return Page{}, validationf("ageMin must be >= 0")
	}
	if f.AgeMax != nil && *f.AgeMax < 0 {
		return Page{}, validationf("ageMax must be >= 0")
	}

	page := in.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return Page{}, validationf("page must be >= 1")
	}

	limit := in.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit < 1 {
		return Page{}, validationf("limit must be >= 1")
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	sort := strings.TrimSpace(in.Sort)
	if sort == "" {
		sort = defaultSort
	}
	column, ok := sortColumns[sort]
	if !ok {
		return Page{}, validationf("invalid sort field %q", sort)
	}

	order := strings.ToUpper(strings.TrimSpace(in.Order))
	switch order {
	case "":
		order = "DESC"
	case "ASC", "DESC":
	default:
		return Page{}, validationf("order must be asc or desc")
	}

	items, count, err := s.repo.List(ctx, ListQuery{
		Filter:     f,
		SortColumn: column,
		Order:      order,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return Page{}, err
	}

	totalPages := (count + limit - 1) / limit

	return Page{
		Items:       items,
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (s *Service) GetDetail(ctx context.Context, id string) (Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Detail{}, ErrNotFound
	}
	return s.repo.GetDetail(ctx, id)
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	AgeMonths *int
	Gender    string
	Size      string
	Color     string

	Description  string
	HealthStatus string
	Behavior     string

	SpecialNeeds            bool
	SpecialNeedsDescription string
	HouseTrained            bool
	GoodWithKids            bool
	GoodWithDogs            bool
	GoodWithCats            bool
	Microchipped            bool
	MicrochipID             string
	Neutered                bool
	Vaccinated              bool

	AdoptionFee float64
	Location    string
}

func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (Animal, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return Animal{}, validationf("creator is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return Animal{}, validationf("name is required")
	}

	species := Species(strings.TrimSpace(in.Species))
	if _, ok := validSpecies[species]; !ok {
		return Animal{}, validationf("invalid species %q", in.Species)
	}
	gender := Gender(strings.TrimSpace(in.Gender))
	if _, ok := validGenders[gender]; !ok {
		return Animal{}, validationf("invalid gender %q", in.Gender)
	}

	var size Size
	if v := strings.TrimSpace(in.Size); v != "" {
		size = Size(v)
		if _, ok := validSizes[size]; !ok {
			return Animal{}, validationf("invalid size %q", v)
		}
	}
	if in.AgeMonths != nil && *in.AgeMonths < 0 {
		return Animal{}, validationf("age must be >= 0 months")
	}
	if in.AdoptionFee < 0 {
		return Animal{}, validationf("adoption fee must be >= 0")
	}

	now := s.now()
	a := Animal{
		ID:                      uuid.NewString(),
		Name:                    strings.TrimSpace(in.Name),
		Species:                 species,
		Breed:                   strings.TrimSpace(in.Breed),
		AgeMonths:               in.AgeMonths,
		Gender:                  gender,
		Size:                    size,
		Color:                   strings.TrimSpace(in.Color),
		Description:             strings.TrimSpace(in.Description),
		HealthStatus:            strings.TrimSpace(in.HealthStatus),
		Behavior:                strings.TrimSpace(in.Behavior),
		SpecialNeeds:            in.SpecialNeeds,
		SpecialNeedsDescription: strings.TrimSpace(in.SpecialNeedsDescription),
		HouseTrained:            in.HouseTrained,
		GoodWithKids:            in.GoodWithKids,
		GoodWithDogs:            in.GoodWithDogs,
		GoodWithCats:            in.GoodWithCats,
		Microchipped:            in.Microchipped,
		MicrochipID:             strings.TrimSpace(in.MicrochipID),
		Neutered:                in.Neutered,
		Vaccinated:              in.Vaccinated,
		AdoptionFee:             in.AdoptionFee,
		Status:                  StatusAvailable, // siempre, venga lo que venga en el body
		Location:                strings.TrimSpace(in.Location),
		CreatedByID:             creatorID,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name      *string
	Species   *string
	Breed     *string
	AgeMonths *int
	Gender    *string
	Size      *string
	Color     *string

	Description  *string
	HealthStatus *string
	Behavior     *string

	SpecialNeeds            *bool
	SpecialNeedsDescription *string
	HouseTrained            *bool
	GoodWithKids            *bool
	GoodWithDogs            *bool
	GoodWithCats            *bool
	Microchipped            *bool
	MicrochipID             *string
	Neutered                *bool
	Vaccinated              *bool
	Featured                *bool

	AdoptionFee *float64
	Status      *string
	Location    *string
}

func (s *Service) Update(ctx context.Context, id string, claims auth.Claims, in UpdateInput) (Animal, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Animal{}, err
	}
	if !authz.OwnerOrAdmin(claims, a.CreatedByID) {
		return Animal{}, ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Animal{}, validationf("name cannot be empty")
		}
		a.Name = name
	}
	if in.Species != nil {
		sp := Species(strings.TrimSpace(*in.Species))
		if _, ok := validSpecies[sp]; !ok {
			return Animal{}, validationf("invalid species %q", *in.Species)
		}
		a.Species = sp
	}
	if in.Gender != nil {
		g := Gender(strings.TrimSpace(*in.Gender))
		if _, ok := validGenders[g]; !ok {
			return Animal{}, validationf("invalid gender %q", *in.Gender)
		}
		a.Gender = g
	}
	if in.Size != nil {
		sz := Size(strings.TrimSpace(*in.Size))
		if _, ok := validSizes[sz]; !ok {
			return Animal{}, validationf("invalid size %q", *in.Size)
		}
		a.Size = sz
	}
	if in.Status != nil {
		st := Status(strings.TrimSpace(*in.Status))
		if _, ok := validStatuses[st]; !ok {
			return Animal{}, validationf("invalid adoptionStatus %q", *in.Status)
		}
		// "adopted" solo se alcanza aprobando una solicitud; por acá no.
		if st == StatusAdopted && a.Status != StatusAdopted {
			return Animal{}, validationf("adoptionStatus adopted is set by approving an adoption request")
		}
		if st != StatusAdopted && a.Status == StatusAdopted {
			// volver de adopted limpia adopter/fecha para sostener la invariante
			a.AdoptedByID = nil
			a.AdoptionDate = nil
		}
		a.Status = st
	}
	if in.AgeMonths != nil {
		if *in.AgeMonths < 0 {
			return Animal{}, validationf("age must be >= 0 months")
		}
		a.AgeMonths = in.AgeMonths
	}
	if in.AdoptionFee != nil {
		if *in.AdoptionFee < 0 {
			return Animal{}, validationf("adoption fee must be >= 0")
		}
		a.AdoptionFee = *in.AdoptionFee
	}

	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Color != nil {
		a.Color = strings.TrimSpace(*in.Color)
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.HealthStatus != nil {
		a.HealthStatus = strings.TrimSpace(*in.HealthStatus)
	}
	if in.Behavior != nil {
		a.Behavior = strings.TrimSpace(*in.Behavior)
	}
	if in.SpecialNeeds != nil {
		a.SpecialNeeds = *in.SpecialNeeds
	}
	if in.SpecialNeedsDescription != nil {
		a.SpecialNeedsDescription = strings.TrimSpace(*in.SpecialNeedsDescription)
	}
	if in.HouseTrained != nil {
		a.HouseTrained = *in.HouseTrained
	}
	if in.GoodWithKids != nil {
		a.GoodWithKids = *in.GoodWithKids
	}
	if in.GoodWithDogs != nil {
		a.GoodWithDogs = *in.GoodWithDogs
	}
	if in.GoodWithCats != nil {
		a.GoodWithCats = *in.GoodWithCats
	}
	if in.Microchipped != nil {
		a.Microchipped = *in.Microchipped
	}
	if in.MicrochipID != nil {
		a.MicrochipID = strings.TrimSpace(*in.MicrochipID)
	}
	if in.Neutered != nil {
		a.Neutered = *in.Neutered
	}
	if in.Vaccinated != nil {
		a.Vaccinated = *in.Vaccinated
	}
	if in.Featured != nil {
		a.Featured = *in.Featured
	}
	if in.Location != nil {
		a.Location = strings.TrimSpace(*in.Location)
	}

	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string, claims auth.Claims) error {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !authz.OwnerOrAdmin(claims, a.CreatedByID) {
		return ErrForbidden
	}

	imgs, err := s.repo.ListImages(ctx, a.ID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}

	// Limpieza de binarios: best-effort, los metadatos ya no existen.
	for _, img := range imgs {
		s.deleteBlob(ctx, img)
	}
	return nil
}

// StateOf expone dueño y estado de adopción de un animal.
// Existe para que adoptions no importe este paquete (mismo truco que
// usamos con users: el consumidor define la interfaz).
func (s *Service) StateOf(ctx context.Context, animalID string) (ownerID, status string, err error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		return "", "", err
	}
	return a.CreatedByID, string(a.Status), nil
}
