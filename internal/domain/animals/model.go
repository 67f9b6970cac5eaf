package animals

import (
	"time"

	"pet-adoption-api/internal/domain/users"
)

// Animal representa una ficha de animal en adopción.
// Invariante: AdoptedByID y AdoptionDate son no-nil si y solo si
// Status == StatusAdopted.
type Animal struct {
	ID string

	Name      string
	Species   Species
	Breed     string
	AgeMonths *int
	Gender    Gender
	Size      Size
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
	Featured                bool

	AdoptionFee float64
	Status      Status
	Location    string

	CreatedByID  string
	AdoptedByID  *string
	AdoptionDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Image es una foto asociada a un animal.
// Invariante por animal: cero imágenes => cero primarias; una o más
// imágenes => exactamente una primaria.
type Image struct {
	ID       string
	AnimalID string

	URL        string
	StorageKey string // key en el BlobStore; no se expone por JSON

	IsPrimary bool
	Caption   string
	SortOrder int

	CreatedAt time.Time
}

// Vaccination es un registro sanitario ligado al animal (cascade on delete).
type Vaccination struct {
	ID       string
	AnimalID string

	Name           string
	Date           time.Time
	ExpirationDate *time.Time
	Veterinarian   string
	Notes          string
	DocumentURL    string

	CreatedAt time.Time
}

// Summary es la fila de listado: animal + imagen primaria (si hay)
// + identidad del creador.
type Summary struct {
	Animal
	PrimaryImage *Image
	Creator      users.Contact
}

// Detail es el fetch completo: todas las imágenes ordenadas, vacunas
// y contacto completo del creador.
type Detail struct {
	Animal
	Images       []Image
	Vaccinations []Vaccination
	Creator      users.Contact
}

// Page es el resultado paginado de List.
type Page struct {
	Items       []Summary
	Count       int
	TotalPages  int
	CurrentPage int
}
