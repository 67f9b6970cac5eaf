package animals

import "context"

// Filter ya viene validado por el service: enums conocidos, rangos sanos.
type Filter struct {
	Species Species
	Gender  Gender
	Size    Size
	Status  Status

	Breed    string // substring, case-insensitive
	Location string // substring, case-insensitive
	Search   string // OR substring sobre name/breed/description

	AgeMin *int
	AgeMax *int

	// true => exigir el flag; false => sin restricción (nunca "flag en false").
	GoodWithKids bool
	GoodWithDogs bool
	GoodWithCats bool
}

// ListQuery agrega sort/paginación al filtro. SortColumn sale del
// allowlist de sortColumns; Order es "ASC" o "DESC".
type ListQuery struct {
	Filter     Filter
	SortColumn string
	Order      string
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, a Animal) error
	Update(ctx context.Context, a Animal) error
	// Delete borra el animal; imágenes y vacunas caen en cascada.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Animal, error)
	GetDetail(ctx context.Context, id string) (Detail, error)
	// List devuelve la página y el total de matches sin paginar.
	List(ctx context.Context, q ListQuery) ([]Summary, int, error)

	// AddImage inserta la imagen manteniendo la invariante de primaria:
	// si es la primera imagen del animal queda primaria siempre; si
	// img.IsPrimary, degrada las demás primarias en la misma transacción.
	AddImage(ctx context.Context, img Image) (Image, error)
	GetImage(ctx context.Context, animalID, imageID string) (Image, error)
	ListImages(ctx context.Context, animalID string) ([]Image, error)
	// DeleteImage borra y, si la borrada era primaria, promueve la imagen
	// restante de menor SortOrder (empate: created_at más antiguo) en la
	// misma transacción.
	DeleteImage(ctx context.Context, animalID, imageID string) error

	AddVaccination(ctx context.Context, v Vaccination) error
}
