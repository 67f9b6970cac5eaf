package adoptions

import "context"

type Repository interface {
	// Create inserta la solicitud; devuelve ErrDuplicateApplication si ya
	// existe una activa para (animal, aplicante).
	Create(ctx context.Context, ad Adoption) error
	GetByID(ctx context.Context, id string) (Adoption, error)
	GetDetail(ctx context.Context, id string) (Detail, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]Detail, error)
	// FindActive devuelve la solicitud pending/approved del aplicante para
	// el animal, o ErrNotFound.
	FindActive(ctx context.Context, animalID, applicantID string) (Adoption, error)

	UpdateStatus(ctx context.Context, ad Adoption) error
	// Approve escribe solicitud y animal en una sola transacción: marca la
	// solicitud approved y el animal adopted (adopted_by_id, adoption_date).
	// Re-chequea bajo lock que la solicitud siga pending y el animal no
	// esté adopted; si no, ErrStaleState.
	Approve(ctx context.Context, ad Adoption) error
}

// AnimalDirectory evita importar el paquete animals (rompe ciclos).
// Implementaciones devuelven ErrAnimalNotFound cuando el animal no existe.
type AnimalDirectory interface {
	StateOf(ctx context.Context, animalID string) (ownerID, status string, err error)
}
