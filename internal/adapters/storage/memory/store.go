package memory

import (
	"sync"

	"pet-adoption-api/internal/domain/adoptions"
	"pet-adoption-api/internal/domain/animals"
	"pet-adoption-api/internal/domain/users"
)

// Store agrupa todas las tablas bajo un solo mutex: la aprobación de una
// solicitud toca adoptions y animals juntas, igual que la transacción de
// Postgres.
type Store struct {
	mu sync.RWMutex

	users        map[string]users.User
	animals      map[string]animals.Animal
	images       map[string]animals.Image
	vaccinations map[string]animals.Vaccination
	adoptions    map[string]adoptions.Adoption
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]users.User),
		animals:      make(map[string]animals.Animal),
		images:       make(map[string]animals.Image),
		vaccinations: make(map[string]animals.Vaccination),
		adoptions:    make(map[string]adoptions.Adoption),
	}
}
