package adoptions

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
	StatusCompleted Status = "completed"
)

var validStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusWithdrawn: {},
	StatusCompleted: {},
}

// transitions define el grafo de estados; todo lo que no está acá es
// un salto ilegal.
var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusApproved:  {},
		StatusRejected:  {},
		StatusWithdrawn: {},
	},
	StatusApproved: {
		StatusCompleted: {},
	},
}

func canTransition(from, to Status) bool {
	next, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// active marca los estados que bloquean una nueva solicitud del mismo
// aplicante sobre el mismo animal.
func (s Status) active() bool {
	return s == StatusPending || s == StatusApproved
}

type HomeType string

const (
	HomeHouse     HomeType = "house"
	HomeApartment HomeType = "apartment"
	HomeCondo     HomeType = "condo"
	HomeOther     HomeType = "other"
)

var validHomeTypes = map[HomeType]struct{}{
	HomeHouse:     {},
	HomeApartment: {},
	HomeCondo:     {},
	HomeOther:     {},
}

type Adoption struct {
	ID          string
	AnimalID    string
	ApplicantID string

	Status          Status
	ApplicationDate time.Time

	// Cuestionario del hogar
	HomeType             HomeType
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

	ReviewedByID   *string
	ReviewDate     *time.Time
	ReviewNotes    string
	CompletionDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnimalRef es la vista mínima del animal que viaja con una solicitud.
// Son strings planos a propósito: este paquete no importa animals.
type AnimalRef struct {
	ID              string
	Name            string
	Species         string
	Breed           string
	Status          string
	PrimaryImageURL string
}

type Applicant struct {
	ID    string
	Name  string
	Email string
	Phone string
}

type Detail struct {
	Adoption
	Animal    AnimalRef
	Applicant Applicant
}
