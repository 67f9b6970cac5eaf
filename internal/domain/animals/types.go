package animals

// Species define las especies soportadas.
type Species string

const (
	SpeciesDog       Species = "dog"
	SpeciesCat       Species = "cat"
	SpeciesBird      Species = "bird"
	SpeciesRabbit    Species = "rabbit"
	SpeciesHamster   Species = "hamster"
	SpeciesGuineaPig Species = "guinea pig"
	SpeciesFish      Species = "fish"
	SpeciesReptile   Species = "reptile"
	SpeciesOther     Species = "other"
)

// Gender define el sexo del animal.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Size define el tamaño aproximado.
type Size string

const (
	SizeSmall      Size = "small"
	SizeMedium     Size = "medium"
	SizeLarge      Size = "large"
	SizeExtraLarge Size = "extra-large"
)

// Status es el estado de adopción del animal.
// Campo canónico único: nada de "status" vs "adoptionStatus" ambiguos.
type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusAdopted   Status = "adopted"
	StatusFostered  Status = "fostered"
	StatusWithdrawn Status = "withdrawn"
)

var validSpecies = map[Species]struct{}{
	SpeciesDog: {}, SpeciesCat: {}, SpeciesBird: {}, SpeciesRabbit: {},
	SpeciesHamster: {}, SpeciesGuineaPig: {}, SpeciesFish: {},
	SpeciesReptile: {}, SpeciesOther: {},
}

var validGenders = map[Gender]struct{}{
	GenderMale: {}, GenderFemale: {}, GenderUnknown: {},
}

var validSizes = map[Size]struct{}{
	SizeSmall: {}, SizeMedium: {}, SizeLarge: {}, SizeExtraLarge: {},
}

var validStatuses = map[Status]struct{}{
	StatusAvailable: {}, StatusPending: {}, StatusAdopted: {},
	StatusFostered: {}, StatusWithdrawn: {},
}

// sortColumns mapea los nombres de sort de la API a columnas estables.
// Todo lo que no esté acá se rechaza: el sort dinámico nunca viaja crudo
// al storage.
var sortColumns = map[string]string{
	"name":           "name",
	"species":        "species",
	"breed":          "breed",
	"age":            "age_months",
	"size":           "size",
	"adoptionFee":    "adoption_fee",
	"adoptionStatus": "adoption_status",
	"location":       "location",
	"featured":       "featured",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}
