package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/users"
	"pet-adoption-api/internal/middleware"
	"pet-adoption-api/internal/platform/httpx"
	"pet-adoption-api/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const maxImageUploadBytes = 10 << 20 // 10MB

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/animals", func(ar chi.Router) {
		// Lecturas públicas
		ar.Get("/", listAnimalsHandler(svc, log))
		ar.Get("/{animalID}", getAnimalHandler(svc, log))

		// Mutaciones (owner o admin)
		ar.Post("/", createAnimalHandler(svc, log))
		ar.Put("/{animalID}", updateAnimalHandler(svc, log))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc, log))

		ar.Post("/{animalID}/images", addImageHandler(svc, log))
		ar.Delete("/{animalID}/images/{imageID}", deleteImageHandler(svc, log))

		ar.Post("/{animalID}/vaccinations", addVaccinationHandler(svc, log))
	})
}

type animalResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Species   Species `json:"species"`
	Breed     string  `json:"breed,omitempty"`
	AgeMonths *int    `json:"age_months,omitempty"`
	Gender    Gender  `json:"gender"`
	Size      Size    `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`

	Description  string `json:"description,omitempty"`
	HealthStatus string `json:"health_status,omitempty"`
	Behavior     string `json:"behavior,omitempty"`

	SpecialNeeds            bool   `json:"special_needs"`
	SpecialNeedsDescription string `json:"special_needs_description,omitempty"`
	HouseTrained            bool   `json:"house_trained"`
	GoodWithKids            bool   `json:"good_with_kids"`
	GoodWithDogs            bool   `json:"good_with_dogs"`
	GoodWithCats            bool   `json:"good_with_cats"`
	Microchipped            bool   `json:"microchipped"`
	MicrochipID             string `json:"microchip_id,omitempty"`
	Neutered                bool   `json:"neutered"`
	Vaccinated              bool   `json:"vaccinated"`
	Featured                bool   `json:"featured"`

	AdoptionFee    float64    `json:"adoption_fee"`
	AdoptionStatus Status     `json:"adoption_status"`
	Location       string     `json:"location,omitempty"`
	AdoptedByID    *string    `json:"adopted_by_id,omitempty"`
	AdoptionDate   *time.Time `json:"adoption_date,omitempty"`

	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type imageResponse struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	IsPrimary bool      `json:"is_primary"`
	Caption   string    `json:"caption,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type vaccinationResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Date           time.Time  `json:"date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Veterinarian   string     `json:"veterinarian,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	DocumentURL    string     `json:"document_url,omitempty"`
}

type creatorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type summaryResponse struct {
	animalResponse
	PrimaryImage *imageResponse  `json:"primary_image,omitempty"`
	Creator      creatorResponse `json:"creator"`
}

type detailResponse struct {
	animalResponse
	Images       []imageResponse       `json:"images"`
	Vaccinations []vaccinationResponse `json:"vaccinations"`
	Creator      creatorResponse       `json:"creator"`
}

func listAnimalsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		in := ListInput{
			Species:  q.Get("species"),
			Gender:   q.Get("gender"),
			Size:     q.Get("size"),
			Status:   q.Get("adoptionStatus"),
			Breed:    q.Get("breed"),
			Location: q.Get("location"),
			Search:   q.Get("search"),
			Sort:     q.Get("sort"),
			Order:    q.Get("order"),

			// Solo el literal "true" activa el filtro; cualquier otra cosa
			// significa "sin restricción", nunca "en false".
			GoodWithKids: q.Get("goodWithKids") == "true",
			GoodWithDogs: q.Get("goodWithDogs") == "true",
			GoodWithCats: q.Get("goodWithCats") == "true",
		}

		var err error
		if in.AgeMin, err = optionalInt(q.Get("ageMin")); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "ageMin must be an integer")
			return
		}
		if in.AgeMax, err = optionalInt(q.Get("ageMax")); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "ageMax must be an integer")
			return
		}
		if in.Page, err = intOrZero(q.Get("page")); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		if in.Limit, err = intOrZero(q.Get("limit")); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}

		page, err := svc.List(r.Context(), in)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		items := make([]summaryResponse, 0, len(page.Items))
		for _, it := range page.Items {
			items = append(items, toSummaryResponse(it))
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
			"count":       page.Count,
			"totalPages":  page.TotalPages,
			"currentPage": page.CurrentPage,
			"animals":     items,
		})
	}
}

func getAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.GetDetail(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeDomainError(w, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"animal": toDetailResponse(d)})
	}
}

type createAnimalRequest struct {
	Name      string  `json:"name"`
	Species   string  `json:"species"`
	Breed     string  `json:"breed"`
	AgeMonths *int    `json:"age_months"`
	Gender    string  `json:"gender"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`

	Description  string `json:"description"`
	HealthStatus string `json:"health_status"`
	Behavior     string `json:"behavior"`

	SpecialNeeds            bool   `json:"special_needs"`
	SpecialNeedsDescription string `json:"special_needs_description"`
	HouseTrained            bool   `json:"house_trained"`
	GoodWithKids            bool   `json:"good_with_kids"`
	GoodWithDogs            bool   `json:"good_with_dogs"`
	GoodWithCats            bool   `json:"good_with_cats"`
	Microchipped            bool   `json:"microchipped"`
	MicrochipID             string `json:"microchip_id"`
	Neutered                bool   `json:"neutered"`
	Vaccinated              bool   `json:"vaccinated"`

	AdoptionFee float64 `json:"adoption_fee"`
	Location    string  `json:"location"`
}

func createAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:                    req.Name,
			Species:                 req.Species,
			Breed:                   req.Breed,
			AgeMonths:               req.AgeMonths,
			Gender:                  req.Gender,
			Size:                    req.Size,
			Color:                   req.Color,
			Description:             req.Description,
			HealthStatus:            req.HealthStatus,
			Behavior:                req.Behavior,
			SpecialNeeds:            req.SpecialNeeds,
			SpecialNeedsDescription: req.SpecialNeedsDescription,
			HouseTrained:            req.HouseTrained,
			GoodWithKids:            req.GoodWithKids,
			GoodWithDogs:            req.GoodWithDogs,
			GoodWithCats:            req.GoodWithCats,
			Microchipped:            req.Microchipped,
			MicrochipID:             req.MicrochipID,
			Neutered:                req.Neutered,
			Vaccinated:              req.Vaccinated,
			AdoptionFee:             req.AdoptionFee,
			Location:                req.Location,
		})
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, httpx.Envelope{
			"message": "animal created successfully",
			"animal":  toAnimalResponse(a),
		})
	}
}

type updateAnimalRequest struct {
	Name      *string `json:"name"`
	Species   *string `json:"species"`
	Breed     *string `json:"breed"`
	AgeMonths *int    `json:"age_months"`
	Gender    *string `json:"gender"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`

	Description  *string `json:"description"`
	HealthStatus *string `json:"health_status"`
	Behavior     *string `json:"behavior"`

	SpecialNeeds            *bool   `json:"special_needs"`
	SpecialNeedsDescription *string `json:"special_needs_description"`
	HouseTrained            *bool   `json:"house_trained"`
	GoodWithKids            *bool   `json:"good_with_kids"`
	GoodWithDogs            *bool   `json:"good_with_dogs"`
	GoodWithCats            *bool   `json:"good_with_cats"`
	Microchipped            *bool   `json:"microchipped"`
	MicrochipID             *string `json:"microchip_id"`
	Neutered                *bool   `json:"neutered"`
	Vaccinated              *bool   `json:"vaccinated"`
	Featured                *bool   `json:"featured"`

	AdoptionFee *float64 `json:"adoption_fee"`
	Status      *string  `json:"adoption_status"`
	Location    *string  `json:"location"`
}

func updateAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req updateAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := svc.Update(r.Context(), chi.URLParam(r, "animalID"), claims, UpdateInput{
			Name:                    req.Name,
			Species:                 req.Species,
			Breed:                   req.Breed,
			AgeMonths:               req.AgeMonths,
			Gender:                  req.Gender,
			Size:                    req.Size,
			Color:                   req.Color,
			Description:             req.Description,
			HealthStatus:            req.HealthStatus,
			Behavior:                req.Behavior,
			SpecialNeeds:            req.SpecialNeeds,
			SpecialNeedsDescription: req.SpecialNeedsDescription,
			HouseTrained:            req.HouseTrained,
			GoodWithKids:            req.GoodWithKids,
			GoodWithDogs:            req.GoodWithDogs,
			GoodWithCats:            req.GoodWithCats,
			Microchipped:            req.Microchipped,
			MicrochipID:             req.MicrochipID,
			Neutered:                req.Neutered,
			Vaccinated:              req.Vaccinated,
			Featured:                req.Featured,
			AdoptionFee:             req.AdoptionFee,
			Status:                  req.Status,
			Location:                req.Location,
		})
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
			"message": "animal updated successfully",
			"animal":  toAnimalResponse(a),
		})
	}
}

func deleteAnimalHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if err := svc.Delete(r.Context(), chi.URLParam(r, "animalID"), claims); err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"message": "animal deleted successfully"})
	}
}

func addImageHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "no image file provided")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "no image file provided")
			return
		}
		defer file.Close()

		in := AddImageInput{
			File:        file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			IsPrimary:   r.FormValue("is_primary") == "true",
			Caption:     r.FormValue("caption"),
		}
		if v := strings.TrimSpace(r.FormValue("order")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "order must be an integer")
				return
			}
			in.SortOrder = n
		}

		img, err := svc.AddImage(r.Context(), chi.URLParam(r, "animalID"), claims, in)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, httpx.Envelope{
			"message": "image added successfully",
			"image":   toImageResponse(img),
		})
	}
}

func deleteImageHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		err := svc.DeleteImage(r.Context(), chi.URLParam(r, "animalID"), chi.URLParam(r, "imageID"), claims)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"message": "image removed successfully"})
	}
}

type addVaccinationRequest struct {
	Name           string `json:"name"`
	Date           string `json:"date"`            // YYYY-MM-DD
	ExpirationDate string `json:"expiration_date"` // YYYY-MM-DD opcional
	Veterinarian   string `json:"veterinarian"`
	Notes          string `json:"notes"`
	DocumentURL    string `json:"document_url"`
}

func addVaccinationHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req addVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		in := AddVaccinationInput{
			Name:         req.Name,
			Veterinarian: req.Veterinarian,
			Notes:        req.Notes,
			DocumentURL:  req.DocumentURL,
		}

		if strings.TrimSpace(req.Date) != "" {
			t, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			in.Date = t
		}
		if strings.TrimSpace(req.ExpirationDate) != "" {
			t, err := time.Parse("2006-01-02", req.ExpirationDate)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "expiration_date must be YYYY-MM-DD")
				return
			}
			in.ExpirationDate = &t
		}

		v, err := svc.AddVaccination(r.Context(), chi.URLParam(r, "animalID"), claims, in)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, httpx.Envelope{
			"message":     "vaccination added successfully",
			"vaccination": toVaccinationResponse(v),
		})
	}
}

// writeDomainError traduce errores del dominio al envelope; nunca filtra
// texto crudo del storage al caller.
func writeDomainError(w http.ResponseWriter, log logger.Logger, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "animal not found")
	case errors.Is(err, ErrImageNotFound):
		httpx.WriteError(w, http.StatusNotFound, "image not found")
	case errors.Is(err, ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "not authorized to modify this animal")
	default:
		log.Error("animals handler error", map[string]any{"error": err.Error()})
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func optionalInt(v string) (*int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func intOrZero(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:                      a.ID,
		Name:                    a.Name,
		Species:                 a.Species,
		Breed:                   a.Breed,
		AgeMonths:               a.AgeMonths,
		Gender:                  a.Gender,
		Size:                    a.Size,
		Color:                   a.Color,
		Description:             a.Description,
		HealthStatus:            a.HealthStatus,
		Behavior:                a.Behavior,
		SpecialNeeds:            a.SpecialNeeds,
		SpecialNeedsDescription: a.SpecialNeedsDescription,
		HouseTrained:            a.HouseTrained,
		GoodWithKids:            a.GoodWithKids,
		GoodWithDogs:            a.GoodWithDogs,
		GoodWithCats:            a.GoodWithCats,
		Microchipped:            a.Microchipped,
		MicrochipID:             a.MicrochipID,
		Neutered:                a.Neutered,
		Vaccinated:              a.Vaccinated,
		Featured:                a.Featured,
		AdoptionFee:             a.AdoptionFee,
		AdoptionStatus:          a.Status,
		Location:                a.Location,
		AdoptedByID:             a.AdoptedByID,
		AdoptionDate:            a.AdoptionDate,
		CreatedByID:             a.CreatedByID,
		CreatedAt:               a.CreatedAt,
		UpdatedAt:               a.UpdatedAt,
	}
}

func toImageResponse(img Image) imageResponse {
	return imageResponse{
		ID:        img.ID,
		ImageURL:  img.URL,
		IsPrimary: img.IsPrimary,
		Caption:   img.Caption,
		Order:     img.SortOrder,
		CreatedAt: img.CreatedAt,
	}
}

func toVaccinationResponse(v Vaccination) vaccinationResponse {
	return vaccinationResponse{
		ID:             v.ID,
		Name:           v.Name,
		Date:           v.Date,
		ExpirationDate: v.ExpirationDate,
		Veterinarian:   v.Veterinarian,
		Notes:          v.Notes,
		DocumentURL:    v.DocumentURL,
	}
}

func toCreatorResponse(c users.Contact) creatorResponse {
	return creatorResponse{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
}

func toSummaryResponse(s Summary) summaryResponse {
	out := summaryResponse{
		animalResponse: toAnimalResponse(s.Animal),
		Creator:        toCreatorResponse(s.Creator),
	}
	if s.PrimaryImage != nil {
		img := toImageResponse(*s.PrimaryImage)
		out.PrimaryImage = &img
	}
	return out
}

func toDetailResponse(d Detail) detailResponse {
	out := detailResponse{
		animalResponse: toAnimalResponse(d.Animal),
		Images:         make([]imageResponse, 0, len(d.Images)),
		Vaccinations:   make([]vaccinationResponse, 0, len(d.Vaccinations)),
		Creator:        toCreatorResponse(d.Creator),
	}
	for _, img := range d.Images {
		out.Images = append(out.Images, toImageResponse(img))
	}
	for _, v := range d.Vaccinations {
		out.Vaccinations = append(out.Vaccinations, toVaccinationResponse(v))
	}
	return out
}
