package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/middleware"
	"pet-adoption-api/internal/platform/httpx"
	"pet-adoption-api/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/adoptions", func(ar chi.Router) {
		ar.Post("/", createAdoptionHandler(svc, log))
		ar.Get("/user", listMyAdoptionsHandler(svc, log))
		ar.Get("/{adoptionID}", getAdoptionHandler(svc, log))
		ar.Put("/{adoptionID}/status", updateStatusHandler(svc, log))
		ar.Post("/{adoptionID}/withdraw", withdrawHandler(svc, log))
	})
}

type adoptionResponse struct {
	ID          string `json:"id"`
	AnimalID    string `json:"animal_id"`
	ApplicantID string `json:"applicant_id"`

	Status          Status    `json:"status"`
	ApplicationDate time.Time `json:"application_date"`

	HomeType             HomeType        `json:"home_type,omitempty"`
	HasYard              *bool           `json:"has_yard,omitempty"`
	HasChildren          *bool           `json:"has_children,omitempty"`
	HasOtherPets         *bool           `json:"has_other_pets,omitempty"`
	OtherPetsDescription string          `json:"other_pets_description,omitempty"`
	HoursAlonePerDay     *int            `json:"hours_alone_per_day,omitempty"`
	Income               *int            `json:"income,omitempty"`
	Experience           string          `json:"pet_experience,omitempty"`
	Reason               string          `json:"reason_for_adopting,omitempty"`
	References           json.RawMessage `json:"references,omitempty"`
	AdditionalInfo       string          `json:"additional_info,omitempty"`

	ReviewedByID   *string    `json:"reviewed_by_id,omitempty"`
	ReviewDate     *time.Time `json:"review_date,omitempty"`
	ReviewNotes    string     `json:"review_notes,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type animalRefResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Species         string `json:"species"`
	Breed           string `json:"breed,omitempty"`
	Status          string `json:"adoption_status"`
	PrimaryImageURL string `json:"primary_image_url,omitempty"`
}

type applicantResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type adoptionDetailResponse struct {
	adoptionResponse
	Animal    animalRefResponse `json:"animal"`
	Applicant applicantResponse `json:"applicant"`
}

type createAdoptionRequest struct {
	AnimalID string `json:"animal_id"`

	HomeType             string          `json:"home_type"`
	HasYard              *bool           `json:"has_yard"`
	HasChildren          *bool           `json:"has_children"`
	HasOtherPets         *bool           `json:"has_other_pets"`
	OtherPetsDescription string          `json:"other_pets_description"`
	HoursAlonePerDay     *int            `json:"hours_alone_per_day"`
	Income               *int            `json:"income"`
	Experience           string          `json:"pet_experience"`
	Reason               string          `json:"reason_for_adopting"`
	References           json.RawMessage `json:"references"`
	AdditionalInfo       string          `json:"additional_info"`
}

func createAdoptionHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req createAdoptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		ad, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			AnimalID:             req.AnimalID,
			HomeType:             req.HomeType,
			HasYard:              req.HasYard,
			HasChildren:          req.HasChildren,
			HasOtherPets:         req.HasOtherPets,
			OtherPetsDescription: req.OtherPetsDescription,
			HoursAlonePerDay:     req.HoursAlonePerDay,
			Income:               req.Income,
			Experience:           req.Experience,
			Reason:               req.Reason,
			References:           req.References,
			AdditionalInfo:       req.AdditionalInfo,
		})
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, httpx.Envelope{
			"message":  "adoption request submitted successfully",
			"adoption": toAdoptionResponse(ad),
		})
	}
}

func listMyAdoptionsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		items, err := svc.ListByApplicant(r.Context(), claims.UserID)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		out := make([]adoptionDetailResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDetailResponse(d))
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
			"count":     len(out),
			"adoptions": out,
		})
	}
}

func getAdoptionHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		d, err := svc.GetByID(r.Context(), chi.URLParam(r, "adoptionID"), claims)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"adoption": toDetailResponse(d)})
	}
}

type updateStatusRequest struct {
	Status      string `json:"status"`
	ReviewNotes string `json:"review_notes"`
}

func updateStatusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		ad, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "adoptionID"), claims, UpdateStatusInput{
			Status:      req.Status,
			ReviewNotes: req.ReviewNotes,
		})
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
			"message":  "adoption status updated successfully",
			"adoption": toAdoptionResponse(ad),
		})
	}
}

func withdrawHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ad, err := svc.Withdraw(r.Context(), chi.URLParam(r, "adoptionID"), claims)
		if err != nil {
			writeDomainError(w, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
			"message":  "adoption request withdrawn",
			"adoption": toAdoptionResponse(ad),
		})
	}
}

func writeDomainError(w http.ResponseWriter, log logger.Logger, err error) {
	var ve *ValidationError
	var ce *ConflictError
	switch {
	case errors.As(err, &ve):
		httpx.WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &ce):
		httpx.WriteError(w, http.StatusConflict, ce.Error())
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "adoption request not found")
	case errors.Is(err, ErrAnimalNotFound):
		httpx.WriteError(w, http.StatusNotFound, "animal not found")
	case errors.Is(err, ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "not authorized to access this adoption request")
	default:
		log.Error("adoptions handler error", map[string]any{"error": err.Error()})
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func toAdoptionResponse(ad Adoption) adoptionResponse {
	return adoptionResponse{
		ID:                   ad.ID,
		AnimalID:             ad.AnimalID,
		ApplicantID:          ad.ApplicantID,
		Status:               ad.Status,
		ApplicationDate:      ad.ApplicationDate,
		HomeType:             ad.HomeType,
		HasYard:              ad.HasYard,
		HasChildren:          ad.HasChildren,
		HasOtherPets:         ad.HasOtherPets,
		OtherPetsDescription: ad.OtherPetsDescription,
		HoursAlonePerDay:     ad.HoursAlonePerDay,
		Income:               ad.Income,
		Experience:           ad.Experience,
		Reason:               ad.Reason,
		References:           ad.References,
		AdditionalInfo:       ad.AdditionalInfo,
		ReviewedByID:         ad.ReviewedByID,
		ReviewDate:           ad.ReviewDate,
		ReviewNotes:          ad.ReviewNotes,
		CompletionDate:       ad.CompletionDate,
		CreatedAt:            ad.CreatedAt,
		UpdatedAt:            ad.UpdatedAt,
	}
}

func toDetailResponse(d Detail) adoptionDetailResponse {
	return adoptionDetailResponse{
		adoptionResponse: toAdoptionResponse(d.Adoption),
		Animal: animalRefResponse{
			ID:              d.Animal.ID,
			Name:            d.Animal.Name,
			Species:         d.Animal.Species,
			Breed:           d.Animal.Breed,
			Status:          d.Animal.Status,
			PrimaryImageURL: d.Animal.PrimaryImageURL,
		},
		Applicant: applicantResponse{
			ID:    d.Applicant.ID,
			Name:  d.Applicant.Name,
			Email: d.Applicant.Email,
			Phone: d.Applicant.Phone,
		},
	}
}
