package users

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-adoption-api/internal/middleware"
	"pet-adoption-api/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/me", getMyProfileHandler(svc))
		ur.Put("/me", saveMyProfileHandler(svc))
		ur.Get("/{userID}", getUserHandler(svc))
	})
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Location  string    `json:"location,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// publicUserResponse omite email/phone para lecturas de terceros.
type publicUserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type saveProfileRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	AvatarURL string `json:"avatar_url"`
}

func getMyProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"user": toUserResponse(u)})
	}
}

func saveMyProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		var req saveProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid json")
			return
		}

		email := strings.TrimSpace(req.Email)
		if email == "" {
			email = claims.Email
		}

		u, err := svc.SaveProfile(r.Context(), claims.UserID, SaveProfileInput{
			Name:      req.Name,
			Email:     email,
			Phone:     req.Phone,
			Location:  req.Location,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				httpx.WriteError(w, http.StatusBadRequest, "name is required")
			default:
				httpx.WriteError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{
			"message": "profile saved",
			"user":    toUserResponse(u),
		})
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		u, err := svc.GetByID(r.Context(), userID)
		if err != nil {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, httpx.Envelope{"user": publicUserResponse{
			ID:        u.ID,
			Name:      u.Name,
			Location:  u.Location,
			AvatarURL: u.AvatarURL,
		}})
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Location:  u.Location,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
