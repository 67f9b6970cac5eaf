package animals

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"pet-adoption-api/internal/domain/authz"
	"pet-adoption-api/internal/ports/auth"
	"pet-adoption-api/internal/ports/blob"

	"github.com/google/uuid"
)

type AddImageInput struct {
	File        io.Reader
	Filename    string
	ContentType string

	IsPrimary bool
	Caption   string
	SortOrder int
}

func (s *Service) AddImage(ctx context.Context, animalID string, claims auth.Claims, in AddImageInput) (Image, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		return Image{}, err
	}
	if !authz.OwnerOrAdmin(claims, a.CreatedByID) {
		return Image{}, ErrForbidden
	}
	if in.File == nil {
		return Image{}, validationf("no image file provided")
	}
	if in.SortOrder < 0 {
		return Image{}, validationf("order must be >= 0")
	}

	imageID := uuid.NewString()
	key := a.ID + "/" + imageID + strings.ToLower(path.Ext(in.Filename))

	url, err := s.blobs.Put(ctx, key, in.File, in.ContentType)
	if err != nil {
		return Image{}, err
	}

	img := Image{
		ID:         imageID,
		AnimalID:   a.ID,
		URL:        url,
		StorageKey: key,
		IsPrimary:  in.IsPrimary,
		Caption:    strings.TrimSpace(in.Caption),
		SortOrder:  in.SortOrder,
		CreatedAt:  s.now(),
	}

	stored, err := s.repo.AddImage(ctx, img)
	if err != nil {
		// los metadatos no entraron: no dejamos el binario huérfano
		if derr := s.blobs.Delete(ctx, key); derr != nil && !errors.Is(derr, blob.ErrNotFound) {
			s.log.Warn("orphan blob cleanup failed", map[string]any{
				"key":   key,
				"error": derr.Error(),
			})
		}
		return Image{}, err
	}
	return stored, nil
}

func (s *Service) DeleteImage(ctx context.Context, animalID, imageID string, claims auth.Claims) error {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		return err
	}
	if !authz.OwnerOrAdmin(claims, a.CreatedByID) {
		return ErrForbidden
	}

	img, err := s.repo.GetImage(ctx, a.ID, strings.TrimSpace(imageID))
	if err != nil {
		return err
	}

	if err := s.repo.DeleteImage(ctx, a.ID, img.ID); err != nil {
		return err
	}

	s.deleteBlob(ctx, img)
	return nil
}

// deleteBlob borra el binario con política log-and-continue: un archivo
// que ya no está no puede frenar el borrado de metadatos.
func (s *Service) deleteBlob(ctx context.Context, img Image) {
	if img.StorageKey == "" {
		return
	}
	if err := s.blobs.Delete(ctx, img.StorageKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.log.Warn("image blob delete failed", map[string]any{
			"animal_id": img.AnimalID,
			"image_id":  img.ID,
			"key":       img.StorageKey,
			"error":     err.Error(),
		})
	}
}

type AddVaccinationInput struct {
	Name           string
	Date           time.Time
	ExpirationDate *time.Time
	Veterinarian   string
	Notes          string
	DocumentURL    string
}

func (s *Service) AddVaccination(ctx context.Context, animalID string, claims auth.Claims, in AddVaccinationInput) (Vaccination, error) {
	a, err := s.repo.GetByID(ctx, strings.TrimSpace(animalID))
	if err != nil {
		return Vaccination{}, err
	}
	if !authz.OwnerOrAdmin(claims, a.CreatedByID) {
		return Vaccination{}, ErrForbidden
	}
	if strings.TrimSpace(in.Name) == "" {
		return Vaccination{}, validationf("vaccination name is required")
	}
	if in.Date.IsZero() {
		return Vaccination{}, validationf("vaccination date is required")
	}

	v := Vaccination{
		ID:             uuid.NewString(),
		AnimalID:       a.ID,
		Name:           strings.TrimSpace(in.Name),
		Date:           in.Date,
		ExpirationDate: in.ExpirationDate,
		Veterinarian:   strings.TrimSpace(in.Veterinarian),
		Notes:          strings.TrimSpace(in.Notes),
		DocumentURL:    strings.TrimSpace(in.DocumentURL),
		CreatedAt:      s.now(),
	}

	if err := s.repo.AddVaccination(ctx, v); err != nil {
		return Vaccination{}, err
	}
	return v, nil
}
