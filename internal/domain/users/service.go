package users

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("user not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

type SaveProfileInput struct {
	Name      string
	Email     string
	Phone     string
	Location  string
	AvatarURL string
}

// SaveProfile crea o actualiza el perfil del caller. El ID y el email vienen
// del token; la primera escritura provisiona la fila.
func (s *Service) SaveProfile(ctx context.Context, userID string, in SaveProfileInput) (User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return User{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return User{}, ErrInvalidInput
	}

	now := s.now()

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		u = User{
			ID:        userID,
			Role:      RoleUser,
			CreatedAt: now,
		}
	}

	u.Name = strings.TrimSpace(in.Name)
	u.Email = strings.TrimSpace(in.Email)
	u.Phone = strings.TrimSpace(in.Phone)
	u.Location = strings.TrimSpace(in.Location)
	u.AvatarURL = strings.TrimSpace(in.AvatarURL)
	u.UpdatedAt = now

	if err := s.repo.Upsert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}
