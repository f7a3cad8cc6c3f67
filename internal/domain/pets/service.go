package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-marketplace/internal/platform/logger"
)

type Service struct {
	repo Repository
	pub  Publisher
	log  logger.Logger
	now  func() time.Time
}

// NewService arma el servicio. pub y log pueden ser nil.
func NewService(repo Repository, pub Publisher, log logger.Logger) *Service {
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo: repo,
		pub:  pub,
		log:  log.With(map[string]any{"component": "pets.service"}),
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in Draft) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, invalid("owner is required")
	}

	p := FromDraft(ownerUserID, in)
	if err := Validate(p); err != nil {
		return Pet{}, err
	}

	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}

	created := p.Clone()
	s.pub.Publish(ctx, Change{Kind: ChangeInsert, New: &created})
	s.log.Debug("pet created", map[string]any{"pet_id": p.ID, "owner_id": p.OwnerUserID})
	return p, nil
}

// Update aplica un patch parcial. Solo el owner puede editar.
func (s *Service) Update(ctx context.Context, id, actorUserID string, patch Patch) (Pet, error) {
	if patch.IsEmpty() {
		return Pet{}, invalid("empty patch")
	}

	current, err := s.authorize(ctx, id, actorUserID)
	if err != nil {
		return Pet{}, err
	}

	updated := patch.Apply(current)
	if err := Validate(updated); err != nil {
		return Pet{}, err
	}
	updated.Version = current.Version + 1
	updated.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Pet{}, err
	}

	old, fresh := current.Clone(), updated.Clone()
	s.pub.Publish(ctx, Change{Kind: ChangeUpdate, New: &fresh, Old: &old})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, actorUserID string) error {
	current, err := s.authorize(ctx, id, actorUserID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return err
	}

	old := current.Clone()
	s.pub.Publish(ctx, Change{Kind: ChangeDelete, Old: &old})
	s.log.Debug("pet deleted", map[string]any{"pet_id": current.ID})
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListByOwner devuelve los pets del owner, más nuevos primero.
func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, invalid("owner is required")
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) authorize(ctx context.Context, id, actorUserID string) (Pet, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if current.OwnerUserID != strings.TrimSpace(actorUserID) {
		return Pet{}, ErrForbidden
	}
	return current, nil
}
