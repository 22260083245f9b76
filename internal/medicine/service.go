package medicine

import (
	"context"
	"time"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/filter"
)

// Validation constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 512
	MaxSubstanceLength   = 200
)

// Service provides medicine catalogue operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new medicine service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the medicines matching filters.
func (s *Service) List(ctx context.Context, filters []filter.Filter) ([]*Medicine, error) {
	return s.repo.List(ctx, filters)
}

// Get retrieves a medicine by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Medicine, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a medicine to the catalogue.
func (s *Service) Create(ctx context.Context, input *models.MedicineCreateRequest) (*Medicine, error) {
	now := s.now()
	m := &Medicine{
		Title:           input.Title,
		Description:     input.Description,
		ActiveSubstance: input.ActiveSubstance,
		PricePerMg:      input.PricePerMg,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validate(m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update applies a partial update to a medicine.
func (s *Service) Update(ctx context.Context, id int64, input *models.MedicineUpdateRequest) (*Medicine, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		m.Title = *input.Title
	}
	if input.Description != nil {
		m.Description = *input.Description
	}
	if input.ActiveSubstance != nil {
		m.ActiveSubstance = *input.ActiveSubstance
	}
	if input.PricePerMg != nil {
		m.PricePerMg = *input.PricePerMg
	}
	if err := validate(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes a medicine and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (*Medicine, error) {
	return s.repo.Delete(ctx, id)
}

func validate(m *Medicine) error {
	var v models.Validator
	if v.Required("title", m.Title) {
		v.MaxLen("title", m.Title, MaxTitleLength)
	}
	v.MaxLen("description", m.Description, MaxDescriptionLength)
	if v.Required("activeSubstance", m.ActiveSubstance) {
		v.MaxLen("activeSubstance", m.ActiveSubstance, MaxSubstanceLength)
	}
	v.Check(m.PricePerMg >= 0, "pricePerMg", "OUT_OF_RANGE", "must not be negative")
	return v.Err()
}
