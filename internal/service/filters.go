package service

import (
	"context"
	"errors"
	"fmt"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/repository"
)

const DefaultFilterKey = "topbarFilters"

type filterService struct {
	repo repository.FilterRepository
	key  string
}

func NewFilterService(repo repository.FilterRepository, key string) FilterService {
	if key == "" {
		key = DefaultFilterKey
	}
	return &filterService{repo: repo, key: key}
}

// Load returns the persisted filter set, or the zero set if nothing was saved yet.
func (s *filterService) Load(ctx context.Context) (domain.FilterSet, error) {
	set, err := s.repo.Load(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.FilterSet{}, nil
	}
	if err != nil {
		return domain.FilterSet{}, fmt.Errorf("load filters %q: %w", s.key, err)
	}
	return *set, nil
}

func (s *filterService) Save(ctx context.Context, filters domain.FilterSet) error {
	if err := checkFilters(filters); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, s.key, filters); err != nil {
		return fmt.Errorf("save filters %q: %w", s.key, err)
	}
	return nil
}

func checkFilters(f domain.FilterSet) error {
	if f.Availability != "" && !f.Availability.Valid() {
		return fieldError("availability", "must be one of: available unavailable all")
	}
	if f.Start != nil && f.End != nil && !f.End.After(*f.Start) {
		return fieldError("end", "must be after start")
	}
	return nil
}
