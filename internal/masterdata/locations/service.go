package locations

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/meridian-logistics/meridian/internal/flow"
	"github.com/meridian-logistics/meridian/internal/platform/httpx"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Location, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Location, error) {
	if id <= 0 {
		return Location{}, fmt.Errorf("%w: invalid location id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, loc Location) (Location, error) {
	if err := s.check(loc); err != nil {
		return Location{}, err
	}
	return s.repo.Create(ctx, loc)
}

func (s *Service) Update(ctx context.Context, id int64, loc Location) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid location id", httpx.ErrValidation)
	}
	if err := s.check(loc); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, loc)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid location id", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) check(loc Location) error {
	if err := s.validate.Struct(loc); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	return nil
}

// FlowConfig assembles the classifier configuration from active registry
// entries. An empty registry falls back to the built-in defaults so a fresh
// deployment can classify before anything is registered.
func (s *Service) FlowConfig(ctx context.Context) (flow.Config, error) {
	active := true
	locs, err := s.repo.List(ctx, ListFilters{Active: &active})
	if err != nil {
		return flow.Config{}, err
	}
	if len(locs) == 0 {
		return flow.DefaultConfig(), nil
	}

	cfg := flow.Config{Priority: make(map[string]int)}
	for _, loc := range locs {
		switch loc.Kind {
		case KindWarehouse:
			cfg.Warehouses = append(cfg.Warehouses, loc.Name)
			cfg.Priority[loc.Name] = loc.Priority
		case KindSite:
			cfg.Sites = append(cfg.Sites, loc.Name)
		case KindTransit:
			cfg.Transits = append(cfg.Transits, loc.Name)
		}
	}
	return cfg, nil
}
