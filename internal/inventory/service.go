package inventory

import (
	"context"
	"fmt"
	"log/slog"
)

type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) GetDoses(ctx context.Context, name string) (int, error) {
	return s.repo.GetDoses(ctx, name)
}

func (s *Service) ListInStock(ctx context.Context) ([]Vaccine, error) {
	return s.repo.ListInStock(ctx)
}

// AddDoses creates the vaccine if it is new, otherwise tops up its count.
func (s *Service) AddDoses(ctx context.Context, name string, delta int) error {
	if delta < 0 {
		return ErrInvalidAmount
	}

	if err := s.repo.AddDoses(ctx, name, delta); err != nil {
		return fmt.Errorf("add doses: %w", err)
	}

	s.log.Info("doses added", "vaccine", name, "delta", delta)
	return nil
}

func (s *Service) Decrement(ctx context.Context, name string, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.repo.Decrement(ctx, name, amount)
}
