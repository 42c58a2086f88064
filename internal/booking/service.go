package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medbook/vaccine-scheduler/internal/identity"
)

// Service is the reservation engine. It validates input, delegates to the
// repository's transactional operations, and never retries a failed booking.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Publish records a caregiver's availability for a date.
func (s *Service) Publish(ctx context.Context, caregiver, dateStr string) error {
	date, err := ParseDate(dateStr)
	if err != nil {
		return err
	}

	if err := s.repo.PublishSlot(ctx, caregiver, date); err != nil {
		return err
	}

	s.log.Info("availability published", "caregiver", caregiver, "date", dateStr)
	return nil
}

// ListAvailable returns the caregivers free on a date, ascending by username.
func (s *Service) ListAvailable(ctx context.Context, dateStr string) ([]string, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAvailable(ctx, date)
}

// Reserve books one appointment: it claims the lexicographically smallest
// available caregiver for the date and consumes one dose of the vaccine,
// atomically. Exactly one terminal outcome is reported per call.
func (s *Service) Reserve(ctx context.Context, patient, dateStr, vaccine string) (*Appointment, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	appt, err := s.repo.Reserve(ctx, patient, date, vaccine)
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment reserved",
		"appointment_id", appt.ID,
		"patient", patient,
		"caregiver", appt.Caregiver,
		"date", dateStr,
		"vaccine", vaccine,
	)
	return appt, nil
}

// ListForUser returns the appointments in which the user participates,
// ascending by appointment id.
func (s *Service) ListForUser(ctx context.Context, role identity.Role, username string) ([]Appointment, error) {
	switch role {
	case identity.RolePatient:
		return s.repo.ListByPatient(ctx, username)
	case identity.RoleCaregiver:
		return s.repo.ListByCaregiver(ctx, username)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}
