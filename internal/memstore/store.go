// Package memstore is an in-memory implementation of the identity,
// inventory, and booking repositories. All state is guarded by one mutex, so
// every operation — including the multi-table reservation — is atomic by
// construction. It backs the test suite and the CLI's -memory mode.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
)

type identityKey struct {
	role     identity.Role
	username string
}

var (
	_ identity.Repository  = (*Store)(nil)
	_ inventory.Repository = (*Store)(nil)
	_ booking.Repository   = (*Store)(nil)
)

type Store struct {
	mu           sync.Mutex
	identities   map[identityKey]identity.Identity
	vaccines     map[string]int
	slots        map[string]map[string]struct{} // date -> set of caregivers
	appointments []booking.Appointment
	nextID       int64
}

func New() *Store {
	return &Store{
		identities: make(map[identityKey]identity.Identity),
		vaccines:   make(map[string]int),
		slots:      make(map[string]map[string]struct{}),
		nextID:     1,
	}
}

func dateKey(date time.Time) string {
	return date.Format(booking.DateLayout)
}

// identity.Repository

func (s *Store) Create(ctx context.Context, id *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := identityKey{role: id.Role, username: id.Username}
	if _, ok := s.identities[key]; ok {
		return identity.ErrUsernameTaken
	}

	stored := *id
	stored.CreatedAt = time.Now()
	s.identities[key] = stored
	return nil
}

func (s *Store) Get(ctx context.Context, role identity.Role, username string) (*identity.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.identities[identityKey{role: role, username: username}]
	if !ok {
		return nil, identity.ErrIdentityNotFound
	}

	out := id
	return &out, nil
}

// inventory.Repository

func (s *Store) GetDoses(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doses, ok := s.vaccines[name]
	if !ok {
		return 0, inventory.ErrUnknownVaccine
	}
	return doses, nil
}

func (s *Store) ListInStock(ctx context.Context) ([]inventory.Vaccine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []inventory.Vaccine
	for name, doses := range s.vaccines {
		if doses > 0 {
			result = append(result, inventory.Vaccine{Name: name, Doses: doses})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) AddDoses(ctx context.Context, name string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vaccines[name] += delta
	return nil
}

func (s *Store) Decrement(ctx context.Context, name string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.decrementLocked(name, amount)
}

func (s *Store) decrementLocked(name string, amount int) error {
	doses, ok := s.vaccines[name]
	if !ok {
		return inventory.ErrUnknownVaccine
	}
	if doses < amount {
		return inventory.ErrInsufficientDoses
	}
	s.vaccines[name] = doses - amount
	return nil
}

// booking.Repository

func (s *Store) PublishSlot(ctx context.Context, caregiver string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dateKey(date)
	caregivers, ok := s.slots[key]
	if !ok {
		caregivers = make(map[string]struct{})
		s.slots[key] = caregivers
	}
	if _, ok := caregivers[caregiver]; ok {
		return booking.ErrSlotAlreadyPublished
	}

	caregivers[caregiver] = struct{}{}
	return nil
}

func (s *Store) ListAvailable(ctx context.Context, date time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.availableLocked(dateKey(date)), nil
}

func (s *Store) availableLocked(key string) []string {
	var result []string
	for caregiver := range s.slots[key] {
		result = append(result, caregiver)
	}
	sort.Strings(result)
	return result
}

func (s *Store) Reserve(ctx context.Context, patient string, date time.Time, vaccine string) (*booking.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vaccines[vaccine] <= 0 {
		return nil, inventory.ErrInsufficientDoses
	}

	key := dateKey(date)
	available := s.availableLocked(key)
	if len(available) == 0 {
		return nil, booking.ErrNoCaregiverAvailable
	}
	caregiver := available[0]

	if err := s.decrementLocked(vaccine, 1); err != nil {
		return nil, err
	}
	delete(s.slots[key], caregiver)

	appt := booking.Appointment{
		ID:        s.nextID,
		Date:      date,
		Caregiver: caregiver,
		Patient:   patient,
		Vaccine:   vaccine,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.appointments = append(s.appointments, appt)

	return &appt, nil
}

func (s *Store) ListByPatient(ctx context.Context, patient string) ([]booking.Appointment, error) {
	return s.listAppointments(func(a booking.Appointment) bool { return a.Patient == patient }), nil
}

func (s *Store) ListByCaregiver(ctx context.Context, caregiver string) ([]booking.Appointment, error) {
	return s.listAppointments(func(a booking.Appointment) bool { return a.Caregiver == caregiver }), nil
}

func (s *Store) listAppointments(match func(booking.Appointment) bool) []booking.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []booking.Appointment
	for _, a := range s.appointments {
		if match(a) {
			result = append(result, a)
		}
	}
	// appointments are appended in id order already
	return result
}
