package cli_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/cli"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/memstore"
)

func newRunner(t *testing.T) *cli.Runner {
	t.Helper()

	store := memstore.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return cli.New(
		identity.NewService(store, log),
		inventory.NewService(store, log),
		booking.NewService(store, log),
		strings.NewReader(""),
		io.Discard,
	)
}

func exec(t *testing.T, r *cli.Runner, line string) string {
	t.Helper()
	out, _ := r.Execute(context.Background(), line)
	return out
}

func TestCreateAndLoginPatient(t *testing.T) {
	r := newRunner(t)

	assert.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))
	assert.Equal(t, "Logged in as p1", exec(t, r, "login_patient p1 abcABC1!"))
}

func TestCreatePatientOutcomes(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))

	assert.Equal(t, "Username taken, try again!", exec(t, r, "create_patient p1 abcABC1!"))
	assert.Contains(t, exec(t, r, "create_patient p2 weakpw"), "strong password")
	assert.Contains(t, exec(t, r, "create_patient p2"), "Usage:")
}

func TestLoginOutcomes(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))

	// bad credentials, unknown user: same message
	assert.Equal(t, "Login failed!", exec(t, r, "login_patient p1 wrongPW1!"))
	assert.Equal(t, "Login failed!", exec(t, r, "login_patient ghost abcABC1!"))

	require.Equal(t, "Logged in as p1", exec(t, r, "login_patient p1 abcABC1!"))

	// second login rejected, session unchanged
	assert.Contains(t, exec(t, r, "login_patient p1 abcABC1!"), "already logged in")
	assert.Equal(t, "Successfully logged out!", exec(t, r, "logout"))
}

func TestLoginWhileLoggedInAsOtherRole(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user cg1", exec(t, r, "create_caregiver cg1 abcABC1!"))
	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))
	require.Equal(t, "Logged in as cg1", exec(t, r, "login_caregiver cg1 abcABC1!"))

	assert.Contains(t, exec(t, r, "login_patient p1 abcABC1!"), "already logged in")

	// session is still the caregiver: caregiver-only command works
	assert.Equal(t, "Doses updated!", exec(t, r, "add_doses Moderna 5"))
}

func TestRoleGating(t *testing.T) {
	r := newRunner(t)

	assert.Equal(t, "Please login first!", exec(t, r, "reserve 2024-01-05 Moderna"))
	assert.Equal(t, "Please login first!", exec(t, r, "upload_availability 2024-01-05"))
	assert.Equal(t, "Please login first!", exec(t, r, "show_appointments"))
	assert.Equal(t, "Please login first!", exec(t, r, "search_caregiver_schedule 2024-01-05"))
	assert.Equal(t, "Please login first!", exec(t, r, "logout"))

	require.Equal(t, "Created user cg1", exec(t, r, "create_caregiver cg1 abcABC1!"))
	require.Equal(t, "Logged in as cg1", exec(t, r, "login_caregiver cg1 abcABC1!"))

	assert.Equal(t, "Please login as a patient!", exec(t, r, "reserve 2024-01-05 Moderna"))

	require.Equal(t, "Successfully logged out!", exec(t, r, "logout"))
	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))
	require.Equal(t, "Logged in as p1", exec(t, r, "login_patient p1 abcABC1!"))

	assert.Equal(t, "Please login as a caregiver first!", exec(t, r, "upload_availability 2024-01-05"))
	assert.Equal(t, "Please login as a caregiver first!", exec(t, r, "add_doses Moderna 5"))
}

func TestFullReservationScenario(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user cg1", exec(t, r, "create_caregiver cg1 abcABC1!"))
	require.Equal(t, "Logged in as cg1", exec(t, r, "login_caregiver cg1 abcABC1!"))
	require.Equal(t, "Availability uploaded!", exec(t, r, "upload_availability 2024-01-05"))
	assert.Equal(t, "Availability already uploaded for this date!", exec(t, r, "upload_availability 2024-01-05"))
	require.Equal(t, "Doses updated!", exec(t, r, "add_doses Moderna 5"))
	require.Equal(t, "Successfully logged out!", exec(t, r, "logout"))

	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))
	require.Equal(t, "Logged in as p1", exec(t, r, "login_patient p1 abcABC1!"))

	schedule := exec(t, r, "search_caregiver_schedule 2024-01-05")
	assert.Contains(t, schedule, "cg1")
	assert.Contains(t, schedule, "Moderna 5")

	assert.Equal(t, "Appointment ID: 1, Caregiver username: cg1", exec(t, r, "reserve 2024-01-05 Moderna"))

	schedule = exec(t, r, "search_caregiver_schedule 2024-01-05")
	assert.Contains(t, schedule, "No caregivers available on this date.")
	assert.Contains(t, schedule, "Moderna 4")

	appts := exec(t, r, "show_appointments")
	assert.Contains(t, appts, "1 Moderna 2024-01-05 cg1")

	// no slot left for this date now
	assert.Equal(t, "No caregiver is available!", exec(t, r, "reserve 2024-01-05 Moderna"))
}

func TestReserveOutcomes(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))
	require.Equal(t, "Logged in as p1", exec(t, r, "login_patient p1 abcABC1!"))

	assert.Contains(t, exec(t, r, "reserve 2024-02-30 Moderna"), "valid date")
	assert.Contains(t, exec(t, r, "reserve 2024-01-05"), "Usage:")
	assert.Equal(t, "Not enough available doses!", exec(t, r, "reserve 2024-01-05 Moderna"))
}

func TestAddDosesValidation(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user cg1", exec(t, r, "create_caregiver cg1 abcABC1!"))
	require.Equal(t, "Logged in as cg1", exec(t, r, "login_caregiver cg1 abcABC1!"))

	assert.Contains(t, exec(t, r, "add_doses Moderna ten"), "non-negative integer")
	assert.Contains(t, exec(t, r, "add_doses Moderna -5"), "non-negative integer")
	assert.Contains(t, exec(t, r, "add_doses Moderna"), "Usage:")
}

func TestShowAppointmentsEmpty(t *testing.T) {
	r := newRunner(t)

	require.Equal(t, "Created user p1", exec(t, r, "create_patient p1 abcABC1!"))
	require.Equal(t, "Logged in as p1", exec(t, r, "login_patient p1 abcABC1!"))

	assert.Equal(t, "No appointments found.", exec(t, r, "show_appointments"))
}

func TestCancelUnimplemented(t *testing.T) {
	r := newRunner(t)

	assert.Equal(t, "cancel is not implemented yet!", exec(t, r, "cancel 1"))
	assert.Contains(t, exec(t, r, "cancel"), "Usage:")
}

func TestUnknownAndQuit(t *testing.T) {
	r := newRunner(t)

	assert.Equal(t, "Invalid operation name!", exec(t, r, "frobnicate"))

	out, quit := r.Execute(context.Background(), "quit")
	assert.Equal(t, "Bye!", out)
	assert.True(t, quit)

	out, quit = r.Execute(context.Background(), "   ")
	assert.Equal(t, "", out)
	assert.False(t, quit)
}
