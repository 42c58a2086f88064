// Package cli implements the line-oriented command interface: one command
// per line, space-separated tokens, one human-readable status block per
// command. All presentation strings live here; outcome classification comes
// from the sentinel errors of the underlying services.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/medbook/vaccine-scheduler/internal/booking"
	"github.com/medbook/vaccine-scheduler/internal/identity"
	"github.com/medbook/vaccine-scheduler/internal/inventory"
	"github.com/medbook/vaccine-scheduler/internal/session"
)

const greeting = `Welcome to the Vaccine Reservation Scheduling Application!
*** Please enter one of the following commands ***
> create_patient <username> <password>
> create_caregiver <username> <password>
> login_patient <username> <password>
> login_caregiver <username> <password>
> search_caregiver_schedule <date>
> reserve <date> <vaccine>
> upload_availability <date>
> cancel <appointment_id>
> add_doses <vaccine> <number>
> show_appointments
> logout
> quit`

type Runner struct {
	identities *identity.Service
	inventory  *inventory.Service
	bookings   *booking.Service
	session    *session.Manager

	in  io.Reader
	out io.Writer
}

func New(identities *identity.Service, stock *inventory.Service, bookings *booking.Service, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		identities: identities,
		inventory:  stock,
		bookings:   bookings,
		session:    session.NewManager(),
		in:         in,
		out:        out,
	}
}

// Run reads commands until quit or EOF.
func (r *Runner) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, greeting)

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		out, quit := r.Execute(ctx, line)
		if out != "" {
			fmt.Fprintln(r.out, out)
		}
		if quit {
			break
		}
	}

	return scanner.Err()
}

// Execute runs a single command line and returns its status output. The
// second return value reports whether the caller asked to quit.
func (r *Runner) Execute(ctx context.Context, line string) (string, bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", false
	}

	switch tokens[0] {
	case "create_patient":
		return r.register(ctx, identity.RolePatient, tokens), false
	case "create_caregiver":
		return r.register(ctx, identity.RoleCaregiver, tokens), false
	case "login_patient":
		return r.login(ctx, identity.RolePatient, tokens), false
	case "login_caregiver":
		return r.login(ctx, identity.RoleCaregiver, tokens), false
	case "search_caregiver_schedule":
		return r.searchSchedule(ctx, tokens), false
	case "reserve":
		return r.reserve(ctx, tokens), false
	case "upload_availability":
		return r.uploadAvailability(ctx, tokens), false
	case "cancel":
		return r.cancel(tokens), false
	case "add_doses":
		return r.addDoses(ctx, tokens), false
	case "show_appointments":
		return r.showAppointments(ctx, tokens), false
	case "logout":
		return r.logout(tokens), false
	case "quit":
		return "Bye!", true
	default:
		return "Invalid operation name!", false
	}
}

func (r *Runner) register(ctx context.Context, role identity.Role, tokens []string) string {
	if len(tokens) != 3 {
		return fmt.Sprintf("Usage: create_%s <username> <password>", role)
	}
	username, password := tokens[1], tokens[2]

	err := r.identities.Register(ctx, role, username, password)
	switch {
	case err == nil:
		return "Created user " + username
	case errors.Is(err, identity.ErrUsernameTaken):
		return "Username taken, try again!"
	case errors.Is(err, identity.ErrWeakPassword):
		return "Please use a strong password: 8+ characters, at least one uppercase and one lowercase letter, one number, and one special character from \"!\", \"@\", \"#\", \"?\""
	default:
		return "Failed to create user, please try again!"
	}
}

func (r *Runner) login(ctx context.Context, role identity.Role, tokens []string) string {
	if _, ok := r.session.Current(); ok {
		return "User already logged in, please logout first!"
	}
	if len(tokens) != 3 {
		return fmt.Sprintf("Usage: login_%s <username> <password>", role)
	}
	username, password := tokens[1], tokens[2]

	id, err := r.identities.Authenticate(ctx, role, username, password)
	if err != nil {
		// unknown username and wrong password read the same
		return "Login failed!"
	}

	if err := r.session.Login(id); err != nil {
		return "User already logged in, please logout first!"
	}

	return "Logged in as " + username
}

func (r *Runner) searchSchedule(ctx context.Context, tokens []string) string {
	if _, err := r.session.Require(); err != nil {
		return "Please login first!"
	}
	if len(tokens) != 2 {
		return "Usage: search_caregiver_schedule <date>"
	}

	caregivers, err := r.bookings.ListAvailable(ctx, tokens[1])
	if err != nil {
		if errors.Is(err, booking.ErrInvalidDate) {
			return "Please enter a valid date (YYYY-MM-DD)!"
		}
		return "Error occurred when searching caregiver schedule, please try again!"
	}

	vaccines, err := r.inventory.ListInStock(ctx)
	if err != nil {
		return "Error occurred when searching caregiver schedule, please try again!"
	}

	var b strings.Builder
	b.WriteString("Available caregivers:")
	if len(caregivers) == 0 {
		b.WriteString("\nNo caregivers available on this date.")
	}
	for _, c := range caregivers {
		b.WriteString("\n" + c)
	}

	b.WriteString("\nAvailable vaccines:")
	if len(vaccines) == 0 {
		b.WriteString("\nNo vaccines in stock.")
	}
	for _, v := range vaccines {
		fmt.Fprintf(&b, "\n%s %d", v.Name, v.Doses)
	}

	return b.String()
}

func (r *Runner) reserve(ctx context.Context, tokens []string) string {
	caller, err := r.session.Require(identity.RolePatient)
	if err != nil {
		if errors.Is(err, session.ErrWrongRole) {
			return "Please login as a patient!"
		}
		return "Please login first!"
	}
	if len(tokens) != 3 {
		return "Usage: reserve <date> <vaccine>"
	}
	date, vaccine := tokens[1], tokens[2]

	appt, err := r.bookings.Reserve(ctx, caller.Username, date, vaccine)
	switch {
	case err == nil:
		return fmt.Sprintf("Appointment ID: %d, Caregiver username: %s", appt.ID, appt.Caregiver)
	case errors.Is(err, booking.ErrInvalidDate):
		return "Please enter a valid date (YYYY-MM-DD)!"
	case errors.Is(err, inventory.ErrInsufficientDoses):
		return "Not enough available doses!"
	case errors.Is(err, booking.ErrNoCaregiverAvailable):
		return "No caregiver is available!"
	default:
		return "Please try again!"
	}
}

func (r *Runner) uploadAvailability(ctx context.Context, tokens []string) string {
	caller, err := r.session.Require(identity.RoleCaregiver)
	if err != nil {
		if errors.Is(err, session.ErrWrongRole) {
			return "Please login as a caregiver first!"
		}
		return "Please login first!"
	}
	if len(tokens) != 2 {
		return "Usage: upload_availability <date>"
	}

	err = r.bookings.Publish(ctx, caller.Username, tokens[1])
	switch {
	case err == nil:
		return "Availability uploaded!"
	case errors.Is(err, booking.ErrInvalidDate):
		return "Please enter a valid date (YYYY-MM-DD)!"
	case errors.Is(err, booking.ErrSlotAlreadyPublished):
		return "Availability already uploaded for this date!"
	default:
		return "Error occurred when uploading availability, please try again!"
	}
}

// cancel is reserved for a future extension; the command is parsed but has
// no engine support.
func (r *Runner) cancel(tokens []string) string {
	if len(tokens) != 2 {
		return "Usage: cancel <appointment_id>"
	}
	return "cancel is not implemented yet!"
}

func (r *Runner) addDoses(ctx context.Context, tokens []string) string {
	if _, err := r.session.Require(identity.RoleCaregiver); err != nil {
		if errors.Is(err, session.ErrWrongRole) {
			return "Please login as a caregiver first!"
		}
		return "Please login first!"
	}
	if len(tokens) != 3 {
		return "Usage: add_doses <vaccine> <number>"
	}

	doses, err := strconv.Atoi(tokens[2])
	if err != nil || doses < 0 {
		return "Number of doses must be a non-negative integer!"
	}

	if err := r.inventory.AddDoses(ctx, tokens[1], doses); err != nil {
		return "Error occurred when adding doses, please try again!"
	}

	return "Doses updated!"
}

func (r *Runner) showAppointments(ctx context.Context, tokens []string) string {
	caller, err := r.session.Require()
	if err != nil {
		return "Please login first!"
	}
	if len(tokens) != 1 {
		return "Usage: show_appointments"
	}

	appts, err := r.bookings.ListForUser(ctx, caller.Role, caller.Username)
	if err != nil {
		return "Error occurred when showing appointments, please try again!"
	}
	if len(appts) == 0 {
		return "No appointments found."
	}

	var b strings.Builder
	for i, a := range appts {
		other := a.Caregiver
		if caller.Role == identity.RoleCaregiver {
			other = a.Patient
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d %s %s %s", a.ID, a.Vaccine, a.Date.Format(booking.DateLayout), other)
	}

	return b.String()
}

func (r *Runner) logout(tokens []string) string {
	if len(tokens) != 1 {
		return "Usage: logout"
	}
	if err := r.session.Logout(); err != nil {
		return "Please login first!"
	}
	return "Successfully logged out!"
}
