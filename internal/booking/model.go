package booking

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid calendar date")

// ParseDate validates and parses a calendar date string. time.Parse rejects
// impossible dates such as 2024-02-30.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// Appointment is a completed booking. Rows are written only by the
// reservation transaction and are never mutated or deleted; ids are assigned
// from a monotone sequence and never reused.
type Appointment struct {
	ID        int64
	Date      time.Time
	Caregiver string
	Patient   string
	Vaccine   string
	CreatedAt time.Time
}
