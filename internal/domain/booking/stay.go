package booking

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of check-in and check-out dates.
const DateLayout = "2006-01-02"

var ErrInvalidStay = errors.New("checkout must be after checkin")

// DateError reports which date of a stay failed to parse.
type DateError struct {
	Field string
	Value string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DateError) Unwrap() error { return e.Err }

// Stay is the half-open interval of nights [CheckIn, CheckOut).
// The checkout day itself is free for the next guest.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ParseStay parses both dates and enforces checkout > checkin.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return Stay{}, &DateError{Field: "checkin", Value: checkIn, Err: err}
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return Stay{}, &DateError{Field: "checkout", Value: checkOut, Err: err}
	}
	s := Stay{CheckIn: in, CheckOut: out}
	if !s.CheckOut.After(s.CheckIn) {
		return Stay{}, ErrInvalidStay
	}
	return s, nil
}

// Nights returns the number of occupied dates.
func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// Dates lists every occupied date in order, formatted with DateLayout.
func (s Stay) Dates() []string {
	dates := make([]string, 0, s.Nights())
	for d := s.CheckIn; d.Before(s.CheckOut); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}

// Overlaps reports whether two stays share at least one night.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}
