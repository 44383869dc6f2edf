package availability

import (
	"sort"

	"github.com/greenobird/service-booking/internal/domain/booking"
)

// SkipFunc is told about ledger records whose dates cannot be parsed.
type SkipFunc func(b *booking.Booking, err error)

// Calendar is the set of occupied dates derived from a ledger snapshot.
// It is never persisted; build a fresh one for every query.
type Calendar struct {
	occupied map[string]struct{}
	stays    []booking.Stay
}

// Build unions [checkin, checkout) of every booking. Records with malformed
// dates are reported to skip and left out; they never abort the build.
func Build(bookings []*booking.Booking, skip SkipFunc) *Calendar {
	c := &Calendar{occupied: make(map[string]struct{})}
	for _, b := range bookings {
		stay, err := b.Stay()
		if err != nil {
			if skip != nil {
				skip(b, err)
			}
			continue
		}
		c.stays = append(c.stays, stay)
		for _, d := range stay.Dates() {
			c.occupied[d] = struct{}{}
		}
	}
	return c
}

// Dates returns the occupied dates in ascending order.
func (c *Calendar) Dates() []string {
	dates := make([]string, 0, len(c.occupied))
	for d := range c.occupied {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Contains reports whether date (YYYY-MM-DD) is occupied.
func (c *Calendar) Contains(date string) bool {
	_, ok := c.occupied[date]
	return ok
}

// IsRangeFree reports whether stay shares no night with any booked stay.
func (c *Calendar) IsRangeFree(stay booking.Stay) bool {
	for _, booked := range c.stays {
		if booked.Overlaps(stay) {
			return false
		}
	}
	return true
}
