package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/restobook/resto-booking-backend/internal/person"
)

// Query is a set of optional predicates over the booking store. The
// predicates combine with logical AND; the empty query matches every
// booking. Callers that want to require at least one predicate (the
// filter command does) enforce that themselves.
type Query struct {
	Person *person.Person // match bookings owned by this person
	Date   *time.Time     // match bookings on this calendar date; time of day ignored
	Status *Status        // exact status match
}

// IsZero reports whether no predicates were supplied.
func (q Query) IsZero() bool {
	return q.Person == nil && q.Date == nil && q.Status == nil
}

// Matches reports whether the booking satisfies every supplied predicate.
func (q Query) Matches(b *Booking) bool {
	if q.Person != nil {
		if b.Person == nil || !b.Person.SameIdentity(q.Person) {
			return false
		}
	}
	if q.Date != nil {
		y1, m1, d1 := b.At.Date()
		y2, m2, d2 := q.Date.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}
	if q.Status != nil && b.Status != *q.Status {
		return false
	}
	return true
}

// Select returns the bookings from the store matching the query,
// ordered ascending by scheduled time.
func (q Query) Select(s *Store) []*Booking {
	return s.collect(q.Matches)
}

// Describe renders the supplied predicates for user-facing messages,
// e.g. `phone 98765432, date 2025-04-05, status upcoming`.
func (q Query) Describe() string {
	var parts []string
	if q.Person != nil {
		parts = append(parts, fmt.Sprintf("phone %s", q.Person.Phone))
	}
	if q.Date != nil {
		parts = append(parts, fmt.Sprintf("date %s", q.Date.Format("2006-01-02")))
	}
	if q.Status != nil {
		parts = append(parts, fmt.Sprintf("status %s", *q.Status))
	}
	if len(parts) == 0 {
		return "all bookings"
	}
	return strings.Join(parts, ", ")
}
