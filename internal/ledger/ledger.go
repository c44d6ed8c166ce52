package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/person"
)

// Ledger owns the person collection and the booking store and keeps the
// two consistent: every booking ID held by a person resolves to a live
// booking whose owner is that person, and vice versa.
//
// A single mutex guards the whole aggregate. Operations such as
// AddBooking and RemovePerson touch both collections and must be one
// critical section; with the HTTP boundary on top, requests arrive
// concurrently. Every booking or person handed out is a detached copy
// built while the lock is held, so callers can read and serialize the
// result after the lock is released without racing later mutations.
type Ledger struct {
	mu       sync.Mutex
	persons  *person.List
	bookings *booking.Store
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		persons:  person.NewList(),
		bookings: booking.NewStore(),
	}
}

// AddPerson inserts a person. Both the name and the phone number must
// be unique within the ledger. The ledger stores its own copy, so the
// caller's pointer stays private and never reflects later ledger state.
func (l *Ledger) AddPerson(p *person.Person) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.persons.FindByPhone(p.Phone); ok {
		return person.ErrDuplicate
	}
	return l.persons.Add(p.Clone())
}

// RemovePerson removes the person with the given phone number and every
// booking that references them. A booking cannot outlive its person as
// a live, filterable record.
func (l *Ledger) RemovePerson(phone person.Phone) (*person.Person, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.persons.FindByPhone(phone)
	if !ok {
		return nil, person.ErrNotFound
	}
	for _, id := range p.BookingIDs() {
		if err := l.bookings.Remove(id); err != nil {
			panic(fmt.Sprintf("ledger: person %q references missing booking %d", p.Name, id))
		}
	}
	if err := l.persons.Remove(p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindPerson looks a person up by phone number.
func (l *Ledger) FindPerson(phone person.Phone) (*person.Person, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.persons.FindByPhone(phone)
	if !ok {
		return nil, person.ErrNotFound
	}
	return p.Clone(), nil
}

// Persons returns every person sorted by name.
func (l *Ledger) Persons() []*person.Person {
	l.mu.Lock()
	defer l.mu.Unlock()

	live := l.persons.All()
	out := make([]*person.Person, len(live))
	for i, p := range live {
		out[i] = p.Clone()
	}
	return out
}

// SetMembership flips the membership flag of the person with the given
// phone number. Returns the person and whether the flag changed.
func (l *Ledger) SetMembership(phone person.Phone, isMember bool) (*person.Person, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.persons.FindByPhone(phone)
	if !ok {
		return nil, false, person.ErrNotFound
	}
	changed := p.SetMembership(isMember)
	return p.Clone(), changed, nil
}

// AddBooking creates a booking for the person with the given phone
// number. The person is resolved before any state changes, so a failed
// lookup leaves the ledger untouched. The new booking starts upcoming
// with CreatedAt stamped now, and its ID is recorded in the person's
// back-reference set.
func (l *Ledger) AddBooking(phone person.Phone, at time.Time, pax int, remarks string, tags []string) (*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.persons.FindByPhone(phone)
	if !ok {
		return nil, person.ErrNotFound
	}

	b, err := booking.New(l.bookings.AllocateID(), p, at, pax, remarks, tags)
	if err != nil {
		return nil, err
	}
	if err := l.bookings.Add(b); err != nil {
		return nil, err
	}
	p.AddBookingID(b.ID)
	return b.Clone(), nil
}

// DeleteBooking removes the booking and drops its ID from the owning
// person's set in the same critical section.
func (l *Ledger) DeleteBooking(id int) (*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings.Get(id)
	if !ok {
		return nil, booking.ErrNotFound
	}
	if err := l.bookings.Remove(id); err != nil {
		return nil, err
	}
	if b.Person != nil {
		b.Person.RemoveBookingID(id)
	}
	return b.Clone(), nil
}

// EditBooking applies a partial update to the booking. The returned
// bool reports whether the new scheduled time lies in the past: moving
// a booking into the past is allowed, but callers surface it as an
// advisory warning.
func (l *Ledger) EditBooking(id int, patch booking.Patch) (*booking.Booking, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings.Get(id)
	if !ok {
		return nil, false, booking.ErrNotFound
	}
	if err := patch.Validate(); err != nil {
		return nil, false, err
	}
	b.Apply(patch)

	pastWarning := patch.At != nil && b.At.Before(time.Now())
	return b.Clone(), pastWarning, nil
}

// MarkBooking sets the status of the booking and returns its new state.
// Transitions are permissive: a completed or cancelled booking may be
// re-marked upcoming.
func (l *Ledger) MarkBooking(id int, status booking.Status) (*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.bookings.SetStatus(id, status); err != nil {
		return nil, err
	}
	b, _ := l.bookings.Get(id)
	return b.Clone(), nil
}

// ClearRetired removes every cancelled or completed booking from the
// store and from the owning persons' back-reference sets, returning the
// number cleared. Zero means there was nothing to clear; it is not an
// error.
func (l *Ledger) ClearRetired() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	retired := l.bookings.Retired()
	for _, b := range retired {
		if b.Person != nil {
			b.Person.RemoveBookingID(b.ID)
		}
	}
	l.bookings.ClearSubset(retired)
	return len(retired)
}

// Filter returns the bookings matching the given optional predicates,
// ordered ascending by scheduled time, together with a description of
// the predicates for user-facing messages. A phone predicate resolves
// the person first and fails if no person matches.
func (l *Ledger) Filter(phone *person.Phone, date *time.Time, status *booking.Status) ([]*booking.Booking, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	q := booking.Query{Date: date, Status: status}
	if phone != nil {
		p, ok := l.persons.FindByPhone(*phone)
		if !ok {
			return nil, "", person.ErrNotFound
		}
		q.Person = p
	}
	return cloneBookings(q.Select(l.bookings)), q.Describe(), nil
}

// Booking returns the booking with the given ID.
func (l *Ledger) Booking(id int) (*booking.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings.Get(id)
	if !ok {
		return nil, booking.ErrNotFound
	}
	return b.Clone(), nil
}

// Bookings returns every booking ordered ascending by scheduled time.
func (l *Ledger) Bookings() []*booking.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneBookings(l.bookings.All())
}

// UpcomingBookings returns the upcoming bookings ordered ascending by
// scheduled time.
func (l *Ledger) UpcomingBookings() []*booking.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneBookings(l.bookings.Upcoming())
}

// HasRetiredBookings reports whether any booking is eligible for clearing.
func (l *Ledger) HasRetiredBookings() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.bookings.Retired()) > 0
}

func cloneBookings(bookings []*booking.Booking) []*booking.Booking {
	out := make([]*booking.Booking, len(bookings))
	for i, b := range bookings {
		out[i] = b.Clone()
	}
	return out
}
