package ledger

import (
	"net/http"
	"time"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/person"
	"github.com/restobook/resto-booking-backend/internal/pkg/apperror"
)

var ErrInconsistentSnapshot = apperror.New(http.StatusBadRequest, "snapshot is inconsistent: booking references do not match")

// PersonRecord is the flat, persistence-friendly form of a person.
type PersonRecord struct {
	Name       string
	Phone      person.Phone
	Email      string
	Address    string
	Tags       []string
	IsMember   bool
	DateJoined *time.Time
	BookingIDs []int
}

// BookingRecord is the flat form of a booking. The owner is recorded by
// phone number and resolved back to a person on restore.
type BookingRecord struct {
	ID          int
	PersonPhone person.Phone
	At          time.Time
	CreatedAt   time.Time
	Pax         int
	Remarks     string
	Tags        []string
	Status      booking.Status
}

// Snapshot is a full export of the ledger state.
type Snapshot struct {
	Persons  []PersonRecord
	Bookings []BookingRecord
}

// Snapshot exports all persons and bookings for persistence.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{}
	for _, p := range l.persons.All() {
		snap.Persons = append(snap.Persons, PersonRecord{
			Name:       p.Name,
			Phone:      p.Phone,
			Email:      p.Email,
			Address:    p.Address,
			Tags:       p.Tags,
			IsMember:   p.IsMember,
			DateJoined: p.DateJoined,
			BookingIDs: p.BookingIDs(),
		})
	}
	for _, b := range l.bookings.All() {
		rec := BookingRecord{
			ID:        b.ID,
			At:        b.At,
			CreatedAt: b.CreatedAt,
			Pax:       b.Pax,
			Remarks:   b.Remarks,
			Tags:      b.Tags,
			Status:    b.Status,
		}
		if b.Person != nil {
			rec.PersonPhone = b.Person.Phone
		}
		snap.Bookings = append(snap.Bookings, rec)
	}
	return snap
}

// Restore replaces the ledger contents with the snapshot. Every booking
// must resolve to a person by phone, booking IDs must be unique, and
// each person's booking-ID set must agree with the bookings' ownership;
// a malformed snapshot fails without touching the current state. On
// success the ID allocator is re-seeded to max(id)+1.
func (l *Ledger) Restore(snap *Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	persons := make([]*person.Person, 0, len(snap.Persons))
	byPhone := make(map[person.Phone]*person.Person, len(snap.Persons))
	for _, rec := range snap.Persons {
		p, err := person.New(rec.Name, rec.Phone, rec.Email, rec.Address, rec.Tags, false)
		if err != nil {
			return err
		}
		p.IsMember = rec.IsMember
		p.DateJoined = rec.DateJoined
		p.SetBookingIDs(rec.BookingIDs)
		persons = append(persons, p)
		byPhone[p.Phone] = p
	}

	bookings := make([]*booking.Booking, 0, len(snap.Bookings))
	owned := make(map[person.Phone]map[int]struct{}, len(snap.Persons))
	for _, rec := range snap.Bookings {
		owner, ok := byPhone[rec.PersonPhone]
		if !ok {
			return ErrInconsistentSnapshot
		}
		b, err := booking.Restore(rec.ID, owner, rec.At, rec.CreatedAt, rec.Pax, rec.Remarks, rec.Tags, rec.Status)
		if err != nil {
			return err
		}
		bookings = append(bookings, b)
		if owned[owner.Phone] == nil {
			owned[owner.Phone] = make(map[int]struct{})
		}
		owned[owner.Phone][b.ID] = struct{}{}
	}

	// Every person's back-reference set must equal the set of bookings
	// that name them as owner.
	for _, p := range persons {
		ids := p.BookingIDs()
		if len(ids) != len(owned[p.Phone]) {
			return ErrInconsistentSnapshot
		}
		for _, id := range ids {
			if _, ok := owned[p.Phone][id]; !ok {
				return ErrInconsistentSnapshot
			}
		}
	}

	// Validate into fresh collections first so a failure leaves the
	// ledger unchanged.
	newPersons := person.NewList()
	if err := newPersons.ReplaceAll(persons); err != nil {
		return err
	}
	newBookings := booking.NewStore()
	if err := newBookings.ReplaceAll(bookings); err != nil {
		return err
	}

	l.persons = newPersons
	l.bookings = newBookings
	return nil
}
