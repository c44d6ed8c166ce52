package booking

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/restobook/resto-booking-backend/internal/person"
	"github.com/restobook/resto-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "booking not found")
	ErrDuplicate     = apperror.New(http.StatusConflict, "duplicate booking ID")
	ErrInvalidStatus = apperror.New(http.StatusBadRequest, "invalid status! use upcoming, completed or cancelled")
	ErrInvalidPax    = apperror.New(http.StatusBadRequest, "pax should be a non-zero unsigned integer less than 10000")
	ErrMissingTime   = apperror.New(http.StatusBadRequest, "booking date/time is required")
	ErrEmptyPatch    = apperror.New(http.StatusBadRequest, "at least one field to edit must be provided")
)

// MaxPax is the largest party size accepted for a single booking.
const MaxPax = 9999

// Status represents the lifecycle state of a booking. A booking starts
// as upcoming; completed and cancelled are reached only through an
// explicit mark operation, never by the passage of time.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus converts a case-insensitive string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(s)) {
	case StatusUpcoming:
		return StatusUpcoming, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	return s == StatusUpcoming || s == StatusCompleted || s == StatusCancelled
}

// Retired reports whether the booking is eligible for clearing.
func (s Status) Retired() bool {
	return s != StatusUpcoming
}

// Booking is a single reservation record. The ID and CreatedAt fields
// are assigned once at construction and never change; Status and the
// content fields are mutated in place so every holder of the pointer
// observes the same state.
type Booking struct {
	ID        int
	Person    *person.Person
	At        time.Time // the reserved date/time
	CreatedAt time.Time // when the booking request was made
	Pax       int
	Remarks   string
	Tags      []string
	Status    Status
}

// New constructs an upcoming booking with the given allocated ID.
// CreatedAt is stamped with the current time.
func New(id int, p *person.Person, at time.Time, pax int, remarks string, tags []string) (*Booking, error) {
	return Restore(id, p, at, time.Now(), pax, remarks, tags, StatusUpcoming)
}

// Restore constructs a booking with every field supplied, for reloading
// persisted state. The person reference may be nil only transiently
// during loading and must be resolved before the booking is used.
func Restore(id int, p *person.Person, at, createdAt time.Time, pax int, remarks string, tags []string, status Status) (*Booking, error) {
	if at.IsZero() || createdAt.IsZero() {
		return nil, ErrMissingTime
	}
	if pax < 1 || pax > MaxPax {
		return nil, ErrInvalidPax
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return &Booking{
		ID:        id,
		Person:    p,
		At:        at,
		CreatedAt: createdAt,
		Pax:       pax,
		Remarks:   remarks,
		Tags:      tags,
		Status:    status,
	}, nil
}

// Patch describes a partial update to a booking. Nil fields are left
// untouched. Using typed optional fields instead of a string-keyed map
// keeps field names and types checked at compile time.
type Patch struct {
	At      *time.Time
	Pax     *int
	Remarks *string
	Tags    *[]string
}

// IsZero reports whether the patch carries no fields.
func (p Patch) IsZero() bool {
	return p.At == nil && p.Pax == nil && p.Remarks == nil && p.Tags == nil
}

// Validate checks the fields that are present.
func (p Patch) Validate() error {
	if p.IsZero() {
		return ErrEmptyPatch
	}
	if p.Pax != nil && (*p.Pax < 1 || *p.Pax > MaxPax) {
		return ErrInvalidPax
	}
	if p.At != nil && p.At.IsZero() {
		return ErrMissingTime
	}
	return nil
}

// Apply mutates the booking with the fields present in the patch.
// The caller validates the patch first.
func (b *Booking) Apply(p Patch) {
	if p.At != nil {
		b.At = *p.At
	}
	if p.Pax != nil {
		b.Pax = *p.Pax
	}
	if p.Remarks != nil {
		b.Remarks = *p.Remarks
	}
	if p.Tags != nil {
		b.Tags = *p.Tags
	}
}

// Clone returns a detached copy of the booking, including a copy of the
// owning person, so holders of the clone never observe later mutations
// of live state.
func (b *Booking) Clone() *Booking {
	out := *b
	if b.Person != nil {
		out.Person = b.Person.Clone()
	}
	if b.Tags != nil {
		out.Tags = append([]string(nil), b.Tags...)
	}
	return &out
}

// String renders the booking for user-facing command output.
func (b *Booking) String() string {
	name := "?"
	phone := "?"
	if b.Person != nil {
		name = b.Person.Name
		phone = string(b.Person.Phone)
	}
	s := fmt.Sprintf("Booking %d: %s (%s) on %s, pax %d, %s",
		b.ID, name, phone, b.At.Format("2006-01-02 15:04"), b.Pax, b.Status)
	if b.Remarks != "" {
		s += ", remarks: " + b.Remarks
	}
	if len(b.Tags) > 0 {
		s += ", tags: " + strings.Join(b.Tags, ", ")
	}
	return s
}
