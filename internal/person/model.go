package person

import (
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/restobook/resto-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "no person with the given phone number exists")
	ErrDuplicate     = apperror.New(http.StatusConflict, "person already exists")
	ErrInvalidName   = apperror.New(http.StatusBadRequest, "names should only contain alphanumeric characters and spaces, and should not be blank")
	ErrInvalidPhone  = apperror.New(http.StatusBadRequest, "phone numbers should only contain numbers, and should be at least 3 digits long")
	ErrInvalidEmail  = apperror.New(http.StatusBadRequest, "invalid email address")
	ErrEmptyAddress  = apperror.New(http.StatusBadRequest, "address can take any value, but should not be blank")
)

var (
	nameRe  = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ]*$`)
	phoneRe = regexp.MustCompile(`^\d{3,}$`)
)

// Phone is a person's phone number. It acts as the unique secondary key
// used to look a person up when taking a booking over the phone.
type Phone string

// ParsePhone validates and returns a Phone.
func ParsePhone(s string) (Phone, error) {
	if !phoneRe.MatchString(s) {
		return "", ErrInvalidPhone
	}
	return Phone(s), nil
}

// Person represents a guest in the ledger. Identity is by name; the
// phone number must also be unique within the ledger.
//
// The bookingIDs set is a back-reference only: it records which booking
// IDs belong to this person, but the booking store remains the single
// authority for the bookings themselves.
type Person struct {
	Name     string
	Phone    Phone
	Email    string
	Address  string
	Tags     []string
	IsMember bool

	// DateJoined is set when the person becomes a member and cleared
	// when membership lapses.
	DateJoined *time.Time

	bookingIDs map[int]struct{}
}

// New validates the fields and constructs a Person.
func New(name string, phone Phone, email, address string, tags []string, isMember bool) (*Person, error) {
	if !nameRe.MatchString(name) {
		return nil, ErrInvalidName
	}
	if !phoneRe.MatchString(string(phone)) {
		return nil, ErrInvalidPhone
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(address) == "" {
		return nil, ErrEmptyAddress
	}

	p := &Person{
		Name:       name,
		Phone:      phone,
		Email:      email,
		Address:    address,
		Tags:       tags,
		bookingIDs: make(map[int]struct{}),
	}
	p.SetMembership(isMember)
	return p, nil
}

// SetMembership updates the membership flag. DateJoined is derived:
// set to now on joining, cleared on leaving. Returns false if the flag
// did not change.
func (p *Person) SetMembership(isMember bool) bool {
	if p.IsMember == isMember {
		return false
	}
	p.IsMember = isMember
	if isMember {
		now := time.Now()
		p.DateJoined = &now
	} else {
		p.DateJoined = nil
	}
	return true
}

// AddBookingID records a booking ID against this person.
func (p *Person) AddBookingID(id int) {
	if p.bookingIDs == nil {
		p.bookingIDs = make(map[int]struct{})
	}
	p.bookingIDs[id] = struct{}{}
}

// RemoveBookingID drops a booking ID from this person's set.
// Removing an absent ID is a no-op.
func (p *Person) RemoveBookingID(id int) {
	delete(p.bookingIDs, id)
}

// HasBookingID reports whether the given booking ID belongs to this person.
func (p *Person) HasBookingID(id int) bool {
	_, ok := p.bookingIDs[id]
	return ok
}

// BookingIDs returns the person's booking IDs in ascending order.
func (p *Person) BookingIDs() []int {
	ids := make([]int, 0, len(p.bookingIDs))
	for id := range p.bookingIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetBookingIDs replaces the back-reference set. Used when rebuilding
// the ledger from a snapshot.
func (p *Person) SetBookingIDs(ids []int) {
	p.bookingIDs = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		p.bookingIDs[id] = struct{}{}
	}
}

// Clone returns a detached copy of the person.
func (p *Person) Clone() *Person {
	out := *p
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.DateJoined != nil {
		joined := *p.DateJoined
		out.DateJoined = &joined
	}
	out.bookingIDs = make(map[int]struct{}, len(p.bookingIDs))
	for id := range p.bookingIDs {
		out.bookingIDs[id] = struct{}{}
	}
	return &out
}

// SameIdentity reports whether two persons share the same identity (by name).
func (p *Person) SameIdentity(other *Person) bool {
	return other != nil && p.Name == other.Name
}
