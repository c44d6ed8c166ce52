package command

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/ledger"
	"github.com/restobook/resto-booking-backend/internal/person"
	"github.com/restobook/resto-booking-backend/internal/pkg/apperror"
)

// ErrNoPredicates is returned by the filter command when no predicate
// was supplied. The query engine itself would treat that as match-all;
// requiring at least one predicate is this layer's policy.
var ErrNoPredicates = apperror.New(http.StatusBadRequest, "provide at least one of phone, date or status to filter by")

func bookingNotFound(id int) error {
	return apperror.Wrap(booking.ErrNotFound, http.StatusNotFound, fmt.Sprintf("no booking with ID %d was found", id))
}

// Book adds a booking for the person with the given phone number.
type Book struct {
	Phone   person.Phone
	At      time.Time
	Pax     int
	Remarks string
	Tags    []string
}

func (c Book) Execute(led *ledger.Ledger) (*Result, error) {
	b, err := led.AddBooking(c.Phone, c.At, c.Pax, c.Remarks, c.Tags)
	if err != nil {
		return nil, err
	}
	res := &Result{Message: fmt.Sprintf("New booking added:\n%s", b), Booking: b}
	if b.At.Before(time.Now()) {
		res.Warning = "the booking date/time is in the past"
	}
	return res, nil
}

// Edit applies a partial update to a booking.
type Edit struct {
	ID    int
	Patch booking.Patch
}

func (c Edit) Execute(led *ledger.Ledger) (*Result, error) {
	b, pastWarning, err := led.EditBooking(c.ID, c.Patch)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, bookingNotFound(c.ID)
		}
		return nil, err
	}
	res := &Result{Message: fmt.Sprintf("Edited booking: %s", b), Booking: b}
	if pastWarning {
		res.Warning = "the new booking date/time is in the past"
	}
	return res, nil
}

// Delete removes a booking by ID.
type Delete struct {
	ID int
}

func (c Delete) Execute(led *ledger.Ledger) (*Result, error) {
	b, err := led.DeleteBooking(c.ID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, bookingNotFound(c.ID)
		}
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Deleted booking: %s", b), Booking: b}, nil
}

// Mark sets the status of a booking.
type Mark struct {
	ID     int
	Status booking.Status
}

func (c Mark) Execute(led *ledger.Ledger) (*Result, error) {
	if !c.Status.Valid() {
		return nil, booking.ErrInvalidStatus
	}
	b, err := led.MarkBooking(c.ID, c.Status)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, bookingNotFound(c.ID)
		}
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Booking %d marked as %s.", c.ID, c.Status), Booking: b}, nil
}

// Filter selects bookings by any non-empty combination of phone, date
// and status, and replaces the displayed list with the matches.
type Filter struct {
	Phone  *person.Phone
	Date   *time.Time
	Status *booking.Status
}

func (c Filter) Execute(led *ledger.Ledger) (*Result, error) {
	if c.Phone == nil && c.Date == nil && c.Status == nil {
		return nil, ErrNoPredicates
	}
	matches, desc, err := led.Filter(c.Phone, c.Date, c.Status)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &Result{
			Message:  fmt.Sprintf("No bookings match %s.", desc),
			Bookings: []*booking.Booking{},
		}, nil
	}
	return &Result{
		Message:  fmt.Sprintf("Here are the bookings for %s:", desc),
		Bookings: matches,
	}, nil
}

// List replaces the displayed list with the upcoming bookings, or with
// every booking when All is set.
type List struct {
	All bool
}

func (c List) Execute(led *ledger.Ledger) (*Result, error) {
	if c.All {
		all := led.Bookings()
		if len(all) == 0 {
			return &Result{Message: "There are no bookings.", Bookings: []*booking.Booking{}}, nil
		}
		return &Result{Message: "Here are all the bookings:", Bookings: all}, nil
	}

	upcoming := led.UpcomingBookings()
	if len(upcoming) == 0 {
		return &Result{Message: "There are no upcoming bookings.", Bookings: []*booking.Booking{}}, nil
	}
	return &Result{Message: "Here are the upcoming bookings:", Bookings: upcoming}, nil
}

// Today replaces the displayed list with the bookings scheduled on the
// day of interest and summarizes them by status.
type Today struct {
	// Date is the day of interest. Zero means the current day.
	Date time.Time
}

func (c Today) Execute(led *ledger.Ledger) (*Result, error) {
	date := c.Date
	if date.IsZero() {
		date = time.Now()
	}
	matches, _, err := led.Filter(nil, &date, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &Result{Message: "There are no bookings today.", Bookings: []*booking.Booking{}}, nil
	}

	var upcoming, completed, cancelled int
	for _, b := range matches {
		switch b.Status {
		case booking.StatusUpcoming:
			upcoming++
		case booking.StatusCompleted:
			completed++
		case booking.StatusCancelled:
			cancelled++
		}
	}
	return &Result{
		Message: fmt.Sprintf("Here are the bookings and related persons for today:\nUpcoming: %d, Completed: %d, Cancelled: %d",
			upcoming, completed, cancelled),
		Bookings: matches,
	}, nil
}

// Clear removes every cancelled or completed booking.
type Clear struct{}

func (c Clear) Execute(led *ledger.Ledger) (*Result, error) {
	count := led.ClearRetired()
	if count == 0 {
		return &Result{Message: "No cancelled or completed bookings to clear!"}, nil
	}
	return &Result{Message: fmt.Sprintf("Cleared %d cancelled and completed bookings!", count)}, nil
}
