// Package command implements the booking command protocol: typed
// command objects that validate intent, invoke the ledger and report a
// user-facing outcome. Raw text parsing happens outside this package;
// commands receive already-typed arguments.
package command

import (
	"sync"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/ledger"
)

// Result is the outcome of a successfully executed command.
type Result struct {
	// Message is the user-facing report of what happened.
	Message string

	// Warning carries an advisory note (e.g. a booking edited into the
	// past). Empty when there is nothing to flag.
	Warning string

	// Booking is the subject of the command, when it has one (the
	// booking that was added, edited, deleted or marked).
	Booking *booking.Booking

	// Bookings, when non-nil, replaces the session's displayed booking
	// list. Nil leaves the displayed list untouched.
	Bookings []*booking.Booking
}

// Command is a single invocation of the booking protocol.
type Command interface {
	Execute(led *ledger.Ledger) (*Result, error)
}

// Session runs commands against a ledger and tracks the "currently
// displayed booking list" consumed by the presentation layer. The list
// follows last-command-wins replacement: each filter or list command
// overwrites it wholesale, with no queuing.
type Session struct {
	mu        sync.Mutex
	led       *ledger.Ledger
	displayed []*booking.Booking
}

// NewSession returns a session over the given ledger with an empty
// displayed list.
func NewSession(led *ledger.Ledger) *Session {
	return &Session{led: led}
}

// Run executes the command. On success, a non-nil Result.Bookings
// replaces the displayed list. On error the ledger and the displayed
// list are unchanged.
func (s *Session) Run(cmd Command) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := cmd.Execute(s.led)
	if err != nil {
		return nil, err
	}
	if res.Bookings != nil {
		s.displayed = res.Bookings
	}
	return res, nil
}

// Displayed returns the current displayed booking list.
func (s *Session) Displayed() []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Booking, len(s.displayed))
	copy(out, s.displayed)
	return out
}

// Ledger exposes the underlying ledger for read-only views.
func (s *Session) Ledger() *ledger.Ledger {
	return s.led
}
