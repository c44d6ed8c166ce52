package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/person"
)

func addTestPerson(t *testing.T, led *Ledger, name string, phone person.Phone) *person.Person {
	t.Helper()
	p, err := person.New(name, phone, "someone@example.com", "Blk 30 Geylang Street 29", nil, false)
	require.NoError(t, err)
	require.NoError(t, led.AddPerson(p))
	return p
}

// checkBackRefs asserts that every person's booking-ID set equals the
// set of bookings in the store owned by that person.
func checkBackRefs(t *testing.T, led *Ledger) {
	t.Helper()
	owned := make(map[string]map[int]struct{})
	for _, b := range led.Bookings() {
		require.NotNil(t, b.Person, "booking %d has no person", b.ID)
		if owned[b.Person.Name] == nil {
			owned[b.Person.Name] = make(map[int]struct{})
		}
		owned[b.Person.Name][b.ID] = struct{}{}
	}
	for _, p := range led.Persons() {
		ids := p.BookingIDs()
		require.Len(t, ids, len(owned[p.Name]), "person %s booking set out of sync", p.Name)
		for _, id := range ids {
			_, ok := owned[p.Name][id]
			require.True(t, ok, "person %s references booking %d not owned by them", p.Name, id)
		}
	}
}

func TestAddBookingHappyPath(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	at := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	b, err := led.AddBooking("85355255", at, 4, "Birthday", nil)
	require.NoError(t, err)

	assert.Equal(t, booking.StatusUpcoming, b.Status)
	assert.Equal(t, 4, b.Pax)
	assert.Equal(t, "Birthday", b.Remarks)
	assert.False(t, b.CreatedAt.IsZero())

	require.Len(t, led.Bookings(), 1)
	alice, err := led.FindPerson("85355255")
	require.NoError(t, err)
	assert.Equal(t, []int{b.ID}, alice.BookingIDs())
	checkBackRefs(t, led)
}

func TestAddBookingUnknownPhoneLeavesStateUntouched(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	_, err := led.AddBooking("00000000", time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC), 4, "", nil)
	assert.ErrorIs(t, err, person.ErrNotFound)
	assert.Empty(t, led.Bookings())
}

func TestAddBookingIDsNeverCollide(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	seen := make(map[int]struct{})
	at := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		b, err := led.AddBooking("85355255", at.Add(time.Duration(i)*time.Hour), 2, "", nil)
		require.NoError(t, err)
		_, dup := seen[b.ID]
		require.False(t, dup, "duplicate booking ID %d", b.ID)
		seen[b.ID] = struct{}{}
	}
}

func TestMarkThenClearRetired(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	b, err := led.AddBooking("85355255", time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC), 4, "Birthday", nil)
	require.NoError(t, err)

	marked, err := led.MarkBooking(b.ID, booking.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, marked.Status)

	count := led.ClearRetired()
	assert.Equal(t, 1, count)
	assert.Empty(t, led.Bookings())
	alice, err := led.FindPerson("85355255")
	require.NoError(t, err)
	assert.Empty(t, alice.BookingIDs())
	checkBackRefs(t, led)

	// Nothing left to clear; zero is an outcome, not an error.
	assert.Equal(t, 0, led.ClearRetired())
}

func TestMarkBookingNotFound(t *testing.T) {
	led := New()
	_, err := led.MarkBooking(42, booking.StatusCancelled)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestTerminalStatusMayBeRemarkedUpcoming(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	b, err := led.AddBooking("85355255", time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)

	_, err = led.MarkBooking(b.ID, booking.StatusCancelled)
	require.NoError(t, err)
	_, err = led.MarkBooking(b.ID, booking.StatusUpcoming)
	require.NoError(t, err)

	got, err := led.Booking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusUpcoming, got.Status)
}

func TestDeleteBookingKeepsBackRefsInSync(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	b, err := led.AddBooking("85355255", time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)

	deleted, err := led.DeleteBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.ID)
	alice, err := led.FindPerson("85355255")
	require.NoError(t, err)
	assert.Empty(t, alice.BookingIDs())
	checkBackRefs(t, led)

	_, err = led.DeleteBooking(b.ID)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestRemovePersonCascades(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")
	addTestPerson(t, led, "Bob Lee", "98765432")

	at := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	_, err := led.AddBooking("85355255", at, 2, "", nil)
	require.NoError(t, err)
	_, err = led.AddBooking("85355255", at.Add(time.Hour), 3, "", nil)
	require.NoError(t, err)
	keep, err := led.AddBooking("98765432", at.Add(2*time.Hour), 4, "", nil)
	require.NoError(t, err)

	removed, err := led.RemovePerson("85355255")
	require.NoError(t, err)
	assert.Equal(t, "Alice Tan", removed.Name)

	// No orphaned booking remains referencing the removed person.
	remaining := led.Bookings()
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
	checkBackRefs(t, led)
}

func TestEditBooking(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	at := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	b, err := led.AddBooking("85355255", at, 2, "", nil)
	require.NoError(t, err)

	t.Run("empty patch is rejected and leaves the booking unchanged", func(t *testing.T) {
		_, _, err := led.EditBooking(b.ID, booking.Patch{})
		assert.ErrorIs(t, err, booking.ErrEmptyPatch)

		got, err := led.Booking(b.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Pax)
		assert.Equal(t, at, got.At)
	})

	t.Run("partial update touches only supplied fields", func(t *testing.T) {
		pax := 6
		edited, warn, err := led.EditBooking(b.ID, booking.Patch{Pax: &pax})
		require.NoError(t, err)
		assert.False(t, warn)
		assert.Equal(t, 6, edited.Pax)
		assert.Equal(t, at, edited.At)
	})

	t.Run("moving into the past warns but succeeds", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		edited, warn, err := led.EditBooking(b.ID, booking.Patch{At: &past})
		require.NoError(t, err)
		assert.True(t, warn)
		assert.Equal(t, past, edited.At)
	})

	t.Run("unknown booking", func(t *testing.T) {
		pax := 3
		_, _, err := led.EditBooking(999, booking.Patch{Pax: &pax})
		assert.ErrorIs(t, err, booking.ErrNotFound)
	})
}

func TestFilterByDateAcrossPersons(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")
	addTestPerson(t, led, "Bob Lee", "98765432")

	early, err := led.AddBooking("85355255", time.Date(2025, 4, 5, 12, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)
	late, err := led.AddBooking("98765432", time.Date(2025, 4, 5, 19, 0, 0, 0, time.UTC), 4, "", nil)
	require.NoError(t, err)
	_, err = led.AddBooking("85355255", time.Date(2025, 4, 6, 12, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)

	date := time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC)
	got, desc, err := led.Filter(nil, &date, nil)
	require.NoError(t, err)
	assert.Equal(t, "date 2025-04-05", desc)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)
}

func TestFilterUnknownPhone(t *testing.T) {
	led := New()
	phone := person.Phone("00000000")
	_, _, err := led.Filter(&phone, nil, nil)
	assert.ErrorIs(t, err, person.ErrNotFound)
}

func TestSnapshotRoundTrip(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")
	addTestPerson(t, led, "Bob Lee", "98765432")

	at := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	b1, err := led.AddBooking("85355255", at, 2, "window seat", []string{"VIP"})
	require.NoError(t, err)
	b2, err := led.AddBooking("98765432", at.Add(time.Hour), 4, "", nil)
	require.NoError(t, err)
	_, err = led.MarkBooking(b2.ID, booking.StatusCompleted)
	require.NoError(t, err)

	snap := led.Snapshot()
	require.Len(t, snap.Persons, 2)
	require.Len(t, snap.Bookings, 2)

	restored := New()
	require.NoError(t, restored.Restore(snap))

	require.Len(t, restored.Bookings(), 2)
	got, err := restored.Booking(b1.ID)
	require.NoError(t, err)
	assert.Equal(t, "window seat", got.Remarks)
	assert.Equal(t, []string{"VIP"}, got.Tags)
	assert.Equal(t, "Alice Tan", got.Person.Name)

	got2, err := restored.Booking(b2.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCompleted, got2.Status)

	checkBackRefs(t, restored)
}

func TestRestoreReseedsAllocator(t *testing.T) {
	led := New()
	require.NoError(t, led.Restore(&Snapshot{
		Persons: []PersonRecord{{
			Name:       "Alice Tan",
			Phone:      "85355255",
			Email:      "alice@example.com",
			Address:    "Blk 30 Geylang Street 29",
			BookingIDs: []int{7},
		}},
		Bookings: []BookingRecord{{
			ID:          7,
			PersonPhone: "85355255",
			At:          time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC),
			CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			Pax:         2,
			Status:      booking.StatusUpcoming,
		}},
	}))

	b, err := led.AddBooking("85355255", time.Date(2025, 4, 2, 18, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)
	assert.Greater(t, b.ID, 7)
}

func TestRestoreRejectsMalformedSnapshots(t *testing.T) {
	at := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	alice := PersonRecord{
		Name:    "Alice Tan",
		Phone:   "85355255",
		Email:   "alice@example.com",
		Address: "Blk 30 Geylang Street 29",
	}

	t.Run("duplicate booking IDs", func(t *testing.T) {
		p := alice
		p.BookingIDs = []int{1}
		snap := &Snapshot{
			Persons: []PersonRecord{p},
			Bookings: []BookingRecord{
				{ID: 1, PersonPhone: "85355255", At: at, CreatedAt: created, Pax: 2, Status: booking.StatusUpcoming},
				{ID: 1, PersonPhone: "85355255", At: at.Add(time.Hour), CreatedAt: created, Pax: 3, Status: booking.StatusUpcoming},
			},
		}
		assert.ErrorIs(t, New().Restore(snap), booking.ErrDuplicate)
	})

	t.Run("booking with unknown owner", func(t *testing.T) {
		snap := &Snapshot{
			Persons: []PersonRecord{alice},
			Bookings: []BookingRecord{
				{ID: 1, PersonPhone: "99999999", At: at, CreatedAt: created, Pax: 2, Status: booking.StatusUpcoming},
			},
		}
		assert.ErrorIs(t, New().Restore(snap), ErrInconsistentSnapshot)
	})

	t.Run("person set disagrees with bookings", func(t *testing.T) {
		p := alice
		p.BookingIDs = []int{1, 2}
		snap := &Snapshot{
			Persons: []PersonRecord{p},
			Bookings: []BookingRecord{
				{ID: 1, PersonPhone: "85355255", At: at, CreatedAt: created, Pax: 2, Status: booking.StatusUpcoming},
			},
		}
		assert.ErrorIs(t, New().Restore(snap), ErrInconsistentSnapshot)
	})

	t.Run("failure leaves prior state intact", func(t *testing.T) {
		led := New()
		addTestPerson(t, led, "Bob Lee", "98765432")
		_, err := led.AddBooking("98765432", at, 2, "", nil)
		require.NoError(t, err)

		bad := &Snapshot{
			Persons: []PersonRecord{alice},
			Bookings: []BookingRecord{
				{ID: 1, PersonPhone: "99999999", At: at, CreatedAt: created, Pax: 2, Status: booking.StatusUpcoming},
			},
		}
		require.Error(t, led.Restore(bad))
		assert.Len(t, led.Bookings(), 1)
		assert.Len(t, led.Persons(), 1)
	})
}

func TestViewsAreDetachedCopies(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	b, err := led.AddBooking("85355255", time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)

	view := led.Bookings()
	require.Len(t, view, 1)

	pax := 6
	_, _, err = led.EditBooking(b.ID, booking.Patch{Pax: &pax})
	require.NoError(t, err)

	// The earlier view keeps the state it was built from.
	assert.Equal(t, 2, view[0].Pax)

	got, err := led.Booking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Pax)

	// Mutating a returned booking never reaches the ledger.
	got.Pax = 9
	again, err := led.Booking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, again.Pax)
}

func TestConcurrentReadsAndEdits(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	b, err := led.AddBooking("85355255", time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC), 2, "", nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, v := range led.Bookings() {
				_ = v.Pax
				_ = v.Person.Name
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			pax := i%booking.MaxPax + 1
			_, _, err := led.EditBooking(b.ID, booking.Patch{Pax: &pax})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
}

func TestSetMembership(t *testing.T) {
	led := New()
	addTestPerson(t, led, "Alice Tan", "85355255")

	p, changed, err := led.SetMembership("85355255", true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, p.DateJoined)

	_, _, err = led.SetMembership("00000000", true)
	assert.ErrorIs(t, err, person.ErrNotFound)
}
