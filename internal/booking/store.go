package booking

import "sort"

// Store is the sole authority for booking uniqueness. It wraps a map
// keyed by booking ID for O(1) lookups and carries the ID allocator so
// that reloading a snapshot re-seeds the counter in the same place the
// bookings live. A fresh Store starts its counter at 1, and there is no
// process-wide state: tests get an independent counter per Store.
//
// Not safe for concurrent use; the ledger serializes access.
type Store struct {
	byID   map[int]*Booking
	nextID int
}

// NewStore returns an empty store whose allocator starts at 1.
func NewStore() *Store {
	return &Store{
		byID:   make(map[int]*Booking),
		nextID: 1,
	}
}

// AllocateID issues the next booking ID. IDs increase monotonically and
// are never reused within the store's lifetime.
func (s *Store) AllocateID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Contains reports whether a booking with the given ID exists.
func (s *Store) Contains(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Add inserts a booking. Fails with ErrDuplicate if the ID is taken.
func (s *Store) Add(b *Booking) error {
	if s.Contains(b.ID) {
		return ErrDuplicate
	}
	s.byID[b.ID] = b
	return nil
}

// Remove deletes the booking with the given ID.
func (s *Store) Remove(id int) error {
	if !s.Contains(id) {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Get returns the booking with the given ID.
func (s *Store) Get(id int) (*Booking, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// SetStatus mutates the status of the booking in place, so the change
// is visible to every holder of the booking reference.
func (s *Store) SetStatus(id int, status Status) error {
	b, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

// All returns every booking, ordered ascending by scheduled time.
func (s *Store) All() []*Booking {
	return s.collect(func(*Booking) bool { return true })
}

// Upcoming returns all bookings with status upcoming, ordered ascending
// by scheduled time.
func (s *Store) Upcoming() []*Booking {
	return s.collect(func(b *Booking) bool { return b.Status == StatusUpcoming })
}

// Retired returns all cancelled or completed bookings, ordered
// ascending by scheduled time.
func (s *Store) Retired() []*Booking {
	return s.collect(func(b *Booking) bool { return b.Status.Retired() })
}

// Len returns the number of bookings in the store.
func (s *Store) Len() int {
	return len(s.byID)
}

// ReplaceAll swaps the store contents with the given bookings and
// re-seeds the allocator to max(id)+1 so replayed state can never
// collide with a freshly created booking. Fails with ErrDuplicate if
// the input contains two bookings with the same ID, leaving the store
// unchanged.
func (s *Store) ReplaceAll(bookings []*Booking) error {
	next := make(map[int]*Booking, len(bookings))
	maxID := 0
	for _, b := range bookings {
		if _, ok := next[b.ID]; ok {
			return ErrDuplicate
		}
		next[b.ID] = b
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	s.byID = next
	s.nextID = maxID + 1
	return nil
}

// ClearSubset removes exactly the given bookings from the store.
// Bookings not present are skipped.
func (s *Store) ClearSubset(bookings []*Booking) {
	for _, b := range bookings {
		delete(s.byID, b.ID)
	}
}

func (s *Store) collect(keep func(*Booking) bool) []*Booking {
	out := make([]*Booking, 0, len(s.byID))
	for _, b := range s.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	SortBySchedule(out)
	return out
}

// SortBySchedule orders bookings ascending by scheduled time, breaking
// ties by ID so output is deterministic.
func SortBySchedule(bookings []*Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].At.Equal(bookings[j].At) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].At.Before(bookings[j].At)
	})
}
