package person

import "sort"

// List is a collection of persons that enforces uniqueness by name.
// It is not safe for concurrent use; the ledger serializes access.
type List struct {
	persons []*Person
}

// NewList returns an empty person list.
func NewList() *List {
	return &List{}
}

// Contains reports whether a person with the same identity exists.
func (l *List) Contains(p *Person) bool {
	for _, existing := range l.persons {
		if existing.SameIdentity(p) {
			return true
		}
	}
	return false
}

// Add inserts a person. The person must not already exist in the list.
func (l *List) Add(p *Person) error {
	if l.Contains(p) {
		return ErrDuplicate
	}
	l.persons = append(l.persons, p)
	return nil
}

// Remove deletes the person with the same identity from the list.
func (l *List) Remove(p *Person) error {
	for i, existing := range l.persons {
		if existing.SameIdentity(p) {
			l.persons = append(l.persons[:i], l.persons[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// FindByPhone returns the person with the given phone number.
func (l *List) FindByPhone(phone Phone) (*Person, bool) {
	for _, p := range l.persons {
		if p.Phone == phone {
			return p, true
		}
	}
	return nil, false
}

// FindByName returns the person with the given name.
func (l *List) FindByName(name string) (*Person, bool) {
	for _, p := range l.persons {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// All returns the persons sorted by name.
func (l *List) All() []*Person {
	out := make([]*Person, len(l.persons))
	copy(out, l.persons)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of persons in the list.
func (l *List) Len() int {
	return len(l.persons)
}

// ReplaceAll swaps the contents of the list with the given persons.
// The input must not contain two persons with the same identity or the
// same phone number; on failure the list is left unchanged.
func (l *List) ReplaceAll(persons []*Person) error {
	seenNames := make(map[string]struct{}, len(persons))
	seenPhones := make(map[Phone]struct{}, len(persons))
	for _, p := range persons {
		if _, ok := seenNames[p.Name]; ok {
			return ErrDuplicate
		}
		if _, ok := seenPhones[p.Phone]; ok {
			return ErrDuplicate
		}
		seenNames[p.Name] = struct{}{}
		seenPhones[p.Phone] = struct{}{}
	}
	l.persons = append([]*Person(nil), persons...)
	return nil
}
