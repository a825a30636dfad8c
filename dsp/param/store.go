package param

import (
	"math"
	"sync/atomic"
)

// Store holds the live value of every parameter. It is safe for concurrent
// use: each value is one atomic word.
type Store struct {
	values [Count]atomic.Uint64
}

// Snapshot is a consistent-per-value copy of the store, indexed by ID.
type Snapshot [Count]float64

// Get returns the value of id, or 0 for an invalid ID.
func (s *Snapshot) Get(id ID) float64 {
	if !id.Valid() {
		return 0
	}

	return s[id]
}

// NewStore returns a store holding the defaults.
func NewStore() *Store {
	s := &Store{}
	s.Reset()

	return s
}

// Reset restores every parameter to its default.
func (s *Store) Reset() {
	for id := range Count {
		s.values[id].Store(math.Float64bits(specs[id].Default))
	}
}

// Set clamps v and stores it. Invalid IDs are ignored.
func (s *Store) Set(id ID, v float64) {
	if !id.Valid() {
		return
	}

	s.values[id].Store(math.Float64bits(specs[id].Clamp(v)))
}

// SetByName sets the parameter with the given canonical name.
func (s *Store) SetByName(name string, v float64) error {
	id, err := Lookup(name)
	if err != nil {
		return err
	}

	s.Set(id, v)

	return nil
}

// Get returns the current value of id, or 0 for an invalid ID.
func (s *Store) Get(id ID) float64 {
	if !id.Valid() {
		return 0
	}

	return math.Float64frombits(s.values[id].Load())
}

// Value returns the current value of the named parameter.
func (s *Store) Value(name string) (float64, error) {
	id, err := Lookup(name)
	if err != nil {
		return 0, err
	}

	return s.Get(id), nil
}

// Snapshot copies every value into dst without allocating.
func (s *Store) Snapshot(dst *Snapshot) {
	for id := range Count {
		dst[id] = math.Float64frombits(s.values[id].Load())
	}
}

// Specs returns all parameter descriptions in canonical order.
func (s *Store) Specs() []Spec {
	return Specs()
}
