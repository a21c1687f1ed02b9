package record

import (
	"errors"
	"fmt"
)

// ErrNoSubject is returned when a Subject cannot produce a record.
var ErrNoSubject = errors.New("no record to probe")

// Subject is what an assertion runs against: either an existing
// record instance or a factory that builds a fresh one.
type Subject struct {
	instance Record
	factory  func() Record
	name     string
}

// Instance wraps an existing record.
func Instance(r Record) Subject {
	return Subject{instance: r}
}

// Factory wraps a constructor. Each Resolve builds a new record.
func Factory(name string, f func() Record) Subject {
	return Subject{factory: f, name: name}
}

// IsFactory reports whether the subject builds its record.
func (s Subject) IsFactory() bool { return s.factory != nil }

// Name returns the factory name, or "instance".
func (s Subject) Name() string {
	if s.factory != nil && s.name != "" {
		return s.name
	}
	if s.factory != nil {
		return "factory"
	}
	return "instance"
}

// Resolve returns the record to probe.
func (s Subject) Resolve() (Record, error) {
	if s.factory != nil {
		r := s.factory()
		if r == nil {
			return nil, fmt.Errorf(
				"factory %s returned nil: %w", s.Name(), ErrNoSubject,
			)
		}
		return r, nil
	}
	if s.instance == nil {
		return nil, ErrNoSubject
	}
	return s.instance, nil
}
