// Package query composes optional filter criteria and paginated fetches
// shared by every listing endpoint.
package query

import "strings"

// Op names how a criterion compares a field with its value.
type Op string

const (
	// OpContains is a case-insensitive substring match.
	OpContains Op = "contains"
	// OpEqualFold is a case-insensitive exact match.
	OpEqualFold Op = "equal_fold"
	// OpEqual is an exact match.
	OpEqual Op = "equal"
)

// Criterion describes one constraint so storage adapters can push it down.
type Criterion struct {
	Field string
	Op    Op
	Value any
}

// Predicate pairs a criterion with the in-memory check it stands for.
type Predicate[T any] struct {
	Criterion Criterion
	match     func(T) bool
}

// NewPredicate builds a predicate from a descriptor and a matcher.
func NewPredicate[T any](criterion Criterion, match func(T) bool) Predicate[T] {
	return Predicate[T]{Criterion: criterion, match: match}
}

// Matches evaluates the predicate against a record.
func (p Predicate[T]) Matches(record T) bool {
	if p.match == nil {
		return true
	}
	return p.match(record)
}

// Condition is the conjunction of its predicates. An empty condition matches everything.
type Condition[T any] struct {
	predicates []Predicate[T]
}

// Matches reports whether record satisfies every predicate.
func (c Condition[T]) Matches(record T) bool {
	for _, p := range c.predicates {
		if !p.Matches(record) {
			return false
		}
	}
	return true
}

// Filter keeps the records matching the condition, preserving order.
func (c Condition[T]) Filter(records []T) []T {
	out := make([]T, 0, len(records))
	for _, record := range records {
		if c.Matches(record) {
			out = append(out, record)
		}
	}
	return out
}

// Criteria returns the descriptors in the order they were added.
func (c Condition[T]) Criteria() []Criterion {
	out := make([]Criterion, 0, len(c.predicates))
	for _, p := range c.predicates {
		out = append(out, p.Criterion)
	}
	return out
}

// Empty reports whether no criterion was supplied.
func (c Condition[T]) Empty() bool {
	return len(c.predicates) == 0
}

// Composer accumulates optional criteria. Blank strings and nil values add nothing.
type Composer[T any] struct {
	predicates []Predicate[T]
}

// Compose starts an empty composer.
func Compose[T any]() *Composer[T] {
	return &Composer[T]{}
}

// Where appends a ready-made predicate.
func (c *Composer[T]) Where(p Predicate[T]) *Composer[T] {
	c.predicates = append(c.predicates, p)
	return c
}

// Contains adds a case-insensitive substring match on a text field.
func (c *Composer[T]) Contains(field, value string, get func(T) string) *Composer[T] {
	if strings.TrimSpace(value) == "" {
		return c
	}
	needle := strings.ToLower(value)
	return c.Where(NewPredicate(Criterion{Field: field, Op: OpContains, Value: value}, func(record T) bool {
		return strings.Contains(strings.ToLower(get(record)), needle)
	}))
}

// EqualFold adds a case-insensitive exact match on an enumerated field.
func (c *Composer[T]) EqualFold(field, value string, get func(T) string) *Composer[T] {
	if strings.TrimSpace(value) == "" {
		return c
	}
	return c.Where(NewPredicate(Criterion{Field: field, Op: OpEqualFold, Value: value}, func(record T) bool {
		return strings.EqualFold(get(record), value)
	}))
}

// EqualInt adds an exact match on an integer field.
func (c *Composer[T]) EqualInt(field string, value *int, get func(T) int) *Composer[T] {
	if value == nil {
		return c
	}
	want := *value
	return c.Where(NewPredicate(Criterion{Field: field, Op: OpEqual, Value: want}, func(record T) bool {
		return get(record) == want
	}))
}

// EqualID adds an exact match on an identifier field.
func (c *Composer[T]) EqualID(field string, value *int64, get func(T) int64) *Composer[T] {
	if value == nil {
		return c
	}
	want := *value
	return c.Where(NewPredicate(Criterion{Field: field, Op: OpEqual, Value: want}, func(record T) bool {
		return get(record) == want
	}))
}

// EqualOptionalID adds an exact match on a nullable identifier. Records with no value never match.
func (c *Composer[T]) EqualOptionalID(field string, value *int64, get func(T) *int64) *Composer[T] {
	if value == nil {
		return c
	}
	want := *value
	return c.Where(NewPredicate(Criterion{Field: field, Op: OpEqual, Value: want}, func(record T) bool {
		got := get(record)
		return got != nil && *got == want
	}))
}

// Build freezes the accumulated criteria.
func (c *Composer[T]) Build() Condition[T] {
	predicates := make([]Predicate[T], len(c.predicates))
	copy(predicates, c.predicates)
	return Condition[T]{predicates: predicates}
}
