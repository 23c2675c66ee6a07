package domain

import (
	"sort"
	"time"
)

// Predicate reports whether a day must not be covered by any event.
type Predicate func(Date) bool

// ExclusionSet is an unordered set of excluded days.
type ExclusionSet map[Date]struct{}

func NewExclusionSet(days ...Date) ExclusionSet {
	s := make(ExclusionSet, len(days))
	for _, d := range days {
		s.Add(d)
	}
	return s
}

func (s ExclusionSet) Add(d Date) {
	s[d] = struct{}{}
}

func (s ExclusionSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Predicate returns the set membership test, a nil set excludes nothing.
func (s ExclusionSet) Predicate() Predicate {
	return s.Contains
}

// Sorted returns the days in chronological order.
func (s ExclusionSet) Sorted() []Date {
	days := make([]Date, 0, len(s))
	for d := range s {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Weekends excludes every Saturday and Sunday.
func Weekends(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AnyOf excludes a day if any of the given predicates does.
func AnyOf(predicates ...Predicate) Predicate {
	return func(d Date) bool {
		for _, p := range predicates {
			if p != nil && p(d) {
				return true
			}
		}
		return false
	}
}
