package domain

// Splitter removes excluded days from events.
type Splitter struct {
	Excluded Predicate
}

// Split returns the events with every excluded day removed:
//   - a single day event on an excluded day is dropped, any other single day event is kept as is;
//   - a multi-day event becomes one event per maximal run of consecutive non-excluded days,
//     numbered from 1 in chronological order, even when there is only one run;
//   - an event without any remaining day is dropped.
//
// Exclusion is tested by calendar day equality, the order of the excluded days does not matter.
func (s Splitter) Split(events []Event) []Event {
	excluded := s.Excluded
	if excluded == nil {
		excluded = func(Date) bool { return false }
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, splitEvent(e, excluded)...)
	}
	return out
}

// Split is a shorthand for Splitter{Excluded: excluded}.Split(events).
func Split(events []Event, excluded Predicate) []Event {
	return Splitter{Excluded: excluded}.Split(events)
}

type run struct {
	first, last Date
}

func splitEvent(e Event, excluded Predicate) []Event {
	if e.IsSingleDay() {
		if excluded(e.Start) {
			return nil
		}
		return []Event{e}
	}
	runs := workdayRuns(e.Days(), excluded)
	// A segment that lost no day is already in its final form.
	if e.Segment > 0 && len(runs) == 1 && runs[0].first == e.Start && runs[0].last == e.LastDay() {
		return []Event{e}
	}
	out := make([]Event, 0, len(runs))
	for i, r := range runs {
		out = append(out, e.segment(i+1, r.first, r.last))
	}
	return out
}

// workdayRuns groups the non-excluded days into runs of days exactly one day apart.
func workdayRuns(days []Date, excluded Predicate) []run {
	var runs []run
	for _, d := range days {
		if excluded(d) {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].last.AddDays(1) == d {
			runs[n-1].last = d
			continue
		}
		runs = append(runs, run{first: d, last: d})
	}
	return runs
}
