package domain

// EndConvention tells a formatter how the end of an all-day range is expressed.
type EndConvention int

const (
	// Inclusive ends on the last covered day.
	Inclusive EndConvention = iota
	// Exclusive ends on the day after the last covered day, like RFC 5545 DTEND.
	Exclusive
)

// End returns the end date of e under this convention. Single day events end on
// their start day (Inclusive) or the day after (Exclusive).
func (c EndConvention) End(e Event) Date {
	last := e.LastDay()
	if c == Exclusive {
		return last.AddDays(1)
	}
	return last
}

func (c EndConvention) String() string {
	switch c {
	case Inclusive:
		return "inclusive"
	case Exclusive:
		return "exclusive"
	default:
		return "unknown"
	}
}
