// Package fullcalendar renders events as FullCalendar event objects.
package fullcalendar

import "github.com/haydenhayden/projectzen/domain"

// Convention is the end convention of FullCalendar all-day events.
const Convention = domain.Exclusive

// Event is a FullCalendar event object, see https://fullcalendar.io/docs/event-object
type Event struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Start         domain.Date  `json:"start"`
	End           domain.Date  `json:"end"`
	AllDay        bool         `json:"allDay"`
	ExtendedProps domain.Event `json:"extendedProps"`
}

func FromEvent(e domain.Event) Event {
	return Event{
		ID:            e.ID,
		Title:         e.Title,
		Start:         e.Start,
		End:           Convention.End(e),
		AllDay:        true,
		ExtendedProps: e,
	}
}

func FromEvents(events []domain.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return out
}
