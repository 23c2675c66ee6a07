package domain

import (
	"fmt"
	"strings"
)

// Project identifies the workspace record a milestone belongs to.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Extra holds the documents linked from the project record.
type Extra struct {
	PRD      string `json:"prd,omitempty"`
	API      string `json:"api,omitempty"`
	Jira     string `json:"jira,omitempty"`
	UI       string `json:"ui,omitempty"`
	Case     string `json:"case,omitempty"`
	Schedule string `json:"schedule,omitempty"`
}

// Event is one all-day milestone of a project. End is nil for a single day event.
type Event struct {
	ID          string  `json:"id"`
	Start       Date    `json:"start"`
	End         *Date   `json:"end,omitempty"`
	Project     Project `json:"project"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Extra       Extra   `json:"extra"`

	// Label is the title before any segment number was appended.
	Label string `json:"label"`
	// Segment is the 1-based position of this event among the runs its source
	// event was split into, 0 if it was never split.
	Segment int `json:"segment,omitempty"`
}

// NewEvent returns an unsplit event covering [start, end]. A nil or equal end gives a single day event.
func NewEvent(id, title string, project Project, start Date, end *Date) Event {
	e := Event{
		ID:      id,
		Start:   start,
		Project: project,
		Title:   title,
		Label:   title,
	}
	if end != nil && !end.Equal(start) {
		last := *end
		e.End = &last
	}
	return e
}

// LastDay returns the last day covered by the event.
func (e Event) LastDay() Date {
	if e.End == nil {
		return e.Start
	}
	return *e.End
}

// IsSingleDay reports whether the event covers exactly one day.
func (e Event) IsSingleDay() bool {
	return e.End == nil || !e.End.After(e.Start)
}

// Days returns every day in [Start, LastDay] in order.
func (e Event) Days() []Date {
	n := e.Start.DaysUntil(e.LastDay())
	if n < 0 {
		return []Date{e.Start}
	}
	days := make([]Date, 0, n+1)
	for i := 0; i <= n; i++ {
		days = append(days, e.Start.AddDays(i))
	}
	return days
}

// sourceID returns the id of the unsplit event.
func (e Event) sourceID() string {
	if e.Segment == 0 {
		return e.ID
	}
	return strings.TrimSuffix(e.ID, fmt.Sprintf("_%d", e.Segment))
}

func (e Event) segment(index int, first, last Date) Event {
	label := e.Label
	if label == "" {
		label = e.Title
	}
	s := e
	s.Segment = index
	s.Label = label
	s.ID = fmt.Sprintf("%s_%d", e.sourceID(), index)
	s.Title = fmt.Sprintf("%s %d", label, index)
	s.Start = first
	s.End = nil
	if last != first {
		s.End = &last
	}
	return s
}
