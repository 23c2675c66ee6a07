// Package ics renders events as an iCalendar subscription feed.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/haydenhayden/projectzen/consts"
	"github.com/haydenhayden/projectzen/domain"
)

// Convention is the end convention of all-day DTEND values.
const Convention = domain.Exclusive

const (
	DefaultName = "Project Zen"
	ContentType = "text/calendar"
	dateLayout  = "20060102"
	propCalName = "X-WR-CALNAME"
)

// DateArray is a calendar day as [year, month, day], month 1-based.
type DateArray [3]int

func dateArray(d domain.Date) DateArray {
	return DateArray{d.Year, int(d.Month), d.Day}
}

func (a DateArray) Date() domain.Date {
	return domain.NewDate(a[0], time.Month(a[1]), a[2])
}

// Record is the calendar form of one event.
type Record struct {
	UID         string
	Title       string
	Start       DateArray
	End         DateArray
	URL         string
	Description string
}

// FromEvent maps an event to a record, End being the day after the last day.
func FromEvent(e domain.Event) Record {
	return Record{
		UID:         uuid.NewSHA1(uuid.NameSpaceURL, []byte(e.ID)).String(),
		Title:       e.Title,
		Start:       dateArray(e.Start),
		End:         dateArray(Convention.End(e)),
		URL:         e.Project.URL,
		Description: Description(e),
	}
}

func FromEvents(events []domain.Event) []Record {
	records := make([]Record, 0, len(events))
	for _, e := range events {
		records = append(records, FromEvent(e))
	}
	return records
}

// Description lists the project name and the linked documents, one "label: value"
// entry per non-empty value, entries separated by a blank line.
func Description(e domain.Event) string {
	entries := []struct{ label, value string }{
		{"Project", e.Project.Name},
		{"PRD", e.Extra.PRD},
		{"API", e.Extra.API},
		{"Jira", e.Extra.Jira},
		{"UI", e.Extra.UI},
		{"Case", e.Extra.Case},
		{"Schedule", e.Extra.Schedule},
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.value == "" {
			continue
		}
		lines = append(lines, entry.label+": "+entry.value)
	}
	return strings.Join(lines, "\n\n")
}

// Options of the produced calendar. Stamp is written as DTSTAMP of every event.
type Options struct {
	Name      string
	ProductID string
	Stamp     time.Time
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.ProductID == "" {
		o.ProductID = consts.ProductID
	}
	if o.Stamp.IsZero() {
		o.Stamp = time.Now()
	}
	return o
}

func dateProp(name string, a DateArray) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Params.Set(ical.ParamValue, string(ical.ValueDate))
	prop.Value = a.Date().Time().Format(dateLayout)
	return prop
}

// Calendar builds the VCALENDAR holding one all-day VEVENT per record.
func Calendar(records []Record, opts Options) (*ical.Calendar, error) {
	opts = opts.withDefaults()
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, opts.ProductID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	name := ical.NewProp(propCalName)
	name.Value = opts.Name
	cal.Props.Set(name)

	stamp := opts.Stamp.UTC()
	for _, r := range records {
		if !r.Start.Date().Before(r.End.Date()) {
			return nil, fmt.Errorf("event %q: end %v is not after start %v", r.Title, r.End, r.Start)
		}
		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, r.UID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetText(ical.PropSummary, r.Title)
		event.Props.Set(dateProp(ical.PropDateTimeStart, r.Start))
		event.Props.Set(dateProp(ical.PropDateTimeEnd, r.End))
		if r.Description != "" {
			event.Props.SetText(ical.PropDescription, r.Description)
		}
		if r.URL != "" {
			url := ical.NewProp(ical.PropURL)
			url.Params.Set(ical.ParamValue, string(ical.ValueURI))
			url.Value = r.URL
			event.Props.Set(url)
		}
		cal.Children = append(cal.Children, event)
	}
	return cal, nil
}

// Encode writes the records as an iCalendar stream.
func Encode(w io.Writer, records []Record, opts Options) error {
	cal, err := Calendar(records, opts)
	if err != nil {
		return err
	}
	if len(cal.Children) == 0 {
		return encodeEmpty(w, cal)
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	return nil
}

// encodeEmpty writes a calendar holding no event, which the encoder does not accept.
func encodeEmpty(w io.Writer, cal *ical.Calendar) error {
	var b strings.Builder
	b.WriteString("BEGIN:" + ical.CompCalendar + "\r\n")
	for _, name := range []string{ical.PropVersion, ical.PropProductID, ical.PropCalendarScale, ical.PropMethod, propCalName} {
		if prop := cal.Props.Get(name); prop != nil {
			b.WriteString(name + ":" + prop.Value + "\r\n")
		}
	}
	b.WriteString("END:" + ical.CompCalendar + "\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}
