package notion

import (
	"time"

	"github.com/haydenhayden/projectzen/domain"
	"github.com/jomei/notionapi"
)

// DateRange is a date property reduced to calendar days. End is nil when the
// property holds a single date; otherwise it is the last day of the range.
type DateRange struct {
	Start domain.Date
	End   *domain.Date
}

func (p Properties) lookup(key string, t PropertyType) (notionapi.Property, bool) {
	prop, ok := p[key]
	if !ok || prop == nil || prop.GetType() != t {
		return nil, false
	}
	return prop, true
}

// Title returns the plain text of the first rich text segment of a title property.
func (p Properties) Title(key string) (string, bool) {
	prop, ok := p.lookup(key, TypeTitle)
	if !ok {
		return "", false
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return "", false
	}
	return title.Title[0].PlainText, true
}

func (p Properties) URL(key string) (string, bool) {
	prop, ok := p.lookup(key, TypeURL)
	if !ok {
		return "", false
	}
	u, ok := prop.(*notionapi.URLProperty)
	if !ok || u.URL == "" {
		return "", false
	}
	return u.URL, true
}

// Date returns the calendar days of a date property, each in the offset it was
// written with. Time of day is ignored.
func (p Properties) Date(key string) (DateRange, bool) {
	prop, ok := p.lookup(key, TypeDate)
	if !ok {
		return DateRange{}, false
	}
	d, ok := prop.(*notionapi.DateProperty)
	if !ok || d.Date == nil || d.Date.Start == nil {
		return DateRange{}, false
	}
	r := DateRange{Start: domain.DateOf(time.Time(*d.Date.Start))}
	if d.Date.End != nil && !time.Time(*d.Date.End).IsZero() {
		end := domain.DateOf(time.Time(*d.Date.End))
		r.End = &end
	}
	return r, true
}

func (p Properties) Select(key string) (Option, bool) {
	prop, ok := p.lookup(key, TypeSelect)
	if !ok {
		return Option{}, false
	}
	sel, ok := prop.(*notionapi.SelectProperty)
	if !ok || sel.Select.Name == "" {
		return Option{}, false
	}
	return optionOf(sel.Select), true
}

func (p Properties) MultiSelect(key string) ([]Option, bool) {
	prop, ok := p.lookup(key, TypeMultiSelect)
	if !ok {
		return nil, false
	}
	multi, ok := prop.(*notionapi.MultiSelectProperty)
	if !ok {
		return nil, false
	}
	options := make([]Option, 0, len(multi.MultiSelect))
	for _, o := range multi.MultiSelect {
		options = append(options, optionOf(o))
	}
	return options, true
}

// Extract returns the value of the property under key when it has type t: a string
// for title and url, a DateRange, an Option or a []Option. Absence or any other
// type yields (nil, false).
func Extract(record Page, key string, t PropertyType) (interface{}, bool) {
	var (
		v  interface{}
		ok bool
	)
	switch t {
	case TypeTitle:
		v, ok = record.Properties.Title(key)
	case TypeURL:
		v, ok = record.Properties.URL(key)
	case TypeDate:
		v, ok = record.Properties.Date(key)
	case TypeSelect:
		v, ok = record.Properties.Select(key)
	case TypeMultiSelect:
		v, ok = record.Properties.MultiSelect(key)
	}
	if !ok {
		return nil, false
	}
	return v, true
}
