package holiday

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/haydenhayden/projectzen/domain"
)

// Day is the upstream description of a special day. Holiday is true for a rest day,
// false for a working day moved onto a weekend.
type Day struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Wage    int    `json:"wage"`
}

// Calendar holds the special days of one year keyed YYYY-MM-DD.
type Calendar struct {
	Year     int            `json:"year"`
	Weekends bool           `json:"weekends"`
	Days     map[string]Day `json:"days"`
	// Order lists the keys of Days in upstream order.
	Order []string `json:"order"`
}

// RestDays returns the days flagged as rest days, in upstream order. The order is
// not guaranteed to be chronological.
func (c Calendar) RestDays() []domain.Date {
	days := make([]domain.Date, 0, len(c.Order))
	for _, key := range c.Order {
		if !c.Days[key].Holiday {
			continue
		}
		d, err := domain.ParseDate(key)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}

// Exclusions returns the rest days as a set.
func (c Calendar) Exclusions() domain.ExclusionSet {
	return domain.NewExclusionSet(c.RestDays()...)
}

type response struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Holiday json.RawMessage `json:"holiday"`
}

// decodeDays reads the upstream "MM-DD" keyed object, keeping key order and
// prefixing every key with year.
func decodeDays(data json.RawMessage, year int) (map[string]Day, []string, error) {
	days := make(map[string]Day)
	order := []string{}
	if len(data) == 0 || string(data) == "null" {
		return days, order, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var d Day
		if err := dec.Decode(&d); err != nil {
			return nil, nil, fmt.Errorf("decoding %s: %w", key, err)
		}
		key = fmt.Sprintf("%d-%s", year, key)
		if _, seen := days[key]; !seen {
			order = append(order, key)
		}
		days[key] = d
	}
	return days, order, nil
}
