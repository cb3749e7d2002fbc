package core

import (
	"net/url"
	"time"
)

// DateRange selects dates d with Since <= d < Until. Zero bounds are open.
type DateRange struct {
	Since Date `json:"since"`
	Until Date `json:"until"`
}

func (dr DateRange) IsEmpty() bool {
	return dr.Since.IsZero() && dr.Until.IsZero()
}

func (dr DateRange) Contains(d Date) bool {
	if d.IsZero() {
		return dr.IsEmpty()
	}
	if !dr.Since.IsZero() && d.Before(dr.Since) {
		return false
	}
	if !dr.Until.IsZero() && !d.Before(dr.Until) {
		return false
	}
	return true
}

// ParseDateRange reads the `<field>__gte` and `<field>__lt` params.
func ParseDateRange(values url.Values, field string) (DateRange, error) {
	var dr DateRange
	if v := values.Get(field + "__gte"); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return DateRange{}, NewValidationError(nil, FieldError{Field: field + "__gte", Error: "enter a valid date"})
		}
		dr.Since = d
	}
	if v := values.Get(field + "__lt"); v != "" {
		d, err := ParseDate(v)
		if err != nil {
			return DateRange{}, NewValidationError(nil, FieldError{Field: field + "__lt", Error: "enter a valid date"})
		}
		dr.Until = d
	}
	return dr, nil
}

// DateFilterChoice is one entry of a date list filter.
type DateFilterChoice struct {
	Title    string            `json:"title"`
	Params   map[string]string `json:"params"`
	Selected bool              `json:"selected"`
}

// DateFilterChoices returns the standard choices of a date filter relative to `today`:
// Any date, Today, Past 7 days, This month & This year.
func DateFilterChoices(field string, today Date, selected DateRange) []DateFilterChoice {
	tomorrow := today.AddDays(1)
	monthStart := NewDate(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
	nextMonth := NewDate(monthStart.AddDate(0, 1, 0))
	yearStart := NewDate(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	nextYear := NewDate(yearStart.AddDate(1, 0, 0))

	ranges := []struct {
		title string
		dr    DateRange
	}{
		{"Any date", DateRange{}},
		{"Today", DateRange{Since: today, Until: tomorrow}},
		{"Past 7 days", DateRange{Since: today.AddDays(-7), Until: tomorrow}},
		{"This month", DateRange{Since: monthStart, Until: nextMonth}},
		{"This year", DateRange{Since: yearStart, Until: nextYear}},
	}
	choices := make([]DateFilterChoice, 0, len(ranges))
	for _, r := range ranges {
		params := map[string]string{}
		if !r.dr.IsEmpty() {
			params[field+"__gte"] = r.dr.Since.String()
			params[field+"__lt"] = r.dr.Until.String()
		}
		choices = append(choices, DateFilterChoice{
			Title:    r.title,
			Params:   params,
			Selected: r.dr.Since.Equal(selected.Since) && r.dr.Until.Equal(selected.Until),
		})
	}
	return choices
}
