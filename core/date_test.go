package core

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    string
		wantErr bool
	}{
		{name: "date", s: "2030-01-31", want: "2030-01-31"},
		{name: "datetime is truncated", s: "2030-01-31T23:59:59Z", want: "2030-01-31"},
		{name: "invalid", s: "31/01/2030", wantErr: true},
		{name: "empty", s: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToday(t *testing.T) {
	orig := NowFunc
	defer func() { NowFunc = orig }()
	NowFunc = func() time.Time { return time.Date(2030, 5, 4, 23, 30, 0, 0, time.UTC) }

	today := Today()
	assert.Equal(t, "2030-05-04", today.String())
	assert.Equal(t, "2030-05-05", today.AddDays(1).String())
	assert.True(t, today.Before(today.AddDays(1)))
}

func TestDate_JSON(t *testing.T) {
	type obj struct {
		Deadline Date `json:"deadline"`
	}

	data, err := json.Marshal(obj{Deadline: MustDate("2030-02-28")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deadline": "2030-02-28"}`, string(data))

	data, err = json.Marshal(obj{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deadline": null}`, string(data))

	var o obj
	require.NoError(t, json.Unmarshal([]byte(`{"deadline": null}`), &o))
	assert.True(t, o.Deadline.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`{"deadline": ""}`), &o))
	assert.True(t, o.Deadline.IsZero())
	assert.Error(t, json.Unmarshal([]byte(`{"deadline": "tomorrow"}`), &o))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want string
	}{
		{name: "nil", src: nil, want: ""},
		{name: "time", src: time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC), want: "2030-01-02"},
		{name: "string", src: "2030-01-02", want: "2030-01-02"},
		{name: "bytes", src: []byte("2030-01-02 00:00:00"), want: "2030-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDateRange(t *testing.T) {
	dr := DateRange{Since: MustDate("2030-01-10"), Until: MustDate("2030-01-20")}

	tests := []struct {
		name string
		dr   DateRange
		d    Date
		want bool
	}{
		{name: "empty range holds anything", dr: DateRange{}, d: MustDate("1999-01-01"), want: true},
		{name: "empty range holds no date", dr: DateRange{}, d: Date{}, want: true},
		{name: "no date", dr: dr, d: Date{}, want: false},
		{name: "since is inclusive", dr: dr, d: MustDate("2030-01-10"), want: true},
		{name: "until is exclusive", dr: dr, d: MustDate("2030-01-20"), want: false},
		{name: "before", dr: dr, d: MustDate("2030-01-09"), want: false},
		{name: "open end", dr: DateRange{Since: dr.Since}, d: MustDate("2099-01-01"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dr.Contains(tt.d))
		})
	}
}

func TestParseDateRange(t *testing.T) {
	dr, err := ParseDateRange(url.Values{"deadline__gte": {"2030-01-10"}, "deadline__lt": {"2030-01-20"}}, "deadline")
	require.NoError(t, err)
	assert.Equal(t, "2030-01-10", dr.Since.String())
	assert.Equal(t, "2030-01-20", dr.Until.String())

	dr, err = ParseDateRange(url.Values{"start__gte": {"2030-01-10"}}, "deadline")
	require.NoError(t, err)
	assert.True(t, dr.IsEmpty())

	_, err = ParseDateRange(url.Values{"deadline__lt": {"soon"}}, "deadline")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "deadline__lt", verr.Fields[0].Field)
}

func TestDateFilterChoices(t *testing.T) {
	today := MustDate("2030-03-15")

	choices := DateFilterChoices("deadline", today, DateRange{})
	titles := make([]string, 0, len(choices))
	for _, c := range choices {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"Any date", "Today", "Past 7 days", "This month", "This year"}, titles)
	assert.True(t, choices[0].Selected)
	assert.Empty(t, choices[0].Params)
	assert.Equal(t, map[string]string{"deadline__gte": "2030-03-08", "deadline__lt": "2030-03-16"}, choices[2].Params)
	assert.Equal(t, map[string]string{"deadline__gte": "2030-01-01", "deadline__lt": "2031-01-01"}, choices[4].Params)

	choices = DateFilterChoices("deadline", today, DateRange{Since: MustDate("2030-03-01"), Until: MustDate("2030-04-01")})
	assert.False(t, choices[0].Selected)
	assert.True(t, choices[3].Selected)
}
