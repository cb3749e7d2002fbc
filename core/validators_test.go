package core

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTask struct {
	Status string `json:"status" validate:"required,oneof=pending done"`
}

type testForm struct {
	Username string     `json:"username" validate:"required,alphanum_"`
	Title    string     `json:"title" validate:"notblank"`
	Deadline Date       `json:"deadline" validate:"required,notpast"`
	Tasks    []testTask `json:"tasks" validate:"dive"`
}

func TestValidators(t *testing.T) {
	orig := NowFunc
	defer func() { NowFunc = orig }()
	NowFunc = func() time.Time { return time.Date(2030, 3, 15, 12, 0, 0, 0, time.UTC) }

	valid := testForm{Username: "ana_01", Title: "Pilot", Deadline: MustDate("2030-03-15")}

	tests := []struct {
		name string
		form func() testForm
		want map[string]string
	}{
		{name: "valid", form: func() testForm { return valid }},
		{
			name: "missing",
			form: func() testForm { return testForm{Title: "Pilot"} },
			want: map[string]string{"username": requiredText, "deadline": requiredText},
		},
		{
			name: "alphanum_",
			form: func() testForm { f := valid; f.Username = "ana-01"; return f },
			want: map[string]string{"username": alphaNumUnderText},
		},
		{
			name: "blank",
			form: func() testForm { f := valid; f.Title = "  "; return f },
			want: map[string]string{"title": notBlankText},
		},
		{
			name: "past",
			form: func() testForm { f := valid; f.Deadline = MustDate("2030-03-14"); return f },
			want: map[string]string{"deadline": notPastText},
		},
		{
			name: "nested",
			form: func() testForm { f := valid; f.Tasks = []testTask{{Status: "done"}, {Status: "blocked"}}; return f },
			want: map[string]string{"tasks[1].status": "status must be one of [pending done]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate.Struct(tt.form())
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			flds, ok := NestedFieldErrors("", err)
			require.True(t, ok)
			got := make(map[string]string, len(flds))
			for _, fe := range flds {
				got[fe.Field] = fe.Error
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNestedFieldErrors(t *testing.T) {
	err := Validate.Struct(testTask{Status: "blocked"})
	flds, ok := NestedFieldErrors("tasks[2]", err)
	require.True(t, ok)
	assert.Equal(t, []FieldError{{Field: "tasks[2].status", Error: "status must be one of [pending done]"}}, flds)

	flds, ok = NestedFieldErrors("tasks[0]", NewValidationError(errors.New("task not found")))
	require.True(t, ok)
	assert.Equal(t, []FieldError{{Field: "tasks[0]", Error: "task not found"}}, flds)

	flds, ok = NestedFieldErrors("", errors.Wrap(NewValidationError(nil, FieldError{Field: "id", Error: "unknown"}), "saving"))
	require.True(t, ok)
	assert.Equal(t, []FieldError{{Field: "id", Error: "unknown"}}, flds)

	_, ok = NestedFieldErrors("tasks[0]", errors.New("db down"))
	assert.False(t, ok)
}

func TestCleanStrings(t *testing.T) {
	assert.Equal(t, "Ana", CleanString("  Ana\n"))
	assert.Equal(t, "ana", CleanString(" ANA ", true))
	assert.Nil(t, CleanStrings(nil))
	assert.Equal(t, []string{"a", "b"}, CleanStrings([]string{" a", "", "b", "a ", "  "}))
}
