package requirement

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rastreio/core"
)

var (
	sprintDatesTag  = "sprintdates"
	sprintDatesText = "the end date cannot precede the start date"
)

// register validators
func init() {
	core.Validate.RegisterCustomTypeFunc(nullStringValue, null.String{})

	core.Validate.RegisterStructValidation(sprintStructValidation, SprintData{})
	core.RegisterCustomTranslation(core.Validate, core.Translator, sprintDatesTag, sprintDatesText)
}

// nullStringValue lets null.String fields be validated as plain strings; null counts as missing.
func nullStringValue(field reflect.Value) interface{} {
	if ns, ok := field.Interface().(null.String); ok && ns.Valid {
		return ns.String
	}
	return nil
}

// sprintStructValidation checks that a sprint does not end before it starts.
func sprintStructValidation(sl validator.StructLevel) {
	if sd, ok := sl.Current().Interface().(SprintData); ok {
		if !sd.Start.IsZero() && !sd.End.IsZero() && sd.End.Before(sd.Start) {
			sl.ReportError(sd.End, "end", "End", sprintDatesTag, "")
		}
	}
}
