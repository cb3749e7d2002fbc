package core

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)

	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	notPastTag  = "notpast"
	notPastText = "ensure this date is today or later"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	Validate = validator.New()
	Translator = newTranslator()
	InitValidators(Validate, Translator)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Date is validated as time.Time; a zero Date counts as missing.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok && !d.IsZero() {
			return d.Time
		}
		return nil
	}, Date{})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(notPastTag, notPastValidation)
	RegisterCustomTranslation(validate, translator, notPastTag, notPastText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldErrors converts validator errors into FieldErrors keyed by their JSON path (eg. `tasks[0].status`).
func FieldErrors(errs validator.ValidationErrors) []FieldError {
	flds := make([]FieldError, 0, len(errs))
	for _, vErr := range errs {
		flds = append(flds, FieldError{Field: FieldPath(vErr), Error: vErr.Translate(Translator)})
	}
	return flds
}

// FieldPath drops the root struct name from the namespace of a field error.
func FieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// notPastValidation checks that a date is not before the day the validation runs.
func notPastValidation(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case time.Time:
		return !NewDate(v).Before(Today())
	case Date:
		return !v.Before(Today())
	}
	return false
}

// NestedFieldErrors returns the field errors of a validation failure, with their fields placed under prefix
// (eg. `tasks[0]`). ok is false when err is not a validation failure.
func NestedFieldErrors(prefix string, err error) (flds []FieldError, ok bool) {
	switch e := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		flds = FieldErrors(e)
	case *ValidationError:
		flds = append(flds, e.Fields...)
		if len(flds) == 0 {
			flds = append(flds, FieldError{Field: "", Error: e.Error()})
		}
	default:
		return nil, false
	}
	for i := range flds {
		switch {
		case prefix == "":
		case flds[i].Field == "":
			flds[i].Field = prefix
		default:
			flds[i].Field = prefix + "." + flds[i].Field
		}
	}
	return flds, true
}
