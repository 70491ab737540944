package core

import (
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// custom validation tags & texts
	objectIDTag  = "objectid"
	objectIDText = "{0} noto'g'ri formatdagi ID (24 ta hex belgi bo'lishi kerak)"

	isoDateTag  = "isodate"
	isoDateText = "{0} sana YYYY-MM-DD formatida bo'lishi kerak"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "{0} maydoni majburiy"

	emailTag  = "email"
	emailText = "Email noto'g'ri formatda"

	passwordTag  = "password"
	passwordText = "{0} kamida 6 ta belgidan iborat bo'lishi kerak"

	dateOrderTag  = "date_order"
	dateOrderText = "{0} boshlanish sanasidan oldin bo'lishi mumkin emas"
)

// MinPasswordLen is the shortest password the backend accepts.
const MinPasswordLen = 6

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

	// register custom validators
	_ = validate.RegisterValidation(objectIDTag, objectIDValidation)
	RegisterCustomTranslation(validate, translator, objectIDTag, objectIDText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)

	_ = validate.RegisterValidation(passwordTag, passwordValidation)
	RegisterCustomTranslation(validate, translator, passwordTag, passwordText)

	validate.RegisterStructValidation(leaveStructValidation, Leave{})
	RegisterCustomTranslation(validate, translator, dateOrderTag, dateOrderText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, emailTag, emailText, true)
}

// NewTranslator returns the translator validation errors are rendered with.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
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

// IsObjectID reports whether s is a 24-char hex backend identifier.
func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Custom Global Validators

// objectIDValidation only allows 24-char hex identifiers.
func objectIDValidation(fl validator.FieldLevel) bool {
	return IsObjectID(fl.Field().String())
}

// isoDateValidation only allows YYYY-MM-DD dates.
func isoDateValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// passwordValidation only allows passwords of MinPasswordLen+ characters.
func passwordValidation(fl validator.FieldLevel) bool {
	return utf8.RuneCountInString(fl.Field().String()) >= MinPasswordLen
}

// leaveStructValidation does Leave's struct level validation
func leaveStructValidation(sl validator.StructLevel) {
	if l, ok := sl.Current().Interface().(Leave); ok {
		start, err1 := time.Parse(DateLayout, l.StartDate)
		end, err2 := time.Parse(DateLayout, l.EndDate)
		if err1 == nil && err2 == nil && end.Before(start) {
			sl.ReportError(l.EndDate, "end_date", "EndDate", dateOrderTag, "")
		}
	}
}
