package staff

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
)

var (
	statusTag  = "staff_status"
	statusText = "{0} faol, ta'tilda yoki ishdan bo'shatilgan bo'lishi kerak"

	teacherFieldTag  = "teacher_field"
	teacherFieldText = "{0} ustoz uchun majburiy"
)

// InitValidators registers the staff validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	validate.RegisterStructValidation(newMemberStructValidation, NewMember{})
	core.RegisterCustomTranslation(validate, translator, teacherFieldTag, teacherFieldText)
}

// Custom Validators

// statusValidation only allows the known staff statuses.
func statusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// newMemberStructValidation does NewMember's struct level validation
func newMemberStructValidation(sl validator.StructLevel) {
	if nm, ok := sl.Current().Interface().(NewMember); ok {
		// teachers are reached by phone and teach one course
		if nm.Kind == Teacher {
			if nm.Phone == "" {
				sl.ReportError(nm.Phone, "phone", "Phone", teacherFieldTag, "")
			}
			if nm.CourseID == "" {
				sl.ReportError(nm.CourseID, "course_id", "CourseID", teacherFieldTag, "")
			}
		}
	}
}
