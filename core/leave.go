package core

import "github.com/go-playground/validator/v10"

// Leave is a vacation request, shared by staff and students.
type Leave struct {
	ID        string `json:"_id"`
	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`
	Reason    string `json:"reason" validate:"required"`
}

func (l *Leave) Clean() {
	l.ID = CleanString(l.ID)
	l.StartDate = CleanString(l.StartDate)
	l.EndDate = CleanString(l.EndDate)
	l.Reason = CleanString(l.Reason)
}

func (l Leave) Validate(validate *validator.Validate) error {
	return validate.Struct(l)
}
