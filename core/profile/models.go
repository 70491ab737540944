package profile

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/session"
)

const (
	CacheKey = "profile"

	// MaxImageSize is the largest avatar upload accepted (5 MiB).
	MaxImageSize = 5 << 20
	// avatars are scaled to fit this box
	imageSide = 512
)

type (
	// Profile is what the dashboard knows about the signed-in staff member:
	// the token claims, overlaid with the edits made in this session.
	Profile struct {
		ID        string `json:"_id,omitempty"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email,omitempty"`
		Role      string `json:"role"`
		Image     string `json:"image"`
		CreatedAt string `json:"createdAt,omitempty"`
	}

	EditProfile struct {
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Email     string `json:"email,omitempty" validate:"omitempty,email"`
	}

	EditPassword struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,password"`
		ConfirmPassword string `json:"confirm_password,omitempty" validate:"omitempty,eqfield=NewPassword"`
	}
)

func (p Profile) FullName() string {
	return core.CleanString(p.FirstName + " " + p.LastName)
}

// Person is the log identity of the profile.
func (p Profile) Person() core.Person {
	return core.Person{ID: p.ID, Name: p.FullName(), Email: p.Email}
}

func (ep *EditProfile) Clean() {
	ep.FirstName = core.CleanString(ep.FirstName)
	ep.LastName = core.CleanString(ep.LastName)
	ep.Email = core.CleanString(ep.Email, true /* lower */)
}

func (ep EditProfile) Validate(validate *validator.Validate) error {
	return validate.Struct(ep)
}

// Overlay is the edit as kept in the session.
func (ep EditProfile) Overlay(image string) session.Overlay {
	return session.Overlay{FirstName: ep.FirstName, LastName: ep.LastName, Email: ep.Email, Image: image}
}

func (ep EditPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(ep)
}

// FromSession builds the profile out of the token claims and the overlay.
// The token is decoded without verification: the backend verifies it on every call,
// here it only feeds the display. Opaque tokens leave the claims empty.
func FromSession(sess session.Session, o session.Overlay) Profile {
	p := Profile{Role: sess.Role}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(sess.Token, claims); err == nil {
		p.ID = claim(claims, "_id")
		if p.ID == "" {
			p.ID = claim(claims, "id")
		}
		p.FirstName = claim(claims, "first_name")
		p.LastName = claim(claims, "last_name")
		p.Email = claim(claims, "email")
		p.Image = claim(claims, "image")
		p.CreatedAt = claim(claims, "createdAt")
		if role := claim(claims, "role"); role != "" {
			p.Role = role
		}
	}

	if o.FirstName != "" {
		p.FirstName = o.FirstName
	}
	if o.LastName != "" {
		p.LastName = o.LastName
	}
	if o.Email != "" {
		p.Email = o.Email
	}
	if o.Image != "" {
		p.Image = o.Image
	}
	return p
}

func claim(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
