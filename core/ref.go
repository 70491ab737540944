package core

import (
	"bytes"
	"encoding/json"
)

// Ref is a reference the backend sends either populated (an object) or bare (a string).
// A bare string is taken as the ID when it looks like one, else as the name.
type Ref struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (r *Ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*r = Ref{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if IsObjectID(s) {
			r.ID = s
		} else {
			r.Name = s
		}
		return nil
	}

	var obj struct {
		MongoID   string          `json:"_id"`
		LegacyID  FlexString      `json:"id"`
		Name      json.RawMessage `json:"name"`
		FirstName string          `json:"first_name"`
		LastName  string          `json:"last_name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.ID = obj.MongoID
	if r.ID == "" {
		r.ID = obj.LegacyID.String()
	}
	r.FirstName, r.LastName = obj.FirstName, obj.LastName
	if len(obj.Name) > 0 {
		// name may itself be populated ({name: {_id, name}})
		var inner Ref
		if err := inner.UnmarshalJSON(obj.Name); err != nil {
			return err
		}
		r.Name = inner.Name
		if r.Name == "" {
			r.Name = inner.ID
		}
	}
	return nil
}

// Label is what screens show for the reference.
func (r Ref) Label() string {
	if full := CleanString(r.FirstName + " " + r.LastName); full != "" {
		return full
	}
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
