// Package addressbook holds the contact record types shared by the
// repository client, the reconciler and the rendering collaborators.
package addressbook

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Record is a contact entry as exchanged with the remote API.
type Record struct {
	Firstname string `json:"firstname"`
	Name      string `json:"name"`
	Street    string `json:"street"`
	StreetNr  string `json:"street_nr"`
	Plz       string `json:"plz"`
	City      string `json:"city"`

	Phone    string `json:"phone"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp"`
	Internet string `json:"internet"`
}

// Fields lists the JSON names of every [Record] field in declaration order.
var Fields = []string{ //nolint: gochecknoglobals
	"firstname", "name", "street", "street_nr", "plz", "city",
	"phone", "mobile", "email", "whatsapp", "internet",
}

// Required lists the fields that must be non-empty after trimming.
var Required = Fields[:6] //nolint: gochecknoglobals

// Field returns a pointer to the field named by its JSON name, or nil.
func (r *Record) Field(name string) *string {
	switch name {
	case "firstname":
		return &r.Firstname
	case "name":
		return &r.Name
	case "street":
		return &r.Street
	case "street_nr":
		return &r.StreetNr
	case "plz":
		return &r.Plz
	case "city":
		return &r.City
	case "phone":
		return &r.Phone
	case "mobile":
		return &r.Mobile
	case "email":
		return &r.Email
	case "whatsapp":
		return &r.Whatsapp
	case "internet":
		return &r.Internet
	default:
		return nil
	}
}

// Get returns the value of the field named by its JSON name.
func (r Record) Get(name string) string {
	if p := r.Field(name); p != nil {
		return *p
	}
	return ""
}

// Normalize returns a copy of r with every field trimmed.
func (r Record) Normalize() Record {
	for _, name := range Fields {
		p := r.Field(name)
		*p = strings.TrimSpace(*p)
	}
	return r
}

// Validate reports the required fields that are empty once trimmed.
// It returns nil or a [*ValidationError].
func (r Record) Validate() error {
	var missing []string
	for _, name := range Required {
		if strings.TrimSpace(r.Get(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidationError lists the required fields missing from a [Record].
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "addressbook: missing required fields: " + strings.Join(e.Missing, ", ")
}

// FromRow coerces a loosely typed row, as produced by a spreadsheet reader,
// into a [Record]. Column names match field names case-insensitively and
// unknown columns are ignored. Values are not validated.
// When several columns match one field, a column named exactly like the
// field wins, otherwise the first one in byte order does.
func FromRow(row map[string]any) Record {
	var r Record
	exact := make(map[*string]bool, len(row))
	for _, column := range slices.Sorted(maps.Keys(row)) {
		name := strings.ToLower(strings.TrimSpace(column))
		p := r.Field(name)
		if p == nil {
			continue
		}
		if was, set := exact[p]; set && (was || column != name) {
			continue
		}
		*p = strings.TrimSpace(coerce(row[column]))
		exact[p] = column == name
	}
	return r
}

func coerce(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
