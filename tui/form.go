package tui

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/oaiiae/addressbook/addressbook"
)

var labels = map[string]string{ //nolint: gochecknoglobals
	"firstname": "First name",
	"name":      "Name",
	"street":    "Street",
	"street_nr": "No.",
	"plz":       "Postal code",
	"city":      "City",
	"phone":     "Phone",
	"mobile":    "Mobile",
	"email":     "Email",
	"whatsapp":  "WhatsApp",
	"internet":  "Website",
}

var errRequired = errors.New("required")

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

// Edit lets the user fill in r, starting from its current values.
func Edit(ctx context.Context, title string, r *addressbook.Record) error {
	fields := make([]huh.Field, 0, len(addressbook.Fields))
	for _, name := range addressbook.Fields {
		input := huh.NewInput().Title(labels[name]).Value(r.Field(name))
		if slices.Contains(addressbook.Required, name) {
			input = input.Validate(required)
		}
		fields = append(fields, input)
	}
	return huh.NewForm(huh.NewGroup(fields...).Title(title)).RunWithContext(ctx)
}
