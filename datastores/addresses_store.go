package datastores

import (
	"context"
	"errors"
)

type Address struct {
	Firstname string `json:"firstname"`
	Name      string `json:"name"`
	Street    string `json:"street"`
	StreetNr  string `json:"street_nr"`
	Plz       string `json:"plz"`
	City      string `json:"city"`
	Phone     string `json:"phone"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	Whatsapp  string `json:"whatsapp"`
	Internet  string `json:"internet"`
}

// Key derives the key an address is created under.
func (a *Address) Key() string { return a.Firstname + " " + a.Name }

type AddressesStore interface {
	List(context.Context) (map[string]*Address, error)
	Get(context.Context, string) (*Address, error)
	Create(context.Context, *Address) (string, error)
	Put(context.Context, string, *Address) error
	Delete(context.Context, string) error
}

var (
	ErrObjectNotFound = errors.New("store: object not found")
	ErrObjectExists   = errors.New("store: object already exists")
)
