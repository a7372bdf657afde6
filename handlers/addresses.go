package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	ds "github.com/oaiiae/addressbook/datastores"
)

type Addresses struct {
	Store        ds.AddressesStore
	ErrorHandler func(context.Context, error)
}

type AddressModel struct {
	Firstname string `json:"firstname" example:"Anna"     minLength:"1"`
	Name      string `json:"name"      example:"Muster"   minLength:"1"`
	Street    string `json:"street"    example:"Hauptstr" required:"false"`
	StreetNr  string `json:"street_nr" example:"1"        required:"false"`
	Plz       string `json:"plz"       example:"1000"     required:"false"`
	City      string `json:"city"      example:"Wien"     required:"false"`
	Phone     string `json:"phone"                        required:"false"`
	Mobile    string `json:"mobile"                       required:"false"`
	Email     string `json:"email"                        required:"false"`
	Whatsapp  string `json:"whatsapp"                     required:"false"`
	Internet  string `json:"internet"                     required:"false"`
}

func modelOf(a *ds.Address) AddressModel { return AddressModel(*a) }

func (m *AddressModel) address() *ds.Address { a := ds.Address(*m); return &a }

// MessageBody is returned by mutations.
type MessageBody struct {
	Message string `json:"message" example:"created"`
	Key     string `json:"key,omitempty" example:"Anna Muster" doc:"key the address is stored under"`
}

func (h *Addresses) RegisterList(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/addresses",
		handlerWithErrorHandler(h.list, h.ErrorHandler),
		opErrors(http.StatusInternalServerError),
	)
}

type AddressesListOutput struct {
	Body map[string]AddressModel
}

func (h *Addresses) list(ctx context.Context, _ *struct{}) (*AddressesListOutput, error) {
	addresses, err := h.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	body := make(map[string]AddressModel, len(addresses))
	for key, address := range addresses {
		body[key] = modelOf(address)
	}

	return &AddressesListOutput{Body: body}, nil
}

// AddressKeyInput addresses one entry by its key.
type AddressKeyInput struct {
	Key string `path:"key" doc:"key of the address"`
}

func (i *AddressKeyInput) addressKey() string { return i.Key }

func (h *Addresses) RegisterGet(api huma.API) { // called by [huma.AutoRegister]
	huma.Get(api, "/addresses/{key}",
		handlerWithErrorHandler(h.get, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

type AddressesGetOutput struct {
	Body AddressModel
}

func (h *Addresses) get(ctx context.Context, input *AddressKeyInput) (*AddressesGetOutput, error) {
	address, err := h.Store.Get(ctx, input.Key)
	if err != nil {
		return nil, err
	}
	return &AddressesGetOutput{Body: modelOf(address)}, nil
}

func (h *Addresses) RegisterPost(api huma.API) { // called by [huma.AutoRegister]
	huma.Post(api, "/addresses",
		handlerWithErrorHandler(h.post, h.ErrorHandler),
		opErrors(http.StatusConflict, http.StatusUnprocessableEntity, http.StatusInternalServerError),
		func(o *huma.Operation) { o.DefaultStatus = http.StatusCreated },
	)
}

type AddressesMessageOutput struct {
	Body MessageBody
}

type AddressPostInput struct {
	Body AddressModel
}

func (i *AddressPostInput) addressKey() string { return i.Body.address().Key() }

func (h *Addresses) post(ctx context.Context, input *AddressPostInput) (*AddressesMessageOutput, error) {
	key, err := h.Store.Create(ctx, input.Body.address())
	if err != nil {
		return nil, err
	}
	return &AddressesMessageOutput{Body: MessageBody{Message: "created", Key: key}}, nil
}

func (h *Addresses) RegisterPut(api huma.API) { // called by [huma.AutoRegister]
	huma.Put(api, "/addresses/{key}",
		handlerWithErrorHandler(h.put, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError),
	)
}

type AddressPutInput struct {
	Key  string `path:"key" doc:"key of the address to replace"`
	Body AddressModel
}

func (i *AddressPutInput) addressKey() string { return i.Key }

func (h *Addresses) put(ctx context.Context, input *AddressPutInput) (*AddressesMessageOutput, error) {
	if err := h.Store.Put(ctx, input.Key, input.Body.address()); err != nil {
		return nil, err
	}
	return &AddressesMessageOutput{Body: MessageBody{Message: "updated"}}, nil
}

func (h *Addresses) RegisterDel(api huma.API) { // called by [huma.AutoRegister]
	huma.Delete(api, "/addresses/{key}",
		handlerWithErrorHandler(h.del, h.ErrorHandler),
		opErrors(http.StatusNotFound, http.StatusInternalServerError),
	)
}

func (h *Addresses) del(ctx context.Context, input *AddressKeyInput) (*AddressesMessageOutput, error) {
	if err := h.Store.Delete(ctx, input.Key); err != nil {
		return nil, err
	}
	return &AddressesMessageOutput{Body: MessageBody{Message: "deleted"}}, nil
}
