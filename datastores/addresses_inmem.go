package datastores

import (
	"context"
	"maps"
	"sync"
)

// AddressesInmem implements [AddressesStore].
type AddressesInmem struct {
	mu        sync.Mutex
	addresses map[string]*Address
}

var _ AddressesStore = (*AddressesInmem)(nil)

func NewAddressesInmem(as ...*Address) *AddressesInmem {
	addresses := make(map[string]*Address, len(as))
	for _, a := range as {
		addresses[a.Key()] = a
	}
	return &AddressesInmem{addresses: addresses}
}

func (s *AddressesInmem) Create(_ context.Context, a *Address) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := a.Key()
	if _, loaded := s.addresses[key]; loaded {
		return "", ErrObjectExists
	}
	s.addresses[key] = a
	return key, nil
}

func (s *AddressesInmem) List(_ context.Context) (map[string]*Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.addresses), nil
}

func (s *AddressesInmem) Get(_ context.Context, key string) (*Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return a, nil
}

// Put replaces the address stored under key. The key is kept even when the
// names of a change.
func (s *AddressesInmem) Put(_ context.Context, key string, a *Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addresses[key]; !ok {
		return ErrObjectNotFound
	}
	s.addresses[key] = a
	return nil
}

func (s *AddressesInmem) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.addresses[key]; !ok {
		return ErrObjectNotFound
	}
	delete(s.addresses, key)
	return nil
}

// replace swaps the whole content of the store.
func (s *AddressesInmem) replace(addresses map[string]*Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addresses = addresses
}
