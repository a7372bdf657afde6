package datastores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// AddressesFile implements [AddressesStore] on top of [AddressesInmem],
// writing the whole content as JSON to a file after each mutation.
type AddressesFile struct {
	*AddressesInmem

	path    string
	logger  *slog.Logger
	mu      sync.Mutex // serializes mutation+write and reloads
	written []byte
	reloads singleflight.Group
}

var _ AddressesStore = (*AddressesFile)(nil)

// NewAddressesFile loads the addresses stored at path. The seed addresses
// are used when the file does not exist, and an unreadable file starts empty.
func NewAddressesFile(path string, logger *slog.Logger, seed ...*Address) *AddressesFile {
	s := &AddressesFile{AddressesInmem: NewAddressesInmem(), path: path, logger: logger}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.AddressesInmem = NewAddressesInmem(seed...)
	case err != nil:
		logger.Warn("could not read addresses file, starting empty", "path", path, "err", err)
	default:
		addresses, err := decodeAddresses(b)
		if err != nil {
			logger.Warn("could not decode addresses file, starting empty", "path", path, "err", err)
			break
		}
		s.AddressesInmem.replace(addresses)
		s.written = b
	}
	return s
}

func decodeAddresses(b []byte) (map[string]*Address, error) {
	addresses := make(map[string]*Address)
	if err := json.Unmarshal(b, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *AddressesFile) Create(ctx context.Context, a *Address) (key string, err error) {
	err = s.mutate(ctx, func() error {
		key, err = s.AddressesInmem.Create(ctx, a)
		return err
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *AddressesFile) Put(ctx context.Context, key string, a *Address) error {
	return s.mutate(ctx, func() error { return s.AddressesInmem.Put(ctx, key, a) })
}

func (s *AddressesFile) Delete(ctx context.Context, key string) error {
	return s.mutate(ctx, func() error { return s.AddressesInmem.Delete(ctx, key) })
}

// mutate applies fn then saves. The content before fn is restored when the
// save fails, so that memory never holds what the file does not.
func (s *AddressesFile) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, _ := s.AddressesInmem.List(ctx)
	if err := fn(); err != nil {
		return err
	}
	if err := s.save(ctx); err != nil {
		s.AddressesInmem.replace(before)
		s.logger.WarnContext(ctx, "could not write addresses file", "path", s.path, "err", err)
		return err
	}
	return nil
}

// save writes the store content to a temporary file renamed over s.path.
// Called with s.mu held.
func (s *AddressesFile) save(ctx context.Context) error {
	addresses, _ := s.AddressesInmem.List(ctx)
	b, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint: errcheck // already renamed on success
	if _, err = tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}
	s.written = b
	return nil
}

// Reload replaces the store content with the file content. Nothing changes
// when the file holds what this store wrote last.
func (s *AddressesFile) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if bytes.Equal(b, s.written) {
		return nil
	}
	addresses, err := decodeAddresses(b)
	if err != nil {
		return err
	}
	s.AddressesInmem.replace(addresses)
	s.written = b
	s.logger.InfoContext(ctx, "addresses file reloaded", "path", s.path, "count", len(addresses))
	return nil
}

// Watch reloads the store whenever the file is changed by another process,
// until ctx is done. Bursts of events share a single reload.
func (s *AddressesFile) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// the file is replaced by rename, so watch its directory
	if err = watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return watcher.Close()
	})
	g.Go(func() error {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) ||
					!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				g.Go(func() error {
					_, err, _ := s.reloads.Do("reload", func() (any, error) { return nil, s.Reload(ctx) })
					if err != nil {
						s.logger.WarnContext(ctx, "could not reload addresses file", "path", s.path, "err", err)
					}
					return nil
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				s.logger.WarnContext(ctx, "addresses file watcher error", "err", err)
			case <-ctx.Done():
				return nil
			}
		}
	})
	return g.Wait()
}
