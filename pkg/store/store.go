// Package store keeps loaded and derived images under user-chosen names.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/akale22/Image-Manipulator/pkg/raster"
)

var (
	ErrNotFound  = errors.New("image not found")
	ErrNilImage  = errors.New("image is nil")
	ErrEmptyName = errors.New("image name is empty")
)

// Store maps names to images. Images are immutable, so they are shared
// rather than copied. A Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	images map[string]*raster.Image
}

func New() *Store {
	return &Store{images: make(map[string]*raster.Image)}
}

// Get returns the image stored under name.
func (s *Store) Get(name string) (*raster.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return img, nil
}

// Put stores img under name, replacing any previous image.
func (s *Store) Put(name string, img *raster.Image) error {
	if name == "" {
		return ErrEmptyName
	}
	if img == nil {
		return fmt.Errorf("%w: %q", ErrNilImage, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[name] = img
	return nil
}

// Names lists the stored names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.images))
	for n := range s.images {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
