package projector

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Registry errors.
var (
	ErrNotFound = errors.New("projector not found")
	ErrExists   = errors.New("projector already exists")
)

// Registry holds projectors by ID. Every operation names its target; there
// is no current selection.
type Registry struct {
	mu         sync.RWMutex
	projectors map[string]*Projector
	opts       []Option
}

// NewRegistry creates an empty registry. opts are applied to every
// projector it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		projectors: make(map[string]*Projector),
		opts:       opts,
	}
}

// Create adds a projector and returns its initial update.
func (r *Registry) Create(id string, params projection.Parameters, opts ...Option) (*Projector, Update, error) {
	if id == "" {
		return nil, Update{}, errors.New("creating projector: empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projectors[id]; ok {
		return nil, Update{}, fmt.Errorf("%w: %s", ErrExists, id)
	}
	all := append(append([]Option(nil), r.opts...), opts...)
	p, u, err := New(id, params, all...)
	if err != nil {
		return nil, Update{}, err
	}
	r.projectors[id] = p
	return p, u, nil
}

// Get returns the projector with the given ID.
func (r *Registry) Get(id string) (*Projector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projectors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Delete removes a projector.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projectors[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.projectors, id)
	return nil
}

// Apply routes a change to a projector.
func (r *Registry) Apply(id string, c Change) (Update, error) {
	p, err := r.Get(id)
	if err != nil {
		return Update{}, err
	}
	return p.Apply(c)
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.projectors))
	for id := range r.projectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of projectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projectors)
}
