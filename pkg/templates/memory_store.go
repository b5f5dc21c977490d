package templates

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store for testing and local development.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]*EmailTemplate
	byPair    map[pairKey][]string // version ids per (key, application)
	now       func() time.Time
}

type pairKey struct {
	key         string
	application string
}

// NewMemoryStore creates a new in-memory template store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*EmailTemplate),
		byPair: make(map[pairKey][]string),
		now:    time.Now,
	}
}

func (s *MemoryStore) Active(ctx context.Context, key, application string) (*EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.byPair[pairKey{key, application}] {
		if t := s.byID[id]; t.Active {
			clone := cloneTemplate(*t)
			return &clone, nil
		}
	}
	return nil, ErrTemplateNotFound
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrTemplateNotFound
	}
	clone := cloneTemplate(*t)
	return &clone, nil
}

func (s *MemoryStore) Create(ctx context.Context, t EmailTemplate) (*EmailTemplate, error) {
	if t.Key == "" {
		return nil, ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pair := pairKey{t.Key, t.Application}

	maxVersion := 0
	hasActive := false
	for _, id := range s.byPair[pair] {
		existing := s.byID[id]
		if existing.Version > maxVersion {
			maxVersion = existing.Version
		}
		if existing.Active {
			hasActive = true
		}
	}

	clone := cloneTemplate(t)
	clone.ID = uuid.New().String()
	clone.Version = maxVersion + 1
	// The first version for a pair becomes active immediately so the key is
	// renderable without an explicit activation step
	clone.Active = !hasActive
	clone.CreatedAt = s.now()

	s.byID[clone.ID] = &clone
	s.byPair[pair] = append(s.byPair[pair], clone.ID)

	out := cloneTemplate(clone)
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, t EmailTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[t.ID]
	if !ok {
		return ErrTemplateNotFound
	}
	existing.Subject = t.Subject
	existing.HTML = t.HTML
	existing.Text = t.Text
	existing.Variables = cloneVariables(t.Variables)
	existing.CustomCSS = t.CustomCSS
	existing.Headers = cloneHeaders(t.Headers)
	return nil
}

func (s *MemoryStore) Activate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.byID[id]
	if !ok {
		return ErrTemplateNotFound
	}

	// At most one active version per (key, application)
	for _, siblingID := range s.byPair[pairKey{target.Key, target.Application}] {
		s.byID[siblingID].Active = siblingID == id
	}
	return nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return ErrTemplateNotFound
	}
	t.Active = false
	return nil
}

func (s *MemoryStore) List(ctx context.Context, key, application string) ([]EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPair[pairKey{key, application}]
	out := make([]EmailTemplate, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneTemplate(*s.byID[id]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func cloneTemplate(t EmailTemplate) EmailTemplate {
	t.Variables = cloneVariables(t.Variables)
	t.Headers = cloneHeaders(t.Headers)
	return t
}

func cloneVariables(vs []Variable) []Variable {
	if vs == nil {
		return nil
	}
	out := make([]Variable, len(vs))
	copy(out, vs)
	return out
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
