package notification

import (
	"context"
	"sync"
	"time"
)

// MemoryMessageStore implements MessageStore for testing and local development.
type MemoryMessageStore struct {
	mu       sync.RWMutex
	messages map[string]*Message
}

// NewMemoryMessageStore creates a new in-memory message store.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{messages: make(map[string]*Message)}
}

func (s *MemoryMessageStore) Create(ctx context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clone to prevent external modification of the stored record
	clone := msg
	clone.Metadata = cloneMetadata(msg.Metadata)
	s.messages[msg.ID] = &clone
	return nil
}

func (s *MemoryMessageStore) Get(ctx context.Context, id string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msg, ok := s.messages[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *msg
	clone.Metadata = cloneMetadata(msg.Metadata)
	return &clone, nil
}

func (s *MemoryMessageStore) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, msg := range s.messages {
		if msg.Active && msg.CreatedAt.Before(cutoff) {
			msg.Active = false
			n++
		}
	}
	return n, nil
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	clone := make(map[string]string, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}

// MemoryDeliveryStore implements DeliveryStore for testing and local development.
type MemoryDeliveryStore struct {
	mu         sync.RWMutex
	deliveries map[string]*Delivery
	// byKey enforces uniqueness per (notification, user, channel)
	byKey map[deliveryKey]string
}

type deliveryKey struct {
	notificationID string
	username       string
	channel        Channel
}

// NewMemoryDeliveryStore creates a new in-memory delivery store.
func NewMemoryDeliveryStore() *MemoryDeliveryStore {
	return &MemoryDeliveryStore{
		deliveries: make(map[string]*Delivery),
		byKey:      make(map[deliveryKey]string),
	}
}

func (s *MemoryDeliveryStore) Create(ctx context.Context, d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := deliveryKey{d.NotificationID, d.Username, d.Channel}
	if _, exists := s.byKey[key]; exists {
		return ErrDuplicateDelivery
	}

	clone := d
	s.deliveries[d.ID] = &clone
	s.byKey[key] = d.ID
	return nil
}

func (s *MemoryDeliveryStore) Get(ctx context.Context, id string) (*Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deliveries[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *MemoryDeliveryStore) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = DeliveryStatusDelivered
	d.DeliveredAt = &at
	d.FailureReason = ""
	return nil
}

func (s *MemoryDeliveryStore) MarkFailed(ctx context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = DeliveryStatusFailed
	d.FailureReason = reason
	return nil
}

func (s *MemoryDeliveryStore) Confirm(ctx context.Context, notificationID, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, d := range s.deliveries {
		if d.NotificationID == notificationID && d.Username == username {
			d.Status = DeliveryStatusConfirmed
			d.ConfirmedAt = &at
			found = true
		}
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryDeliveryStore) ListPending(ctx context.Context, username string, channel Channel) ([]Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Delivery
	for _, d := range s.deliveries {
		if d.Username == username && d.Channel == channel && d.Status == DeliveryStatusPending {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *MemoryDeliveryStore) ListUnconfirmed(ctx context.Context, username string) ([]Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Delivery
	for _, d := range s.deliveries {
		if d.Username == username && d.Status == DeliveryStatusDelivered {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *MemoryDeliveryStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, d := range s.deliveries {
		if d.CreatedAt.Before(cutoff) {
			delete(s.byKey, deliveryKey{d.NotificationID, d.Username, d.Channel})
			delete(s.deliveries, id)
			n++
		}
	}
	return n, nil
}

// MemorySettingsStore implements SettingsStore for testing and local development.
type MemorySettingsStore struct {
	mu   sync.RWMutex
	user map[string]*UserSettings
	app  map[settingsKey]*ApplicationSettings
}

type settingsKey struct {
	username    string
	application string
}

// NewMemorySettingsStore creates a new in-memory settings store.
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{
		user: make(map[string]*UserSettings),
		app:  make(map[settingsKey]*ApplicationSettings),
	}
}

func (s *MemorySettingsStore) UserSettings(ctx context.Context, username string) (*UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	us, ok := s.user[username]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *us
	return &clone, nil
}

func (s *MemorySettingsStore) SaveUserSettings(ctx context.Context, us UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := us
	s.user[us.Username] = &clone
	return nil
}

func (s *MemorySettingsStore) ApplicationSettings(ctx context.Context, username, application string) (*ApplicationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	as, ok := s.app[settingsKey{username, application}]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *as
	clone.AlertTypes = cloneAlertTypes(as.AlertTypes)
	return &clone, nil
}

func (s *MemorySettingsStore) SaveApplicationSettings(ctx context.Context, as ApplicationSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := as
	clone.AlertTypes = cloneAlertTypes(as.AlertTypes)
	s.app[settingsKey{as.Username, as.Application}] = &clone
	return nil
}

func cloneAlertTypes(ts []AlertType) []AlertType {
	if ts == nil {
		return nil
	}
	out := make([]AlertType, len(ts))
	copy(out, ts)
	return out
}

// MemoryProfileStore implements ProfileStore for testing and local development.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*ApplicationProfile
}

// NewMemoryProfileStore creates a new in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]*ApplicationProfile)}
}

func (s *MemoryProfileStore) Profile(ctx context.Context, application string) (*ApplicationProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[application]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	clone.SupportedAlertTypes = cloneAlertTypes(p.SupportedAlertTypes)
	return &clone, nil
}

func (s *MemoryProfileStore) SaveProfile(ctx context.Context, p ApplicationProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := p
	clone.SupportedAlertTypes = cloneAlertTypes(p.SupportedAlertTypes)
	s.profiles[p.Name] = &clone
	return nil
}
