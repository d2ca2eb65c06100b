package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aawaaz/complaint-desk/internal/models"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/google/uuid"
)

// MemoryStore keeps complaints and users in process. It backs development
// runs without DATABASE_URL and the service tests.
type MemoryStore struct {
	mu         sync.RWMutex
	complaints map[uuid.UUID]*memComplaint
	users      map[uuid.UUID]*models.User
	emails     map[string]uuid.UUID
	seq        uint64
}

// memComplaint remembers insertion order to break createdAt ties
type memComplaint struct {
	models.Complaint
	seq uint64
}

var (
	_ services.ComplaintStore = (*MemoryStore)(nil)
	_ services.UserStore      = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		complaints: make(map[uuid.UUID]*memComplaint),
		users:      make(map[uuid.UUID]*models.User),
		emails:     make(map[string]uuid.UUID),
	}
}

// Insert stores a copy of c
func (m *MemoryStore) Insert(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.complaints[c.ID]; exists {
		return fmt.Errorf("complaint %s already exists", c.ID)
	}
	m.seq++
	stored := *c
	stored.Owner = nil
	m.complaints[c.ID] = &memComplaint{Complaint: stored, seq: m.seq}
	return nil
}

// FindByID returns a copy of the complaint or nil
func (m *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mc, ok := m.complaints[id]
	if !ok {
		return nil, nil
	}
	c := mc.Complaint
	return &c, nil
}

// FindByOwner lists one owner's complaints, newest first
func (m *MemoryStore) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Complaint, error) {
	return m.collect(func(c *models.Complaint) bool { return c.OwnerID == ownerID }), nil
}

// FindAll lists complaints matching filter, newest first
func (m *MemoryStore) FindAll(_ context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	return m.collect(func(c *models.Complaint) bool { return matches(c, filter) }), nil
}

// Update applies the non-nil patch fields; nil result means no such complaint
func (m *MemoryStore) Update(_ context.Context, id uuid.UUID, patch models.ComplaintPatch) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, ok := m.complaints[id]
	if !ok || !holds(mc, patch.IfStatus) {
		return nil, nil
	}

	c := &mc.Complaint
	if patch.Category != nil {
		c.Category = *patch.Category
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.AdminRemarks != nil {
		c.AdminRemarks = *patch.AdminRemarks
	}
	c.UpdatedAt = time.Now().UTC()

	out := *c
	return &out, nil
}

// Delete removes a complaint and reports whether it was there and matched ifStatus
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID, ifStatus *models.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mc, ok := m.complaints[id]
	if !ok || !holds(mc, ifStatus) {
		return false, nil
	}
	delete(m.complaints, id)
	return true, nil
}

func holds(mc *memComplaint, ifStatus *models.Status) bool {
	return ifStatus == nil || mc.Status == *ifStatus
}

// Count returns how many complaints match filter
func (m *MemoryStore) Count(_ context.Context, filter models.ComplaintFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, mc := range m.complaints {
		if matches(&mc.Complaint, filter) {
			n++
		}
	}
	return n, nil
}

// CountGroupedBy counts complaints per distinct value of field
func (m *MemoryStore) CountGroupedBy(_ context.Context, field models.GroupField) (map[string]int64, error) {
	if field != models.GroupByCategory && field != models.GroupByStatus {
		return nil, fmt.Errorf("cannot group complaints by %q", field)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, mc := range m.complaints {
		if field == models.GroupByCategory {
			counts[string(mc.Category)]++
		} else {
			counts[string(mc.Status)]++
		}
	}
	return counts, nil
}

// CreateUser stores a copy of u; a taken e-mail yields services.ErrConflict
func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.emails[u.Email]; taken {
		return fmt.Errorf("user with email %s: %w", u.Email, services.ErrConflict)
	}
	stored := *u
	m.users[u.ID] = &stored
	m.emails[u.Email] = u.ID
	return nil
}

// FindUserByEmail returns a copy of the account or nil
func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return nil, nil
	}
	u := *m.users[id]
	return &u, nil
}

// FindUserByID returns a copy of the account or nil
func (m *MemoryStore) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) collect(keep func(*models.Complaint) bool) []models.Complaint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	picked := make([]*memComplaint, 0)
	for _, mc := range m.complaints {
		if keep(&mc.Complaint) {
			picked = append(picked, mc)
		}
	}
	sort.Slice(picked, func(i, j int) bool {
		a, b := picked[i], picked[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]models.Complaint, len(picked))
	for i, mc := range picked {
		out[i] = mc.Complaint
	}
	return out
}

func matches(c *models.Complaint, filter models.ComplaintFilter) bool {
	if filter.Status != nil && c.Status != *filter.Status {
		return false
	}
	if filter.Category != nil && c.Category != *filter.Category {
		return false
	}
	return true
}
