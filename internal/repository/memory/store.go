// Package memory is an in-process store backend for local development and
// tests. Nothing is persisted.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"instadm/internal/entities"
	"instadm/internal/interfaces"
)

type Store struct {
	mu             sync.RWMutex
	companies      map[string]entities.Company
	messages       []entities.ChatHistory
	appointments   map[string]entities.Appointment
	productDetails []entities.ProductDetails
	now            func() time.Time
}

func New() *Store {
	return &Store{
		companies:    make(map[string]entities.Company),
		appointments: make(map[string]entities.Appointment),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Stores returns the repositories backed by s.
func (s *Store) Stores() interfaces.Stores {
	return interfaces.Stores{
		Companies:      &CompanyRepository{s},
		ChatHistory:    &ChatHistoryRepository{s},
		Appointments:   &AppointmentRepository{s},
		ProductDetails: &ProductDetailsRepository{s},
	}
}

// -- Companies --

type CompanyRepository struct{ s *Store }

func (r *CompanyRepository) Create(_ context.Context, c *entities.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.companies {
		if strings.EqualFold(existing.Email, c.Email) || existing.InstagramID == c.InstagramID {
			return entities.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.companies[c.ID] = cloneCompany(*c)
	return nil
}

func (r *CompanyRepository) GetByID(_ context.Context, id string) (*entities.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.companies[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	c = cloneCompany(c)
	return &c, nil
}

func (r *CompanyRepository) GetByEmail(_ context.Context, email string) (*entities.Company, error) {
	return r.find(func(c entities.Company) bool { return strings.EqualFold(c.Email, email) })
}

func (r *CompanyRepository) GetByInstagramID(_ context.Context, instagramID string) (*entities.Company, error) {
	return r.find(func(c entities.Company) bool { return c.InstagramID == instagramID })
}

func (r *CompanyRepository) find(match func(entities.Company) bool) (*entities.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.companies {
		if match(c) {
			c = cloneCompany(c)
			return &c, nil
		}
	}
	return nil, entities.ErrNotFound
}

func (r *CompanyRepository) Update(_ context.Context, id string, u entities.CompanyUpdate) (*entities.Company, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.companies[id]
	if !ok {
		return nil, entities.ErrNotFound
	}
	u.Apply(&c)
	c.UpdatedAt = r.s.now()
	r.s.companies[id] = cloneCompany(c)
	c = cloneCompany(c)
	return &c, nil
}

func (r *CompanyRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.companies[id]
	if !ok {
		return entities.ErrNotFound
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = r.s.now()
	r.s.companies[id] = c
	return nil
}

// Delete removes the company and its tenant-scoped records under one lock.
func (r *CompanyRepository) Delete(_ context.Context, c *entities.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.companies[c.ID]; !ok {
		return entities.ErrNotFound
	}
	delete(r.s.companies, c.ID)

	kept := r.s.messages[:0]
	for _, m := range r.s.messages {
		if m.CompanyInstagramID != c.InstagramID {
			kept = append(kept, m)
		}
	}
	r.s.messages = kept

	for id, a := range r.s.appointments {
		if a.CompanyInstagramID == c.InstagramID {
			delete(r.s.appointments, id)
		}
	}

	keptDetails := r.s.productDetails[:0]
	for _, d := range r.s.productDetails {
		if d.CompanyInstagramID != c.InstagramID {
			keptDetails = append(keptDetails, d)
		}
	}
	r.s.productDetails = keptDetails
	return nil
}

func cloneCompany(c entities.Company) entities.Company {
	c.FAQs = append([]entities.FAQ(nil), c.FAQs...)
	c.Keywords = append([]string(nil), c.Keywords...)
	return c
}

// -- Chat history --

type ChatHistoryRepository struct{ s *Store }

func (r *ChatHistoryRepository) Insert(_ context.Context, m *entities.ChatHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.messages {
		if existing.MessageID == m.MessageID {
			return entities.ErrConflict
		}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.s.now()
	}
	r.s.messages = append(r.s.messages, *m)
	return nil
}

// scoped returns the tenant's messages, newest first.
func (r *ChatHistoryRepository) scoped(companyInstagramID string) []entities.ChatHistory {
	var out []entities.ChatHistory
	for _, m := range r.s.messages {
		if m.CompanyInstagramID == companyInstagramID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *ChatHistoryRepository) List(_ context.Context, companyInstagramID string, p entities.Page) ([]entities.ChatHistory, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.scoped(companyInstagramID)
	return window(all, p), int64(len(all)), nil
}

func (r *ChatHistoryRepository) CountByCompany(_ context.Context, companyInstagramID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, m := range r.s.messages {
		if m.CompanyInstagramID == companyInstagramID {
			n++
		}
	}
	return n, nil
}

func (r *ChatHistoryRepository) CountCounterparts(_ context.Context, companyInstagramID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make(map[string]struct{})
	for _, m := range r.s.messages {
		if m.CompanyInstagramID != companyInstagramID {
			continue
		}
		ids[m.SenderID] = struct{}{}
		ids[m.RecipientID] = struct{}{}
	}
	return int64(len(ids)), nil
}

func (r *ChatHistoryRepository) Recent(_ context.Context, companyInstagramID string, limit int) ([]entities.ChatHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.scoped(companyInstagramID)
	if limit >= 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *ChatHistoryRepository) Breakdown(_ context.Context, companyInstagramID, ownerID string) (entities.MessageBreakdown, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var b entities.MessageBreakdown
	for _, m := range r.s.messages {
		if m.CompanyInstagramID != companyInstagramID {
			continue
		}
		if m.SenderID == ownerID {
			b.Sent++
		} else {
			b.Received++
		}
	}
	return b, nil
}

// -- Appointments --

type AppointmentRepository struct{ s *Store }

func (r *AppointmentRepository) Create(_ context.Context, a *entities.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.appointments[a.ID] = *a
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, companyInstagramID, id string) (*entities.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok || a.CompanyInstagramID != companyInstagramID {
		return nil, entities.ErrNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) ListByCompany(_ context.Context, companyInstagramID string) ([]entities.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []entities.Appointment{}
	for _, a := range r.s.appointments {
		if a.CompanyInstagramID == companyInstagramID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out, nil
}

func (r *AppointmentRepository) Update(_ context.Context, a *entities.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.appointments[a.ID]
	if !ok || existing.CompanyInstagramID != a.CompanyInstagramID {
		return entities.ErrNotFound
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = r.s.now()
	r.s.appointments[a.ID] = *a
	return nil
}

// -- Product details --

type ProductDetailsRepository struct{ s *Store }

func (r *ProductDetailsRepository) Create(_ context.Context, d *entities.ProductDetails) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.insertDetails(d)
	return nil
}

func (r *ProductDetailsRepository) CreateMany(_ context.Context, ds []entities.ProductDetails) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range ds {
		r.s.insertDetails(&ds[i])
	}
	return nil
}

func (s *Store) insertDetails(d *entities.ProductDetails) {
	if d.ID == "" {
		d.ID = entities.NewProductDetailsID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	s.productDetails = append(s.productDetails, *d)
}

func (r *ProductDetailsRepository) List(_ context.Context, companyInstagramID string, p entities.Page) ([]entities.ProductDetails, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []entities.ProductDetails
	for _, d := range r.s.productDetails {
		if d.CompanyInstagramID == companyInstagramID {
			all = append(all, d)
		}
	}
	// Same order as the SQL and mongo backends: (created_at, id).
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt) == p.Ascending
		}
		return (a.ID < b.ID) == p.Ascending
	})
	return window(all, p), int64(len(all)), nil
}

func window[T any](all []T, p entities.Page) []T {
	start := p.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := len(all)
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}
	return append([]T(nil), all[start:end]...)
}
