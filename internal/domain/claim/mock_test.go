package claim

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*Claim
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Claim)}
}

func (m *mockRepo) Create(_ context.Context, c *Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	for i := range c.ServiceLines {
		c.ServiceLines[i].ID = uuid.New()
		c.ServiceLines[i].ClaimID = c.ID
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Claim, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Claim
	for _, c := range m.store {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.PayerID != "" && c.PayerID != f.PayerID {
			continue
		}
		if f.PatientID != "" && c.PatientID != f.PatientID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	total := len(out)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, c *Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *mockRepo) RecordValidation(_ context.Context, id uuid.UUID, score int, status Status, at time.Time) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return "", ErrNotFound
	}
	c.Score = &score
	c.ValidatedAt = &at
	c.Status = c.Status.AfterValidation(status)
	return c.Status, nil
}

type published struct {
	key     string
	payload interface{}
}

type recordingPublisher struct {
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload interface{}) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{key: key, payload: payload})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
