package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/baylot/raffle-api/internal/domain"
	"github.com/baylot/raffle-api/internal/imagestore"
	"github.com/baylot/raffle-api/internal/repository"
)

// memStore is an in-memory TicketRepository. Transaction snapshots the map and restores it on error.
type memStore struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]domain.Ticket
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{tickets: map[uuid.UUID]domain.Ticket{}}
}

func (m *memStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	snapshot := make(map[uuid.UUID]domain.Ticket, len(m.tickets))
	for k, v := range m.tickets {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.tickets = snapshot
		m.mu.Unlock()
		return err
	}

	return nil
}

func (m *memStore) fail(op string) error {
	if m.failOn == op {
		return fmt.Errorf("%s: injected failure", op)
	}
	return nil
}

func (m *memStore) Create(_ context.Context, t domain.Ticket) (domain.Ticket, error) {
	if err := m.fail("Create"); err != nil {
		return domain.Ticket{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tickets {
		if existing.TicketNumber == t.TicketNumber {
			return domain.Ticket{}, repository.ErrTicketNumberExists
		}
	}
	t.ID = uuid.New()
	m.tickets[t.ID] = t

	return t, nil
}

func (m *memStore) FindByID(_ context.Context, id uuid.UUID) (domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}

	return t, nil
}

func (m *memStore) FindByNumber(_ context.Context, number string) (domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tickets {
		if t.TicketNumber == number {
			return t, nil
		}
	}

	return domain.Ticket{}, repository.ErrTicketNotFound
}

func matches(t domain.Ticket, f domain.TicketFilter) bool {
	if f.Archived != nil && t.IsArchived != *f.Archived {
		return false
	}
	if f.Winner != nil && t.IsWinner != *f.Winner {
		return false
	}
	if f.Featured != nil && t.IsFeatured != *f.Featured {
		return false
	}
	if f.NumberContains != "" && !strings.Contains(strings.ToLower(t.TicketNumber), strings.ToLower(f.NumberContains)) {
		return false
	}

	return true
}

func (m *memStore) List(_ context.Context, f domain.TicketFilter) ([]domain.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Ticket{}
	for _, t := range m.tickets {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (m *memStore) Count(ctx context.Context, f domain.TicketFilter) (int64, error) {
	list, err := m.List(ctx, f)
	return int64(len(list)), err
}

func (m *memStore) Update(_ context.Context, t domain.Ticket) (domain.Ticket, error) {
	if err := m.fail("Update"); err != nil {
		return domain.Ticket{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.tickets[t.ID]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	t.CreatedAt = old.CreatedAt
	m.tickets[t.ID] = t

	return t, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[id]; !ok {
		return repository.ErrTicketNotFound
	}
	delete(m.tickets, id)

	return nil
}

func (m *memStore) DeleteMatching(_ context.Context, f domain.TicketFilter) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted []domain.Ticket
	for id, t := range m.tickets {
		if matches(t, f) {
			deleted = append(deleted, t)
			delete(m.tickets, id)
		}
	}

	return deleted, nil
}

// memImages records saved and removed image URLs.
type memImages struct {
	mu      sync.Mutex
	saved   map[string][]byte
	removed []string
	seq     int
}

func newMemImages() *memImages {
	return &memImages{saved: map[string][]byte{}}
}

func (i *memImages) Save(_ context.Context, name string, data []byte) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.seq++
	url := fmt.Sprintf("/uploaded_tickets/%d_%s", i.seq, name)
	i.saved[url] = data

	return url, nil
}

func (i *memImages) Remove(_ context.Context, url string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.saved[url]; !ok {
		return imagestore.ErrImageNotFound
	}
	delete(i.saved, url)
	i.removed = append(i.removed, url)

	return nil
}
