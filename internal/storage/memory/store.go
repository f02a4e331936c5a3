// Package memory provides an in-process EventStore used by tests and the
// "memory" store backend. It mirrors the ordering contract of the
// postgres store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/simoamogit/progetto-scuola/internal/domain"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	events []domain.Event
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Insert(_ context.Context, subject, date, tod, description string) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := domain.Event{
		ID:          s.nextID,
		Subject:     subject,
		Date:        date,
		Time:        tod,
		Description: description,
	}
	s.nextID++
	s.events = append(s.events, ev)
	return ev, nil
}

func (s *Store) ListOrdered(_ context.Context) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	// Normalized layout strings sort chronologically; SliceStable keeps
	// insertion order for equal (date, time).
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *Store) ByDate(_ context.Context, date string) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, ev := range s.events {
		if ev.Date == date {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *Store) MarkNotified(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			if s.events[i].Notified {
				return false, nil
			}
			s.events[i].Notified = true
			return true, nil
		}
	}
	return false, nil
}

// Len reports the number of stored events. Test helper.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
