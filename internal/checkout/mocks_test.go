package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*Session
	outbox   []*OutboxEvent
	seq      int

	insertErr   error
	finalizeErr error
	markErr     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sessions: map[string]*Session{}}
}

func cloneSession(s *Session) *Session {
	cp := *s
	cp.Items = append([]SessionItem(nil), s.Items...)
	return &cp
}

func (m *memoryRepository) Insert(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.seq++
	// Distinct, ordered creation times so "most recent" is deterministic.
	session.CreatedAt = time.Unix(0, int64(m.seq)*int64(time.Millisecond))
	session.UpdatedAt = session.CreatedAt
	m.sessions[session.ID] = cloneSession(session)
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return cloneSession(s), nil
	}
	return nil, ErrSessionNotFound
}

func (m *memoryRepository) FindLatestOpen(_ context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Session
	for _, s := range m.sessions {
		if s.UserID != userID || s.IsFinalized {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrNoOpenSession
	}
	return cloneSession(latest), nil
}

func (m *memoryRepository) UpdatePayment(_ context.Context, session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[session.ID]
	if !ok || stored.IsFinalized {
		return ErrStateConflict
	}
	stored.IsPaid = session.IsPaid
	stored.PaymentStatus = session.PaymentStatus
	stored.PaymentDetails = session.PaymentDetails
	stored.PaidAt = session.PaidAt
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memoryRepository) Finalize(_ context.Context, sessionID string, finalizedAt time.Time, event *OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	stored, ok := m.sessions[sessionID]
	if !ok || !stored.IsPaid || stored.IsFinalized {
		return ErrStateConflict
	}
	stored.IsFinalized = true
	stored.FinalizedAt = &finalizedAt
	stored.UpdatedAt = finalizedAt
	m.outbox = append(m.outbox, event)
	return nil
}

func (m *memoryRepository) UnprocessedEvents(_ context.Context, limit int64) ([]*OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []*OutboxEvent
	for _, e := range m.outbox {
		if e.Processed {
			continue
		}
		events = append(events, e)
		if int64(len(events)) == limit {
			break
		}
	}
	return events, nil
}

func (m *memoryRepository) MarkEventProcessed(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	for _, e := range m.outbox {
		if e.ID == eventID {
			now := time.Now()
			e.Processed = true
			e.ProcessedAt = &now
			return nil
		}
	}
	return ErrSessionNotFound
}

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}
