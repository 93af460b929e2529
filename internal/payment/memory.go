package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrUnknownSession = errors.New("unknown checkout session")

// Memory is an in-process Gateway for local runs without a Stripe key.
// With AutoPay set every session is reported paid as soon as it is created.
// The session URL is the success URL with the session id filled in, so
// following it completes the checkout.
type Memory struct {
	AutoPay bool

	mu       sync.Mutex
	sessions map[string]*Session
	// Requests records every CreateSession call in order.
	Requests []SessionRequest
}

func NewMemory(autoPay bool) *Memory {
	return &Memory{AutoPay: autoPay, sessions: make(map[string]*Session)}
}

func (m *Memory) CreateSession(_ context.Context, req SessionRequest) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, it := range req.Items {
		total += it.UnitAmount * it.Quantity
	}
	id := "cs_mem_" + uuid.NewString()
	s := &Session{
		ID:              id,
		URL:             strings.ReplaceAll(req.SuccessURL, SessionIDPlaceholder, id),
		Paid:            m.AutoPay,
		ClientReference: req.ClientReference,
		AmountTotal:     total,
	}
	m.sessions[s.ID] = s
	m.Requests = append(m.Requests, req)

	cp := *s
	return &cp, nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) MarkPaid(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	s.Paid = true
	return nil
}

// Put registers a session directly, e.g. one created outside this process.
func (m *Memory) Put(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &s
}
