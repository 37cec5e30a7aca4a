package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"roomloop/internal/telemetry"
)

var _ telemetry.Publisher = (*PublisherMock)(nil)

// PublisherMock stands in for the event bus. Every event handed to Publish
// is kept, whatever the configured return, so tests can inspect payloads
// without building matchers.
type PublisherMock struct {
	mock.Mock

	mu     sync.Mutex
	events []any
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()

	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Published returns a copy of the events seen so far.
func (m *PublisherMock) Published() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.events...)
}
