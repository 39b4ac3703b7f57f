package outbox_poller

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natillera-ledger/internal/domain/movement"
	"github.com/natillera-ledger/internal/domain/outbox"
	"github.com/natillera-ledger/internal/domain/shared"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(pgx.Tx) outbox.Repository { return m }

type MockMovementPublisher struct {
	mock.Mock
}

func (m *MockMovementPublisher) Publish(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMovementPublisher) Close() error { return nil }

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// newMessage builds a pending outbox row for a stored contribution of memberID
func newMessage(t *testing.T, id, memberID int64) *outbox.Message {
	t.Helper()

	entry := movement.NewContribution(memberID, 50000, "Marzo 2025", time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC))
	entry.ID = id
	msg, err := outbox.NewMessage(movement.NewAppendedEvent(entry, "corr-1"))
	require.NoError(t, err)
	msg.ID = id
	return msg
}
