package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duca-customs-backend/internal/domain/audit"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, rec *audit.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]audit.Record, error) {
	args := m.Called(ctx, actorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Record), args.Error(1)
}

func TestAuditServiceImpl_ListByActor(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuditRepository)
		svc := NewAuditService(newTestLogger(), mockRepo)

		records := []audit.Record{
			{ActorID: actorID, Action: audit.ActionValidate, Entity: audit.EntityDeclaration, Result: audit.ResultExito},
			{ActorID: actorID, Action: audit.ActionLogin, Entity: audit.EntitySession, Result: audit.ResultExito},
		}
		mockRepo.On("ListByActor", ctx, actorID, 20, 40).Return(records, nil).Once()

		got, err := svc.ListByActor(ctx, actorID, 20, 40)
		require.NoError(t, err)
		assert.Equal(t, records, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DefaultsAndClampsPaging", func(t *testing.T) {
		mockRepo := new(MockAuditRepository)
		svc := NewAuditService(newTestLogger(), mockRepo)

		// Zero limit falls back to the default page, negative offset to 0.
		mockRepo.On("ListByActor", ctx, actorID, 50, 0).Return([]audit.Record{}, nil).Once()
		_, err := svc.ListByActor(ctx, actorID, 0, -5)
		require.NoError(t, err)

		// Oversized limit is clamped to the maximum page.
		mockRepo.On("ListByActor", ctx, actorID, 200, 0).Return([]audit.Record{}, nil).Once()
		_, err = svc.ListByActor(ctx, actorID, 10000, 0)
		require.NoError(t, err)

		mockRepo.AssertExpectations(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockRepo := new(MockAuditRepository)
		svc := NewAuditService(newTestLogger(), mockRepo)

		mockRepo.On("ListByActor", ctx, actorID, 50, 0).
			Return(nil, errors.New("mongo unavailable")).Once()

		_, err := svc.ListByActor(ctx, actorID, 0, 0)
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}
