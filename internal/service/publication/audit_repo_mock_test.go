package publication

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

var _ auditRepo = &auditRepoMock{}

type auditRepoMock struct {
	LogFunc         func(ctx context.Context, records ...domain.AuditRecord) error
	GetByEntityFunc func(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error)

	calls struct {
		Log []struct {
			Records []domain.AuditRecord
		}
		GetByEntity []struct {
			EntityType domain.EntityType
			EntityID   uuid.UUID
			Limit      int
		}
	}
	lockLog         sync.RWMutex
	lockGetByEntity sync.RWMutex
}

func (mock *auditRepoMock) Log(ctx context.Context, records ...domain.AuditRecord) error {
	if mock.LogFunc == nil {
		panic("auditRepoMock.LogFunc: method is nil but auditRepo.Log was just called")
	}
	mock.lockLog.Lock()
	mock.calls.Log = append(mock.calls.Log, struct{ Records []domain.AuditRecord }{Records: records})
	mock.lockLog.Unlock()
	return mock.LogFunc(ctx, records...)
}

func (mock *auditRepoMock) LogCalls() []struct{ Records []domain.AuditRecord } {
	mock.lockLog.RLock()
	calls := mock.calls.Log
	mock.lockLog.RUnlock()
	return calls
}

func (mock *auditRepoMock) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	if mock.GetByEntityFunc == nil {
		panic("auditRepoMock.GetByEntityFunc: method is nil but auditRepo.GetByEntity was just called")
	}
	callInfo := struct {
		EntityType domain.EntityType
		EntityID   uuid.UUID
		Limit      int
	}{EntityType: entityType, EntityID: entityID, Limit: limit}
	mock.lockGetByEntity.Lock()
	mock.calls.GetByEntity = append(mock.calls.GetByEntity, callInfo)
	mock.lockGetByEntity.Unlock()
	return mock.GetByEntityFunc(ctx, entityType, entityID, limit)
}

func (mock *auditRepoMock) GetByEntityCalls() []struct {
	EntityType domain.EntityType
	EntityID   uuid.UUID
	Limit      int
} {
	mock.lockGetByEntity.RLock()
	calls := mock.calls.GetByEntity
	mock.lockGetByEntity.RUnlock()
	return calls
}
