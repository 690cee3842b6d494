package publication

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/domain"
)

var _ publicationRepo = &publicationRepoMock{}

type publicationRepoMock struct {
	CreateFunc       func(ctx context.Context, p domain.Publication) (domain.Publication, error)
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (domain.Publication, error)
	ListFunc         func(ctx context.Context, filter domain.PublicationFilter) ([]domain.Publication, int, error)
	ChangeStatusFunc func(ctx context.Context, id uuid.UUID, change domain.StatusChange, now time.Time) (domain.Publication, error)
	SoftDeleteFunc   func(ctx context.Context, id uuid.UUID, now time.Time) error
	PublishDueFunc   func(ctx context.Context, now time.Time) ([]uuid.UUID, error)

	calls struct {
		Create []struct {
			P domain.Publication
		}
		GetByID []struct {
			ID uuid.UUID
		}
		List []struct {
			Filter domain.PublicationFilter
		}
		ChangeStatus []struct {
			ID     uuid.UUID
			Change domain.StatusChange
			Now    time.Time
		}
		SoftDelete []struct {
			ID  uuid.UUID
			Now time.Time
		}
		PublishDue []struct {
			Now time.Time
		}
	}
	lockCreate       sync.RWMutex
	lockGetByID      sync.RWMutex
	lockList         sync.RWMutex
	lockChangeStatus sync.RWMutex
	lockSoftDelete   sync.RWMutex
	lockPublishDue   sync.RWMutex
}

func (mock *publicationRepoMock) Create(ctx context.Context, p domain.Publication) (domain.Publication, error) {
	if mock.CreateFunc == nil {
		panic("publicationRepoMock.CreateFunc: method is nil but publicationRepo.Create was just called")
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ P domain.Publication }{P: p})
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, p)
}

func (mock *publicationRepoMock) CreateCalls() []struct{ P domain.Publication } {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *publicationRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Publication, error) {
	if mock.GetByIDFunc == nil {
		panic("publicationRepoMock.GetByIDFunc: method is nil but publicationRepo.GetByID was just called")
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, struct{ ID uuid.UUID }{ID: id})
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *publicationRepoMock) GetByIDCalls() []struct{ ID uuid.UUID } {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *publicationRepoMock) List(ctx context.Context, filter domain.PublicationFilter) ([]domain.Publication, int, error) {
	if mock.ListFunc == nil {
		panic("publicationRepoMock.ListFunc: method is nil but publicationRepo.List was just called")
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, struct{ Filter domain.PublicationFilter }{Filter: filter})
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter)
}

func (mock *publicationRepoMock) ListCalls() []struct{ Filter domain.PublicationFilter } {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *publicationRepoMock) ChangeStatus(ctx context.Context, id uuid.UUID, change domain.StatusChange, now time.Time) (domain.Publication, error) {
	if mock.ChangeStatusFunc == nil {
		panic("publicationRepoMock.ChangeStatusFunc: method is nil but publicationRepo.ChangeStatus was just called")
	}
	callInfo := struct {
		ID     uuid.UUID
		Change domain.StatusChange
		Now    time.Time
	}{ID: id, Change: change, Now: now}
	mock.lockChangeStatus.Lock()
	mock.calls.ChangeStatus = append(mock.calls.ChangeStatus, callInfo)
	mock.lockChangeStatus.Unlock()
	return mock.ChangeStatusFunc(ctx, id, change, now)
}

func (mock *publicationRepoMock) ChangeStatusCalls() []struct {
	ID     uuid.UUID
	Change domain.StatusChange
	Now    time.Time
} {
	mock.lockChangeStatus.RLock()
	calls := mock.calls.ChangeStatus
	mock.lockChangeStatus.RUnlock()
	return calls
}

func (mock *publicationRepoMock) SoftDelete(ctx context.Context, id uuid.UUID, now time.Time) error {
	if mock.SoftDeleteFunc == nil {
		panic("publicationRepoMock.SoftDeleteFunc: method is nil but publicationRepo.SoftDelete was just called")
	}
	callInfo := struct {
		ID  uuid.UUID
		Now time.Time
	}{ID: id, Now: now}
	mock.lockSoftDelete.Lock()
	mock.calls.SoftDelete = append(mock.calls.SoftDelete, callInfo)
	mock.lockSoftDelete.Unlock()
	return mock.SoftDeleteFunc(ctx, id, now)
}

func (mock *publicationRepoMock) SoftDeleteCalls() []struct {
	ID  uuid.UUID
	Now time.Time
} {
	mock.lockSoftDelete.RLock()
	calls := mock.calls.SoftDelete
	mock.lockSoftDelete.RUnlock()
	return calls
}

func (mock *publicationRepoMock) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	if mock.PublishDueFunc == nil {
		panic("publicationRepoMock.PublishDueFunc: method is nil but publicationRepo.PublishDue was just called")
	}
	mock.lockPublishDue.Lock()
	mock.calls.PublishDue = append(mock.calls.PublishDue, struct{ Now time.Time }{Now: now})
	mock.lockPublishDue.Unlock()
	return mock.PublishDueFunc(ctx, now)
}

func (mock *publicationRepoMock) PublishDueCalls() []struct{ Now time.Time } {
	mock.lockPublishDue.RLock()
	calls := mock.calls.PublishDue
	mock.lockPublishDue.RUnlock()
	return calls
}
