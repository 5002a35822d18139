// Package teststore provides an in-memory store.Driver for tests. It
// enforces the same optimistic-concurrency contract as the SQL drivers.
package teststore

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/interviewforge/interviewforge/store"
)

type Driver struct {
	mu       sync.RWMutex
	nextID   int32
	sessions map[string]*store.InterviewSession
}

func New() *Driver {
	return &Driver{
		nextID:   1,
		sessions: make(map[string]*store.InterviewSession),
	}
}

func (d *Driver) GetDB() *sql.DB { return nil }

func (d *Driver) Close() error { return nil }

func (d *Driver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *Driver) CreateInterviewSession(_ context.Context, create *store.InterviewSession) (*store.InterviewSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now().UnixMilli()
	if create.CreatedTs == 0 {
		create.CreatedTs = now
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = now
	}
	if create.Status == "" {
		create.Status = store.SessionNotStarted
	}
	create.ID = d.nextID
	d.nextID++

	d.sessions[create.UID] = create.Clone()
	return create.Clone(), nil
}

func (d *Driver) ListInterviewSessions(_ context.Context, find *store.FindInterviewSession) ([]*store.InterviewSession, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*store.InterviewSession, 0)
	for _, s := range d.sessions {
		if find.ID != nil && s.ID != *find.ID {
			continue
		}
		if find.UID != nil && s.UID != *find.UID {
			continue
		}
		if find.Status != nil && s.Status != *find.Status {
			continue
		}
		if find.Role != nil && s.Role != *find.Role {
			continue
		}
		result = append(result, s.Clone())
	}

	sort.Slice(result, func(i, j int) bool { return result[i].UpdatedTs > result[j].UpdatedTs })

	if find.Limit != nil {
		offset := 0
		if find.Offset != nil {
			offset = *find.Offset
		}
		if offset > len(result) {
			offset = len(result)
		}
		end := offset + *find.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}

	return result, nil
}

func (d *Driver) UpdateInterviewSession(_ context.Context, update *store.UpdateInterviewSession) (*store.InterviewSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.sessions[update.UID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if existing.UpdatedTs != update.ExpectedUpdatedTs {
		return nil, store.ErrConflict
	}

	updated := existing.Clone()
	if update.Status != nil {
		updated.Status = *update.Status
	}
	if update.CurrentRound != nil {
		updated.CurrentRound = *update.CurrentRound
	}
	if update.CurrentQuestion != nil {
		updated.CurrentQuestion = *update.CurrentQuestion
	}
	if update.Answers != nil {
		updated.Answers = append([]store.Answer(nil), update.Answers...)
	}

	newTs := time.Now().UnixMilli()
	if newTs <= update.ExpectedUpdatedTs {
		newTs = update.ExpectedUpdatedTs + 1
	}
	updated.UpdatedTs = newTs

	d.sessions[update.UID] = updated
	return updated.Clone(), nil
}

func (d *Driver) DeleteInterviewSession(_ context.Context, del *store.DeleteInterviewSession) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[del.UID]; !ok {
		return store.ErrNotFound
	}
	delete(d.sessions, del.UID)
	return nil
}
