package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// InterviewSession model related methods.
	CreateInterviewSession(ctx context.Context, create *InterviewSession) (*InterviewSession, error)
	ListInterviewSessions(ctx context.Context, find *FindInterviewSession) ([]*InterviewSession, error)
	UpdateInterviewSession(ctx context.Context, update *UpdateInterviewSession) (*InterviewSession, error)
	DeleteInterviewSession(ctx context.Context, delete *DeleteInterviewSession) error
}
