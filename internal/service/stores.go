package service

import (
	"context"
	"time"

	"healmymind_backend/internal/model"
)

// The repository types in internal/repository satisfy these interfaces.
// Services depend on them so they can be exercised without a database.

type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdateLastLogin(userID uint, at time.Time) error
}

type TestStore interface {
	ListPublished(testType string, page, limit int) ([]model.Test, int64, error)
	FindByID(id uint) (*model.Test, error)
	Create(t *model.Test) error
	Update(t *model.Test) error
	Delete(id uint) error
}

type ResultStore interface {
	Create(res *model.TestResult) error
	FindByIDForUser(id, userID uint) (*model.TestResult, error)
	UpdateRecommendations(id uint, payload []byte) error
	ListByUser(userID uint, page, limit int) ([]model.TestResult, int64, error)
	ListByTest(testID uint) ([]model.TestResult, error)
	Scores(testID uint) ([]int, error)
	SeverityDistribution(testID uint) ([]model.SeverityCount, error)
	CountUsers(testID uint) (int64, error)
	// CompletionTimes returns completed-minus-started for results that
	// have a start time.
	CompletionTimes(testID uint) ([]time.Duration, error)
}

type SessionStore interface {
	Create(s *model.TestSession) error
	FindLatest(userID, testID uint) (*model.TestSession, error)
	CountByTest(testID uint) (int64, error)
}

// TestCache holds fully loaded tests keyed by id.
type TestCache interface {
	Get(ctx context.Context, id uint) (*model.Test, bool, error)
	Set(ctx context.Context, t *model.Test) error
	Invalidate(ctx context.Context, id uint) error
}
