package repository

import (
	"healmymind_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(s *model.TestSession) error {
	return r.DB.Create(s).Error
}

// FindLatest returns the most recent session the user opened for the test.
func (r *SessionRepository) FindLatest(userID, testID uint) (*model.TestSession, error) {
	var s model.TestSession
	err := r.DB.Where("user_id = ? AND test_id = ?", userID, testID).Order("started_at desc").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) CountByTest(testID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.TestSession{}).Where("test_id = ?", testID).Count(&n).Error
	return n, err
}
