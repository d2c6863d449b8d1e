package repository

import (
	"time"

	"healmymind_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(res *model.TestResult) error {
	return r.DB.Create(res).Error
}

func (r *ResultRepository) FindByIDForUser(id, userID uint) (*model.TestResult, error) {
	var res model.TestResult
	err := r.DB.Preload("Test").Where("user_id = ?", userID).First(&res, id).Error
	return &res, err
}

func (r *ResultRepository) UpdateRecommendations(id uint, payload []byte) error {
	return r.DB.Model(&model.TestResult{}).Where("id = ?", id).Update("recommendations", payload).Error
}

func (r *ResultRepository) ListByUser(userID uint, page, limit int) ([]model.TestResult, int64, error) {
	var rs []model.TestResult
	var total int64
	query := r.DB.Model(&model.TestResult{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Preload("Test").Order("completed_at desc").Scopes(model.Paginate(page, limit)).Find(&rs).Error
	return rs, total, err
}

func (r *ResultRepository) ListByTest(testID uint) ([]model.TestResult, error) {
	var rs []model.TestResult
	err := r.DB.Where("test_id = ?", testID).Order("completed_at asc").Find(&rs).Error
	return rs, err
}

func (r *ResultRepository) Scores(testID uint) ([]int, error) {
	var scores []int
	err := r.DB.Model(&model.TestResult{}).Where("test_id = ?", testID).Pluck("score", &scores).Error
	return scores, err
}

func (r *ResultRepository) SeverityDistribution(testID uint) ([]model.SeverityCount, error) {
	var rows []model.SeverityCount
	err := r.DB.Model(&model.TestResult{}).
		Select("severity, COUNT(*) as count").
		Where("test_id = ?", testID).
		Group("severity").
		Scan(&rows).Error
	return rows, err
}

func (r *ResultRepository) CompletionTimes(testID uint) ([]time.Duration, error) {
	var rows []struct {
		StartedAt   time.Time
		CompletedAt time.Time
	}
	err := r.DB.Model(&model.TestResult{}).
		Select("started_at, completed_at").
		Where("test_id = ? AND started_at IS NOT NULL", testID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]time.Duration, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.CompletedAt.Sub(row.StartedAt))
	}
	return out, nil
}

func (r *ResultRepository) CountUsers(testID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.TestResult{}).Where("test_id = ?", testID).Distinct("user_id").Count(&n).Error
	return n, err
}
