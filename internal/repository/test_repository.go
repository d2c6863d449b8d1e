package repository

import (
	"healmymind_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) ListPublished(testType string, page, limit int) ([]model.Test, int64, error) {
	var ts []model.Test
	var total int64
	query := r.DB.Model(&model.Test{}).Where("is_published = ?", true)
	if testType != "" {
		query = query.Where("test_type = ?", testType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("name asc").Scopes(model.Paginate(page, limit)).Find(&ts).Error
	return ts, total, err
}

// FindByID loads the test with questions, options and ranges, each ordered
// by position.
func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("ScoringRanges", func(db *gorm.DB) *gorm.DB { return db.Order("min_score asc") }).
		First(&t, id).Error
	return &t, err
}

// Create inserts the test and all nested rows in one transaction.
func (r *TestRepository) Create(t *model.Test) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Create(t).Error
	})
}

// Update rewrites scalar fields and replaces every question, option and range.
func (r *TestRepository) Update(t *model.Test) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, t.ID); err != nil {
			return err
		}
		if err := tx.Model(&model.Test{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"name":           t.Name,
			"description":    t.Description,
			"test_type":      t.TestType,
			"instructions":   t.Instructions,
			"estimated_time": t.EstimatedTime,
			"is_published":   t.IsPublished,
		}).Error; err != nil {
			return err
		}
		for i := range t.Questions {
			q := &t.Questions[i]
			q.ID = 0
			q.TestID = t.ID
			for j := range q.Options {
				q.Options[j].ID = 0
			}
			if err := tx.Create(q).Error; err != nil {
				return err
			}
		}
		for i := range t.ScoringRanges {
			sr := &t.ScoringRanges[i]
			sr.ID = 0
			sr.TestID = t.ID
			if err := tx.Create(sr).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		return tx.Delete(&model.Test{}, id).Error
	})
}

func deleteChildren(tx *gorm.DB, testID uint) error {
	questionIDs := tx.Model(&model.Question{}).Select("id").Where("test_id = ?", testID)
	if err := tx.Unscoped().Where("question_id IN (?)", questionIDs).Delete(&model.Option{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("test_id = ?", testID).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("test_id = ?", testID).Delete(&model.ScoringRange{}).Error
}

func (r *TestRepository) CountByType(testType string) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Test{}).Where("test_type = ?", testType).Count(&n).Error
	return n, err
}
