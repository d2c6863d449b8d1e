package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestResult is append-only history of one submission.
// swagger:model TestResult
type TestResult struct {
	BaseModel
	UserID          uint            `gorm:"index;not null" json:"userId"`
	TestID          uint            `gorm:"index;not null" json:"testId"`
	Test            *Test           `gorm:"foreignKey:TestID" json:"test,omitempty"`
	Score           int             `gorm:"not null" json:"score"`
	Severity        string          `gorm:"size:10;index;not null" json:"severity"`
	Answers         json.RawMessage `gorm:"type:json" json:"answers"`
	Recommendations json.RawMessage `gorm:"type:json" json:"recommendations,omitempty"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	CompletedAt     time.Time       `gorm:"index" json:"completedAt"`
}

func (TestResult) TableName() string {
	return "test_results"
}

// TestSession marks that a user opened a test. Sessions without a matching
// result count as abandoned in statistics.
type TestSession struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	TestID    uint      `gorm:"index;not null" json:"testId"`
	StartedAt time.Time `json:"startedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

func (s *TestSession) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the session window has closed at now.
func (s *TestSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SeverityCount is one row of a severity distribution query.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}
