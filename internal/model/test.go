package model

import "healmymind_backend/internal/scoring"

// Test is a screening instrument as authored by administrators.
// swagger:model Test
type Test struct {
	BaseModel
	Name          string         `gorm:"size:100;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	TestType      string         `gorm:"size:10;index;not null" json:"testType"`
	Instructions  string         `gorm:"type:text" json:"instructions"`
	EstimatedTime int            `gorm:"default:0" json:"estimatedTime"` // Minutes
	IsPublished   bool           `gorm:"default:true" json:"isPublished"`
	Questions     []Question     `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	ScoringRanges []ScoringRange `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"scoringRanges,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

type Question struct {
	BaseModel
	TestID  uint     `gorm:"index;not null" json:"testId"`
	Text    string   `gorm:"type:text;not null" json:"text"`
	Order   int      `gorm:"column:position;not null" json:"order"`
	Options []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options"`
}

func (Question) TableName() string {
	return "test_questions"
}

type Option struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:255;not null" json:"text"`
	Value      int    `gorm:"not null" json:"value"`
	Order      int    `gorm:"column:position;not null" json:"order"`
}

func (Option) TableName() string {
	return "test_options"
}

type ScoringRange struct {
	BaseModel
	TestID      uint   `gorm:"index;not null" json:"testId"`
	MinScore    int    `gorm:"not null" json:"minScore"`
	MaxScore    int    `gorm:"not null" json:"maxScore"`
	Severity    string `gorm:"size:10;not null" json:"severity"`
	Description string `gorm:"type:text" json:"description"`
}

func (ScoringRange) TableName() string {
	return "test_scoring_ranges"
}

// Draft maps the stored test onto the scoring authoring shape.
func (t *Test) Draft() scoring.Draft {
	d := scoring.Draft{
		ID:   t.ID,
		Name: t.Name,
		Type: scoring.InstrumentType(t.TestType),
	}
	for _, q := range t.Questions {
		sq := scoring.Question{ID: q.ID, Text: q.Text, Position: q.Order}
		for _, o := range q.Options {
			sq.Options = append(sq.Options, scoring.Option{Text: o.Text, Value: o.Value, Position: o.Order})
		}
		d.Questions = append(d.Questions, sq)
	}
	for _, r := range t.ScoringRanges {
		d.Ranges = append(d.Ranges, scoring.ScoringRange{
			Min:         r.MinScore,
			Max:         r.MaxScore,
			Severity:    scoring.Severity(r.Severity),
			Description: r.Description,
		})
	}
	return d
}
