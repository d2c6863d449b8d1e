package model

import (
	"testing"
	"time"

	"healmymind_backend/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDraft(t *testing.T) {
	tt := &Test{Name: "Two", TestType: "GAD7"}
	tt.ID = 3
	for i := 0; i < 2; i++ {
		q := Question{Text: "q", Order: 2 - i}
		q.ID = uint(10 + i)
		q.Options = []Option{{Text: "yes", Value: 1, Order: 2}, {Text: "no", Value: 0, Order: 1}}
		tt.Questions = append(tt.Questions, q)
	}
	tt.ScoringRanges = []ScoringRange{
		{MinScore: 1, MaxScore: 2, Severity: "MILD", Description: "some"},
		{MinScore: 0, MaxScore: 0, Severity: "MINIMAL"},
	}

	d := tt.Draft()
	assert.Equal(t, uint(3), d.ID)
	assert.Equal(t, scoring.GAD7, d.Type)
	require.Len(t, d.Questions, 2)
	assert.Equal(t, uint(10), d.Questions[0].ID)
	assert.Equal(t, 2, d.Questions[0].Position)

	def, err := scoring.Compile(d)
	require.NoError(t, err)
	assert.Equal(t, []uint{11, 10}, def.QuestionIDs())
	assert.Equal(t, 2, def.MaxScore())

	r, ok := def.Classify(2)
	require.True(t, ok)
	assert.Equal(t, scoring.SeverityMild, r.Severity)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, DefaultPageSize},
		{-2, 25, 1, 25},
		{4, 1000, 4, MaxPageSize},
	}
	for _, tt := range tests {
		page, limit := NormalizePage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := &TestSession{StartedAt: now, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, s.Expired(now.Add(30*time.Minute)))
	assert.True(t, s.Expired(now.Add(2*time.Hour)))
	assert.False(t, (&TestSession{}).Expired(now))
}

func TestSessionBeforeCreateAssignsID(t *testing.T) {
	s := &TestSession{}
	require.NoError(t, s.BeforeCreate(nil))
	assert.Len(t, s.ID, 36)

	kept := &TestSession{ID: "fixed"}
	require.NoError(t, kept.BeforeCreate(nil))
	assert.Equal(t, "fixed", kept.ID)
}
