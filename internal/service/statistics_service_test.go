package service

import (
	"context"
	"testing"
	"time"

	"healmymind_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsForTest(t *testing.T) {
	h := newHarness(phq9Test(1))
	ctx := context.Background()

	for user := uint(1); user <= 4; user++ {
		_, err := h.svc.StartTest(ctx, user, 1)
		require.NoError(t, err)
	}
	for _, sub := range []struct {
		user  uint
		value int
	}{{1, 0}, {2, 1}, {2, 3}} {
		_, _, err := h.svc.SubmitTest(ctx, sub.user, 1, uniform(sub.value))
		require.NoError(t, err)
	}

	require.Len(t, h.results.rows, 3)
	for i, took := range []time.Duration{4 * time.Minute, 8 * time.Minute} {
		started := h.results.rows[i].CompletedAt.Add(-took)
		h.results.rows[i].StartedAt = &started
	}
	h.results.rows[2].StartedAt = nil

	svc := NewStatisticsService(h.tests, h.results, h.sessions)
	st, err := svc.ForTest(1)
	require.NoError(t, err)

	assert.Equal(t, 6.0, st.AverageCompletionTime)
	assert.Equal(t, "PHQ9", st.TestType)
	assert.Equal(t, 3, st.TotalTestsTaken)
	assert.Equal(t, int64(2), st.UniqueUsers)
	assert.Equal(t, 12.0, st.AverageScore)
	assert.Equal(t, 9.0, st.MedianScore)
	assert.InDelta(t, 11.22, st.ScoreStdDev, 0.01)
	assert.Equal(t, int64(1), st.SeverityDistribution["MINIMAL"])
	assert.Equal(t, int64(1), st.SeverityDistribution["MILD"])
	assert.Equal(t, int64(0), st.SeverityDistribution["MODERATE"])
	assert.Equal(t, int64(1), st.SeverityDistribution["SEVERE"])
	assert.Equal(t, int64(4), st.StartedSessions)
	assert.Equal(t, 75.0, st.CompletionRate)
}

func TestStatisticsEmpty(t *testing.T) {
	h := newHarness(phq9Test(1))
	svc := NewStatisticsService(h.tests, h.results, h.sessions)

	st, err := svc.ForTest(1)
	require.NoError(t, err)
	assert.Zero(t, st.TotalTestsTaken)
	assert.Zero(t, st.AverageScore)
	assert.Zero(t, st.CompletionRate)
	assert.Zero(t, st.AverageCompletionTime)
	assert.Len(t, st.SeverityDistribution, 4)

	_, err = svc.ForTest(2)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}
