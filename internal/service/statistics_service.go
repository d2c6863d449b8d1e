package service

import (
	"errors"
	"time"

	"healmymind_backend/internal/model"
	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/util"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TestStatistics summarises every result recorded for one test.
// swagger:model TestStatistics
type TestStatistics struct {
	TestID                uint             `json:"testId"`
	TestType              string           `json:"testType"`
	TotalTestsTaken       int              `json:"totalTestsTaken"`
	UniqueUsers           int64            `json:"uniqueUsers"`
	AverageScore          float64          `json:"averageScore"`
	MedianScore           float64          `json:"medianScore"`
	ScoreStdDev           float64          `json:"scoreStdDev"`
	SeverityDistribution  map[string]int64 `json:"severityDistribution"`
	StartedSessions       int64            `json:"startedSessions"`
	CompletionRate        float64          `json:"completionRate"`
	AverageCompletionTime float64          `json:"averageCompletionTime"` // minutes
}

type StatisticsService struct {
	TestRepo    TestStore
	ResultRepo  ResultStore
	SessionRepo SessionStore
}

func NewStatisticsService(tests TestStore, results ResultStore, sessions SessionStore) *StatisticsService {
	return &StatisticsService{TestRepo: tests, ResultRepo: results, SessionRepo: sessions}
}

func (s *StatisticsService) ForTest(testID uint) (*TestStatistics, error) {
	t, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	var (
		scores   []int
		dist     []model.SeverityCount
		users    int64
		sessions int64
		times    []time.Duration
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		scores, err = s.ResultRepo.Scores(testID)
		return err
	})
	g.Go(func() (err error) {
		dist, err = s.ResultRepo.SeverityDistribution(testID)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.ResultRepo.CountUsers(testID)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.SessionRepo.CountByTest(testID)
		return err
	})
	g.Go(func() (err error) {
		times, err = s.ResultRepo.CompletionTimes(testID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &TestStatistics{
		TestID:               testID,
		TestType:             t.TestType,
		TotalTestsTaken:      len(scores),
		UniqueUsers:          users,
		SeverityDistribution: make(map[string]int64),
		StartedSessions:      sessions,
	}
	for _, sev := range scoring.Severities() {
		out.SeverityDistribution[string(sev)] = 0
	}
	for _, row := range dist {
		out.SeverityDistribution[row.Severity] = row.Count
	}

	if len(scores) > 0 {
		data := stats.LoadRawData(scores)
		// errors only occur on empty input
		out.AverageScore, _ = stats.Round(mustFloat(data.Mean()), 2)
		out.MedianScore, _ = stats.Round(mustFloat(data.Median()), 2)
		out.ScoreStdDev, _ = stats.Round(mustFloat(data.StandardDeviation()), 2)
	}

	if sessions > 0 {
		rate := float64(len(scores)) / float64(sessions) * 100
		if rate > 100 {
			rate = 100
		}
		out.CompletionRate, _ = stats.Round(rate, 2)
	}
	if len(times) > 0 {
		minutes := make([]float64, len(times))
		for i, d := range times {
			minutes[i] = d.Minutes()
		}
		out.AverageCompletionTime, _ = stats.Round(mustFloat(stats.Mean(minutes)), 2)
	}
	return out, nil
}

func mustFloat(v float64, _ error) float64 {
	return v
}
