package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"healmymind_backend/internal/model"
	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/util"
	"healmymind_backend/pkg/logger"
	"healmymind_backend/pkg/monitoring"
	"healmymind_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSessionTTL bounds how long a started test counts towards the
// result's StartedAt.
const DefaultSessionTTL = 2 * time.Hour

const recommendationTimeout = time.Minute

type TestService struct {
	TestRepo    TestStore
	ResultRepo  ResultStore
	SessionRepo SessionStore
	Cache       TestCache
	Recommender Recommender
	SessionTTL  time.Duration

	// Go runs background work. Tests replace it to run synchronously.
	Go func(func())
}

func NewTestService(tests TestStore, results ResultStore, sessions SessionStore, cache TestCache, rec Recommender) *TestService {
	return &TestService{
		TestRepo:    tests,
		ResultRepo:  results,
		SessionRepo: sessions,
		Cache:       cache,
		Recommender: rec,
		SessionTTL:  DefaultSessionTTL,
		Go:          func(f func()) { go f() },
	}
}

func (s *TestService) ListTests(testType string, page, limit int) ([]model.Test, int64, error) {
	return s.TestRepo.ListPublished(testType, page, limit)
}

// GetTest returns the test with its questions. Scoring ranges are only kept
// for admins.
func (s *TestService) GetTest(ctx context.Context, id uint, admin bool) (*model.Test, error) {
	t, err := s.loadTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin {
		if !t.IsPublished {
			return nil, util.ErrTestNotFound
		}
		t.ScoringRanges = nil
	}
	return t, nil
}

// StartTest records that the user opened the test.
func (s *TestService) StartTest(ctx context.Context, userID, testID uint) (*model.TestSession, error) {
	t, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !t.IsPublished {
		return nil, util.ErrTestNotPublished
	}

	now := time.Now()
	session := &model.TestSession{
		UserID:    userID,
		TestID:    testID,
		StartedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitTest validates and scores the answers and stores the result.
//
// A validation failure returns a *scoring.ValidationError and stores nothing.
// A score outside every range is stored with severity UNKNOWN and reported to
// operators; the caller still gets the result.
func (s *TestService) SubmitTest(ctx context.Context, userID, testID uint, answers scoring.Answers) (*model.TestResult, scoring.Result, error) {
	t, err := s.loadTest(ctx, testID)
	if err != nil {
		return nil, scoring.Result{}, err
	}
	if !t.IsPublished {
		return nil, scoring.Result{}, util.ErrTestNotPublished
	}

	def, err := scoring.Compile(t.Draft())
	if err != nil {
		logger.Log.Error("Stored test definition does not compile",
			zap.Uint("testId", testID),
			zap.Error(err),
		)
		return nil, scoring.Result{}, fmt.Errorf("%w: %v", util.ErrTestMisconfigured, err)
	}

	_, span := tracing.StartSpan(ctx, "scoring.evaluate",
		attribute.Int64("test.id", int64(testID)),
		attribute.String("test.type", string(def.Type())),
	)
	scored, err := scoring.Evaluate(answers, def)
	if err != nil {
		span.SetStatus(codes.Error, "invalid answers")
		span.End()
		recordValidationFailure(def.Type(), err)
		return nil, scoring.Result{}, err
	}
	span.SetAttributes(
		attribute.Int("score.total", scored.TotalScore),
		attribute.String("score.severity", string(scored.Severity)),
	)
	span.End()

	monitoring.SubmissionCounter.WithLabelValues(string(def.Type()), string(scored.Severity)).Inc()
	if !scored.Known() {
		monitoring.UnknownSeverityCounter.WithLabelValues(strconv.FormatUint(uint64(testID), 10)).Inc()
		logger.Log.Warn("Score matched no scoring range",
			zap.Uint("testId", testID),
			zap.String("testType", string(def.Type())),
			zap.Int("score", scored.TotalScore),
			zap.Int("minScore", def.MinScore()),
			zap.Int("maxScore", def.MaxScore()),
		)
	}

	payload, err := json.Marshal(answers)
	if err != nil {
		return nil, scoring.Result{}, err
	}

	result := &model.TestResult{
		UserID:      userID,
		TestID:      testID,
		Score:       scored.TotalScore,
		Severity:    string(scored.Severity),
		Answers:     payload,
		CompletedAt: time.Now(),
	}
	if session, err := s.SessionRepo.FindLatest(userID, testID); err == nil && !session.Expired(result.CompletedAt) {
		started := session.StartedAt
		result.StartedAt = &started
	}

	if err := s.ResultRepo.Create(result); err != nil {
		return nil, scoring.Result{}, err
	}

	logger.Log.Info("Test submitted",
		zap.Uint("userId", userID),
		zap.Uint("testId", testID),
		zap.Uint("resultId", result.ID),
		zap.String("severity", string(scored.Severity)),
	)

	if s.Recommender != nil {
		in := RecommendationInput{
			TestType:    def.Type(),
			Score:       scored.TotalScore,
			Severity:    scored.Severity,
			Description: scored.Description,
		}
		resultID := result.ID
		s.Go(func() {
			rctx, cancel := context.WithTimeout(context.Background(), recommendationTimeout)
			defer cancel()
			if _, err := s.storeRecommendation(rctx, resultID, in); err != nil {
				logger.Log.Error("Failed to store recommendations", zap.Uint("resultId", resultID), zap.Error(err))
			}
		})
	}

	return result, scored, nil
}

func recordValidationFailure(typ scoring.InstrumentType, err error) {
	var verr *scoring.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	seen := make(map[scoring.ViolationKind]bool)
	for _, v := range verr.Violations {
		if seen[v.Kind] {
			continue
		}
		seen[v.Kind] = true
		monitoring.ValidationFailureCounter.WithLabelValues(string(typ), string(v.Kind)).Inc()
	}
}

func (s *TestService) storeRecommendation(ctx context.Context, resultID uint, in RecommendationInput) (Recommendation, error) {
	rec := s.Recommender.Recommend(ctx, in)
	payload, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	return rec, s.ResultRepo.UpdateRecommendations(resultID, payload)
}

func (s *TestService) ListResults(userID uint, page, limit int) ([]model.TestResult, int64, error) {
	return s.ResultRepo.ListByUser(userID, page, limit)
}

func (s *TestService) GetResult(userID, resultID uint) (*model.TestResult, error) {
	res, err := s.ResultRepo.FindByIDForUser(resultID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrResultNotFound
	}
	return res, err
}

// Analysis returns the stored recommendation for a result, generating it
// when the background request has not finished or failed.
func (s *TestService) Analysis(ctx context.Context, userID, resultID uint) (Recommendation, error) {
	res, err := s.GetResult(userID, resultID)
	if err != nil {
		return Recommendation{}, err
	}

	var rec Recommendation
	if len(res.Recommendations) > 0 && string(res.Recommendations) != "null" {
		if err := json.Unmarshal(res.Recommendations, &rec); err == nil && rec.Confidence {
			return rec, nil
		}
	}
	if s.Recommender == nil {
		return fallbackRecommendation(), nil
	}

	in := RecommendationInput{
		Score:    res.Score,
		Severity: scoring.Severity(res.Severity),
	}
	if res.Test != nil {
		in.TestType = scoring.InstrumentType(res.Test.TestType)
	}
	return s.storeRecommendation(ctx, res.ID, in)
}

// CheckTest compiles the test without storing it. Question ids are assigned
// from position order so unsaved tests can be checked.
func (s *TestService) CheckTest(t *model.Test) (*scoring.Definition, error) {
	d := t.Draft()
	for i := range d.Questions {
		d.Questions[i].ID = uint(i + 1)
	}
	return scoring.Compile(d)
}

func (s *TestService) CreateTest(ctx context.Context, t *model.Test) error {
	if _, err := s.CheckTest(t); err != nil {
		return err
	}
	if err := s.TestRepo.Create(t); err != nil {
		return err
	}
	logger.Log.Info("Test created", zap.Uint("testId", t.ID), zap.String("testType", t.TestType))
	return nil
}

func (s *TestService) UpdateTest(ctx context.Context, t *model.Test) error {
	if _, err := s.CheckTest(t); err != nil {
		return err
	}
	if _, err := s.TestRepo.FindByID(t.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTestNotFound
		}
		return err
	}
	if err := s.TestRepo.Update(t); err != nil {
		return err
	}
	s.invalidate(ctx, t.ID)
	logger.Log.Info("Test updated", zap.Uint("testId", t.ID))
	return nil
}

func (s *TestService) DeleteTest(ctx context.Context, id uint) error {
	if _, err := s.TestRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrTestNotFound
		}
		return err
	}
	if err := s.TestRepo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	logger.Log.Info("Test deleted", zap.Uint("testId", id))
	return nil
}

func (s *TestService) invalidate(ctx context.Context, id uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		logger.Log.Warn("Failed to invalidate test cache", zap.Uint("testId", id), zap.Error(err))
	}
}

// loadTest reads through the cache. Cache errors are logged and skipped.
func (s *TestService) loadTest(ctx context.Context, id uint) (*model.Test, error) {
	if s.Cache != nil {
		t, ok, err := s.Cache.Get(ctx, id)
		if err != nil {
			logger.Log.Warn("Test cache read failed", zap.Uint("testId", id), zap.Error(err))
		} else if ok {
			return t, nil
		}
	}

	t, err := s.TestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, t); err != nil {
			logger.Log.Warn("Test cache write failed", zap.Uint("testId", id), zap.Error(err))
		}
	}
	return t, nil
}
