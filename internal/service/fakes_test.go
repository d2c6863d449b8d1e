package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"healmymind_backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uint]*model.User
	nextID uint
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uint]*model.User)}
}

func (f *fakeUsers) Create(u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) UpdateLastLogin(id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

type fakeTests struct {
	byID   map[uint]*model.Test
	nextID uint
	finds  int
}

func newFakeTests(ts ...*model.Test) *fakeTests {
	f := &fakeTests{byID: make(map[uint]*model.Test)}
	for _, t := range ts {
		if t.ID > f.nextID {
			f.nextID = t.ID
		}
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTests) ListPublished(testType string, page, limit int) ([]model.Test, int64, error) {
	var out []model.Test
	for _, t := range f.byID {
		if t.IsPublished && (testType == "" || t.TestType == testType) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (f *fakeTests) FindByID(id uint) (*model.Test, error) {
	f.finds++
	t, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	cp.ScoringRanges = append([]model.ScoringRange(nil), t.ScoringRanges...)
	return &cp, nil
}

func (f *fakeTests) Create(t *model.Test) error {
	f.nextID++
	t.ID = f.nextID
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTests) Update(t *model.Test) error {
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTests) Delete(id uint) error {
	delete(f.byID, id)
	return nil
}

type fakeResults struct {
	mu     sync.Mutex
	rows   []*model.TestResult
	recs   map[uint][]byte
	nextID uint
}

func newFakeResults() *fakeResults {
	return &fakeResults{recs: make(map[uint][]byte)}
}

func (f *fakeResults) Create(r *model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeResults) FindByIDForUser(id, userID uint) (*model.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			cp := *r
			if rec, ok := f.recs[id]; ok {
				cp.Recommendations = rec
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeResults) UpdateRecommendations(id uint, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs[id] = payload
	return nil
}

func (f *fakeResults) ListByUser(userID uint, page, limit int) ([]model.TestResult, int64, error) {
	var out []model.TestResult
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeResults) ListByTest(testID uint) ([]model.TestResult, error) {
	var out []model.TestResult
	for _, r := range f.rows {
		if r.TestID == testID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResults) Scores(testID uint) ([]int, error) {
	var out []int
	for _, r := range f.rows {
		if r.TestID == testID {
			out = append(out, r.Score)
		}
	}
	return out, nil
}

func (f *fakeResults) SeverityDistribution(testID uint) ([]model.SeverityCount, error) {
	counts := make(map[string]int64)
	for _, r := range f.rows {
		if r.TestID == testID {
			counts[r.Severity]++
		}
	}
	var out []model.SeverityCount
	for sev, n := range counts {
		out = append(out, model.SeverityCount{Severity: sev, Count: n})
	}
	return out, nil
}

func (f *fakeResults) CountUsers(testID uint) (int64, error) {
	users := make(map[uint]bool)
	for _, r := range f.rows {
		if r.TestID == testID {
			users[r.UserID] = true
		}
	}
	return int64(len(users)), nil
}

func (f *fakeResults) CompletionTimes(testID uint) ([]time.Duration, error) {
	var out []time.Duration
	for _, r := range f.rows {
		if r.TestID == testID && r.StartedAt != nil {
			out = append(out, r.CompletedAt.Sub(*r.StartedAt))
		}
	}
	return out, nil
}

type fakeSessions struct {
	rows []*model.TestSession
}

func (f *fakeSessions) Create(s *model.TestSession) error {
	s.ID = uuid.NewString()
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSessions) FindLatest(userID, testID uint) (*model.TestSession, error) {
	var latest *model.TestSession
	for _, s := range f.rows {
		if s.UserID == userID && s.TestID == testID && (latest == nil || s.StartedAt.After(latest.StartedAt)) {
			latest = s
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (f *fakeSessions) CountByTest(testID uint) (int64, error) {
	var n int64
	for _, s := range f.rows {
		if s.TestID == testID {
			n++
		}
	}
	return n, nil
}

type fakeCache struct {
	items       map[uint]model.Test
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[uint]model.Test)}
}

func (c *fakeCache) Get(_ context.Context, id uint) (*model.Test, bool, error) {
	t, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return &t, true, nil
}

func (c *fakeCache) Set(_ context.Context, t *model.Test) error {
	c.items[t.ID] = *t
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id uint) error {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type stubRecommender struct {
	mu    sync.Mutex
	calls []RecommendationInput
	rec   Recommendation
}

func (s *stubRecommender) Recommend(_ context.Context, in RecommendationInput) Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, in)
	return s.rec
}

// phq9Test builds a stored PHQ-9 with question ids 101..109.
func phq9Test(id uint) *model.Test {
	t := &model.Test{
		Name:        "Depression Screening (PHQ-9)",
		TestType:    "PHQ9",
		IsPublished: true,
	}
	t.ID = id
	labels := []string{"Not at all", "Several days", "More than half the days", "Nearly every day"}
	for i := 0; i < 9; i++ {
		q := model.Question{TestID: id, Text: "q", Order: i + 1}
		q.ID = uint(101 + i)
		for v, l := range labels {
			q.Options = append(q.Options, model.Option{Text: l, Value: v, Order: v + 1})
		}
		t.Questions = append(t.Questions, q)
	}
	t.ScoringRanges = []model.ScoringRange{
		{TestID: id, MinScore: 0, MaxScore: 4, Severity: "MINIMAL", Description: "Minimal depression"},
		{TestID: id, MinScore: 5, MaxScore: 9, Severity: "MILD", Description: "Mild depression"},
		{TestID: id, MinScore: 10, MaxScore: 14, Severity: "MODERATE", Description: "Moderate depression"},
		{TestID: id, MinScore: 15, MaxScore: 27, Severity: "SEVERE", Description: "Severe depression"},
	}
	return t
}
