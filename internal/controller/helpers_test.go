package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"healmymind_backend/internal/config"
	"healmymind_backend/internal/middleware"
	"healmymind_backend/internal/model"
	"healmymind_backend/internal/service"
	"healmymind_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "controller-secret"

// memStore backs every store interface the services need.
type memStore struct {
	users    map[uint]*model.User
	tests    map[uint]*model.Test
	results  []*model.TestResult
	sessions []*model.TestSession
}

func newMemStore() *memStore {
	return &memStore{users: map[uint]*model.User{}, tests: map[uint]*model.Test{}}
}

type userStore struct{ *memStore }

func (s userStore) Create(u *model.User) error {
	u.ID = uint(len(s.users) + 1)
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s userStore) FindByID(id uint) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s userStore) FindByEmail(email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s userStore) UpdateLastLogin(uint, time.Time) error { return nil }

type testStore struct{ *memStore }

func (s testStore) ListPublished(testType string, page, limit int) ([]model.Test, int64, error) {
	var out []model.Test
	for _, t := range s.tests {
		if t.IsPublished {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (s testStore) FindByID(id uint) (*model.Test, error) {
	if t, ok := s.tests[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s testStore) Create(t *model.Test) error {
	t.ID = uint(len(s.tests) + 1)
	s.tests[t.ID] = t
	return nil
}

func (s testStore) Update(t *model.Test) error { s.tests[t.ID] = t; return nil }
func (s testStore) Delete(id uint) error       { delete(s.tests, id); return nil }

type resultStore struct{ *memStore }

func (s resultStore) Create(r *model.TestResult) error {
	r.ID = uint(len(s.results) + 1)
	s.results = append(s.results, r)
	return nil
}

func (s resultStore) FindByIDForUser(id, userID uint) (*model.TestResult, error) {
	for _, r := range s.results {
		if r.ID == id && r.UserID == userID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s resultStore) UpdateRecommendations(id uint, payload []byte) error {
	for _, r := range s.results {
		if r.ID == id {
			r.Recommendations = payload
		}
	}
	return nil
}

func (s resultStore) ListByUser(userID uint, page, limit int) ([]model.TestResult, int64, error) {
	var out []model.TestResult
	for _, r := range s.results {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (s resultStore) ListByTest(testID uint) ([]model.TestResult, error) {
	var out []model.TestResult
	for _, r := range s.results {
		if r.TestID == testID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s resultStore) Scores(testID uint) ([]int, error) {
	var out []int
	for _, r := range s.results {
		if r.TestID == testID {
			out = append(out, r.Score)
		}
	}
	return out, nil
}

func (s resultStore) SeverityDistribution(uint) ([]model.SeverityCount, error) { return nil, nil }
func (s resultStore) CountUsers(uint) (int64, error)                           { return 0, nil }
func (s resultStore) CompletionTimes(uint) ([]time.Duration, error)            { return nil, nil }

type sessionStore struct{ *memStore }

func (s sessionStore) Create(sess *model.TestSession) error {
	sess.ID = uuid.NewString()
	s.sessions = append(s.sessions, sess)
	return nil
}

func (s sessionStore) FindLatest(userID, testID uint) (*model.TestSession, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s sessionStore) CountByTest(uint) (int64, error) { return 0, nil }

func gad7(id uint) *model.Test {
	t := &model.Test{Name: "Anxiety Screening (GAD-7)", TestType: "GAD7", IsPublished: true}
	t.ID = id
	for i := 0; i < 7; i++ {
		q := model.Question{TestID: id, Text: "q", Order: i + 1}
		q.ID = uint(i + 1)
		for v := 0; v <= 3; v++ {
			q.Options = append(q.Options, model.Option{Text: "o", Value: v, Order: v + 1})
		}
		t.Questions = append(t.Questions, q)
	}
	t.ScoringRanges = []model.ScoringRange{
		{MinScore: 0, MaxScore: 4, Severity: "MINIMAL", Description: "Minimal anxiety"},
		{MinScore: 5, MaxScore: 9, Severity: "MILD", Description: "Mild anxiety"},
		{MinScore: 10, MaxScore: 14, Severity: "MODERATE", Description: "Moderate anxiety"},
		{MinScore: 15, MaxScore: 21, Severity: "SEVERE", Description: "Severe anxiety"},
	}
	return t
}

type server struct {
	router *gin.Engine
	store  *memStore
	cfg    *config.Config
}

// newServer wires the controllers the same way the app router does.
func newServer(t *testing.T) *server {
	t.Helper()
	store := newMemStore()
	store.tests[1] = gad7(1)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour}}

	tests, results, sessions := testStore{store}, resultStore{store}, sessionStore{store}
	testSvc := service.NewTestService(tests, results, sessions, nil, nil)
	auth := NewAuthController(service.NewAuthService(userStore{store}, cfg))
	tc := NewTestController(testSvc)
	rc := NewResultController(testSvc)
	ac := NewAdminTestController(testSvc,
		service.NewStatisticsService(tests, results, sessions),
		service.NewExportService(tests, results))

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", auth.Register)
	api.POST("/login", auth.Login)

	authed := r.Group("/api", middleware.AuthMiddleware(cfg))
	authed.GET("/profile", auth.GetProfile)
	authed.GET("/tests", tc.ListTests)
	authed.GET("/tests/results", rc.ListResults)
	authed.GET("/tests/results/:resultId", rc.GetResult)
	authed.GET("/tests/results/:resultId/analysis", rc.GetAnalysis)
	authed.GET("/tests/:id", tc.GetTest)
	authed.POST("/tests/:id/start", tc.StartTest)
	authed.POST("/tests/:id/submit", tc.SubmitTest)

	admin := r.Group("/api/admin", middleware.AuthMiddleware(cfg), middleware.RequireRole(model.RoleAdmin))
	admin.POST("/tests", ac.CreateTest)
	admin.POST("/tests/check", ac.CheckTest)
	admin.PUT("/tests/:id", ac.UpdateTest)
	admin.DELETE("/tests/:id", ac.DeleteTest)
	admin.GET("/tests/:id/statistics", ac.GetStatistics)
	admin.GET("/tests/:id/results/export", ac.ExportResults)

	return &server{router: r, store: store, cfg: cfg}
}

func (s *server) token(t *testing.T, userID uint, role model.UserRole) string {
	t.Helper()
	u := &model.User{Email: "u@example.com", Role: role}
	u.ID = userID
	tok, err := util.GenerateJWT(u, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

