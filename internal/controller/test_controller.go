package controller

import (
	"time"

	"healmymind_backend/internal/scoring"
	"healmymind_backend/internal/service"
	"healmymind_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// ListTests godoc
// @Summary List published tests
// @Tags Tests
// @Produce json
// @Security ApiKeyAuth
// @Param type query string false "Instrument type (PHQ9, GAD7, PCL5)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tests [get]
func (c *TestController) ListTests(ctx *gin.Context) {
	page, limit := util.ParsePage(ctx)
	tests, total, err := c.TestService.ListTests(ctx.Query("type"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, tests, total, page, limit)
}

// GetTest godoc
// @Summary Get a test with its questions
// @Description Scoring ranges are only included for admins
// @Tags Tests
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response{data=model.Test}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}
	claims := util.CurrentUser(ctx)
	admin := claims.IsAdmin()

	t, err := c.TestService.GetTest(ctx.Request.Context(), id, admin)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, t)
}

// StartTest godoc
// @Summary Start a test
// @Tags Tests
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Success 201 {object} util.Response{data=model.TestSession}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/start [post]
func (c *TestController) StartTest(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}
	claims := util.CurrentUser(ctx)

	session, err := c.TestService.StartTest(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// SubmitRequest maps question id to the chosen option value.
// swagger:model SubmitRequest
type SubmitRequest struct {
	Answers scoring.Answers `json:"answers" binding:"required"`
}

// swagger:model SubmitResponse
type SubmitResponse struct {
	ResultID    uint             `json:"resultId"`
	TestID      uint             `json:"testId"`
	Score       int              `json:"score"`
	Severity    scoring.Severity `json:"severity"`
	Description string           `json:"description,omitempty"`
	CompletedAt time.Time        `json:"completedAt"`
}

// SubmitTest godoc
// @Summary Submit answers
// @Description Validates and scores the answers. Every violation is listed in data.violations.
// @Tags Tests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Test ID"
// @Param body body SubmitRequest true "Answers"
// @Success 201 {object} util.Response{data=SubmitResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid test ID")
		return
	}
	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	claims := util.CurrentUser(ctx)

	res, scored, err := c.TestService.SubmitTest(ctx.Request.Context(), claims.UserID, id, req.Answers)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, SubmitResponse{
		ResultID:    res.ID,
		TestID:      res.TestID,
		Score:       scored.TotalScore,
		Severity:    scored.Severity,
		Description: scored.Description,
		CompletedAt: res.CompletedAt,
	})
}
